package uploadplan

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"upload-mapper/internal/mapping"
	"upload-mapper/internal/schema"
)

var (
	// ErrInvalidTree is returned when a mapping tree does not fit the schema.
	ErrInvalidTree = errors.New("mapping tree does not fit the schema")
	// ErrInvalidPlan is returned when an upload plan is malformed or does not fit the schema.
	ErrInvalidPlan = errors.New("invalid upload plan")
)

type encoder struct {
	schema    *schema.Schema
	mustMatch map[string]bool
}

// TreeToPlan builds the upload plan for a mapping tree rooted at baseTable.
// Tables named in mustMatch, other than the base table, become must-match
// uploadables.
func TreeToPlan(s *schema.Schema, baseTable string, tree *mapping.Branch, mustMatch []string) (*Plan, error) {
	base := s.Table(baseTable)
	if base == nil {
		return nil, fmt.Errorf("%w: unknown base table %q", ErrInvalidTree, baseTable)
	}

	if tree == nil {
		tree = mapping.NewBranch()
	}

	e := &encoder{schema: s, mustMatch: tableSet(mustMatch)}

	u, err := e.uploadable(base, tree, nil, true)
	if err != nil {
		return nil, err
	}

	return &Plan{
		BaseTableName:   strings.ToLower(base.Name),
		MustMatchTables: sortedSet(e.mustMatch),
		Uploadable:      u,
	}, nil
}

func (e *encoder) uploadable(t *schema.Table, b *mapping.Branch, at mapping.Path, root bool) (Uploadable, error) {
	mustMatch := !root && e.mustMatch[strings.ToLower(t.Name)]

	if t.IsTree() {
		tr, err := e.treeRecord(t, b, at)
		if err != nil {
			return Uploadable{}, err
		}

		if mustMatch {
			return Uploadable{MustMatchTreeRecord: tr}, nil
		}

		return Uploadable{TreeRecord: tr}, nil
	}

	ut, err := e.uploadTable(t, b, at)
	if err != nil {
		return Uploadable{}, err
	}

	if mustMatch {
		return Uploadable{MustMatchTable: ut}, nil
	}

	return Uploadable{UploadTable: ut}, nil
}

func (e *encoder) uploadTable(t *schema.Table, b *mapping.Branch, at mapping.Path) (*UploadTable, error) {
	ut := newUploadTable()

	for _, key := range b.Keys() {
		child, _ := b.Child(key)
		next := append(at.Clone(), key)

		if f := t.Field(key); f != nil {
			leaf, ok := child.(*mapping.Leaf)
			if !ok {
				return nil, fmt.Errorf("%w: %s: field %s.%s has children", ErrInvalidTree, next, t.Name, f.Name)
			}

			bind(ut.WBCols, ut.Static, f, leaf.Binding)

			continue
		}

		r := t.Relationship(key)
		if r == nil {
			return nil, fmt.Errorf("%w: %s: %s has no field or relationship %q", ErrInvalidTree, next, t.Name, key)
		}

		related := e.schema.Table(r.RelatedTable)
		if related == nil {
			return nil, fmt.Errorf("%w: %s: relationship %s.%s points at unknown table %q",
				ErrInvalidTree, next, t.Name, r.Name, r.RelatedTable)
		}

		sub, ok := child.(*mapping.Branch)
		if !ok {
			return nil, fmt.Errorf("%w: %s: relationship %s.%s ends the path", ErrInvalidTree, next, t.Name, r.Name)
		}

		name := strings.ToLower(r.Name)

		if r.IsToMany() {
			records, err := e.toMany(related, sub, next)
			if err != nil {
				return nil, err
			}

			ut.ToMany[name] = records

			continue
		}

		u, err := e.uploadable(related, sub, next, false)
		if err != nil {
			return nil, err
		}

		ut.ToOne[name] = u
	}

	return ut, nil
}

// toMany returns one record per index, ordered by index.
func (e *encoder) toMany(t *schema.Table, b *mapping.Branch, at mapping.Path) ([]UploadTable, error) {
	if t.IsTree() {
		return nil, fmt.Errorf("%w: %s: to-many records of tree table %s are not supported", ErrInvalidTree, at, t.Name)
	}

	type record struct {
		index  int
		token  string
		branch *mapping.Branch
	}

	records := make([]record, 0, b.Len())

	for _, key := range b.Keys() {
		n, ok := mapping.ParseIndex(key)
		if !ok {
			return nil, fmt.Errorf("%w: %s: expected a to-many index, got %q", ErrInvalidTree, at, key)
		}

		child, _ := b.Child(key)

		sub, ok := child.(*mapping.Branch)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s: index ends the path", ErrInvalidTree, at, key)
		}

		records = append(records, record{index: n, token: key, branch: sub})
	}

	sort.Slice(records, func(i, j int) bool { return records[i].index < records[j].index })

	out := make([]UploadTable, 0, len(records))

	for _, r := range records {
		ut, err := e.uploadTable(t, r.branch, append(at.Clone(), r.token))
		if err != nil {
			return nil, err
		}

		out = append(out, *ut)
	}

	return out, nil
}

func (e *encoder) treeRecord(t *schema.Table, b *mapping.Branch, at mapping.Path) (*TreeRecord, error) {
	tr := &TreeRecord{Ranks: make(map[string]TreeRank)}

	for _, key := range b.Keys() {
		next := append(at.Clone(), key)

		rank, ok := canonicalRank(t, key)
		if !ok || !mapping.IsRank(key) {
			return nil, fmt.Errorf("%w: %s: %q is not a rank of %s", ErrInvalidTree, next, key, t.Name)
		}

		child, _ := b.Child(key)

		sub, ok := child.(*mapping.Branch)
		if !ok {
			return nil, fmt.Errorf("%w: %s: rank ends the path", ErrInvalidTree, next)
		}

		tr.Ranks[rank] = TreeRank{
			TreeNodeCols: make(map[string]ColumnDef),
			Static:       make(map[string]Literal),
		}

		for _, fieldKey := range sub.Keys() {
			f := t.Field(fieldKey)
			if f == nil {
				return nil, fmt.Errorf("%w: %s.%s: %s has no field %q", ErrInvalidTree, next, fieldKey, t.Name, fieldKey)
			}

			n, _ := sub.Child(fieldKey)

			leaf, ok := n.(*mapping.Leaf)
			if !ok {
				return nil, fmt.Errorf("%w: %s.%s: field has children", ErrInvalidTree, next, fieldKey)
			}

			bind(tr.Ranks[rank].TreeNodeCols, tr.Ranks[rank].Static, f, leaf.Binding)
		}
	}

	return tr, nil
}

// bind stores a leaf under the lowercase field name, as a literal when it is static.
func bind(cols map[string]ColumnDef, static map[string]Literal, f *schema.Field, b *mapping.Binding) {
	key := strings.ToLower(f.Name)

	switch {
	case b == nil:
		cols[key] = newColumnDef("", mapping.DefaultColumnOptions())
	case b.Static:
		static[key] = Literal(b.Value)
	default:
		cols[key] = newColumnDef(b.Header, b.Options)
	}
}

// canonicalRank accepts a rank token ("$Species") or a bare rank name in any
// case and returns the rank as the table declares it.
func canonicalRank(t *schema.Table, token string) (string, bool) {
	name := mapping.RankName(token)

	for _, r := range t.Ranks {
		if strings.EqualFold(r, name) {
			return r, true
		}
	}

	return "", false
}

func tableSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		if n != "" {
			set[strings.ToLower(n)] = true
		}
	}

	return set
}

func sortedSet(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}

	return slices.Sorted(maps.Keys(set))
}
