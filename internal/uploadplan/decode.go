package uploadplan

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"upload-mapper/internal/mapping"
	"upload-mapper/internal/schema"
)

// Decoded is an upload plan turned back into workbench terms.
type Decoded struct {
	// BaseTable is the table name as the schema declares it.
	BaseTable string
	Tree      *mapping.Branch
	// MustMatch holds the lowercase must-match table names, sorted.
	MustMatch []string
}

type decoder struct {
	schema    *schema.Schema
	mustMatch map[string]bool
	paths     []mapping.MappedPath
}

// PlanToTree rebuilds the mapping tree, base table and must-match set of a
// plan. To-many records are numbered #1, #2, ... in list order.
func PlanToTree(s *schema.Schema, p *Plan) (*Decoded, error) {
	base := s.Table(p.BaseTableName)
	if base == nil {
		return nil, fmt.Errorf("%w: unknown base table %q", ErrInvalidPlan, p.BaseTableName)
	}

	d := &decoder{schema: s, mustMatch: tableSet(p.MustMatchTables)}

	if err := d.uploadable(base, p.Uploadable, nil); err != nil {
		return nil, err
	}

	tree, err := mapping.MappedPathsToTree(d.paths)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}

	return &Decoded{
		BaseTable: base.Name,
		Tree:      tree,
		MustMatch: sortedSet(d.mustMatch),
	}, nil
}

func (d *decoder) uploadable(t *schema.Table, u Uploadable, at mapping.Path) error {
	if n := u.members(); n != 1 {
		return fmt.Errorf("%w: %s: expected exactly one uploadable kind, got %d", ErrInvalidPlan, where(at), n)
	}

	if u.IsMustMatch() {
		d.mustMatch[strings.ToLower(t.Name)] = true
	}

	if tr := u.Tree(); tr != nil {
		if !t.IsTree() {
			return fmt.Errorf("%w: %s: %s is not a tree table", ErrInvalidPlan, where(at), t.Name)
		}

		return d.treeRecord(t, tr, at)
	}

	if t.IsTree() {
		return fmt.Errorf("%w: %s: tree table %s needs a tree record", ErrInvalidPlan, where(at), t.Name)
	}

	return d.uploadTable(t, u.Table(), at)
}

func (d *decoder) uploadTable(t *schema.Table, ut *UploadTable, at mapping.Path) error {
	if err := d.fields(t, ut.WBCols, ut.Static, at); err != nil {
		return err
	}

	for _, key := range slices.Sorted(maps.Keys(ut.ToOne)) {
		r, related, err := d.relationship(t, key, at)
		if err != nil {
			return err
		}

		if r.IsToMany() {
			return fmt.Errorf("%w: %s: %s.%s is to-many, found under toOne", ErrInvalidPlan, where(at), t.Name, r.Name)
		}

		if err := d.uploadable(related, ut.ToOne[key], append(at.Clone(), r.Name)); err != nil {
			return err
		}
	}

	for _, key := range slices.Sorted(maps.Keys(ut.ToMany)) {
		r, related, err := d.relationship(t, key, at)
		if err != nil {
			return err
		}

		if !r.IsToMany() {
			return fmt.Errorf("%w: %s: %s.%s is not to-many, found under toMany", ErrInvalidPlan, where(at), t.Name, r.Name)
		}

		if related.IsTree() {
			return fmt.Errorf("%w: %s: to-many records of tree table %s are not supported", ErrInvalidPlan, where(at), related.Name)
		}

		for i := range ut.ToMany[key] {
			next := append(at.Clone(), r.Name, mapping.FormatIndex(i+1))

			if err := d.uploadTable(related, &ut.ToMany[key][i], next); err != nil {
				return err
			}
		}
	}

	return nil
}

func (d *decoder) treeRecord(t *schema.Table, tr *TreeRecord, at mapping.Path) error {
	for _, key := range slices.Sorted(maps.Keys(tr.Ranks)) {
		rank, ok := canonicalRank(t, key)
		if !ok {
			return fmt.Errorf("%w: %s: %q is not a rank of %s", ErrInvalidPlan, where(at), key, t.Name)
		}

		r := tr.Ranks[key]

		if err := d.fields(t, r.TreeNodeCols, r.Static, append(at.Clone(), mapping.FormatRank(rank))); err != nil {
			return err
		}
	}

	return nil
}

func (d *decoder) fields(t *schema.Table, cols map[string]ColumnDef, static map[string]Literal, at mapping.Path) error {
	for _, key := range slices.Sorted(maps.Keys(cols)) {
		f := t.Field(key)
		if f == nil {
			return fmt.Errorf("%w: %s: %s has no field %q", ErrInvalidPlan, where(at), t.Name, key)
		}

		def := cols[key]
		d.add(append(at.Clone(), f.Name), &mapping.Binding{Header: def.Column, Options: def.Options()})
	}

	for _, key := range slices.Sorted(maps.Keys(static)) {
		f := t.Field(key)
		if f == nil {
			return fmt.Errorf("%w: %s: %s has no field %q", ErrInvalidPlan, where(at), t.Name, key)
		}

		d.add(append(at.Clone(), f.Name), &mapping.Binding{
			Header:  f.DisplayLabel(),
			Static:  true,
			Value:   string(static[key]),
			Options: mapping.DefaultColumnOptions(),
		})
	}

	return nil
}

func (d *decoder) relationship(t *schema.Table, key string, at mapping.Path) (*schema.Relationship, *schema.Table, error) {
	r := t.Relationship(key)
	if r == nil {
		return nil, nil, fmt.Errorf("%w: %s: %s has no relationship %q", ErrInvalidPlan, where(at), t.Name, key)
	}

	related := d.schema.Table(r.RelatedTable)
	if related == nil {
		return nil, nil, fmt.Errorf("%w: %s: relationship %s.%s points at unknown table %q",
			ErrInvalidPlan, where(at), t.Name, r.Name, r.RelatedTable)
	}

	return r, related, nil
}

func (d *decoder) add(path mapping.Path, b *mapping.Binding) {
	d.paths = append(d.paths, mapping.MappedPath{Path: path, Binding: b})
}

func where(at mapping.Path) string {
	if len(at) == 0 {
		return "<base>"
	}

	return at.String()
}
