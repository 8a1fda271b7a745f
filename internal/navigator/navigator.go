package navigator

import (
	"errors"
	"fmt"
	"sort"

	"upload-mapper/internal/mapping"
	"upload-mapper/internal/schema"
)

var (
	// ErrUnknownTable is returned when a base or related table is missing from the schema.
	ErrUnknownTable = errors.New("unknown table")
	// ErrInvalidToken is returned when a token cannot follow the current prefix.
	ErrInvalidToken = errors.New("invalid token")
)

type state int

const (
	stateTable state = iota
	stateToMany
	stateTree
	stateRank
	stateEnd
)

// Position is the place in the schema graph a path prefix leads to.
type Position struct {
	// Table is the current table.
	Table *schema.Table
	// Via is the relationship that led into Table; nil at the base table.
	Via *schema.Relationship
	// From owns Via.
	From *schema.Table

	state state
}

// ExpectsIndex reports whether the next token must be a to-many index.
func (p Position) ExpectsIndex() bool { return p.state == stateToMany }

// ExpectsRank reports whether the next token must be a tree rank.
func (p Position) ExpectsRank() bool { return p.state == stateTree }

// AtRank reports whether a rank has been chosen and tree fields follow.
func (p Position) AtRank() bool { return p.state == stateRank }

// Done reports whether the path ended on a field.
func (p Position) Done() bool { return p.state == stateEnd }

// Step describes how one token of a path resolved.
type Step struct {
	Token string
	Kind  Kind
	// Table owns the token.
	Table *schema.Table
	// Target is the table reached through a relationship, index or rank; nil for fields.
	Target       *schema.Table
	Field        *schema.Field
	Relationship *schema.Relationship
}

// Canonical returns the token as the schema spells it. Field and
// relationship names resolve case-insensitively, so "CatalogNumber" and
// "catalogNumber" share one canonical token.
func (s Step) Canonical() string {
	switch s.Kind {
	case KindField:
		return s.Field.Name
	case KindRelationship, KindToMany:
		return s.Relationship.Name
	default:
		return s.Token
	}
}

// Option is one legal next token after a prefix.
type Option struct {
	Token string
	Label string
	Kind  Kind
	// Table is the table the option leads into (empty for fields).
	Table    string
	Required bool
	Hidden   bool
	// IsTree is set when Table is a tree table.
	IsTree bool
}

func (o Option) searchKeys() (string, string) { return o.Label, o.Token }

// Navigator walks mapping paths through a schema.
type Navigator struct {
	schema *schema.Schema
}

// New creates a Navigator over s. The schema is treated as read-only.
func New(s *schema.Schema) *Navigator {
	return &Navigator{schema: s}
}

// Schema returns the schema the navigator walks.
func (n *Navigator) Schema() *schema.Schema {
	return n.schema
}

// Start returns the position at the base table.
func (n *Navigator) Start(baseTable string) (Position, error) {
	t := n.schema.Table(baseTable)
	if t == nil {
		return Position{}, fmt.Errorf("%w: %q", ErrUnknownTable, baseTable)
	}

	return enter(t, nil, nil), nil
}

func enter(t *schema.Table, via *schema.Relationship, from *schema.Table) Position {
	pos := Position{Table: t, Via: via, From: from, state: stateTable}
	if t.IsTree() {
		pos.state = stateTree
	}

	return pos
}

// Advance consumes one token at pos.
func (n *Navigator) Advance(pos Position, token string) (Step, Position, error) {
	step := Step{Token: token, Table: pos.Table}

	switch pos.state {
	case stateTable:
		if f := pos.Table.Field(token); f != nil {
			step.Kind = KindField
			step.Field = f

			return step, Position{Table: pos.Table, state: stateEnd}, nil
		}

		r := pos.Table.Relationship(token)
		if r == nil {
			return step, pos, fmt.Errorf("%w: %q is not a field or relationship of %s", ErrInvalidToken, token, pos.Table.Name)
		}

		target := n.schema.Table(r.RelatedTable)
		if target == nil {
			return step, pos, fmt.Errorf("%w: %q (via %s.%s)", ErrUnknownTable, r.RelatedTable, pos.Table.Name, r.Name)
		}

		if !mappable(r, target) {
			return step, pos, fmt.Errorf("%w: %q is a to-many relationship into tree %s", ErrInvalidToken, token, target.Name)
		}

		step.Relationship = r
		step.Target = target

		if r.IsToMany() {
			step.Kind = KindToMany

			return step, Position{Table: target, Via: r, From: pos.Table, state: stateToMany}, nil
		}

		step.Kind = KindRelationship

		return step, enter(target, r, pos.Table), nil
	case stateToMany:
		step.Target = pos.Table

		switch {
		case mapping.IsIndex(token):
			step.Kind = KindIndex
		case token == mapping.AddIndex:
			step.Kind = KindAddIndex
		default:
			return step, pos, fmt.Errorf("%w: %q where a to-many index of %s is expected", ErrInvalidToken, token, pos.Table.Name)
		}

		return step, enter(pos.Table, pos.Via, pos.From), nil
	case stateTree:
		if !mapping.IsRank(token) || !pos.Table.HasRank(mapping.RankName(token)) {
			return step, pos, fmt.Errorf("%w: %q is not a rank of %s", ErrInvalidToken, token, pos.Table.Name)
		}

		step.Kind = KindRank
		step.Target = pos.Table
		next := pos
		next.state = stateRank

		return step, next, nil
	case stateRank:
		f := pos.Table.Field(token)
		if f == nil {
			return step, pos, fmt.Errorf("%w: %q is not a field of tree %s", ErrInvalidToken, token, pos.Table.Name)
		}

		step.Kind = KindField
		step.Field = f

		return step, Position{Table: pos.Table, state: stateEnd}, nil
	default:
		return step, pos, fmt.Errorf("%w: %q after a field", ErrInvalidToken, token)
	}
}

// Resolve walks path from baseTable. A trailing "0" is ignored.
func (n *Navigator) Resolve(baseTable string, path mapping.Path) ([]Step, Position, error) {
	pos, err := n.Start(baseTable)
	if err != nil {
		return nil, Position{}, err
	}

	if len(path) > 0 && path.Last() == mapping.Unmapped {
		path = path[:len(path)-1]
	}

	steps := make([]Step, 0, len(path))

	for i, token := range path {
		step, next, err := n.Advance(pos, token)
		if err != nil {
			return steps, pos, fmt.Errorf("token %d of %q: %w", i, path.String(), err)
		}

		steps = append(steps, step)
		pos = next
	}

	return steps, pos, nil
}

// Canonicalize returns path with every token spelled the way the schema
// declares it. A trailing "0" is kept.
func (n *Navigator) Canonicalize(baseTable string, path mapping.Path) (mapping.Path, error) {
	steps, _, err := n.Resolve(baseTable, path)
	if err != nil {
		return nil, err
	}

	out := CanonicalPath(steps)
	if len(out) < len(path) {
		out = append(out, mapping.Unmapped)
	}

	return out, nil
}

// CanonicalPath joins the canonical tokens of steps.
func CanonicalPath(steps []Step) mapping.Path {
	out := make(mapping.Path, 0, len(steps)+1)
	for _, s := range steps {
		out = append(out, s.Canonical())
	}

	return out
}

// Expand lists the tokens that may follow prefix. tree is the current mapping
// tree and supplies the to-many indices already in use; it may be nil.
func (n *Navigator) Expand(baseTable string, prefix mapping.Path, tree *mapping.Branch) ([]Option, error) {
	_, pos, err := n.Resolve(baseTable, prefix)
	if err != nil {
		return nil, err
	}

	if len(prefix) > 0 && prefix.Last() == mapping.Unmapped {
		prefix = prefix[:len(prefix)-1]
	}

	return n.Options(pos, mapping.Subtree(tree, prefix)), nil
}

// Options lists the tokens legal at pos. existing is the part of the mapping
// tree below the prefix that led to pos.
func (n *Navigator) Options(pos Position, existing *mapping.Branch) []Option {
	switch pos.state {
	case stateTable:
		return n.tableOptions(pos.Table)
	case stateToMany:
		return indexOptions(pos.Table, existing)
	case stateTree:
		out := make([]Option, 0, len(pos.Table.Ranks))
		for _, rank := range pos.Table.Ranks {
			if rank == "" {
				continue
			}

			out = append(out, Option{
				Token:  mapping.FormatRank(rank),
				Label:  rank,
				Kind:   KindRank,
				Table:  pos.Table.Name,
				IsTree: true,
			})
		}

		return out
	case stateRank:
		return fieldOptions(pos.Table)
	default:
		return nil
	}
}

func fieldOptions(t *schema.Table) []Option {
	out := make([]Option, 0, len(t.Fields))

	for i := range t.Fields {
		f := &t.Fields[i]
		if f.Name == "" {
			continue
		}

		out = append(out, Option{
			Token:    f.Name,
			Label:    f.DisplayLabel(),
			Kind:     KindField,
			Required: f.Required,
			Hidden:   f.Hidden,
		})
	}

	return out
}

func (n *Navigator) tableOptions(t *schema.Table) []Option {
	out := fieldOptions(t)

	for i := range t.Relationships {
		r := &t.Relationships[i]

		target := n.schema.Table(r.RelatedTable)
		if r.Name == "" || target == nil || !mappable(r, target) {
			continue
		}

		kind := KindRelationship
		if r.IsToMany() {
			kind = KindToMany
		}

		out = append(out, Option{
			Token:    r.Name,
			Label:    r.DisplayLabel(),
			Kind:     kind,
			Table:    target.Name,
			Required: r.Required,
			Hidden:   r.Hidden,
			IsTree:   target.IsTree(),
		})
	}

	return out
}

// mappable reports whether paths through r can be uploaded. Tree tables are
// only reachable through to-one relationships.
func mappable(r *schema.Relationship, target *schema.Table) bool {
	return !r.IsToMany() || !target.IsTree()
}

func indexOptions(t *schema.Table, existing *mapping.Branch) []Option {
	indices := UsedIndices(existing)
	if len(indices) == 0 {
		indices = []int{1}
	}

	out := make([]Option, 0, len(indices)+1)
	for _, i := range indices {
		out = append(out, Option{
			Token:  mapping.FormatIndex(i),
			Label:  mapping.FormatIndex(i),
			Kind:   KindIndex,
			Table:  t.Name,
			IsTree: t.IsTree(),
		})
	}

	return append(out, Option{
		Token:  mapping.AddIndex,
		Label:  "Add",
		Kind:   KindAddIndex,
		Table:  t.Name,
		IsTree: t.IsTree(),
	})
}

// UsedIndices returns the to-many indices present as keys of b, ascending.
func UsedIndices(b *mapping.Branch) []int {
	var out []int

	for _, key := range b.Keys() {
		if i, ok := mapping.ParseIndex(key); ok {
			out = append(out, i)
		}
	}

	sort.Ints(out)

	return out
}
