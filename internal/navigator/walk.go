package navigator

import (
	"strings"

	"upload-mapper/internal/mapping"
	"upload-mapper/internal/schema"
)

// Default traversal budgets.
const (
	DefaultMaxDepth = 4
	DefaultMaxNodes = 5000
)

// WalkOptions bounds a traversal.
type WalkOptions struct {
	// MaxDepth is the number of relationship hops a branch may take.
	MaxDepth int
	// MaxNodes caps the number of fields and relationships visited overall; 0 means unlimited.
	MaxNodes int
	// IncludeHidden also walks hidden fields and relationships.
	IncludeHidden bool
}

// DefaultWalkOptions returns the default traversal budgets.
func DefaultWalkOptions() WalkOptions {
	return WalkOptions{MaxDepth: DefaultMaxDepth, MaxNodes: DefaultMaxNodes}
}

// Visit is one field reached by Walk.
type Visit struct {
	// Path is the complete path to the field, including the start prefix.
	Path mapping.Path
	// Steps resolves every token of Path.
	Steps []Step
	Field *schema.Field
	Table *schema.Table
	// Depth counts the relationship hops taken after the start prefix.
	Depth int
	// Order is the position of the visit in traversal order.
	Order int
}

// WalkStats summarizes a traversal.
type WalkStats struct {
	Visited   int
	Truncated bool
}

// Trail holds the tables entered on the current branch since the last
// to-many index or tree rank. It is copied, never shared, between branches.
type Trail struct {
	tables []string
}

// NewTrail starts a trail at table.
func NewTrail(table string) Trail {
	return Trail{tables: []string{strings.ToLower(table)}}
}

// With returns a new trail extended by table.
func (t Trail) With(table string) Trail {
	out := make([]string, len(t.tables), len(t.tables)+1)
	copy(out, t.tables)

	return Trail{tables: append(out, strings.ToLower(table))}
}

// Contains reports whether table is already on the trail.
func (t Trail) Contains(table string) bool {
	key := strings.ToLower(table)
	for _, name := range t.tables {
		if name == key {
			return true
		}
	}

	return false
}

// Len returns the number of tables on the trail.
func (t Trail) Len() int {
	return len(t.tables)
}

// Walk visits every field reachable from start (a prefix under baseTable)
// depth-first, in declaration order. A branch stops when it would exceed
// MaxDepth hops, re-enter a table already on its Trail, or walk back over
// the reverse side of the relationship it just came through. To-many
// relationships are entered at index #1, tree tables at every rank.
func (n *Navigator) Walk(baseTable string, start mapping.Path, opts WalkOptions, fn func(Visit)) (WalkStats, error) {
	steps, pos, err := n.Resolve(baseTable, start)
	if err != nil {
		return WalkStats{}, err
	}

	prefix := mapping.Path{}
	for _, s := range steps {
		prefix = append(prefix, s.Token)
	}

	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}

	w := &walker{nav: n, opts: opts, fn: fn}

	if pos.Done() {
		return w.stats, nil
	}

	w.walk(pos, prefix, steps, 0, NewTrail(pos.Table.Name))

	return w.stats, nil
}

type walker struct {
	nav   *Navigator
	opts  WalkOptions
	fn    func(Visit)
	stats WalkStats
	order int
}

// tick accounts for one visited node and reports whether the budget allows it.
func (w *walker) tick() bool {
	if w.opts.MaxNodes > 0 && w.stats.Visited >= w.opts.MaxNodes {
		w.stats.Truncated = true

		return false
	}

	w.stats.Visited++

	return true
}

func (w *walker) walk(pos Position, path mapping.Path, steps []Step, depth int, trail Trail) {
	if w.stats.Truncated {
		return
	}

	switch pos.state {
	case stateToMany:
		w.descend(pos, mapping.FormatIndex(1), path, steps, depth, NewTrail(pos.Table.Name))

		return
	case stateTree:
		for _, rank := range pos.Table.Ranks {
			if rank == "" {
				continue
			}

			w.descend(pos, mapping.FormatRank(rank), path, steps, depth, NewTrail(pos.Table.Name))
		}

		return
	case stateTable, stateRank:
	default:
		return
	}

	for i := range pos.Table.Fields {
		f := &pos.Table.Fields[i]
		if f.Name == "" || (f.Hidden && !w.opts.IncludeHidden) {
			continue
		}

		if !w.tick() {
			return
		}

		step, _, err := w.nav.Advance(pos, f.Name)
		if err != nil {
			continue
		}

		w.fn(Visit{
			Path:  append(path.Clone(), f.Name),
			Steps: appendStep(steps, step),
			Field: f,
			Table: pos.Table,
			Depth: depth,
			Order: w.order,
		})
		w.order++
	}

	if pos.state == stateRank || depth >= w.opts.MaxDepth {
		return
	}

	for i := range pos.Table.Relationships {
		r := &pos.Table.Relationships[i]
		if r.Name == "" || (r.Hidden && !w.opts.IncludeHidden) || isReverse(pos, r) {
			continue
		}

		target := w.nav.schema.Table(r.RelatedTable)
		if target == nil || !mappable(r, target) || trail.Contains(target.Name) {
			continue
		}

		if !w.tick() {
			return
		}

		step, next, err := w.nav.Advance(pos, r.Name)
		if err != nil {
			continue
		}

		w.walk(next, append(path.Clone(), r.Name), appendStep(steps, step), depth+1, trail.With(target.Name))
	}
}

// descend follows an index or rank token, which resets the trail.
func (w *walker) descend(pos Position, token string, path mapping.Path, steps []Step, depth int, trail Trail) {
	step, next, err := w.nav.Advance(pos, token)
	if err != nil {
		return
	}

	w.walk(next, append(path.Clone(), token), appendStep(steps, step), depth, trail)
}

// isReverse reports whether r walks straight back over pos.Via.
func isReverse(pos Position, r *schema.Relationship) bool {
	if pos.Via == nil || pos.From == nil || !strings.EqualFold(r.RelatedTable, pos.From.Name) {
		return false
	}

	return (pos.Via.OtherSideName != "" && strings.EqualFold(pos.Via.OtherSideName, r.Name)) ||
		(r.OtherSideName != "" && strings.EqualFold(r.OtherSideName, pos.Via.Name))
}

func appendStep(steps []Step, step Step) []Step {
	out := make([]Step, len(steps), len(steps)+1)
	copy(out, steps)

	return append(out, step)
}
