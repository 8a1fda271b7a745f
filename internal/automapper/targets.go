package automapper

import (
	"strings"

	"go.uber.org/zap"

	"upload-mapper/internal/mapping"
	"upload-mapper/internal/match"
	"upload-mapper/internal/navigator"
	"upload-mapper/internal/schema"
)

// target is a field reachable from the traversal start, ready for scoring.
type target struct {
	path  mapping.Path
	depth int
	// indexAt is the position of the last to-many index after the start prefix, -1 if none.
	indexAt int
	match   match.Target
}

// targets returns the scored-ready traversal for (baseTable, start), via the cache.
func (a *Automapper) targets(baseTable string, start mapping.Path, commit bool) ([]target, error) {
	steps, pos, err := a.nav.Resolve(baseTable, start)
	if err != nil {
		return nil, err
	}

	prefix := make(mapping.Path, 0, len(steps))
	for _, s := range steps {
		prefix = append(prefix, s.Token)
	}

	key := CacheKey{
		BaseTable:  strings.ToLower(baseTable),
		StartTable: pos.Table.Name,
		Prefix:     prefix.String(),
		MaxDepth:   a.cfg.MaxDepth,
		MaxNodes:   a.cfg.MaxNodes,
	}

	targets, hit, err := a.cache.load(key, commit, func() ([]target, error) {
		return a.traverse(baseTable, prefix)
	})
	if err != nil {
		return nil, err
	}

	a.metrics.cacheLookup(hit)

	return targets, nil
}

func (a *Automapper) traverse(baseTable string, prefix mapping.Path) ([]target, error) {
	var out []target

	opts := navigator.WalkOptions{MaxDepth: a.cfg.MaxDepth, MaxNodes: a.cfg.MaxNodes}

	stats, err := a.nav.Walk(baseTable, prefix, opts, func(v navigator.Visit) {
		out = append(out, a.newTarget(v, len(prefix)))
	})
	if err != nil {
		return nil, err
	}

	a.metrics.traversal(stats.Visited)

	if stats.Truncated {
		a.logger.Warn("schema traversal truncated",
			zap.String("base_table", baseTable),
			zap.String("prefix", prefix.String()),
			zap.Int("max_nodes", a.cfg.MaxNodes))
	}

	a.logger.Debug("schema traversal",
		zap.String("base_table", baseTable),
		zap.String("prefix", prefix.String()),
		zap.Int("visited", stats.Visited),
		zap.Int("targets", len(out)))

	return out, nil
}

func (a *Automapper) newTarget(v navigator.Visit, startLen int) target {
	t := target{path: v.Path, depth: v.Depth, indexAt: -1}

	var (
		context []string
		rank    string
	)

	for i, s := range v.Steps[:len(v.Steps)-1] {
		switch s.Kind {
		case navigator.KindRelationship, navigator.KindToMany:
			context = append(context, s.Relationship.Name, s.Relationship.Label)
			context = append(context, s.Relationship.Aliases...)
			context = append(context, s.Target.Name, s.Target.Label)
			context = append(context, s.Target.Aliases...)
		case navigator.KindIndex, navigator.KindAddIndex:
			if i >= startLen {
				t.indexAt = i
			}
		case navigator.KindRank:
			rank = mapping.RankName(s.Token)
			context = append(context, rank)
		case navigator.KindField:
		}
	}

	f := v.Field

	aliases := append([]string{}, f.Aliases...)
	aliases = append(aliases, a.synonyms.Lookup(v.Table.Name, f.Name)...)

	t.match = match.NewTarget([]string{f.Name, f.Label}, aliases, context)

	if rank != "" {
		t.match.Rank = match.NormalizeIdent(rank)
		t.match.Primary = isPrimary(v.Table, f)
	}

	return t
}

// isPrimary reports whether f is the field a bare rank header names: "name"
// when the tree has one, else its first field.
func isPrimary(t *schema.Table, f *schema.Field) bool {
	if named := t.Field("name"); named != nil {
		return named == f
	}

	return len(t.Fields) > 0 && &t.Fields[0] == f
}
