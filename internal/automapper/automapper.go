package automapper

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"upload-mapper/internal/mapping"
	"upload-mapper/internal/match"
	"upload-mapper/internal/navigator"
)

// Mode selects between one path per header and a short-list per header.
type Mode int

const (
	// ModeFull picks one path per header, never the same path twice.
	ModeFull Mode = iota
	// ModeSuggestion ranks a few candidate paths per header without exclusivity.
	ModeSuggestion
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeSuggestion:
		return "suggestion"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// maxIndexRetries bounds the search for a free to-many index.
const maxIndexRetries = 64

// Request is one automapper run.
type Request struct {
	Headers   []string
	BaseTable string
	// StartPath restricts matching to fields below an already chosen prefix.
	StartPath mapping.Path
	Mode      Mode
	// IsMapped reports paths already used by other lines; may be nil.
	IsMapped func(mapping.Path) bool
	// AllowMultipleMappings overrides exclusivity in full mode.
	AllowMultipleMappings bool
	// CommitToCache lets the run store its traversal in the shared cache.
	CommitToCache bool
}

// Result is the outcome for one header.
type Result struct {
	Header string
	// Path is the chosen path, ["0"] when the automapper abstained.
	Path  mapping.Path
	Score match.Score
	// Ambiguous is set when another path scored (nearly) as well.
	Ambiguous bool
	// Suggestions are the ranked candidates in suggestion mode.
	Suggestions match.CandidateList
}

// Mapped reports whether the automapper chose a path.
func (r Result) Mapped() bool {
	return r.Path.IsComplete()
}

// Automapper guesses mapping paths for spreadsheet headers.
type Automapper struct {
	nav      *navigator.Navigator
	cfg      Config
	synonyms match.Synonyms
	cache    *Cache
	logger   *zap.Logger
	metrics  *Metrics
}

// New creates an Automapper over the navigator's schema.
func New(nav *navigator.Navigator, opts ...Option) *Automapper {
	a := &Automapper{
		nav:      nav,
		cfg:      DefaultConfig(),
		synonyms: match.DefaultSynonyms(),
		cache:    NewCache(),
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Cache returns the traversal cache.
func (a *Automapper) Cache() *Cache {
	return a.cache
}

// Automap maps every header from baseTable in full mode and commits the traversal to the cache.
func (a *Automapper) Automap(ctx context.Context, baseTable string, headers []string, isMapped func(mapping.Path) bool) ([]Result, error) {
	return a.Run(ctx, Request{
		Headers:       headers,
		BaseTable:     baseTable,
		Mode:          ModeFull,
		IsMapped:      isMapped,
		CommitToCache: true,
	})
}

// Suggest ranks candidate paths below start for one header. It never writes the cache.
func (a *Automapper) Suggest(ctx context.Context, baseTable string, start mapping.Path, header string) (match.CandidateList, error) {
	results, err := a.Run(ctx, Request{
		Headers:   []string{header},
		BaseTable: baseTable,
		StartPath: start,
		Mode:      ModeSuggestion,
	})
	if err != nil {
		return nil, err
	}

	return results[0].Suggestions, nil
}

// Run executes one request.
func (a *Automapper) Run(ctx context.Context, req Request) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	targets, err := a.targets(req.BaseTable, req.StartPath, req.CommitToCache)
	if err != nil {
		return nil, fmt.Errorf("automapper: %w", err)
	}

	taken := make(map[string]bool)

	results := make([]Result, len(req.Headers))
	for i, raw := range req.Headers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		h := match.NormalizeHeader(raw)
		results[i] = Result{Header: raw, Path: mapping.UnmappedPath()}

		if !h.IsEmpty() {
			switch req.Mode {
			case ModeSuggestion:
				a.suggest(&results[i], h, targets)
			default:
				a.pick(&results[i], h, targets, taken, req)
			}
		}

		a.metrics.result(req.Mode, results[i].Mapped())

		if !results[i].Mapped() {
			a.logger.Debug("automapper abstained",
				zap.String("header", raw),
				zap.Stringer("mode", req.Mode))

			continue
		}

		a.logger.Debug("automapper matched",
			zap.String("header", raw),
			zap.Stringer("path", results[i].Path),
			zap.Float64("score", results[i].Score.Value),
			zap.String("reason", results[i].Score.Reason))
	}

	return results, nil
}

// rank scores every target against h and keeps those reaching threshold.
// Candidate.Order indexes targets.
func rank(h match.Header, targets []target, threshold float64) match.CandidateList {
	var list match.CandidateList

	for i := range targets {
		s := match.ScoreHeader(h, targets[i].match)
		if s.Value <= 0 || s.Value < threshold {
			continue
		}

		list = append(list, match.Candidate{
			Path:  targets[i].path,
			Score: s,
			Depth: targets[i].depth,
			Order: i,
		})
	}

	return list.Rank()
}

func (a *Automapper) suggest(res *Result, h match.Header, targets []target) {
	res.Suggestions = rank(h, targets, a.cfg.SuggestionMinScore).Distinct().Top(a.cfg.SuggestionLimit)

	// Target paths are shared with the traversal cache.
	for i := range res.Suggestions {
		res.Suggestions[i].Path = res.Suggestions[i].Path.Clone()
	}

	if best := res.Suggestions.Best(); best != nil {
		res.Path = best.Path.Clone()
		res.Score = best.Score
		res.Ambiguous = res.Suggestions.IsAmbiguous(match.DefaultAmbiguityThreshold)
	}
}

func (a *Automapper) pick(res *Result, h match.Header, targets []target, taken map[string]bool, req Request) {
	candidates := rank(h, targets, a.cfg.MinScore)
	multiple := req.AllowMultipleMappings || a.cfg.AllowMultipleMappings

	isTaken := func(p mapping.Path) bool {
		if multiple {
			return false
		}

		return taken[p.Key()] || (req.IsMapped != nil && req.IsMapped(p))
	}

	for _, c := range candidates {
		path, ok := claim(targets[c.Order], h, isTaken)
		if !ok {
			continue
		}

		taken[path.Key()] = true
		res.Path = path
		res.Score = c.Score
		res.Ambiguous = candidates.IsAmbiguous(match.DefaultAmbiguityThreshold)

		return
	}
}

// claim applies the header's index hint to t and, when the resulting path is
// taken, moves on to the next free to-many index.
func claim(t target, h match.Header, isTaken func(mapping.Path) bool) (mapping.Path, bool) {
	path := t.path.Clone()

	if t.indexAt >= 0 && h.Index > 0 {
		path[t.indexAt] = mapping.FormatIndex(h.Index)
	}

	if !isTaken(path) {
		return path, true
	}

	if t.indexAt < 0 {
		return nil, false
	}

	n, _ := mapping.ParseIndex(path[t.indexAt])
	for range maxIndexRetries {
		n++
		path[t.indexAt] = mapping.FormatIndex(n)

		if !isTaken(path) {
			return path, true
		}
	}

	return nil, false
}
