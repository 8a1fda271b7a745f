package automapper

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"upload-mapper/internal/mapping"
	"upload-mapper/internal/match"
)

// SuggestQuery is one open picklist asking for suggestions.
type SuggestQuery struct {
	Header string
	// Start is the prefix already chosen in the picklist.
	Start mapping.Path
}

// SuggestAll runs Suggest for several picklists concurrently. The result at
// index i answers queries[i].
func (a *Automapper) SuggestAll(ctx context.Context, baseTable string, queries []SuggestQuery) ([]match.CandidateList, error) {
	out := make([]match.CandidateList, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, q := range queries {
		g.Go(func() error {
			list, err := a.Suggest(gctx, baseTable, q.Start, q.Header)
			if err != nil {
				return err
			}

			out[i] = list

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}
