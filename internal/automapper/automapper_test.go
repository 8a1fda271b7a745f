package automapper

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"upload-mapper/internal/mapping"
	"upload-mapper/internal/match"
	"upload-mapper/internal/navigator"
	"upload-mapper/internal/schema/schematest"
)

func newTestAutomapper(t *testing.T, opts ...Option) *Automapper {
	t.Helper()

	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)

	return New(navigator.New(schematest.Museum()), opts...)
}

func resultPaths(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Path.String()
	}

	return out
}

func TestAutomapExample(t *testing.T) {
	a := newTestAutomapper(t)

	results, err := a.Automap(context.Background(), "CollectionObject",
		[]string{"Catalog Number", "Collector Last Name"}, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, mapping.Path{"catalogNumber"}, results[0].Path)
	assert.Equal(t, match.TierExact, results[0].Score.Tier)

	assert.Equal(t, mapping.Path{"collectingEvent", "collectors", "#1", "agent", "lastName"}, results[1].Path)
	assert.Equal(t, match.TierContextualExact, results[1].Score.Tier)
}

func TestAutomapHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    []string
	}{
		{
			name:    "shallowest exact match wins",
			headers: []string{"First Name", "Locality Name"},
			want:    []string{"cataloger.firstName", "collectingEvent.locality.localityName"},
		},
		{
			name:    "synonyms",
			headers: []string{"Date Collected", "Cat No", "Surname"},
			want:    []string{"collectingEvent.startDate", "catalogNumber", "cataloger.lastName"},
		},
		{
			name:    "tree ranks",
			headers: []string{"Species", "Genus", "Country", "Species Author"},
			want: []string{
				"determinations.#1.taxon.$Species.name",
				"determinations.#1.taxon.$Genus.name",
				"collectingEvent.locality.geography.$Country.name",
				"determinations.#1.taxon.$Species.author",
			},
		},
		{
			name:    "repeated to-many columns take the next index",
			headers: []string{"Collector Last Name", "Collector First Name", "Collector Last Name"},
			want: []string{
				"collectingEvent.collectors.#1.agent.lastName",
				"collectingEvent.collectors.#1.agent.firstName",
				"collectingEvent.collectors.#2.agent.lastName",
			},
		},
		{
			name:    "numeric index hints",
			headers: []string{"Collector 2 Last Name", "Collector 1 Last Name"},
			want: []string{
				"collectingEvent.collectors.#2.agent.lastName",
				"collectingEvent.collectors.#1.agent.lastName",
			},
		},
		{
			name:    "abstains",
			headers: []string{"Zzyzx", "", "Catalog Number", "Catalog Number"},
			want:    []string{"0", "0", "catalogNumber", "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAutomapper(t)

			results, err := a.Automap(context.Background(), "CollectionObject", tt.headers, nil)
			require.NoError(t, err)

			assert.Equal(t, tt.want, resultPaths(results))

			for i, r := range results {
				assert.Equal(t, tt.headers[i], r.Header)
			}
		})
	}
}

func TestAutomapAmbiguity(t *testing.T) {
	a := newTestAutomapper(t)

	results, err := a.Automap(context.Background(), "CollectionObject", []string{"Remarks", "Catalog Number"}, nil)
	require.NoError(t, err)

	assert.Equal(t, mapping.Path{"remarks"}, results[0].Path)
	assert.True(t, results[0].Ambiguous)
	assert.False(t, results[1].Ambiguous)
}

func TestAutomapRespectsExistingMappings(t *testing.T) {
	existing := mapping.Path{"catalogNumber"}
	isMapped := func(p mapping.Path) bool { return p.Equal(existing) }

	a := newTestAutomapper(t)

	results, err := a.Automap(context.Background(), "CollectionObject", []string{"Catalog Number"}, isMapped)
	require.NoError(t, err)
	assert.False(t, results[0].Mapped())

	results, err = a.Run(context.Background(), Request{
		Headers:               []string{"Catalog Number", "Catalog Number"},
		BaseTable:             "CollectionObject",
		IsMapped:              isMapped,
		AllowMultipleMappings: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"catalogNumber", "catalogNumber"}, resultPaths(results))
}

func TestAutomapExistingCollectorShiftsIndex(t *testing.T) {
	existing := mapping.Path{"collectingEvent", "collectors", "#1", "agent", "lastName"}

	a := newTestAutomapper(t)

	results, err := a.Automap(context.Background(), "CollectionObject",
		[]string{"Collector Last Name"}, func(p mapping.Path) bool { return p.Equal(existing) })
	require.NoError(t, err)

	assert.Equal(t, "collectingEvent.collectors.#2.agent.lastName", results[0].Path.String())
}

func TestAutomapThresholdFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinScore = 0.6

	a := newTestAutomapper(t, WithConfig(cfg))

	results, err := a.Automap(context.Background(), "CollectionObject", []string{"Station"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "collectingEvent.stationFieldNumber", results[0].Path.String())
	assert.Equal(t, match.TierSubstring, results[0].Score.Tier)

	strict := newTestAutomapper(t)

	results, err = strict.Automap(context.Background(), "CollectionObject", []string{"Station"}, nil)
	require.NoError(t, err)
	assert.False(t, results[0].Mapped())
}

func TestSuggest(t *testing.T) {
	a := newTestAutomapper(t)

	list, err := a.Suggest(context.Background(), "CollectionObject", nil, "Last Name")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"cataloger.lastName",
		"determinations.#1.determiner.lastName",
		"collectingEvent.collectors.#1.agent.lastName",
	}, candidatePaths(list))
}

func TestSuggestBelowPrefix(t *testing.T) {
	a := newTestAutomapper(t)

	start := mapping.Path{"collectingEvent", "0"}

	list, err := a.Suggest(context.Background(), "CollectionObject", start, "Last Name")
	require.NoError(t, err)
	require.NotEmpty(t, list)
	assert.LessOrEqual(t, len(list), match.DefaultSuggestionLimit)

	assert.Equal(t, "collectingEvent.collectors.#1.agent.lastName", list[0].Path.String())

	for _, c := range list {
		assert.True(t, c.Path.HasPrefix(mapping.Path{"collectingEvent"}), c.Path.String())
	}
}

func TestSuggestIgnoresExclusivity(t *testing.T) {
	a := newTestAutomapper(t)

	results, err := a.Run(context.Background(), Request{
		Headers:   []string{"Catalog Number", "Catalog Number"},
		BaseTable: "CollectionObject",
		Mode:      ModeSuggestion,
		IsMapped:  func(mapping.Path) bool { return true },
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"catalogNumber", "catalogNumber"}, resultPaths(results))
	assert.NotEmpty(t, results[0].Suggestions)
}

func TestSuggestAll(t *testing.T) {
	a := newTestAutomapper(t)

	queries := []SuggestQuery{
		{Header: "Last Name"},
		{Header: "Species"},
		{Header: "Last Name", Start: mapping.Path{"collectingEvent"}},
		{Header: "Start Date"},
	}

	got, err := a.SuggestAll(context.Background(), "CollectionObject", queries)
	require.NoError(t, err)
	require.Len(t, got, len(queries))

	for i, q := range queries {
		want, err := a.Suggest(context.Background(), "CollectionObject", q.Start, q.Header)
		require.NoError(t, err)
		assert.Equal(t, candidatePaths(want), candidatePaths(got[i]), q.Header)
	}

	_, err = a.SuggestAll(context.Background(), "Loan", queries)
	require.ErrorIs(t, err, navigator.ErrUnknownTable)
}

func TestRunErrors(t *testing.T) {
	a := newTestAutomapper(t)

	_, err := a.Automap(context.Background(), "Loan", []string{"x"}, nil)
	require.ErrorIs(t, err, navigator.ErrUnknownTable)

	_, err = a.Suggest(context.Background(), "CollectionObject", mapping.Path{"nope"}, "x")
	require.ErrorIs(t, err, navigator.ErrInvalidToken)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = a.Automap(ctx, "CollectionObject", []string{"Catalog Number"}, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestCacheCommit(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	a := newTestAutomapper(t, WithMetrics(metrics))

	_, err := a.Suggest(context.Background(), "CollectionObject", nil, "Remarks")
	require.NoError(t, err)
	assert.Equal(t, 0, a.Cache().Len())

	_, err = a.Automap(context.Background(), "CollectionObject", []string{"Remarks"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Cache().Len())

	_, err = a.Suggest(context.Background(), "CollectionObject", mapping.Path{"0"}, "Remarks")
	require.NoError(t, err)
	assert.Equal(t, 1, a.Cache().Len())

	assert.InDelta(t, 2, testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("miss")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("hit")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.results.WithLabelValues("suggestion", "mapped")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.results.WithLabelValues("full", "mapped")), 0)

	a.Cache().Clear()
	assert.Equal(t, 0, a.Cache().Len())
}

func TestSuggestionsDoNotShareCachedPaths(t *testing.T) {
	a := newTestAutomapper(t)
	ctx := context.Background()

	_, err := a.Automap(ctx, "CollectionObject", []string{"Remarks"}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, a.Cache().Len())

	list, err := a.Suggest(ctx, "CollectionObject", mapping.Path{"0"}, "Catalog Number")
	require.NoError(t, err)
	require.NotEmpty(t, list)
	require.Equal(t, "catalogNumber", list[0].Path.String())

	list[0].Path[0] = "remarks"

	list, err = a.Suggest(ctx, "CollectionObject", mapping.Path{"0"}, "Catalog Number")
	require.NoError(t, err)
	assert.Equal(t, "catalogNumber", list[0].Path.String())

	results, err := a.Automap(ctx, "CollectionObject", []string{"Catalog Number"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"catalogNumber"}, resultPaths(results))
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "full", ModeFull.String())
	assert.Equal(t, "suggestion", ModeSuggestion.String())
	assert.Equal(t, "Mode(7)", Mode(7).String())
}

func candidatePaths(list match.CandidateList) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = list[i].Path.String()
	}

	return out
}
