package navigator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upload-mapper/internal/mapping"
	"upload-mapper/internal/schema/schematest"
)

func findOption(t *testing.T, entry LineDataEntry, token string) LineOption {
	t.Helper()

	for _, o := range entry.Options {
		if o.Token == token {
			return o
		}
	}

	require.Failf(t, "option not found", "token %q in %v", token, entry.Options)

	return LineOption{}
}

func TestLineData(t *testing.T) {
	nav := New(schematest.Museum())

	path := mapping.Path{"collectingEvent", "collectors", "#1", "agent", "lastName"}
	tree := mustTree(t,
		path.String(),
		"collectingEvent.collectors.#1.agent.firstName",
		"catalogNumber",
	)

	entries, err := nav.LineData("CollectionObject", path, tree)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	assert.Equal(t, "CollectionObject", entries[0].Table)
	assert.Equal(t, "collectingEvent", entries[0].Selected)
	assert.Empty(t, entries[0].Prefix)

	catalog := findOption(t, entries[0], "catalogNumber")
	assert.True(t, catalog.AlreadyMapped)
	assert.False(t, catalog.Enabled)

	assert.Equal(t, IconRelationship, findOption(t, entries[0], "collectingEvent").Icon)
	assert.Equal(t, IconToMany, findOption(t, entries[0], "determinations").Icon)

	assert.Equal(t, []string{"#1", "add"}, tokensOf(entries[2]))
	assert.Equal(t, IconAdd, findOption(t, entries[2], "add").Icon)
	assert.True(t, findOption(t, entries[2], "#1").Selected)

	last := entries[4]
	assert.Equal(t, "Agent", last.Table)
	assert.Equal(t, path[:4], last.Prefix)

	lastName := findOption(t, last, "lastName")
	assert.True(t, lastName.Selected)
	assert.True(t, lastName.AlreadyMapped)
	assert.True(t, lastName.Enabled)

	firstName := findOption(t, last, "firstName")
	assert.True(t, firstName.AlreadyMapped)
	assert.False(t, firstName.Enabled)

	assert.True(t, findOption(t, last, "email").Enabled)
}

func TestLineDataIncompletePaths(t *testing.T) {
	nav := New(schematest.Museum())

	tests := []struct {
		name    string
		path    mapping.Path
		entries int
		table   string
	}{
		{name: "unmapped", path: mapping.UnmappedPath(), entries: 1, table: "CollectionObject"},
		{name: "relationship chosen", path: mapping.Path{"collectingEvent", "0"}, entries: 2, table: "CollectingEvent"},
		{name: "relationship without marker", path: mapping.Path{"collectingEvent"}, entries: 2, table: "CollectingEvent"},
		{name: "tree rank", path: mapping.Path{"determinations", "#1", "taxon", "0"}, entries: 4, table: "Taxon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := nav.LineData("CollectionObject", tt.path, nil)
			require.NoError(t, err)
			require.Len(t, entries, tt.entries)

			last := entries[len(entries)-1]
			assert.Equal(t, tt.table, last.Table)
			assert.Equal(t, mapping.Unmapped, last.Selected)
		})
	}
}

func TestLineDataTreeIcon(t *testing.T) {
	nav := New(schematest.Museum())

	entries, err := nav.LineData("CollectionObject", mapping.Path{"determinations", "#1", "0"}, nil)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, IconTree, findOption(t, entries[2], "taxon").Icon)
	assert.Equal(t, IconRelationship, findOption(t, entries[2], "determiner").Icon)
}

func TestLineDataInvalidPath(t *testing.T) {
	nav := New(schematest.Museum())

	_, err := nav.LineData("CollectionObject", mapping.Path{"nope", "x"}, nil)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestFilterOptions(t *testing.T) {
	nav := New(schematest.Museum())

	options, err := nav.Expand("CollectionObject", nil, nil)
	require.NoError(t, err)

	filtered := FilterOptions(options, "cat")
	got := tokens(filtered)

	require.NotEmpty(t, got)
	assert.Equal(t, "cataloger", got[0])
	assert.Contains(t, got, "catalogNumber")
	assert.Contains(t, got, "altCatalogNumber")
	assert.NotContains(t, got, "remarks")

	assert.Equal(t, tokens(options), tokens(FilterOptions(options, "  ")))
	assert.Empty(t, FilterOptions(options, "zzz"))
}

func TestFilterLineOptions(t *testing.T) {
	nav := New(schematest.Museum())

	entries, err := nav.LineData("CollectionObject", mapping.Path{"collectingEvent", "0"}, nil)
	require.NoError(t, err)

	filtered := FilterOptions(entries[1].Options, "field num")
	require.NotEmpty(t, filtered)
	assert.Equal(t, "stationFieldNumber", filtered[0].Token)
}

func tokensOf(entry LineDataEntry) []string {
	out := make([]string, len(entry.Options))
	for i, o := range entry.Options {
		out[i] = o.Token
	}

	return out
}
