package mapping

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	data := `
baseTable: CollectionObject
mustMatch: [preptype]
lines:
  - header: Catalog Number
    path: catalogNumber
  - header: Collector Last Name
    path: [collectingEvent, collectors, "#1", agent, lastName]
    options:
      matchBehavior: ignoreWhenBlank
  - header: Count
    kind: static
    value: "1"
    path: countAmt
  - header: Notes
  - header: Remarks
    path: remarks
    options:
      default: none
`

	s, err := Parse([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, SessionVersion, s.Version)
	assert.Equal(t, "CollectionObject", s.BaseTable)
	assert.Equal(t, []string{"preptype"}, s.MustMatch)
	require.Len(t, s.Lines, 5)

	assert.Equal(t, Path{"catalogNumber"}, s.Lines[0].Path)
	assert.Equal(t, LineColumn, s.Lines[0].Kind)
	assert.Equal(t, DefaultColumnOptions(), s.Lines[0].Options)

	assert.Equal(t, "collectingEvent.collectors.#1.agent.lastName", s.Lines[1].Path.String())
	assert.Equal(t, MatchIgnoreWhenBlank, s.Lines[1].Options.MatchBehavior)
	assert.True(t, s.Lines[1].Options.NullAllowed)

	assert.Equal(t, LineStatic, s.Lines[2].Kind)
	assert.Equal(t, "1", s.Lines[2].Value)

	assert.Equal(t, UnmappedPath(), s.Lines[3].Path)

	require.NotNil(t, s.Lines[4].Options.Default)
	assert.Equal(t, "none", *s.Lines[4].Options.Default)
	assert.Equal(t, MatchIgnoreNever, s.Lines[4].Options.MatchBehavior)

	seen := map[string]bool{}
	for _, l := range s.Lines {
		assert.False(t, seen[l.ID.String()])
		seen[l.ID.String()] = true
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "malformed yaml", data: "lines: [\n"},
		{name: "bad dotted path", data: "lines:\n  - header: a\n    path: a..b\n"},
		{name: "unmapped in the middle", data: "lines:\n  - header: a\n    path: [a, \"0\", b]\n"},
		{name: "path mapping", data: "lines:\n  - header: a\n    path: {a: b}\n"},
		{name: "bad match behavior", data: "lines:\n  - header: a\n    options:\n      matchBehavior: sometimes\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
		})
	}
}

func TestSessionFileRoundTrip(t *testing.T) {
	def := "n/a"

	lines := []Line{NewLine("Catalog Number"), NewStaticLine("Count", "1"), NewLine("Unused")}
	lines[0].Path = Path{"catalogNumber"}
	lines[0].Options.Default = &def
	lines[1].Path = Path{"countAmt"}

	in := &Session{
		Version:   SessionVersion,
		BaseTable: "CollectionObject",
		MustMatch: []string{"agent"},
		Lines:     lines,
	}

	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, WriteFile(in, path))

	out, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, in.BaseTable, out.BaseTable)
	assert.Equal(t, in.MustMatch, out.MustMatch)
	require.Len(t, out.Lines, len(in.Lines))

	for i := range in.Lines {
		assert.Equal(t, in.Lines[i].Header, out.Lines[i].Header)
		assert.Equal(t, in.Lines[i].Kind, out.Lines[i].Kind)
		assert.Equal(t, in.Lines[i].Value, out.Lines[i].Value)
		assert.Equal(t, in.Lines[i].Path, out.Lines[i].Path)
		assert.True(t, in.Lines[i].Options.Equal(out.Lines[i].Options))
	}

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
