package mapping

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinesFromHeaders(t *testing.T) {
	lines := LinesFromHeaders([]string{"Catalog Number", "Collector Last Name"})
	require.Len(t, lines, 2)

	for i, l := range lines {
		assert.Equal(t, LineColumn, l.Kind)
		assert.Equal(t, UnmappedPath(), l.Path)
		assert.False(t, l.IsMapped())
		assert.Equal(t, DefaultColumnOptions(), l.Options)
		assert.NotEqual(t, uuid.Nil, l.ID, "line %d should get an id", i)
	}

	assert.NotEqual(t, lines[0].ID, lines[1].ID)
}

func TestColumnOptionsValidate(t *testing.T) {
	require.NoError(t, DefaultColumnOptions().Validate())

	bad := DefaultColumnOptions()
	bad.MatchBehavior = "sometimes"
	require.Error(t, bad.Validate())

	empty := ColumnOptions{}
	require.Error(t, empty.Validate())
}

func TestColumnOptionsEqual(t *testing.T) {
	a := "x"
	b := "x"
	c := "y"

	o1 := ColumnOptions{MatchBehavior: MatchIgnoreAlways, Default: &a}
	o2 := ColumnOptions{MatchBehavior: MatchIgnoreAlways, Default: &b}
	o3 := ColumnOptions{MatchBehavior: MatchIgnoreAlways, Default: &c}
	o4 := ColumnOptions{MatchBehavior: MatchIgnoreAlways}

	assert.True(t, o1.Equal(o2))
	assert.False(t, o1.Equal(o3))
	assert.False(t, o1.Equal(o4))
	assert.True(t, o4.Equal(ColumnOptions{MatchBehavior: MatchIgnoreAlways}))
}

func TestLineClone(t *testing.T) {
	def := "n/a"
	l := NewLine("Remarks")
	l.Path = Path{"remarks"}
	l.Options.Default = &def

	c := l.Clone()
	c.Path[0] = "text1"
	*c.Options.Default = "changed"

	assert.Equal(t, Path{"remarks"}, l.Path)
	assert.Equal(t, "n/a", *l.Options.Default)
}

func TestBindingString(t *testing.T) {
	var nilBinding *Binding

	assert.Equal(t, "<unbound>", nilBinding.String())
	assert.Equal(t, `column "A"`, (&Binding{Header: "A"}).String())
	assert.Equal(t, `static "v"`, (&Binding{Static: true, Value: "v"}).String())
}
