package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSliceHelpers(t *testing.T) {
	assert.True(t, IsEmpty([]int(nil)))
	assert.True(t, IsSingle([]string{"a"}))
	assert.True(t, IsMultiple([]int{1, 2}))
	assert.False(t, IsMultiple([]int{1}))

	first, ok := First([]string{"x", "y"})
	assert.True(t, ok)
	assert.Equal(t, "x", first)

	_, ok = First([]string{})
	assert.False(t, ok)
}

func TestIndexGroups(t *testing.T) {
	words := []string{"Agent", "taxon", "", "agent", "Taxon", "locality"}

	groups := IndexGroups(words, func(w string) (string, bool) {
		return strings.ToLower(w), w != ""
	})

	assert.Equal(t, map[string][]int{
		"agent":    {0, 3},
		"taxon":    {1, 4},
		"locality": {5},
	}, groups)

	assert.Empty(t, IndexGroups([]string(nil), func(w string) (string, bool) { return w, true }))
}
