package match

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSynonyms(t *testing.T) {
	data := []byte(`
CollectionObject:
  catalogNumber: [Cat No, "Catalog #"]
"*":
  remarks: [Observations]
`)

	s, err := ParseSynonyms(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Cat No", "Catalog #"}, s.Lookup("collectionobject", "CATALOGNUMBER"))
	assert.Equal(t, []string{"Observations"}, s.Lookup("Locality", "remarks"))
	assert.Empty(t, s.Lookup("Agent", "lastName"))
}

func TestParseSynonymsInvalid(t *testing.T) {
	_, err := ParseSynonyms([]byte("collectionobject: [not, a, map]"))
	require.Error(t, err)
}

func TestSynonymsMerge(t *testing.T) {
	merged := DefaultSynonyms().Merge(Synonyms{
		"Agent": {"LastName": {"Family"}},
	})

	assert.Equal(t, []string{"Surname", "Family"}, merged.Lookup("agent", "lastName"))
	assert.Contains(t, merged.Lookup("Preparation", "remarks"), "Notes")

	// the receiver is not modified
	assert.Equal(t, []string{"Surname"}, DefaultSynonyms().Lookup("Agent", "lastName"))
}

func TestLoadSynonymsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synonyms.yaml")
	require.NoError(t, os.WriteFile(path, []byte("locality:\n  localityName: [Place]\n"), 0o600))

	s, err := LoadSynonymsFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Place"}, s.Lookup("Locality", "localityName"))

	_, err = LoadSynonymsFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
