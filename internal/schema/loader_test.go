package schema_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upload-mapper/internal/schema"
	"upload-mapper/internal/schema/schematest"
)

func TestLoadFile(t *testing.T) {
	s, err := schema.LoadFile(filepath.Join("testdata", "herbarium.yaml"))
	require.NoError(t, err)

	assert.Equal(t, []string{"CollectionObject", "Determination", "Taxon"}, s.TableNames())

	co := s.Table("collectionobject")
	require.NotNil(t, co)
	assert.Equal(t, "Collection Object", co.DisplayLabel())
	assert.Equal(t, []string{"Barcode"}, co.Field("CatalogNumber").Aliases)
	assert.Equal(t, "remarks", co.Field("remarks").DisplayLabel())

	dets := co.Relationship("determinations")
	require.NotNil(t, dets)
	assert.True(t, dets.IsToMany())
	assert.Equal(t, "determinations", dets.DisplayLabel())

	taxon := s.Table("Taxon")
	require.NotNil(t, taxon)
	assert.True(t, taxon.IsTree())
	assert.True(t, taxon.HasRank("Genus"))
	assert.False(t, taxon.HasRank("genus"))
	assert.True(t, taxon.Field("name").Required)

	_, err = schema.LoadFile(filepath.Join("testdata", "missing.yaml"))
	require.Error(t, err)
}

func TestParseJSON(t *testing.T) {
	s, err := schema.Parse([]byte(`{
		"tables": [
			{"name": "Agent", "fields": [{"name": "lastName", "label": "Last Name"}]}
		]
	}`))
	require.NoError(t, err)

	agent := s.Table("AGENT")
	require.NotNil(t, agent)
	assert.Equal(t, "Last Name", agent.Field("lastname").DisplayLabel())
	assert.False(t, agent.IsTree())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{name: "malformed", data: "tables: [", want: "failed to parse schema"},
		{name: "no tables", data: "tables: []", want: "invalid schema"},
		{name: "unnamed table", data: "tables:\n  - label: x\n", want: "invalid schema"},
		{
			name: "bad relationship type",
			data: "tables:\n  - name: A\n    relationships:\n      - {name: b, type: sideways, relatedTable: A}\n",
			want: "invalid schema",
		},
		{
			name: "unknown related table",
			data: "tables:\n  - name: A\n    relationships:\n      - {name: b, type: many-to-one, relatedTable: B}\n",
			want: `points at unknown table "B"`,
		},
		{
			name: "duplicate table",
			data: "tables:\n  - name: A\n  - name: a\n",
			want: `duplicate table "a"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.Parse([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	in := schematest.Museum()

	data, err := schema.Marshal(in)
	require.NoError(t, err)

	out, err := schema.Parse(data)
	require.NoError(t, err)

	require.Equal(t, in.TableNames(), out.TableNames())

	for _, name := range in.TableNames() {
		a, b := in.Table(name), out.Table(name)
		assert.Equal(t, a.Fields, b.Fields, name)
		assert.Equal(t, a.Relationships, b.Relationships, name)
		assert.Equal(t, a.Ranks, b.Ranks, name)
	}
}
