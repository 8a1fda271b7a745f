package match

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AnyTable is the synonyms key that applies to a field name in every table.
const AnyTable = "*"

// Synonyms maps table -> field -> alternative header spellings.
// Table and field keys are case-insensitive.
type Synonyms map[string]map[string][]string

// DefaultSynonyms returns the built-in synonyms for common collection headers.
func DefaultSynonyms() Synonyms {
	return Synonyms{
		AnyTable: {
			"remarks": {"Notes", "Note", "Comments", "Comment"},
		},
		"collectionobject": {
			"catalognumber": {"Cat No", "Catalog No", "Catalogue Number"},
		},
		"collectingevent": {
			"startdate":          {"Date Collected", "Collection Date", "Collecting Date"},
			"stationfieldnumber": {"Field No", "Station Number"},
		},
		"agent": {
			"lastname":  {"Surname"},
			"firstname": {"Given Name", "Forename"},
		},
		"locality": {
			"latitude1":  {"Decimal Latitude"},
			"longitude1": {"Decimal Longitude"},
		},
	}
}

// LoadSynonymsFile reads a synonyms YAML file.
func LoadSynonymsFile(path string) (Synonyms, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read synonyms file %s: %w", path, err)
	}

	return ParseSynonyms(data)
}

// ParseSynonyms parses synonyms YAML:
//
//	collectionobject:
//	  catalognumber: [Cat No, Catalog No]
//	"*":
//	  remarks: [Notes]
func ParseSynonyms(data []byte) (Synonyms, error) {
	var raw map[string]map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse synonyms: %w", err)
	}

	return Synonyms{}.Merge(raw), nil
}

// Merge returns a new table holding the synonyms of s and other.
func (s Synonyms) Merge(other Synonyms) Synonyms {
	out := make(Synonyms, len(s)+len(other))

	for _, src := range []Synonyms{s, other} {
		for table, fields := range src {
			tableKey := strings.ToLower(table)
			if out[tableKey] == nil {
				out[tableKey] = make(map[string][]string, len(fields))
			}

			for field, words := range fields {
				fieldKey := strings.ToLower(field)
				out[tableKey][fieldKey] = append(out[tableKey][fieldKey], words...)
			}
		}
	}

	return out
}

// Lookup returns the synonyms of table.field, including those declared for every table.
func (s Synonyms) Lookup(table, field string) []string {
	fieldKey := strings.ToLower(field)

	var out []string

	out = append(out, s[strings.ToLower(table)][fieldKey]...)
	out = append(out, s[AnyTable][fieldKey]...)

	return out
}
