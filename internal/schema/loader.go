package schema

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var structValidator = validator.New()

// LoadFile loads and parses a schema description (YAML or JSON) from the given path.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses a YAML (or JSON) schema description, validates it and indexes it.
func Parse(data []byte) (*Schema, error) {
	var s Schema

	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

// Marshal serializes a Schema to YAML.
func Marshal(s *Schema) ([]byte, error) {
	return yaml.Marshal(s)
}

// Validate checks the declared constraints and that every relationship
// points at a known table. It builds the lookup indexes if needed.
func (s *Schema) Validate() error {
	if err := structValidator.Struct(s); err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}

	s.ensureIndex()

	var errs []error

	seen := make(map[string]bool, len(s.Tables))
	for _, t := range s.Tables {
		key := strings.ToLower(t.Name)
		if seen[key] {
			errs = append(errs, fmt.Errorf("duplicate table %q", t.Name))
		}

		seen[key] = true

		for _, r := range t.Relationships {
			if s.Table(r.RelatedTable) == nil {
				errs = append(errs, fmt.Errorf("table %q: relationship %q points at unknown table %q",
					t.Name, r.Name, r.RelatedTable))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid schema: %w", errors.Join(errs...))
	}

	return nil
}
