package mapping

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// SessionVersion is the current session file version.
const SessionVersion = "1"

// Session is a saved mapping in progress: the base table, the must-match
// tables and every line.
type Session struct {
	Version   string   `yaml:"version"`
	BaseTable string   `yaml:"baseTable"`
	MustMatch []string `yaml:"mustMatch,omitempty"`
	Lines     []Line   `yaml:"lines"`
}

// LoadFile loads and parses a YAML session file from the given path.
func LoadFile(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a Session.
func Parse(data []byte) (*Session, error) {
	var s Session

	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session YAML: %w", err)
	}

	applyDefaults(&s)

	for i := range s.Lines {
		if err := s.Lines[i].Options.Validate(); err != nil {
			return nil, fmt.Errorf("line %d (%q): %w", i+1, s.Lines[i].Header, err)
		}
	}

	return &s, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(s *Session) {
	if s.Version == "" {
		s.Version = SessionVersion
	}

	for i := range s.Lines {
		l := &s.Lines[i]

		l.ID = uuid.New()

		if l.Kind == "" {
			l.Kind = LineColumn
		}

		if len(l.Path) == 0 {
			l.Path = UnmappedPath()
		}

		if l.Options.MatchBehavior == "" {
			def := l.Options.Default
			l.Options = DefaultColumnOptions()
			l.Options.Default = def
		}
	}
}

// Marshal serializes a Session to YAML.
func Marshal(s *Session) ([]byte, error) {
	return yaml.Marshal(s)
}

// WriteFile writes a Session to the given path.
func WriteFile(s *Session, path string) error {
	data, err := Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write session file %s: %w", path, err)
	}

	return nil
}
