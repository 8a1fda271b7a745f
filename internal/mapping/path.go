package mapping

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// Unmapped is the sentinel token meaning "no field chosen here".
	// It is only valid as the final token of a path.
	Unmapped = "0"
	// AddIndex is the to-many "create new index" affordance.
	AddIndex = "add"

	indexPrefix = "#"
	rankPrefix  = "$"

	// PathSeparator separates tokens in the text form of a path.
	PathSeparator = "."
)

// Path is an ordered sequence of tokens addressing a position in the schema graph.
type Path []string

// UnmappedPath returns the path of a line that has no mapping yet.
func UnmappedPath() Path {
	return Path{Unmapped}
}

// IsIndex reports whether the token is a to-many index such as "#2".
func IsIndex(token string) bool {
	_, ok := ParseIndex(token)
	return ok
}

// ParseIndex returns n for a "#n" token. Only the canonical spelling is
// accepted: no sign and no leading zeros.
func ParseIndex(token string) (int, bool) {
	if !strings.HasPrefix(token, indexPrefix) {
		return 0, false
	}

	n, err := strconv.Atoi(token[len(indexPrefix):])
	if err != nil || n < 1 || FormatIndex(n) != token {
		return 0, false
	}

	return n, true
}

// FormatIndex builds the "#n" token.
func FormatIndex(n int) string {
	return indexPrefix + strconv.Itoa(n)
}

// IsRank reports whether the token is a tree rank such as "$Species".
func IsRank(token string) bool {
	return len(token) > len(rankPrefix) && strings.HasPrefix(token, rankPrefix)
}

// FormatRank builds the "$Name" token.
func FormatRank(name string) string {
	return rankPrefix + name
}

// RankName strips the rank prefix. Non-rank tokens are returned unchanged.
func RankName(token string) string {
	if !IsRank(token) {
		return token
	}

	return token[len(rankPrefix):]
}

// IsComplete reports whether the path ends in an actual field.
func (p Path) IsComplete() bool {
	return len(p) > 0 && p[len(p)-1] != Unmapped
}

// Clone returns a copy that shares no storage with p.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}

	return append(Path{}, p...)
}

// Equal compares two paths token by token.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}

	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}

	return true
}

// HasPrefix reports whether prefix is a leading sub-sequence of p.
func (p Path) HasPrefix(prefix Path) bool {
	return len(prefix) <= len(p) && p[:len(prefix)].Equal(prefix)
}

// Key returns a string usable as a map key.
func (p Path) Key() string {
	return strings.Join(p, "\x00")
}

// String returns the dotted text form, e.g. "collectingEvent.collectors.#1.agent".
func (p Path) String() string {
	return strings.Join(p, PathSeparator)
}

// Last returns the final token, or "" for an empty path.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}

	return p[len(p)-1]
}

// WithLast returns a copy of p with the final token replaced.
func (p Path) WithLast(token string) Path {
	if len(p) == 0 {
		return Path{token}
	}

	out := p.Clone()
	out[len(out)-1] = token

	return out
}

// ParsePath parses the dotted text form of a path.
// Supports: "catalogNumber", "collectingEvent.locality.localityName",
// "determinations.#1.taxon.$Species.name" and "collectingEvent.0".
func ParsePath(text string) (Path, error) {
	if text == "" {
		return nil, errors.New("empty path")
	}

	var path Path

	parts := strings.Split(text, PathSeparator)
	for i, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("invalid path %q: empty token", text)
		}

		if err := validateToken(part, i == len(parts)-1); err != nil {
			return nil, fmt.Errorf("invalid path %q: %w", text, err)
		}

		path = append(path, part)
	}

	return path, nil
}

// validateToken checks the token grammar only; schema resolution is the navigator's job.
func validateToken(token string, last bool) error {
	switch {
	case token == Unmapped:
		if !last {
			return errors.New("unmapped marker must be the last token")
		}

		return nil
	case strings.HasPrefix(token, indexPrefix):
		if !IsIndex(token) {
			return fmt.Errorf("invalid to-many index %q", token)
		}

		return nil
	case strings.HasPrefix(token, rankPrefix):
		if !IsRank(token) {
			return fmt.Errorf("invalid tree rank %q", token)
		}

		return nil
	}

	if !isValidIdent(token) {
		return fmt.Errorf("invalid identifier %q", token)
	}

	return nil
}

// isValidIdent checks if a string is a valid schema identifier.
func isValidIdent(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			// First character must be letter or underscore
			if !isLetter(r) && r != '_' {
				return false
			}
		} else {
			// Subsequent characters can be letter, digit, or underscore
			if !isLetter(r) && !isDigit(r) && r != '_' {
				return false
			}
		}
	}

	return true
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
