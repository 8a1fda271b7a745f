package workbench

import (
	"slices"
	"strings"

	"upload-mapper/internal/edit"
	"upload-mapper/internal/mapping"
)

// State is one snapshot of a mapping session.
type State struct {
	BaseTable string
	Lines     []mapping.Line
	// MustMatch holds lowercase table names, sorted.
	MustMatch []string
	// Focused is the index of the line being edited, or edit.NoFocus.
	Focused int
}

// NewState starts a session for the spreadsheet headers. No base table is
// selected yet.
func NewState(headers []string) State {
	return State{
		Lines:   mapping.LinesFromHeaders(headers),
		Focused: edit.NoFocus,
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Lines = mapping.CloneLines(s.Lines)
	out.MustMatch = slices.Clone(s.MustMatch)

	return out
}

// IsMustMatch reports whether table is flagged must-match.
func (s State) IsMustMatch(table string) bool {
	_, found := slices.BinarySearch(s.MustMatch, strings.ToLower(table))

	return found
}

// isMappedExcept returns a predicate reporting whether a line other than
// skip holds a path.
func (s State) isMappedExcept(skip int) func(mapping.Path) bool {
	held := make(map[string]bool, len(s.Lines))

	for i := range s.Lines {
		if i != skip && s.Lines[i].IsMapped() {
			held[s.Lines[i].Path.Key()] = true
		}
	}

	return func(p mapping.Path) bool { return held[p.Key()] }
}

func (s State) hasLine(i int) bool {
	return i >= 0 && i < len(s.Lines)
}
