package edit

import (
	"errors"
	"fmt"
	"slices"

	"upload-mapper/internal/common"
	"upload-mapper/internal/mapping"
)

// ErrLineNotFound is returned when the focused line does not exist.
var ErrLineNotFound = errors.New("line not found")

// NoFocus tells Deduplicate that no line has focus.
const NoFocus = -1

// Deduplicate returns a copy of lines in which no two lines hold the same
// complete path. Of each group sharing a path the focused line, or else the
// first, keeps it; the others get their last token replaced by "0".
func Deduplicate(lines []mapping.Line, focused int) ([]mapping.Line, error) {
	if focused < NoFocus || focused >= len(lines) {
		return nil, fmt.Errorf("%w: %d of %d", ErrLineNotFound, focused, len(lines))
	}

	out := mapping.CloneLines(lines)

	groups := common.IndexGroups(out, func(l mapping.Line) (string, bool) {
		return l.Path.Key(), l.IsMapped()
	})

	for _, held := range groups {
		if !common.IsMultiple(held) {
			continue
		}

		keep := held[0]
		if slices.Contains(held, focused) {
			keep = focused
		}

		for _, i := range held {
			if i != keep {
				out[i].Path = out[i].Path.WithLast(mapping.Unmapped)
			}
		}
	}

	return out, nil
}
