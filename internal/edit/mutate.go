package edit

import (
	"errors"
	"fmt"
	"slices"

	"upload-mapper/internal/mapping"
	"upload-mapper/internal/navigator"
)

// ErrIndexOutOfRange is returned when an edit points past the end of its path.
var ErrIndexOutOfRange = errors.New("edit index out of range")

// Edit is a new token chosen in the picklist at Path[Index].
type Edit struct {
	Path     mapping.Path
	Index    int
	NewToken string
}

// MutatePath returns the path that results from e. tree is the current
// mapping, used to find the next free to-many index for "add".
//
//   - "add" becomes one past the highest index in use under the same prefix;
//     the suffix is kept.
//   - A token of the same kind as the old one that leads to the same table (or
//     is an index or a rank) only replaces Path[Index].
//   - Anything else cuts the path after Index, followed by "0" unless the new
//     token is a field.
func MutatePath(nav *navigator.Navigator, baseTable string, tree *mapping.Branch, e Edit) (mapping.Path, error) {
	if e.Index < 0 || e.Index >= len(e.Path) {
		return nil, fmt.Errorf("%w: %d for path %q", ErrIndexOutOfRange, e.Index, e.Path.String())
	}

	steps, pos, err := nav.Resolve(baseTable, e.Path[:e.Index])
	if err != nil {
		return nil, fmt.Errorf("edit: %w", err)
	}

	prefix := navigator.CanonicalPath(steps)

	if e.NewToken == mapping.Unmapped {
		return append(prefix, mapping.Unmapped), nil
	}

	if e.NewToken == mapping.AddIndex {
		return addIndex(pos, tree, prefix, e)
	}

	newStep, _, err := nav.Advance(pos, e.NewToken)
	if err != nil {
		return nil, fmt.Errorf("edit: %w", err)
	}

	if oldStep, _, err := nav.Advance(pos, e.Path[e.Index]); err == nil && sameShape(oldStep, newStep) {
		out := append(prefix, newStep.Canonical())
		out = append(out, e.Path[e.Index+1:]...)

		if canonical, err := nav.Canonicalize(baseTable, out); err == nil {
			out = canonical
		}

		return out, nil
	}

	out := append(prefix, newStep.Canonical())
	if !newStep.Kind.IsTerminal() {
		out = append(out, mapping.Unmapped)
	}

	return out, nil
}

func addIndex(pos navigator.Position, tree *mapping.Branch, prefix mapping.Path, e Edit) (mapping.Path, error) {
	if !pos.ExpectsIndex() {
		return nil, fmt.Errorf("edit: %w: %q where no to-many index is expected", navigator.ErrInvalidToken, mapping.AddIndex)
	}

	used := navigator.UsedIndices(mapping.Subtree(tree, prefix))
	if n, ok := mapping.ParseIndex(e.Path[e.Index]); ok {
		used = append(used, n)
	}

	next := 1
	if len(used) > 0 {
		next = slices.Max(used) + 1
	}

	out := append(prefix.Clone(), mapping.FormatIndex(next))
	out = append(out, e.Path[e.Index+1:]...)

	if e.Index == len(out)-1 {
		out = append(out, mapping.Unmapped)
	}

	return out, nil
}

// sameShape reports whether the suffix after the old token still makes sense
// after the new one.
func sameShape(old, updated navigator.Step) bool {
	if old.Kind != updated.Kind {
		return false
	}

	switch updated.Kind {
	case navigator.KindIndex, navigator.KindRank:
		return true
	case navigator.KindField:
		return old.Table == updated.Table
	default:
		return old.Target != nil && old.Target == updated.Target
	}
}
