// Package edit applies user edits to mapping paths.
//
// MutatePath decides what happens to the rest of a path when one of its
// tokens changes: the suffix survives when the new token leads to the same
// kind of place, otherwise the path is cut after the edited token.
// Deduplicate resolves lines that ended up on the same complete path.
package edit
