// Package workbench holds the state of a mapping session and the actions
// that change it.
//
// State is a value; Reduce applies one Action and returns the next State
// without touching the previous one. Action is a closed set of types, and
// Reduce rejects anything it does not know with ErrUnknownAction.
package workbench
