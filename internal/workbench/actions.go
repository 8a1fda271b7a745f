package workbench

import (
	"upload-mapper/internal/mapping"
	"upload-mapper/internal/uploadplan"
)

// Action is a user intent. The set of actions is closed.
type Action interface {
	action()
}

// SelectBaseTable starts mapping into Table. Every line is unmapped and the
// must-match set is cleared.
type SelectBaseTable struct {
	Table string
}

// AddColumn adds an empty column line.
type AddColumn struct {
	Header string
}

// AddStaticColumn adds a line carrying a literal value for every row.
type AddStaticColumn struct {
	Header string
	Value  string
}

// RemoveLine removes a line.
type RemoveLine struct {
	Line int
}

// FocusLine gives a line focus; edit.NoFocus clears it.
type FocusLine struct {
	Line int
}

// ChangeSelection picks Token in the picklist at depth Index of a line.
type ChangeSelection struct {
	Line  int
	Index int
	Token string
}

// ChangeOptions replaces the column options of a line.
type ChangeOptions struct {
	Line    int
	Options mapping.ColumnOptions
}

// ClearMapping unmaps a line.
type ClearMapping struct {
	Line int
}

// ToggleMustMatch flips the must-match flag of a table.
type ToggleMustMatch struct {
	Table string
}

// AutoMap runs the automapper over the unmapped column lines.
type AutoMap struct{}

// ResetMapping unmaps every line and clears the must-match set.
type ResetMapping struct{}

// LoadPlan replaces the mapping with a saved upload plan. Lines whose header
// the plan binds take the plan's path and options; the rest are unmapped.
// Plan bindings with no matching line become new lines.
type LoadPlan struct {
	Plan *uploadplan.Plan
}

func (SelectBaseTable) action() {}
func (AddColumn) action()       {}
func (AddStaticColumn) action() {}
func (RemoveLine) action()      {}
func (FocusLine) action()       {}
func (ChangeSelection) action() {}
func (ChangeOptions) action()   {}
func (ClearMapping) action()    {}
func (ToggleMustMatch) action() {}
func (AutoMap) action()         {}
func (ResetMapping) action()    {}
func (LoadPlan) action()        {}
