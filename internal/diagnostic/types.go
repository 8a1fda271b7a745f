package diagnostic

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"upload-mapper/internal/common"
)

// Diagnostic codes.
const (
	CodeInvalidPath        = "invalid_path"
	CodeIncompletePath     = "incomplete_path"
	CodeDuplicateMapping   = "duplicate_mapping"
	CodeMissingRequired    = "missing_required"
	CodeConflictingMapping = "conflicting_mapping"
)

// NoLine marks a diagnostic that is not about a single mapping line.
const NoLine = -1

// Diagnostics holds all diagnostic information from a check.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Line is the index of the mapping line, or NoLine.
	Line int
	// Path is the mapping path this relates to (if any).
	Path string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message string, line int, path string) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity: DiagnosticError,
		Code:     code,
		Message:  message,
		Line:     line,
		Path:     path,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message string, line int, path string) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity: DiagnosticWarning,
		Code:     code,
		Message:  message,
		Line:     line,
		Path:     path,
	})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message string, line int, path string) {
	d.Infos = append(d.Infos, Diagnostic{
		Severity: DiagnosticInfo,
		Code:     code,
		Message:  message,
		Line:     line,
		Path:     path,
	})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// All returns every diagnostic, most severe first, then by line.
func (d *Diagnostics) All() []Diagnostic {
	all := make([]Diagnostic, 0, len(d.Errors)+len(d.Warnings)+len(d.Infos))
	all = append(all, d.Errors...)
	all = append(all, d.Warnings...)
	all = append(all, d.Infos...)

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Severity != all[j].Severity {
			return all[i].Severity > all[j].Severity
		}

		return all[i].Line < all[j].Line
	})

	return all
}

// ForLine returns the diagnostics about one mapping line.
func (d *Diagnostics) ForLine(line int) []Diagnostic {
	var out []Diagnostic

	for _, diag := range d.All() {
		if diag.Line == line {
			out = append(out, diag)
		}
	}

	return out
}

// Codes returns the distinct codes present, in All order.
func (d *Diagnostics) Codes() []string {
	var (
		out  []string
		seen = make(map[string]bool)
	)

	for _, diag := range d.All() {
		if !seen[diag.Code] {
			seen[diag.Code] = true
			out = append(out, diag.Code)
		}
	}

	return out
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	var parts []string
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Line != NoLine {
		prefix = append(prefix, fmt.Sprintf("line %d", d.Line+1))
	}

	if d.Path != "" {
		prefix = append(prefix, d.Path)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
