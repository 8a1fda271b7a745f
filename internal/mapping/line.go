package mapping

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// MatchBehavior controls how an empty or mismatching cell takes part in
// matching existing records during upload.
type MatchBehavior string

const (
	// MatchIgnoreNever always uses the cell when matching.
	MatchIgnoreNever MatchBehavior = "ignoreNever"
	// MatchIgnoreAlways never uses the cell when matching.
	MatchIgnoreAlways MatchBehavior = "ignoreAlways"
	// MatchIgnoreWhenBlank ignores the cell only when it is empty.
	MatchIgnoreWhenBlank MatchBehavior = "ignoreWhenBlank"
)

// IsValid returns true if the behavior is a recognized value.
func (m MatchBehavior) IsValid() bool {
	return m == MatchIgnoreNever || m == MatchIgnoreAlways || m == MatchIgnoreWhenBlank
}

// ColumnOptions are the per-column upload options.
type ColumnOptions struct {
	MatchBehavior MatchBehavior `json:"matchBehavior" yaml:"matchBehavior" validate:"required,oneof=ignoreNever ignoreAlways ignoreWhenBlank"`
	NullAllowed   bool          `json:"nullAllowed"   yaml:"nullAllowed"`
	Default       *string       `json:"default"       yaml:"default,omitempty"`
}

// DefaultColumnOptions returns the options given to freshly ingested columns.
func DefaultColumnOptions() ColumnOptions {
	return ColumnOptions{
		MatchBehavior: MatchIgnoreNever,
		NullAllowed:   true,
	}
}

// Equal compares options including the default value.
func (o ColumnOptions) Equal(other ColumnOptions) bool {
	if o.MatchBehavior != other.MatchBehavior || o.NullAllowed != other.NullAllowed {
		return false
	}

	if o.Default == nil || other.Default == nil {
		return o.Default == nil && other.Default == nil
	}

	return *o.Default == *other.Default
}

var optionsValidator = validator.New()

// Validate checks the options against their declared constraints.
func (o ColumnOptions) Validate() error {
	if err := optionsValidator.Struct(o); err != nil {
		return fmt.Errorf("invalid column options: %w", err)
	}

	return nil
}

// LineKind tells where a mapping line comes from.
type LineKind string

const (
	// LineColumn is a column of the ingested spreadsheet.
	LineColumn LineKind = "column"
	// LineNewColumn is an empty column added by the user.
	LineNewColumn LineKind = "newColumn"
	// LineStatic carries a literal value for every row instead of a column.
	LineStatic LineKind = "static"
)

// Line binds one spreadsheet header (or a synthetic column) to one Path.
type Line struct {
	ID      uuid.UUID     `json:"id"                yaml:"-"`
	Header  string        `json:"header"            yaml:"header"`
	Kind    LineKind      `json:"kind"              yaml:"kind,omitempty"`
	Value   string        `json:"value,omitempty"   yaml:"value,omitempty"`
	Path    Path          `json:"path"              yaml:"path"`
	Options ColumnOptions `json:"options"           yaml:"options,omitempty"`
}

// NewLine creates an unmapped column line for a header.
func NewLine(header string) Line {
	return Line{
		ID:      uuid.New(),
		Header:  header,
		Kind:    LineColumn,
		Path:    UnmappedPath(),
		Options: DefaultColumnOptions(),
	}
}

// NewStaticLine creates an unmapped line carrying a literal value.
func NewStaticLine(header, value string) Line {
	line := NewLine(header)
	line.Kind = LineStatic
	line.Value = value

	return line
}

// LinesFromHeaders creates one unmapped line per header, preserving order.
func LinesFromHeaders(headers []string) []Line {
	lines := make([]Line, 0, len(headers))
	for _, h := range headers {
		lines = append(lines, NewLine(h))
	}

	return lines
}

// Binding returns what a tree leaf holds for this line.
func (l Line) Binding() *Binding {
	b := &Binding{
		Header:  l.Header,
		Options: l.Options,
	}

	if l.Kind == LineStatic {
		b.Static = true
		b.Value = l.Value
	}

	return b
}

// IsMapped reports whether the line has a complete path.
func (l Line) IsMapped() bool {
	return l.Path.IsComplete()
}

// Clone returns a deep copy of the line.
func (l Line) Clone() Line {
	out := l
	out.Path = l.Path.Clone()

	if l.Options.Default != nil {
		def := *l.Options.Default
		out.Options.Default = &def
	}

	return out
}

// CloneLines deep-copies a slice of lines.
func CloneLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i := range lines {
		out[i] = lines[i].Clone()
	}

	return out
}

// Binding is the payload of a tree leaf: the column (or literal) feeding a field.
type Binding struct {
	Header  string
	Static  bool
	Value   string
	Options ColumnOptions
}

// Equal compares two bindings; nil bindings are equal only to nil.
func (b *Binding) Equal(other *Binding) bool {
	if b == nil || other == nil {
		return b == nil && other == nil
	}

	return b.Header == other.Header &&
		b.Static == other.Static &&
		b.Value == other.Value &&
		b.Options.Equal(other.Options)
}

// String returns a short description used in conflict messages.
func (b *Binding) String() string {
	switch {
	case b == nil:
		return "<unbound>"
	case b.Static:
		return fmt.Sprintf("static %q", b.Value)
	default:
		return fmt.Sprintf("column %q", b.Header)
	}
}

// LineFromBinding creates a line mapped to path that reproduces b.
func LineFromBinding(path Path, b *Binding) Line {
	line := NewLine("")
	line.Path = path.Clone()

	if b == nil {
		return line
	}

	line.Header = b.Header
	line.Options = b.Options

	if b.Static {
		line.Kind = LineStatic
		line.Value = b.Value
	}

	return line.Clone()
}
