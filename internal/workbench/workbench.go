package workbench

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"upload-mapper/internal/automapper"
	"upload-mapper/internal/diagnostic"
	"upload-mapper/internal/edit"
	"upload-mapper/internal/mapping"
	"upload-mapper/internal/navigator"
	"upload-mapper/internal/uploadplan"
	"upload-mapper/internal/validation"
)

var (
	// ErrUnknownAction is returned by Reduce for an action it does not handle.
	ErrUnknownAction = errors.New("unknown action")
	// ErrNoBaseTable is returned when an action needs a base table and none is selected.
	ErrNoBaseTable = errors.New("no base table selected")
	// ErrMissingRequired is returned by Plan when required fields are not mapped.
	ErrMissingRequired = errors.New("required fields are not mapped")
)

// MissingRequiredError lists the paths that must be mapped before a plan can
// be built.
type MissingRequiredError struct {
	Paths []mapping.Path
}

// Error implements the error interface.
func (e *MissingRequiredError) Error() string {
	parts := make([]string, len(e.Paths))
	for i, p := range e.Paths {
		parts[i] = p.String()
	}

	return fmt.Sprintf("%s: %s", ErrMissingRequired, strings.Join(parts, ", "))
}

// Is matches ErrMissingRequired.
func (e *MissingRequiredError) Is(target error) bool {
	return target == ErrMissingRequired
}

// Workbench applies actions to mapping sessions over one schema.
type Workbench struct {
	nav        *navigator.Navigator
	automapper *automapper.Automapper
	logger     *zap.Logger
}

// Option configures a Workbench.
type Option func(*Workbench)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(w *Workbench) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithAutomapper sets the automapper used by AutoMap. By default one is
// created over the same navigator.
func WithAutomapper(a *automapper.Automapper) Option {
	return func(w *Workbench) {
		w.automapper = a
	}
}

// New creates a Workbench.
func New(nav *navigator.Navigator, opts ...Option) *Workbench {
	w := &Workbench{nav: nav, logger: zap.NewNop()}

	for _, opt := range opts {
		opt(w)
	}

	if w.automapper == nil {
		w.automapper = automapper.New(nav, automapper.WithLogger(w.logger))
	}

	return w
}

// Reduce applies a to s and returns the next state. s is not modified.
func (w *Workbench) Reduce(ctx context.Context, s State, a Action) (State, error) {
	next := s.Clone()

	var err error

	switch a := a.(type) {
	case SelectBaseTable:
		next, err = w.selectBaseTable(next, a)
	case AddColumn:
		next.Lines = append(next.Lines, newColumn(a.Header))
	case AddStaticColumn:
		next.Lines = append(next.Lines, mapping.NewStaticLine(a.Header, a.Value))
	case RemoveLine:
		next, err = removeLine(next, a.Line)
	case FocusLine:
		if a.Line != edit.NoFocus && !next.hasLine(a.Line) {
			return s, lineNotFound(a.Line, next)
		}

		next.Focused = a.Line
	case ChangeSelection:
		next, err = w.changeSelection(next, a)
	case ChangeOptions:
		next, err = changeOptions(next, a)
	case ClearMapping:
		if !next.hasLine(a.Line) {
			return s, lineNotFound(a.Line, next)
		}

		next.Lines[a.Line].Path = mapping.UnmappedPath()
	case ToggleMustMatch:
		next, err = w.toggleMustMatch(next, a.Table)
	case AutoMap:
		next, err = w.autoMap(ctx, next)
	case ResetMapping:
		next = reset(next)
	case LoadPlan:
		next, err = w.loadPlan(next, a)
	default:
		return s, fmt.Errorf("%w: %T", ErrUnknownAction, a)
	}

	if err != nil {
		return s, err
	}

	w.logger.Debug("workbench action applied",
		zap.String("action", fmt.Sprintf("%T", a)),
		zap.String("base_table", next.BaseTable),
		zap.Int("lines", len(next.Lines)))

	return next, nil
}

// Plan builds the upload plan for s. It fails with ErrMissingRequired while
// required fields are unmapped.
func (w *Workbench) Plan(s State) (*uploadplan.Plan, error) {
	if s.BaseTable == "" {
		return nil, ErrNoBaseTable
	}

	tree, err := mapping.LinesToTree(w.canonicalLines(s))
	if err != nil {
		return nil, err
	}

	missing, err := validation.FindMissingRequired(w.nav.Schema(), s.BaseTable, tree, s.MustMatch)
	if err != nil {
		return nil, err
	}

	if len(missing) > 0 {
		return nil, &MissingRequiredError{Paths: missing}
	}

	return uploadplan.TreeToPlan(w.nav.Schema(), s.BaseTable, tree, s.MustMatch)
}

// Check reports the problems of the current lines.
func (w *Workbench) Check(s State) *diagnostic.Diagnostics {
	if s.BaseTable == "" {
		d := &diagnostic.Diagnostics{}
		d.AddError(diagnostic.CodeInvalidPath, ErrNoBaseTable.Error(), diagnostic.NoLine, "")

		return d
	}

	return validation.CheckLines(w.nav, s.BaseTable, s.Lines, s.MustMatch)
}

// LineData returns the picklists of one line.
func (w *Workbench) LineData(s State, line int) ([]navigator.LineDataEntry, error) {
	if s.BaseTable == "" {
		return nil, ErrNoBaseTable
	}

	if !s.hasLine(line) {
		return nil, lineNotFound(line, s)
	}

	tree, err := w.editTree(s)
	if err != nil {
		return nil, err
	}

	return w.nav.LineData(s.BaseTable, s.Lines[line].Path, tree)
}

func (w *Workbench) selectBaseTable(s State, a SelectBaseTable) (State, error) {
	t := w.nav.Schema().Table(a.Table)
	if t == nil {
		return s, fmt.Errorf("%w: %q", navigator.ErrUnknownTable, a.Table)
	}

	s = reset(s)
	s.BaseTable = t.Name

	return s, nil
}

func (w *Workbench) changeSelection(s State, a ChangeSelection) (State, error) {
	if s.BaseTable == "" {
		return s, ErrNoBaseTable
	}

	if !s.hasLine(a.Line) {
		return s, lineNotFound(a.Line, s)
	}

	tree, err := w.editTree(s)
	if err != nil {
		return s, err
	}

	path, err := edit.MutatePath(w.nav, s.BaseTable, tree, edit.Edit{
		Path:     s.Lines[a.Line].Path,
		Index:    a.Index,
		NewToken: a.Token,
	})
	if err != nil {
		return s, err
	}

	s.Lines[a.Line].Path = path
	s.Focused = a.Line

	s.Lines, err = edit.Deduplicate(s.Lines, a.Line)
	if err != nil {
		return s, err
	}

	return s, nil
}

func (w *Workbench) toggleMustMatch(s State, table string) (State, error) {
	t := w.nav.Schema().Table(table)
	if t == nil {
		return s, fmt.Errorf("%w: %q", navigator.ErrUnknownTable, table)
	}

	name := strings.ToLower(t.Name)

	if i, found := slices.BinarySearch(s.MustMatch, name); found {
		s.MustMatch = slices.Delete(s.MustMatch, i, i+1)
	} else {
		s.MustMatch = slices.Insert(s.MustMatch, i, name)
	}

	return s, nil
}

func (w *Workbench) autoMap(ctx context.Context, s State) (State, error) {
	if s.BaseTable == "" {
		return s, ErrNoBaseTable
	}

	var (
		lines   []int
		headers []string
	)

	for i, l := range s.Lines {
		if l.IsMapped() || l.Kind == mapping.LineStatic || l.Header == "" {
			continue
		}

		lines = append(lines, i)
		headers = append(headers, l.Header)
	}

	if len(headers) == 0 {
		return s, nil
	}

	results, err := w.automapper.Run(ctx, automapper.Request{
		Headers:       headers,
		BaseTable:     s.BaseTable,
		Mode:          automapper.ModeFull,
		IsMapped:      State{Lines: w.canonicalLines(s)}.isMappedExcept(edit.NoFocus),
		CommitToCache: true,
	})
	if err != nil {
		return s, err
	}

	mapped := 0

	for k, r := range results {
		if r.Mapped() {
			s.Lines[lines[k]].Path = r.Path
			mapped++
		}
	}

	w.logger.Info("automap finished",
		zap.String("base_table", s.BaseTable),
		zap.Int("headers", len(headers)),
		zap.Int("mapped", mapped))

	return s, nil
}

// canonicalLines returns a copy of the lines of s with every resolvable
// mapped path spelled the way the schema declares it.
func (w *Workbench) canonicalLines(s State) []mapping.Line {
	lines := mapping.CloneLines(s.Lines)

	for i := range lines {
		if !lines[i].IsMapped() {
			continue
		}

		if p, err := w.nav.Canonicalize(s.BaseTable, lines[i].Path); err == nil {
			lines[i].Path = p
		}
	}

	return lines
}

// editTree merges the lines that give picklists their context. Only the
// first line holding a path contributes; duplicates and paths that do not
// end on a field are left for Check to report.
func (w *Workbench) editTree(s State) (*mapping.Branch, error) {
	var (
		usable []mapping.Line
		seen   = make(map[string]bool, len(s.Lines))
	)

	for _, l := range s.Lines {
		if !l.IsMapped() {
			continue
		}

		steps, pos, err := w.nav.Resolve(s.BaseTable, l.Path)
		if err != nil || !pos.Done() {
			continue
		}

		l.Path = navigator.CanonicalPath(steps)

		key := l.Path.Key()
		if seen[key] {
			continue
		}

		seen[key] = true
		usable = append(usable, l)
	}

	return mapping.LinesToTree(usable)
}

func (w *Workbench) loadPlan(s State, a LoadPlan) (State, error) {
	if a.Plan == nil {
		return s, fmt.Errorf("%w: no plan", uploadplan.ErrInvalidPlan)
	}

	d, err := uploadplan.PlanToTree(w.nav.Schema(), a.Plan)
	if err != nil {
		return s, err
	}

	planned := mapping.TreeToLines(d.Tree)
	used := make([]bool, len(planned))

	lines := make([]mapping.Line, 0, len(s.Lines)+len(planned))

	for _, l := range s.Lines {
		if l.Kind != mapping.LineColumn {
			continue
		}

		l.Path = mapping.UnmappedPath()

		for j := range planned {
			if used[j] || planned[j].Kind != mapping.LineColumn || planned[j].Header != l.Header {
				continue
			}

			l.Path = planned[j].Path
			l.Options = planned[j].Options
			used[j] = true

			break
		}

		lines = append(lines, l)
	}

	for j, p := range planned {
		if used[j] {
			continue
		}

		if p.Kind == mapping.LineColumn {
			p.Kind = mapping.LineNewColumn
		}

		lines = append(lines, p)
	}

	return State{
		BaseTable: d.BaseTable,
		Lines:     lines,
		MustMatch: d.MustMatch,
		Focused:   edit.NoFocus,
	}, nil
}

func newColumn(header string) mapping.Line {
	l := mapping.NewLine(header)
	l.Kind = mapping.LineNewColumn

	return l
}

func removeLine(s State, line int) (State, error) {
	if !s.hasLine(line) {
		return s, lineNotFound(line, s)
	}

	s.Lines = slices.Delete(s.Lines, line, line+1)

	switch {
	case s.Focused == line:
		s.Focused = edit.NoFocus
	case s.Focused > line:
		s.Focused--
	}

	return s, nil
}

func changeOptions(s State, a ChangeOptions) (State, error) {
	if !s.hasLine(a.Line) {
		return s, lineNotFound(a.Line, s)
	}

	if err := a.Options.Validate(); err != nil {
		return s, err
	}

	s.Lines[a.Line].Options = a.Options

	return s, nil
}

func reset(s State) State {
	for i := range s.Lines {
		s.Lines[i].Path = mapping.UnmappedPath()
	}

	s.MustMatch = nil
	s.Focused = edit.NoFocus

	return s
}

func lineNotFound(line int, s State) error {
	return fmt.Errorf("%w: %d of %d", edit.ErrLineNotFound, line, len(s.Lines))
}
