package workbench

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"upload-mapper/internal/automapper"
	"upload-mapper/internal/diagnostic"
	"upload-mapper/internal/edit"
	"upload-mapper/internal/mapping"
	"upload-mapper/internal/navigator"
	"upload-mapper/internal/schema/schematest"
	"upload-mapper/internal/uploadplan"
)

func newTestWorkbench(t *testing.T) *Workbench {
	t.Helper()

	return New(navigator.New(schematest.Museum()), WithLogger(zaptest.NewLogger(t)))
}

// apply reduces every action in turn and fails the test on the first error.
func apply(t *testing.T, w *Workbench, s State, actions ...Action) State {
	t.Helper()

	for _, a := range actions {
		var err error

		s, err = w.Reduce(context.Background(), s, a)
		require.NoError(t, err, "%T", a)
	}

	return s
}

func linePaths(s State) []string {
	out := make([]string, len(s.Lines))
	for i, l := range s.Lines {
		out[i] = l.Path.String()
	}

	return out
}

func TestSelectBaseTable(t *testing.T) {
	w := newTestWorkbench(t)

	s := NewState([]string{"Catalog Number", "Remarks"})
	assert.Equal(t, edit.NoFocus, s.Focused)

	s = apply(t, w, s, SelectBaseTable{Table: "collectionobject"})
	assert.Equal(t, "CollectionObject", s.BaseTable)
	assert.Equal(t, []string{"0", "0"}, linePaths(s))

	_, err := w.Reduce(context.Background(), s, SelectBaseTable{Table: "Loan"})
	require.ErrorIs(t, err, navigator.ErrUnknownTable)
}

func TestAutoMapAndPlan(t *testing.T) {
	w := newTestWorkbench(t)

	s := apply(t, w, NewState([]string{"Catalog Number", "Collector Last Name", "Zzyzx"}),
		SelectBaseTable{Table: "CollectionObject"},
		AutoMap{},
	)

	assert.Equal(t, []string{
		"catalogNumber",
		"collectingEvent.collectors.#1.agent.lastName",
		"0",
	}, linePaths(s))

	_, err := w.Plan(s)
	require.ErrorIs(t, err, ErrMissingRequired)

	var missing *MissingRequiredError
	require.ErrorAs(t, err, &missing)
	assert.Len(t, missing.Paths, 2)

	s = apply(t, w, s,
		ToggleMustMatch{Table: "Agent"},
		AddStaticColumn{Header: "Primary", Value: "true"},
		ChangeSelection{Line: 3, Index: 0, Token: "collectingEvent"},
		ChangeSelection{Line: 3, Index: 1, Token: "collectors"},
		ChangeSelection{Line: 3, Index: 2, Token: "#1"},
		ChangeSelection{Line: 3, Index: 3, Token: "isPrimary"},
	)

	assert.Equal(t, "collectingEvent.collectors.#1.isPrimary", s.Lines[3].Path.String())
	assert.Equal(t, 3, s.Focused)

	p, err := w.Plan(s)
	require.NoError(t, err)

	assert.Equal(t, "collectionobject", p.BaseTableName)
	assert.Equal(t, []string{"agent"}, p.MustMatchTables)

	collectors := p.Uploadable.UploadTable.ToOne["collectingevent"].UploadTable.ToMany["collectors"]
	require.Len(t, collectors, 1)
	assert.Equal(t, uploadplan.Literal("true"), collectors[0].Static["isprimary"])
	assert.NotNil(t, collectors[0].ToOne["agent"].MustMatchTable)

	assert.True(t, w.Check(s).IsValid())
}

func TestAutoMapKeepsExistingMappings(t *testing.T) {
	w := newTestWorkbench(t)

	s := apply(t, w, NewState([]string{"Catalog Number", "Catalog Number"}),
		SelectBaseTable{Table: "CollectionObject"},
		ChangeSelection{Line: 1, Index: 0, Token: "catalogNumber"},
		AutoMap{},
	)

	assert.Equal(t, []string{"0", "catalogNumber"}, linePaths(s))
}

func TestChangeSelectionDeduplicates(t *testing.T) {
	w := newTestWorkbench(t)

	s := apply(t, w, NewState([]string{"A", "B"}),
		SelectBaseTable{Table: "CollectionObject"},
		ChangeSelection{Line: 0, Index: 0, Token: "remarks"},
		ChangeSelection{Line: 1, Index: 0, Token: "remarks"},
	)

	assert.Equal(t, []string{"0", "remarks"}, linePaths(s))
	assert.Equal(t, 1, s.Focused)
}

func TestChangeSelectionStoresSchemaSpelling(t *testing.T) {
	w := newTestWorkbench(t)

	s := apply(t, w, NewState([]string{"A", "B"}),
		SelectBaseTable{Table: "CollectionObject"},
		ChangeSelection{Line: 0, Index: 0, Token: "catalogNumber"},
		ChangeSelection{Line: 1, Index: 0, Token: "CatalogNumber"},
	)

	assert.Equal(t, []string{"0", "catalogNumber"}, linePaths(s))

	s = apply(t, w, s,
		ChangeSelection{Line: 0, Index: 0, Token: "Determinations"},
		ChangeSelection{Line: 0, Index: 1, Token: "#1"},
		ChangeSelection{Line: 0, Index: 2, Token: "ISCURRENT"},
	)
	assert.Equal(t, "determinations.#1.isCurrent", s.Lines[0].Path.String())

	_, err := w.Reduce(context.Background(), s, ChangeSelection{Line: 0, Index: 1, Token: "#01"})
	require.ErrorIs(t, err, navigator.ErrInvalidToken)
}

func TestMixedSpellingsAreOnePath(t *testing.T) {
	w := newTestWorkbench(t)

	s := apply(t, w, NewState([]string{"A", "B"}), SelectBaseTable{Table: "CollectionObject"})
	s.Lines[0].Path = mapping.Path{"catalogNumber"}
	s.Lines[1].Path = mapping.Path{"CatalogNumber"}

	diags := w.Check(s)
	assert.Equal(t, []string{diagnostic.CodeDuplicateMapping}, diags.Codes())
	assert.Len(t, diags.Errors, 2)

	_, err := w.Plan(s)
	require.ErrorIs(t, err, mapping.ErrConflictingMapping)

	s.Lines[1].Path = mapping.Path{"Remarks"}

	p, err := w.Plan(s)
	require.NoError(t, err)
	assert.Len(t, p.Uploadable.UploadTable.WBCols, 2)
	assert.Contains(t, p.Uploadable.UploadTable.WBCols, "remarks")
}

func TestAutoMapAllowMultipleMappings(t *testing.T) {
	nav := navigator.New(schematest.Museum())
	cfg := automapper.DefaultConfig()
	cfg.AllowMultipleMappings = true

	w := New(nav,
		WithLogger(zaptest.NewLogger(t)),
		WithAutomapper(automapper.New(nav, automapper.WithConfig(cfg))))

	s := apply(t, w, NewState([]string{"Catalog Number", "Catalog No", "Remarks"}),
		SelectBaseTable{Table: "CollectionObject"},
		AutoMap{},
	)
	assert.Equal(t, []string{"catalogNumber", "catalogNumber", "remarks"}, linePaths(s))

	diags := w.Check(s)
	require.Len(t, diags.Errors, 2)
	assert.Equal(t, []string{diagnostic.CodeDuplicateMapping}, diags.Codes())

	entries, err := w.LineData(s, 2)
	require.NoError(t, err)
	assert.Equal(t, "remarks", entries[0].Selected)

	s = apply(t, w, s, ChangeSelection{Line: 2, Index: 0, Token: "countAmt"})
	assert.Equal(t, []string{"catalogNumber", "0", "countAmt"}, linePaths(s))
	assert.True(t, w.Check(s).IsValid())
}

func TestChangeSelectionAddIndex(t *testing.T) {
	w := newTestWorkbench(t)

	s := apply(t, w, NewState([]string{"Collector 1", "Collector 2"}),
		SelectBaseTable{Table: "CollectionObject"},
		ChangeSelection{Line: 0, Index: 0, Token: "collectingEvent"},
		ChangeSelection{Line: 0, Index: 1, Token: "collectors"},
		ChangeSelection{Line: 0, Index: 2, Token: "#1"},
		ChangeSelection{Line: 0, Index: 3, Token: "remarks"},
		ChangeSelection{Line: 1, Index: 0, Token: "collectingEvent"},
		ChangeSelection{Line: 1, Index: 1, Token: "collectors"},
		ChangeSelection{Line: 1, Index: 2, Token: mapping.AddIndex},
	)

	assert.Equal(t, []string{
		"collectingEvent.collectors.#1.remarks",
		"collectingEvent.collectors.#2.0",
	}, linePaths(s))
}

func TestLineEditing(t *testing.T) {
	w := newTestWorkbench(t)

	s := apply(t, w, NewState([]string{"A", "B", "C"}),
		SelectBaseTable{Table: "CollectionObject"},
		AddColumn{Header: "D"},
		FocusLine{Line: 2},
		ChangeSelection{Line: 0, Index: 0, Token: "remarks"},
		FocusLine{Line: 3},
		RemoveLine{Line: 1},
	)

	require.Len(t, s.Lines, 3)
	assert.Equal(t, mapping.LineNewColumn, s.Lines[2].Kind)
	assert.Equal(t, 2, s.Focused)

	def := "n/a"
	opts := mapping.ColumnOptions{MatchBehavior: mapping.MatchIgnoreWhenBlank, Default: &def}

	s = apply(t, w, s, ChangeOptions{Line: 0, Options: opts}, ClearMapping{Line: 0})
	assert.Equal(t, mapping.MatchIgnoreWhenBlank, s.Lines[0].Options.MatchBehavior)
	assert.Equal(t, mapping.UnmappedPath(), s.Lines[0].Path)

	s = apply(t, w, s, RemoveLine{Line: 2})
	assert.Equal(t, edit.NoFocus, s.Focused)
}

func TestReduceDoesNotModifyInput(t *testing.T) {
	w := newTestWorkbench(t)

	s := apply(t, w, NewState([]string{"Remarks"}), SelectBaseTable{Table: "CollectionObject"})
	before := s.Clone()

	_ = apply(t, w, s,
		ChangeSelection{Line: 0, Index: 0, Token: "remarks"},
		ToggleMustMatch{Table: "Agent"},
	)

	assert.Equal(t, before, s)
}

func TestToggleMustMatch(t *testing.T) {
	w := newTestWorkbench(t)

	s := apply(t, w, NewState(nil),
		SelectBaseTable{Table: "CollectionObject"},
		ToggleMustMatch{Table: "Taxon"},
		ToggleMustMatch{Table: "agent"},
	)
	assert.Equal(t, []string{"agent", "taxon"}, s.MustMatch)
	assert.True(t, s.IsMustMatch("Agent"))

	s = apply(t, w, s, ToggleMustMatch{Table: "Agent"})
	assert.Equal(t, []string{"taxon"}, s.MustMatch)
	assert.False(t, s.IsMustMatch("Agent"))

	s = apply(t, w, s, ResetMapping{})
	assert.Empty(t, s.MustMatch)
}

func TestLoadPlan(t *testing.T) {
	w := newTestWorkbench(t)

	saved := apply(t, w, NewState([]string{"Catalog Number", "Cataloger"}),
		SelectBaseTable{Table: "CollectionObject"},
		ChangeSelection{Line: 0, Index: 0, Token: "catalogNumber"},
		ChangeSelection{Line: 1, Index: 0, Token: "cataloger"},
		ChangeSelection{Line: 1, Index: 1, Token: "lastName"},
		ToggleMustMatch{Table: "Agent"},
		AddStaticColumn{Header: "Remarks", Value: "imported"},
		ChangeSelection{Line: 2, Index: 0, Token: "remarks"},
	)

	p, err := w.Plan(saved)
	require.NoError(t, err)

	// A new spreadsheet with the columns in another order and one extra.
	s := NewState([]string{"Notes", "Cataloger", "Catalog Number"})

	s = apply(t, w, s, LoadPlan{Plan: p})

	assert.Equal(t, "CollectionObject", s.BaseTable)
	assert.Equal(t, []string{"agent"}, s.MustMatch)
	assert.Equal(t, []string{"0", "cataloger.lastName", "catalogNumber", "remarks"}, linePaths(s))
	assert.Equal(t, mapping.LineStatic, s.Lines[3].Kind)
	assert.Equal(t, "imported", s.Lines[3].Value)

	again, err := w.Plan(s)
	require.NoError(t, err)

	want, err := uploadplan.Marshal(p)
	require.NoError(t, err)

	got, err := uploadplan.Marshal(again)
	require.NoError(t, err)

	assert.JSONEq(t, string(want), string(got))
}

func TestLineData(t *testing.T) {
	w := newTestWorkbench(t)

	s := apply(t, w, NewState([]string{"A"}),
		SelectBaseTable{Table: "CollectionObject"},
		ChangeSelection{Line: 0, Index: 0, Token: "collectingEvent"},
	)

	entries, err := w.LineData(s, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "collectingEvent", entries[0].Selected)

	_, err = w.LineData(s, 4)
	require.ErrorIs(t, err, edit.ErrLineNotFound)

	_, err = w.LineData(NewState([]string{"A"}), 0)
	require.ErrorIs(t, err, ErrNoBaseTable)
}

func TestReduceErrors(t *testing.T) {
	w := newTestWorkbench(t)
	ctx := context.Background()

	blank := NewState([]string{"A"})
	s := apply(t, w, blank, SelectBaseTable{Table: "CollectionObject"})

	tests := []struct {
		name    string
		state   State
		action  Action
		wantErr error
	}{
		{name: "nil action", state: s, action: nil, wantErr: ErrUnknownAction},
		{name: "remove missing line", state: s, action: RemoveLine{Line: 3}, wantErr: edit.ErrLineNotFound},
		{name: "focus missing line", state: s, action: FocusLine{Line: 1}, wantErr: edit.ErrLineNotFound},
		{name: "clear missing line", state: s, action: ClearMapping{Line: -1}, wantErr: edit.ErrLineNotFound},
		{name: "selection without base table", state: blank, action: ChangeSelection{Line: 0, Index: 0, Token: "remarks"}, wantErr: ErrNoBaseTable},
		{name: "selection out of range", state: s, action: ChangeSelection{Line: 0, Index: 3, Token: "remarks"}, wantErr: edit.ErrIndexOutOfRange},
		{name: "automap without base table", state: blank, action: AutoMap{}, wantErr: ErrNoBaseTable},
		{name: "unknown must-match table", state: s, action: ToggleMustMatch{Table: "Loan"}, wantErr: navigator.ErrUnknownTable},
		{name: "empty plan", state: s, action: LoadPlan{}, wantErr: uploadplan.ErrInvalidPlan},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := w.Reduce(ctx, tt.state, tt.action)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.state, got)
		})
	}

	_, err := w.Reduce(ctx, s, ChangeOptions{Line: 0, Options: mapping.ColumnOptions{MatchBehavior: "sometimes"}})
	require.Error(t, err)

	_, err = w.Plan(blank)
	require.ErrorIs(t, err, ErrNoBaseTable)
}

func TestCheck(t *testing.T) {
	w := newTestWorkbench(t)

	diags := w.Check(NewState([]string{"A"}))
	assert.False(t, diags.IsValid())

	s := apply(t, w, NewState([]string{"A"}),
		SelectBaseTable{Table: "CollectionObject"},
		ChangeSelection{Line: 0, Index: 0, Token: "collectingEvent"},
	)

	diags = w.Check(s)
	assert.True(t, diags.IsValid())
	assert.Equal(t, []string{diagnostic.CodeIncompletePath}, diags.Codes())
}

func TestWithAutomapper(t *testing.T) {
	nav := navigator.New(schematest.Museum())
	cfg := automapper.DefaultConfig()
	cfg.MinScore = 0.6

	w := New(nav, WithAutomapper(automapper.New(nav, automapper.WithConfig(cfg))))

	s := apply(t, w, NewState([]string{"Station"}), SelectBaseTable{Table: "CollectionObject"}, AutoMap{})
	assert.Equal(t, []string{"collectingEvent.stationFieldNumber"}, linePaths(s))
}
