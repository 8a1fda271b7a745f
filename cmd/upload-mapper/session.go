package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"upload-mapper/internal/mapping"
	"upload-mapper/internal/workbench"
)

// loadState reads a session file and replays it through the workbench, so
// table names and paths are checked and canonicalized.
func (a *app) loadState(ctx context.Context, path string) (workbench.State, error) {
	s, err := mapping.LoadFile(path)
	if err != nil {
		return workbench.State{}, withCode(exitUsage, err)
	}

	st := workbench.NewState(nil)

	if s.BaseTable != "" {
		st, err = a.workbench.Reduce(ctx, st, workbench.SelectBaseTable{Table: s.BaseTable})
		if err != nil {
			return workbench.State{}, withCode(exitValidation, err)
		}
	}

	st.Lines = s.Lines

	// Paths that do not resolve are kept as written for validate to report.
	for i := range st.Lines {
		if p, err := a.nav.Canonicalize(st.BaseTable, st.Lines[i].Path); err == nil {
			st.Lines[i].Path = p
		}
	}

	mustMatch := make([]string, 0, len(s.MustMatch))
	for _, t := range s.MustMatch {
		mustMatch = append(mustMatch, strings.ToLower(t))
	}

	slices.Sort(mustMatch)

	for _, t := range slices.Compact(mustMatch) {
		st, err = a.workbench.Reduce(ctx, st, workbench.ToggleMustMatch{Table: t})
		if err != nil {
			return workbench.State{}, withCode(exitValidation, err)
		}
	}

	return st, nil
}

func sessionFromState(st workbench.State) *mapping.Session {
	return &mapping.Session{
		Version:   mapping.SessionVersion,
		BaseTable: st.BaseTable,
		MustMatch: st.MustMatch,
		Lines:     st.Lines,
	}
}

func writeSession(w io.Writer, path string, st workbench.State) error {
	data, err := mapping.Marshal(sessionFromState(st))
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	return writeOutput(w, path, data)
}

// writeOutput writes data to path, or to w when path is empty or "-".
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)

		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
