package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"upload-mapper/internal/navigator"
)

func newPicklistCmd(a *app) *cobra.Command {
	var (
		session string
		line    int
		query   string
	)

	cmd := &cobra.Command{
		Use:   "picklist",
		Short: "Show the picklists of one line of a saved mapping",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.loadState(cmd.Context(), session)
			if err != nil {
				return err
			}

			entries, err := a.workbench.LineData(st, line-1)
			if err != nil {
				return withCode(exitValidation, err)
			}

			out := cmd.OutOrStdout()

			for i, e := range entries {
				fmt.Fprintf(out, "[%d] %s\n", e.Depth, e.Table)

				options := e.Options
				if i == len(entries)-1 {
					options = navigator.FilterOptions(options, query)
				}

				for _, o := range options {
					fmt.Fprintf(out, "  %s %-30s %s%s\n", marker(o), o.Token, o.Label, optionNotes(o))
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&session, "session", "", "Session file (required)")
	cmd.Flags().IntVar(&line, "line", 1, "Line number, starting at 1")
	cmd.Flags().StringVar(&query, "query", "", "Filter the last picklist")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func marker(o navigator.LineOption) string {
	switch {
	case o.Selected:
		return ">"
	case !o.Enabled:
		return "x"
	default:
		return " "
	}
}

func optionNotes(o navigator.LineOption) string {
	var s string

	if o.Required {
		s += " (required)"
	}

	if o.AlreadyMapped {
		s += " (mapped)"
	}

	if o.Icon != navigator.IconField {
		s += fmt.Sprintf(" [%s]", o.Icon)
	}

	return s
}
