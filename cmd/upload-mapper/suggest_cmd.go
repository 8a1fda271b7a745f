package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"upload-mapper/internal/automapper"
	"upload-mapper/internal/mapping"
)

func newSuggestCmd(a *app) *cobra.Command {
	var (
		baseTable string
		start     string
	)

	cmd := &cobra.Command{
		Use:   "suggest <header>...",
		Short: "Rank candidate fields for spreadsheet headers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if baseTable == "" {
				return withCode(exitUsage, errors.New("--base-table is required"))
			}

			var prefix mapping.Path

			if start != "" {
				p, err := mapping.ParsePath(start)
				if err != nil {
					return withCode(exitUsage, fmt.Errorf("--start: %w", err))
				}

				prefix = p
			}

			queries := make([]automapper.SuggestQuery, len(args))
			for i, h := range args {
				queries[i] = automapper.SuggestQuery{Header: h, Start: prefix}
			}

			lists, err := a.automapper.SuggestAll(cmd.Context(), baseTable, queries)
			if err != nil {
				return withCode(exitValidation, err)
			}

			out := cmd.OutOrStdout()

			for i, list := range lists {
				fmt.Fprintf(out, "%s\n", queries[i].Header)

				if len(list) == 0 {
					fmt.Fprintln(out, "  (no suggestions)")

					continue
				}

				for _, c := range list {
					fmt.Fprintf(out, "  %-50s %.2f  %s\n", c.Path.String(), c.Score.Value, c.Score.Tier)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&baseTable, "base-table", "", "Table each spreadsheet row uploads into (required)")
	cmd.Flags().StringVar(&start, "start", "", "Only suggest fields below this path prefix")

	return cmd
}
