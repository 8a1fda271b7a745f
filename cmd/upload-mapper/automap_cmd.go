package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"upload-mapper/internal/headers"
	"upload-mapper/internal/mapping"
	"upload-mapper/internal/workbench"
)

type automapOptions struct {
	input     string
	baseTable string
	sheet     string
	encoding  string
	delimiter string
	output    string
	statics   map[string]string
	mustMatch []string
}

func newAutomapCmd(a *app) *cobra.Command {
	var opts automapOptions

	cmd := &cobra.Command{
		Use:   "automap <spreadsheet>",
		Short: "Guess a mapping for the headers of a CSV, TSV or XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.input = args[0]
			if opts.baseTable == "" {
				return withCode(exitUsage, errors.New("--base-table is required"))
			}

			var readOpts []headers.Option
			if opts.sheet != "" {
				readOpts = append(readOpts, headers.WithSheet(opts.sheet))
			}

			if opts.encoding != "" {
				readOpts = append(readOpts, headers.WithEncoding(opts.encoding))
			}

			if opts.delimiter != "" {
				r := []rune(opts.delimiter)
				if len(r) != 1 {
					return withCode(exitUsage, errors.New("--delimiter must be a single character"))
				}

				readOpts = append(readOpts, headers.WithDelimiter(r[0]))
			}

			cols, err := headers.ReadFile(opts.input, readOpts...)
			if err != nil {
				return withCode(exitUsage, err)
			}

			a.logger.Info("headers read",
				zap.String("file", opts.input),
				zap.Int("columns", len(cols)))

			st, err := runAutomap(cmd, a, cols, opts)
			if err != nil {
				return err
			}

			return writeSession(cmd.OutOrStdout(), opts.output, st)
		},
	}

	cmd.Flags().StringVar(&opts.baseTable, "base-table", "", "Table each spreadsheet row uploads into (required)")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "XLSX sheet to read (default first sheet)")
	cmd.Flags().StringVar(&opts.encoding, "encoding", "", "CSV text encoding, e.g. windows-1252 (default UTF-8/UTF-16 by BOM)")
	cmd.Flags().StringVar(&opts.delimiter, "delimiter", "", "CSV field delimiter (default comma, tab for .tsv)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Session file to write (default stdout)")
	cmd.Flags().StringToStringVar(&opts.statics, "static", nil, "Static value for a field path, e.g. countAmt=1 (repeatable)")
	cmd.Flags().StringSliceVar(&opts.mustMatch, "must-match", nil, "Tables whose records must already exist")

	return cmd
}

func runAutomap(cmd *cobra.Command, a *app, cols []string, opts automapOptions) (workbench.State, error) {
	ctx := cmd.Context()

	actions := []workbench.Action{workbench.SelectBaseTable{Table: opts.baseTable}}

	for _, t := range opts.mustMatch {
		actions = append(actions, workbench.ToggleMustMatch{Table: t})
	}

	st := workbench.NewState(cols)

	for _, act := range actions {
		next, err := a.workbench.Reduce(ctx, st, act)
		if err != nil {
			return st, withCode(exitValidation, err)
		}

		st = next
	}

	for _, text := range sortedKeys(opts.statics) {
		path, err := mapping.ParsePath(text)
		if err != nil {
			return st, withCode(exitUsage, fmt.Errorf("--static: %w", err))
		}

		st, err = a.workbench.Reduce(ctx, st, workbench.AddStaticColumn{Header: text, Value: opts.statics[text]})
		if err != nil {
			return st, withCode(exitValidation, err)
		}

		st, err = a.selectPath(ctx, st, len(st.Lines)-1, path)
		if err != nil {
			return st, withCode(exitValidation, fmt.Errorf("--static %s: %w", text, err))
		}
	}

	next, err := a.workbench.Reduce(ctx, st, workbench.AutoMap{})
	if err != nil {
		return st, withCode(exitValidation, err)
	}

	return next, nil
}

// selectPath picks the tokens of path one picklist at a time, the way a user
// builds a line's mapping.
func (a *app) selectPath(ctx context.Context, st workbench.State, line int, path mapping.Path) (workbench.State, error) {
	for i, token := range path {
		next, err := a.workbench.Reduce(ctx, st, workbench.ChangeSelection{Line: line, Index: i, Token: token})
		if err != nil {
			return st, err
		}

		st = next
	}

	return st, nil
}
