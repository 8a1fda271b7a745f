package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"upload-mapper/internal/uploadplan"
	"upload-mapper/internal/workbench"
)

func newPlanCmd(a *app) *cobra.Command {
	var (
		session string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Turn a saved mapping into an upload plan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.loadState(cmd.Context(), session)
			if err != nil {
				return err
			}

			plan, err := a.workbench.Plan(st)
			if err != nil {
				var missing *workbench.MissingRequiredError
				if errors.As(err, &missing) {
					for _, p := range missing.Paths {
						fmt.Fprintf(cmd.ErrOrStderr(), "missing required: %s\n", p)
					}
				}

				return withCode(exitValidation, err)
			}

			data, err := uploadplan.Marshal(plan)
			if err != nil {
				return err
			}

			a.logger.Info("upload plan built",
				zap.String("base_table", plan.BaseTableName),
				zap.Strings("must_match", plan.MustMatchTables))

			return writeOutput(cmd.OutOrStdout(), output, data)
		},
	}

	cmd.Flags().StringVar(&session, "session", "", "Session file (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Plan file to write (default stdout)")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}
