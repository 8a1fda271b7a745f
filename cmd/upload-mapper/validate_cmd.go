package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newValidateCmd(a *app) *cobra.Command {
	var session string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Report problems in a saved mapping",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.loadState(cmd.Context(), session)
			if err != nil {
				return err
			}

			diags := a.workbench.Check(st)

			for _, d := range diags.All() {
				fmt.Fprintln(cmd.OutOrStdout(), d.String())
			}

			a.logger.Debug("mapping checked",
				zap.String("session", session),
				zap.Strings("codes", diags.Codes()))

			if diags.HasErrors() {
				return withCode(exitValidation, fmt.Errorf("%s: mapping has errors", session))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&session, "session", "", "Session file (required)")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}
