package main

import (
	"github.com/spf13/cobra"

	"upload-mapper/internal/headers"
	"upload-mapper/internal/uploadplan"
	"upload-mapper/internal/workbench"
)

func newInspectCmd(a *app) *cobra.Command {
	var (
		planPath    string
		spreadsheet string
		output      string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Turn an upload plan back into an editable mapping",
		Long: "Turn an upload plan back into an editable mapping. With --spreadsheet, planned\n" +
			"columns are matched to the spreadsheet's headers by name; the rest become new columns.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan, err := uploadplan.LoadFile(planPath)
			if err != nil {
				return withCode(exitValidation, err)
			}

			var cols []string

			if spreadsheet != "" {
				cols, err = headers.ReadFile(spreadsheet)
				if err != nil {
					return withCode(exitUsage, err)
				}
			}

			st, err := a.workbench.Reduce(cmd.Context(), workbench.NewState(cols), workbench.LoadPlan{Plan: plan})
			if err != nil {
				return withCode(exitValidation, err)
			}

			return writeSession(cmd.OutOrStdout(), output, st)
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "Upload plan file (required)")
	cmd.Flags().StringVar(&spreadsheet, "spreadsheet", "", "Spreadsheet whose headers the plan's columns are matched to")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Session file to write (default stdout)")
	_ = cmd.MarkFlagRequired("plan")

	return cmd
}
