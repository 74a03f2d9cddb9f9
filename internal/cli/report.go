package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReportCommand(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the per category summary report as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svcs, err := a.services(cmd.Context())
			if err != nil {
				return err
			}

			if output == "" {
				output = svcs.cfg.Report.Output
			}

			summaries, err := svcs.report.GenerateReport(cmd.Context(), output)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.stdout, "summary report written to %s (%d categories)\n", output, len(summaries))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "report path (default $REPORT_OUTPUT or summary_report.csv)")
	return cmd
}
