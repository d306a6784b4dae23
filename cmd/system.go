package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSystemCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "system",
		Short: "Inspect the host system",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "memory",
		Short: "Show how much memory the game can use",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			report, err := client.Memory(cmd.Context())
			if err != nil {
				return fmt.Errorf("load memory report: %w", err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "total:\t%d GiB\n", report.TotalGiB)
			_, _ = fmt.Fprintf(out, "safe:\t%d GiB\n", report.SafeLimitGiB)
			_, _ = fmt.Fprintf(out, "range:\t%d-%d GiB\n", report.MinGiB, report.MaxGiB)
			_, err = fmt.Fprintf(out, "selected:\t%d GiB (%s)\n", report.SelectedGiB, report.Tier)
			return err
		},
	})

	return cmd
}
