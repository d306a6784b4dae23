package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newVersionsCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List the game versions offered for launch",
		Long:  "List game versions from the catalog, filtered by the saved version settings.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			versions, err := client.Versions(cmd.Context())
			if err != nil {
				return fmt.Errorf("list versions: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(versions)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, v := range versions {
				released := ""
				if !v.ReleaseTime.IsZero() {
					released = v.ReleaseTime.Format("2006-01-02")
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", v.ID, v.Type, released)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print versions as JSON")

	return cmd
}
