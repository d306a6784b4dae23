package cmd

import (
	"encoding/json"
	"fmt"

	statusadapter "github.com/bnema/obsidian-launcher/internal/adapters/render/status"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			view, err := client.Session(cmd.Context())
			if err != nil {
				return fmt.Errorf("load session: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}

			memory, err := client.Memory(cmd.Context())
			if err != nil {
				return fmt.Errorf("load memory report: %w", err)
			}

			rendered, err := app.statusRenderer(view, statusadapter.RenderOptions{Memory: &memory})
			if err != nil {
				return fmt.Errorf("render status: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the session as JSON")

	return cmd
}
