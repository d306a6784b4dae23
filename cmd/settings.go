package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bnema/obsidian-launcher/internal/domain"
	"github.com/spf13/cobra"
)

func newSettingsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change saved launcher settings",
	}

	cmd.AddCommand(
		newSettingsShowCmd(app),
		newSettingsSetCmd(app),
	)

	return cmd
}

func newSettingsShowCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show saved settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			settings, err := client.Settings(cmd.Context())
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}

			return writeSettings(cmd.OutOrStdout(), settings, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print settings as JSON")

	return cmd
}

func newSettingsSetCmd(app *app) *cobra.Command {
	var (
		memory    int
		language  string
		snapshots bool
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change saved settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if !flags.Changed("memory") && !flags.Changed("language") && !flags.Changed("snapshots") && !flags.Changed("limit") {
				return fmt.Errorf("%w: nothing to change, pass at least one flag", domain.ErrInvalidSettings)
			}

			client, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			settings, err := client.Settings(cmd.Context())
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}

			if flags.Changed("memory") {
				settings.MemoryMaxGiB = memory
			}
			if flags.Changed("language") {
				settings.Language = domain.Language(language)
			}
			if flags.Changed("snapshots") {
				settings.Versions.IncludeSnapshots = snapshots
			}
			if flags.Changed("limit") {
				settings.Versions.Limit = limit
			}

			saved, err := client.SaveSettings(cmd.Context(), settings)
			if err != nil {
				return fmt.Errorf("save settings: %w", err)
			}

			return writeSettings(cmd.OutOrStdout(), saved, false)
		},
	}

	cmd.Flags().IntVar(&memory, "memory", 0, "maximum memory in GiB")
	cmd.Flags().StringVar(&language, "language", "", "interface language (tr, en, de, fr)")
	cmd.Flags().BoolVar(&snapshots, "snapshots", false, "offer snapshot versions")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of versions offered")

	return cmd
}

func writeSettings(out io.Writer, settings domain.Settings, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(settings)
	}

	_, _ = fmt.Fprintf(out, "memory: %d GiB\n", settings.MemoryMaxGiB)
	_, _ = fmt.Fprintf(out, "language: %s\n", settings.Language)
	_, _ = fmt.Fprintf(out, "snapshots: %t\n", settings.Versions.IncludeSnapshots)
	_, err := fmt.Fprintf(out, "limit: %d\n", settings.Versions.Limit)
	return err
}
