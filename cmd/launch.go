package cmd

import (
	"errors"
	"fmt"

	"github.com/bnema/obsidian-launcher/internal/application"
	"github.com/bnema/obsidian-launcher/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errGameExited = errors.New("game exited before it was ready")

func newLaunchCmd(app *app) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Launch the game",
		Long:  "Launch the game with the given account mode and version. Memory defaults to the saved setting.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			launch, err := launchCommandFrom(cmd, app.config)
			if err != nil {
				return err
			}

			client, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			if err := client.Launch(cmd.Context(), launch); err != nil {
				return fmt.Errorf("launch: %w", err)
			}

			if !wait {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Launching %s\n", launch.VersionID)
				return err
			}

			view, err := runLaunchSpinner(cmd.Context(), cmd.ErrOrStderr(), client.Updates())
			if err != nil {
				return err
			}
			if err := launchOutcome(view); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s is running\n", launch.VersionID)
			return err
		},
	}

	addLaunchFlags(cmd)
	cmd.Flags().BoolVar(&wait, "wait", false, "follow progress until the game is running")

	return cmd
}

func addLaunchFlags(cmd *cobra.Command) {
	cmd.Flags().String("mode", "", "account mode: offline or microsoft (default from launch.mode)")
	cmd.Flags().String("username", "", "offline username (default from launch.username)")
	cmd.Flags().String("game-version", "", "game version id (default from launch.version)")
	cmd.Flags().Int("memory", 0, "maximum memory in GiB (default from saved settings)")
}

// launchCommandFrom reads launch flags, falling back to the launch.* config
// keys for the ones not given.
func launchCommandFrom(cmd *cobra.Command, config *viper.Viper) (application.LaunchCommand, error) {
	flags := cmd.Flags()

	stringFlag := func(name, key string) string {
		if flags.Changed(name) {
			value, _ := flags.GetString(name)
			return value
		}
		return config.GetString(key)
	}

	memory, err := flags.GetInt("memory")
	if err != nil {
		return application.LaunchCommand{}, err
	}

	launch := application.LaunchCommand{
		Mode:         domain.AccountMode(stringFlag("mode", keyLaunchMode)),
		Username:     stringFlag("username", keyLaunchUsername),
		VersionID:    stringFlag("game-version", keyLaunchVersion),
		MemoryMaxGiB: memory,
	}
	if launch.VersionID == "" {
		return application.LaunchCommand{}, fmt.Errorf("%w: a game version is required (--game-version or launch.version)", domain.ErrInvalidOptions)
	}

	return launch, nil
}

// launchOutcome turns the last observed snapshot of a launch into an error.
func launchOutcome(view application.SessionView) error {
	switch {
	case view.Phase == domain.PhaseRunning:
		return nil
	case view.LastError != nil:
		return fmt.Errorf("launch failed: %w", view.LastError)
	default:
		return errGameExited
	}
}
