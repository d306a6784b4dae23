package cmd

import (
	"context"
	"fmt"

	"github.com/bnema/obsidian-launcher/internal/adapters/ipc"
	statusadapter "github.com/bnema/obsidian-launcher/internal/adapters/render/status"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newUICmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Follow the session live",
		Long:  "Follow the session live. Press a to sign in, p to play with the launch settings, q to quit.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			client, err := app.connect(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			view, err := client.Session(ctx)
			if err != nil {
				return fmt.Errorf("load session: %w", err)
			}

			opts := statusadapter.RenderOptions{}
			if memory, err := client.Memory(ctx); err != nil {
				log.Warn().Err(err).Msg("loading memory report")
			} else {
				opts.Memory = &memory
			}

			p := tea.NewProgram(
				statusadapter.NewLiveModel(view, client.Updates(), opts, liveActions(ctx, cmd, app.config, client)),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
				tea.WithContext(ctx),
			)

			_, err = p.Run()
			return err
		},
	}

	addLaunchFlags(cmd)

	return cmd
}

// liveActions binds the ui keys to the host. Play is sent as a notification;
// a rejected launch shows up as the session's last error.
func liveActions(ctx context.Context, cmd *cobra.Command, config *viper.Viper, client *ipc.Client) statusadapter.LiveActions {
	actions := statusadapter.LiveActions{
		Authenticate: func() error {
			_, err := client.Authenticate(ctx)
			return err
		},
	}

	launch, err := launchCommandFrom(cmd, config)
	if err != nil {
		log.Debug().Err(err).Msg("play disabled")
		return actions
	}
	actions.Launch = func() error {
		return client.LaunchAndForget(launch)
	}
	return actions
}
