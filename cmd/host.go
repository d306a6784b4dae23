package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/obsidian-launcher/internal/adapters/ipc"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newHostCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "host",
		Short: "Run the launcher host that owns the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logWriter, err := newHostLogWriter()
			if err != nil {
				return err
			}
			defer func() { _ = logWriter.Close() }()

			if err := initLogging(app.config.GetString(keyLogLevel), cmd.ErrOrStderr(), logWriter); err != nil {
				return err
			}

			launcher, err := app.newLauncher()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := serveHost(ctx, launcher, app.config.GetString(keyHostAddr)); err != nil {
				return fmt.Errorf("run host: %w", err)
			}
			return nil
		},
	}
}

// serveHost runs the ipc server on addr while the version catalog loads in
// the background.
func serveHost(ctx context.Context, host ipc.Host, addr string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ipc.NewServer(host).Run(gctx, addr)
	})
	g.Go(func() error {
		if versions, err := host.Versions(gctx); err != nil {
			log.Warn().Err(err).Msg("preloading version catalog")
		} else {
			log.Info().Int("versions", len(versions)).Msg("version catalog loaded")
		}
		return nil
	})
	return g.Wait()
}
