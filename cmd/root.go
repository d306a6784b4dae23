package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "obsidian",
		Short:         "Obsidian launcher: sign in, pick a version and play",
		Long:          "obsidian runs the launcher host (`obsidian host`) and talks to it from the terminal: sign in with a Microsoft account, browse game versions, tune memory and launch the game.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentFlags().String("addr", app.config.GetString(keyHostAddr), "host address")
	rootCmd.PersistentFlags().String("log-level", app.config.GetString(keyLogLevel), "log level (debug, info, warn, error)")
	_ = app.config.BindPFlag(keyHostAddr, rootCmd.PersistentFlags().Lookup("addr"))
	_ = app.config.BindPFlag(keyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return initLogging(app.config.GetString(keyLogLevel), cmd.ErrOrStderr())
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newHostCmd(app),
		newUICmd(app),
		newStatusCmd(app),
		newLoginCmd(app),
		newLaunchCmd(app),
		newVersionsCmd(app),
		newSettingsCmd(app),
		newSystemCmd(app),
	)

	return rootCmd
}
