package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in with a Microsoft account",
		Long:  "Ask the host to run the sign-in flow. The command returns once the account is signed in or the flow fails.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			credential, err := client.Authenticate(cmd.Context())
			if err != nil {
				return fmt.Errorf("sign in: %w", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", credential.DisplayName, credential.AccountID)
			return err
		},
	}
}
