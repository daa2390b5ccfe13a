package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytbatch/internal"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize uploads and cache the OAuth credential",
	Long: `Run the authentication step of the uploader on its own.

A cached credential is reused, an expired one is refreshed, and when neither
works the browser flow is started with a callback listener on oauth_port.
The resulting credential is written to token_file.`,
	Example: `  # Authorize before an unattended upload run
  ytbatch auth`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := internal.NewApp(config)
		if _, err := app.Authenticate(cmd.Context()); err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}
		if !config.Quiet {
			fmt.Printf("Credential saved to %s\n", config.TokenFile)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
}
