package cmd

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/rtzll/ytbatch/internal"
)

// uploadCmd represents the upload command
var uploadCmd = &cobra.Command{
	Use:   "upload [directory]",
	Short: "Upload every video in a directory to YouTube",
	Long: `Authenticate with OAuth (cached, refreshed or interactive), then upload each
video file in the directory with a chunked resumable transfer.

Every file gets up to max_retries attempts with a fixed retry_delay between
them. A file that fails every attempt is reported and the batch moves on.`,
	Example: `  # Upload the configured downloads directory
  ytbatch upload

  # Upload a specific directory as unlisted videos
  ytbatch upload ./shorts --privacy unlisted

  # Copy the resulting links to the clipboard
  ytbatch upload --copy`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.ApplyUploadFlags(cmd, config); err != nil {
			return err
		}

		app := internal.NewApp(config)

		var dir string
		if len(args) > 0 {
			dir = args[0]
		}

		summary, err := app.UploadDirectory(cmd.Context(), dir)
		if err != nil {
			return err
		}

		copyURLs, _ := cmd.Flags().GetBool("copy")
		urls := summary.URLs()
		if copyURLs && len(urls) > 0 {
			if err := clipboard.WriteAll(strings.Join(urls, "\n")); err != nil {
				return fmt.Errorf("copying to clipboard: %w", err)
			}
			if !config.Quiet {
				fmt.Printf("Copied %d URL(s) to clipboard\n", len(urls))
			}
		}

		return nil
	},
}

func init() {
	internal.AddUploadFlags(uploadCmd)
	rootCmd.AddCommand(uploadCmd)
}
