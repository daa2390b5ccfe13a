package cmd

import (
	"fmt"

	"github.com/lrstanley/go-ytdlp"
	"github.com/spf13/cobra"
)

var (
	version = "dev" // overridden at build time via -ldflags
	commit  = ""
	date    = ""
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Example: `  # Show version information
  ytbatch version`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ytbatch v%s (commit: %s, built %s)\n", version, commit, date)
		fmt.Printf("yt-dlp bindings generated for %s\n", ytdlp.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
