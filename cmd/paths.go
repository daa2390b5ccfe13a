package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// pathsCmd represents the paths command
var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show paths used by the application",
	Example: `  # Show all application paths
  ytbatch paths`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Config directory: %s\n", config.ConfigDir)
		fmt.Printf("Data directory: %s\n", config.DataDir)
		fmt.Printf("Cache directory: %s\n", config.CacheDir)
		fmt.Printf("Spreadsheet: %s\n", config.SheetPath)
		fmt.Printf("Downloads directory: %s\n", config.DownloadsDir)
		fmt.Printf("Error log: %s\n", config.ErrorLog)
		fmt.Printf("Client secrets: %s\n", config.ClientSecretsFile)
		fmt.Printf("Token file: %s\n", config.TokenFile)
	},
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}
