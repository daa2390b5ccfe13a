package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rtzll/ytbatch/internal"
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download [spreadsheet]",
	Short: "Download every video linked in a spreadsheet",
	Long: `Read the link column of a spreadsheet (.xlsx or .csv) and download each
video with yt-dlp, one at a time.

Rows without a http(s) URL are skipped. A failed download is written to the
error log and the batch continues with the next row.`,
	Example: `  # Use the configured spreadsheet (videos.xlsx by default)
  ytbatch download

  # Read links from another column and worksheet
  ytbatch download links.xlsx --column URL --sheet Shorts

  # Write videos somewhere else
  ytbatch download videos.csv --output-dir /srv/videos`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.ApplySheetFlags(cmd, config); err != nil {
			return err
		}

		app := internal.NewApp(config)

		var path string
		if len(args) > 0 {
			path = args[0]
		}

		_, err := app.DownloadFromSheet(cmd.Context(), app.Sheet(path))
		return err
	},
}

func init() {
	internal.AddDownloadFlags(downloadCmd)
	rootCmd.AddCommand(downloadCmd)
}
