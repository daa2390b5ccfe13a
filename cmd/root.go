package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytbatch/internal"
)

var (
	config *internal.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ytbatch",
	Short: "Batch download and upload YouTube videos",
	Long: `ytbatch runs two independent batch pipelines.

The downloader reads video links from the "Link" column of a spreadsheet and
fetches each one with yt-dlp, naming the file after the video title.

The uploader authenticates with OAuth once, then uploads every video file in a
directory to YouTube with a chunked resumable transfer, retrying each file a
fixed number of times before moving on to the next.`,
	Example: `  # Download every link in videos.xlsx into ./downloads
  ytbatch download

  # Upload everything in ./downloads
  ytbatch upload

  # Check what would be downloaded and uploaded
  ytbatch list videos.xlsx`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if f := cmd.Flags().Lookup("config"); f != nil && f.Changed {
			*config = *internal.InitConfig(f.Value.String())
		}
		return internal.HandleVerboseFlag(cmd, config)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Create a cancellable context for the entire application
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize configuration with Viper
	config = internal.InitConfig("")

	// Ensure XDG directories exist
	if err := internal.EnsureDirs(config.ConfigDir, config.DataDir, config.CacheDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating XDG directories: %v\n", err)
		os.Exit(1)
	}

	// Ensure default config exists in XDG config directory
	if err := internal.EnsureDefaultConfig(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default config: %v\n", err)
	}

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// The first signal cancels the in-flight item and stops the batch; a second one exits
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal. Cancelling the current item and shutting down...")
		cancel()

		<-sigCh
		fmt.Fprintln(os.Stderr, "Forcing exit")
		os.Exit(130)
	}()

	// Set context on root command
	rootCmd.SetContext(ctx)

	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only print errors")
	rootCmd.PersistentFlags().String("config", "", "Config file (default is $XDG_CONFIG_HOME/ytbatch/config.toml)")
}
