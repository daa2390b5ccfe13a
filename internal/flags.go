package internal

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// privacyStatuses are the values accepted by the YouTube API
var privacyStatuses = []string{"public", "unlisted", "private"}

// AddSheetFlags adds flags that locate the link column
func AddSheetFlags(cmd *cobra.Command) {
	cmd.Flags().String("column", "", "Header of the column holding video URLs (default from config: Link)")
	cmd.Flags().String("sheet", "", "Worksheet name (default: first worksheet)")
}

// AddDownloadFlags adds flags related to the download pipeline
func AddDownloadFlags(cmd *cobra.Command) {
	AddSheetFlags(cmd)
	cmd.Flags().String("output-dir", "", "Directory downloaded videos are written to")
}

// AddUploadFlags adds flags related to the upload pipeline
func AddUploadFlags(cmd *cobra.Command) {
	cmd.Flags().String("privacy", "", "Privacy status of uploaded videos (public, unlisted, private)")
	cmd.Flags().Bool("copy", false, "Copy the URLs of uploaded videos to the clipboard")
}

// ApplySheetFlags copies explicitly set sheet flags into config
func ApplySheetFlags(cmd *cobra.Command, config *Config) error {
	if f := cmd.Flags().Lookup("column"); f != nil && f.Changed {
		config.LinkColumn = f.Value.String()
	}
	if f := cmd.Flags().Lookup("sheet"); f != nil && f.Changed {
		config.SheetName = f.Value.String()
	}
	if f := cmd.Flags().Lookup("output-dir"); f != nil && f.Changed {
		config.DownloadsDir = f.Value.String()
	}
	return nil
}

// ApplyUploadFlags copies explicitly set upload flags into config
func ApplyUploadFlags(cmd *cobra.Command, config *Config) error {
	privacyFlag := cmd.Flags().Lookup("privacy")
	if privacyFlag != nil && privacyFlag.Changed {
		config.Privacy = privacyFlag.Value.String()
	}
	return ValidatePrivacy(config.Privacy)
}

// ValidatePrivacy checks if the privacy status is supported
func ValidatePrivacy(privacy string) error {
	if slices.Contains(privacyStatuses, privacy) {
		return nil
	}
	return invalidInputf("unsupported privacy status: %s (supported: %v)", privacy, privacyStatuses)
}

// HandleVerboseFlag processes the --verbose and --quiet flags to update config
func HandleVerboseFlag(cmd *cobra.Command, config *Config) error {
	if f := cmd.Flags().Lookup("verbose"); f != nil && f.Changed {
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return fmt.Errorf("failed to get verbose flag: %w", err)
		}
		config.Verbose = verbose
	}
	if f := cmd.Flags().Lookup("quiet"); f != nil && f.Changed {
		quiet, err := cmd.Flags().GetBool("quiet")
		if err != nil {
			return fmt.Errorf("failed to get quiet flag: %w", err)
		}
		config.Quiet = quiet
	}
	return nil
}
