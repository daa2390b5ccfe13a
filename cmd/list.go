package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytbatch/internal"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list [spreadsheet]",
	Short: "Show what download and upload would do",
	Example: `  # Show the rows of the configured spreadsheet and the upload queue
  ytbatch list

  # Check another spreadsheet against another upload directory
  ytbatch list links.csv --dir ./shorts

  # Save the plan as JSON
  ytbatch list -o plan.json --pretty`,
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
		dir, _ := cmd.Flags().GetString("dir")

		plan, err := app.Plan(app.Sheet(path), dir)
		if err != nil {
			return err
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		pretty, _ := cmd.Flags().GetBool("pretty")
		outputFile, _ := cmd.Flags().GetString("output")

		if !asJSON && !pretty && outputFile == "" {
			rendered, err := internal.RenderMarkdown(plan.Markdown())
			if err != nil {
				return err
			}
			fmt.Print(rendered)
			return nil
		}

		// Convert plan to JSON
		var jsonData []byte
		if pretty {
			jsonData, err = json.MarshalIndent(plan, "", "  ")
		} else {
			jsonData, err = json.Marshal(plan)
		}
		if err != nil {
			return fmt.Errorf("error converting plan to JSON: %w", err)
		}

		if outputFile != "" {
			return os.WriteFile(outputFile, jsonData, 0644)
		}

		fmt.Println(string(jsonData))

		return nil
	},
}

func init() {
	internal.AddSheetFlags(listCmd)
	listCmd.Flags().String("dir", "", "Upload directory to scan (default: downloads_dir)")
	listCmd.Flags().Bool("json", false, "Print the plan as JSON")
	listCmd.Flags().StringP("output", "o", "", "Write the plan as JSON to a file")
	listCmd.Flags().Bool("pretty", false, "Format output as pretty JSON")
	rootCmd.AddCommand(listCmd)
}
