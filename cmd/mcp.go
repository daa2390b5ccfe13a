package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/rtzll/ytbatch/internal"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP server for the batch pipelines",
	Long: `Run a Model Context Protocol (MCP) server that exposes ytbatch as tools.

The MCP server provides three tools:
- list_sheet_links: Show the link column of a spreadsheet with row verdicts
- download_video: Download one video into the downloads directory
- list_upload_queue: Show the files the uploader would send and their titles

Uploading is not exposed since it needs an interactive OAuth consent.

Transport options:
- stdio (default): Standard MCP transport via stdin/stdout
- http: HTTP transport on specified port (use --port to configure)`,
	Example: `  # Run MCP server with stdio transport (e.g. for Claude Desktop)
  ytbatch mcp

  # Run MCP server with HTTP transport on port 8090
  ytbatch mcp --transport=http --port=8090

  # Set up Claude Desktop integration
  ytbatch mcp setup-claude`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the protocol, so status output is silenced
		config.Verbose = false
		config.Quiet = true
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		app := internal.NewApp(config)

		mcpServer := internal.NewMCPServer(app)

		// stdio belongs to the protocol; only the HTTP transport announces itself
		if transport == "http" {
			fmt.Fprintf(os.Stderr, "Starting ytbatch MCP server on HTTP port %d...\n", port)
		}

		// Start the server (this will block until context is cancelled)
		return mcpServer.Start(cmd.Context(), transport, port)
	},
}

// setupClaudeCmd represents the setup-claude subcommand
var setupClaudeCmd = &cobra.Command{
	Use:   "setup-claude",
	Short: "Configure Claude Desktop to use the ytbatch MCP server",
	Long: `Automatically configure Claude Desktop to use ytbatch as an MCP server.

This command will:
- Detect Claude Desktop installation and config location
- Add ytbatch MCP server configuration to claude_desktop_config.json
- Preserve existing MCP server configurations
- Set appropriate XDG environment variables for the current platform`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setupClaudeDesktop()
	},
}

// ClaudeDesktopConfig represents the claude_desktop_config.json structure
type ClaudeDesktopConfig struct {
	MCPServers map[string]MCPServerConfig `json:"mcpServers"`
}

// MCPServerConfig represents an individual MCP server configuration
type MCPServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env"`
}

// setupClaudeDesktop implements the setup-claude subcommand
func setupClaudeDesktop() error {
	// Get the path to the current binary
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("getting executable path: %w", err)
	}

	// Resolve symlinks to get the actual binary path
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}

	desktopConfigPath, err := getClaudeDesktopConfigPath()
	if err != nil {
		return fmt.Errorf("getting Claude Desktop config path: %w", err)
	}

	// Check if config file exists - abort if it doesn't
	if _, err := os.Stat(desktopConfigPath); os.IsNotExist(err) {
		return fmt.Errorf("config for Claude Desktop not found at %s", desktopConfigPath)
	}

	var desktopConfig ClaudeDesktopConfig
	data, err := os.ReadFile(desktopConfigPath)
	if err != nil {
		return fmt.Errorf("reading existing config: %w", err)
	}

	if err := json.Unmarshal(data, &desktopConfig); err != nil {
		return fmt.Errorf("parsing existing config: %w", err)
	}

	if desktopConfig.MCPServers == nil {
		desktopConfig.MCPServers = make(map[string]MCPServerConfig)
	}

	env, err := mcpServerEnv()
	if err != nil {
		return err
	}

	desktopConfig.MCPServers["ytbatch"] = MCPServerConfig{
		Command: execPath,
		Args:    []string{"mcp"},
		Env:     env,
	}

	data, err = json.MarshalIndent(desktopConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(desktopConfigPath, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("Successfully configured Claude Desktop MCP server\n")
	fmt.Printf("Downloads will be written to %s\n", env["YTBATCH_DOWNLOADS_DIR"])
	fmt.Printf("Restart Claude Desktop to use the ytbatch MCP server\n")

	return nil
}

// mcpServerEnv pins the XDG base paths and the working files to absolute paths,
// since Claude Desktop starts the server from an unrelated directory
func mcpServerEnv() (map[string]string, error) {
	env := map[string]string{
		"XDG_DATA_HOME":   xdg.DataHome,
		"XDG_CONFIG_HOME": xdg.ConfigHome,
		"XDG_CACHE_HOME":  xdg.CacheHome,
	}

	for key, path := range map[string]string{
		"YTBATCH_SHEET_PATH":    config.SheetPath,
		"YTBATCH_DOWNLOADS_DIR": config.DownloadsDir,
		"YTBATCH_ERROR_LOG":     config.ErrorLog,
	} {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", path, err)
		}
		env[key] = abs
	}

	return env, nil
}

// getClaudeDesktopConfigPath returns the platform-specific config path for Claude Desktop
func getClaudeDesktopConfigPath() (string, error) {
	var configPath string

	switch runtime.GOOS {
	case "darwin":
		// macOS: ~/Library/Application Support/Claude/claude_desktop_config.json
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configPath = filepath.Join(homeDir, "Library", "Application Support", "Claude", "claude_desktop_config.json")

	case "windows":
		// Windows: %APPDATA%/Claude/claude_desktop_config.json
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		configPath = filepath.Join(appData, "Claude", "claude_desktop_config.json")

	case "linux":
		// Linux: ~/.config/Claude/claude_desktop_config.json
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configPath = filepath.Join(homeDir, ".config", "Claude", "claude_desktop_config.json")

	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return configPath, nil
}

func init() {
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol (stdio or http)")
	mcpCmd.Flags().Int("port", 8090, "Port for HTTP transport (only used with --transport=http)")
	mcpCmd.AddCommand(setupClaudeCmd)
	rootCmd.AddCommand(mcpCmd)
}
