package internal

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPServer wraps the MCP server and application dependencies
type MCPServer struct {
	app       *App
	mcpServer *server.MCPServer
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(app *App) *MCPServer {
	mcpServer := server.NewMCPServer(
		"ytbatch-server",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s := &MCPServer{
		app:       app,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s
}

// registerTools registers all available MCP tools
func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_sheet_links",
		mcp.WithDescription("List the video links found in the link column of a spreadsheet (.xlsx or .csv), one per data row, marking which rows would be downloaded and which would be skipped."),
		mcp.WithString("path",
			mcp.Description("Spreadsheet path (default: configured sheet_path)"),
		),
		mcp.WithString("column",
			mcp.Description("Header of the link column (default: configured link_column)"),
		),
	), s.handleListSheetLinks)

	s.mcpServer.AddTool(mcp.NewTool("download_video",
		mcp.WithDescription("Download a single video with yt-dlp into the configured downloads directory. The file is named after the sanitized video title. Failures are also appended to the error log."),
		mcp.WithString("url",
			mcp.Description("http(s) URL of the video"),
			mcp.Required(),
		),
	), s.handleDownloadVideo)

	s.mcpServer.AddTool(mcp.NewTool("list_upload_queue",
		mcp.WithDescription("List the local video files that the uploader would send, in upload order, with the title each one would be published under."),
		mcp.WithString("dir",
			mcp.Description("Directory to scan (default: configured downloads_dir)"),
		),
	), s.handleListUploadQueue)
}

// toolError records a failed tool call in the error log and returns it to the client
func (s *MCPServer) toolError(tool, message string, err error) *mcp.CallToolResult {
	if logErr := s.app.ErrorLog().Errorf("mcp %s: %s: %v", tool, message, err); logErr != nil {
		s.app.ui.Verbose("Warning: %v\n", logErr)
	}
	return mcp.NewToolResultErrorFromErr(message, err)
}

// handleListSheetLinks implements the list_sheet_links tool
func (s *MCPServer) handleListSheetLinks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sheet := s.app.Sheet(request.GetString("path", ""))
	if column := request.GetString("column", ""); column != "" {
		sheet.Column = column
	}

	rows, err := ReadRows(sheet)
	if err != nil {
		return s.toolError("list_sheet_links", "failed to read spreadsheet", err), nil
	}

	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("Spreadsheet: %s (column %q)\n", sheet.Path, sheet.Column))
	buf.WriteString(fmt.Sprintf("Rows: %d\n", len(rows)))
	for _, row := range rows {
		buf.WriteString(fmt.Sprintf("Row %d: %s [%s]\n", row.Number, row, describeRow(row)))
	}

	return mcp.NewToolResultText(buf.String()), nil
}

// handleDownloadVideo implements the download_video tool
func (s *MCPServer) handleDownloadVideo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	if _, err := ValidateLink(Row{Number: 1, Value: url, Present: url != "", Text: true}); err != nil {
		return s.toolError("download_video", "invalid url", err), nil
	}

	// DownloadOne already writes its failures to the error log
	result := s.app.Downloader().DownloadOne(ctx, url)
	if !result.OK() {
		return mcp.NewToolResultErrorFromErr("failed to download video", result.Err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Successfully downloaded: %s\nSaved to: %s\n", result.Title, s.app.Config().DownloadsDir)), nil
}

// handleListUploadQueue implements the list_upload_queue tool
func (s *MCPServer) handleListUploadQueue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir := request.GetString("dir", "")
	if dir == "" {
		dir = s.app.Config().DownloadsDir
	}

	jobs, err := ListUploadJobs(dir, s.app.Config().MediaExtension)
	if err != nil {
		return s.toolError("list_upload_queue", "failed to list upload queue", err), nil
	}

	if len(jobs) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No %s files found in %s\n", s.app.Config().MediaExtension, dir)), nil
	}

	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("Found %d videos to upload:\n", len(jobs)))
	for i, job := range jobs {
		buf.WriteString(fmt.Sprintf("%d. %s -> %q\n", i+1, job.Name, job.Title))
	}

	return mcp.NewToolResultText(buf.String()), nil
}

// Start starts the MCP server using the specified transport
func (s *MCPServer) Start(ctx context.Context, transport string, port int) error {
	if transport == "http" {
		httpServer := server.NewStreamableHTTPServer(s.mcpServer)
		addr := fmt.Sprintf(":%d", port)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return httpServer.Start(addr)
	}

	// Default to stdio transport
	return server.ServeStdio(s.mcpServer)
}

// GetServer returns the underlying MCP server for advanced configuration
func (s *MCPServer) GetServer() *server.MCPServer {
	return s.mcpServer
}
