package internal

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args

	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text, res.IsError
}

func TestMCPListSheetLinks(t *testing.T) {
	config := testConfig(t)
	require.NoError(t, os.WriteFile(config.SheetPath, []byte("Link\nhttps://youtu.be/a\nftp://x\n"), 0644))
	server := NewMCPServer(newTestApp(t, config, nil).App)

	text, isErr := callTool(t, server.handleListSheetLinks, nil)
	assert.False(t, isErr)
	assert.Contains(t, text, "Rows: 2")
	assert.Contains(t, text, "Row 2: https://youtu.be/a [ok]")
	assert.Contains(t, text, "Row 3: ftp://x [skip (")
}

func TestMCPListSheetLinksMissingFileIsLogged(t *testing.T) {
	config := testConfig(t)
	server := NewMCPServer(newTestApp(t, config, nil).App)

	text, isErr := callTool(t, server.handleListSheetLinks, map[string]any{"path": config.SheetPath + ".missing"})
	assert.True(t, isErr)
	assert.Contains(t, text, "failed to read spreadsheet")

	data, err := os.ReadFile(config.ErrorLog)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mcp list_sheet_links")
}

func TestMCPDownloadVideo(t *testing.T) {
	config := testConfig(t)
	app := newTestApp(t, config, nil)
	app.fetcher.titles = map[string]string{"https://youtu.be/a": "A title"}
	server := NewMCPServer(app.App)

	text, isErr := callTool(t, server.handleDownloadVideo, map[string]any{"url": "https://youtu.be/a"})
	assert.False(t, isErr)
	assert.Contains(t, text, "Successfully downloaded: A title")
	assert.Equal(t, []string{"https://youtu.be/a"}, app.fetcher.downloadCalls)
}

func TestMCPDownloadVideoFailure(t *testing.T) {
	config := testConfig(t)
	app := newTestApp(t, config, nil)
	app.fetcher.downloadErr["https://youtu.be/a"] = errors.New("yt-dlp exited with status 1")
	server := NewMCPServer(app.App)

	text, isErr := callTool(t, server.handleDownloadVideo, map[string]any{"url": "https://youtu.be/a"})
	assert.True(t, isErr)
	assert.Contains(t, text, "failed to download video")

	data, err := os.ReadFile(config.ErrorLog)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Failed to download https://youtu.be/a")
}

func TestMCPDownloadVideoRejectsInvalidURL(t *testing.T) {
	config := testConfig(t)
	app := newTestApp(t, config, nil)
	server := NewMCPServer(app.App)

	_, isErr := callTool(t, server.handleDownloadVideo, map[string]any{"url": "youtu.be/a"})
	assert.True(t, isErr)
	assert.Zero(t, app.fetcher.toolCalls())

	_, isErr = callTool(t, server.handleDownloadVideo, map[string]any{})
	assert.True(t, isErr)
}

func TestMCPListUploadQueue(t *testing.T) {
	config := testConfig(t)
	writeFiles(t, config.DownloadsDir, "b_clip.mp4", "a_clip.mp4")
	server := NewMCPServer(newTestApp(t, config, nil).App)

	text, isErr := callTool(t, server.handleListUploadQueue, nil)
	assert.False(t, isErr)
	assert.Contains(t, text, "Found 2 videos to upload:")
	assert.Contains(t, text, `1. a_clip.mp4 -> "a clip"`)
	assert.Contains(t, text, `2. b_clip.mp4 -> "b clip"`)
}
