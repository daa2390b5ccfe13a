package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// invalidFilenameChars covers characters rejected by Windows, macOS or Linux file systems
var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1F\x7F]`)

// reservedNames are device names Windows refuses as file names
var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// maxFilenameLength leaves room for ".%(ext)s" expansion on a 255 byte limit
const maxFilenameLength = 240

// SanitizeTitle turns a video title into a file-system safe base name
// with spaces replaced by underscores
func SanitizeTitle(title string) string {
	clean := invalidFilenameChars.ReplaceAllString(title, "")
	clean = strings.TrimSpace(clean)
	clean = strings.TrimRight(clean, ". ")

	if len(clean) > maxFilenameLength {
		clean = truncateUTF8(clean, maxFilenameLength)
	}
	if reservedNames[strings.ToUpper(clean)] {
		clean += "_"
	}
	if clean == "" {
		return "video"
	}

	return strings.ReplaceAll(clean, " ", "_")
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return strings.TrimRight(s[:cut], ". ")
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// TitleFromFilename derives the display title of an upload from its file name
func TitleFromFilename(name string) string {
	base := filepath.Base(name)
	return strings.ReplaceAll(strings.TrimSuffix(base, filepath.Ext(base)), "_", " ")
}

// getTerminalWidth gets terminal width with fallback
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}

	if width > 10 {
		return width - 4
	}

	return width
}

// RenderMarkdown renders markdown content with glamour
func RenderMarkdown(content string) (string, error) {
	width := getTerminalWidth()
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithColorProfile(termenv.EnvColorProfile()),
	)
	if err != nil {
		return "", fmt.Errorf("creating terminal renderer: %w", err)
	}

	renderedContent, err := r.Render(content)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	return renderedContent, nil
}

// FileExists checks if a file exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

// DirExists checks that path exists and is a directory
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// EnsureDirs creates directories if needed
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if !FileExists(dir) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}
	}
	return nil
}
