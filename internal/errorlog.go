package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// errorLogTimeLayout matches "2024-05-01 13:04:55,123"
const errorLogTimeLayout = "2006-01-02 15:04:05,000"

// ErrorLog is an append-only text log of pipeline failures.
// Each record opens, writes and closes the file.
type ErrorLog struct {
	path string
	now  func() time.Time
}

// NewErrorLog creates an error log writing to path
func NewErrorLog(path string) *ErrorLog {
	return &ErrorLog{path: path, now: time.Now}
}

// Path returns the log file location
func (l *ErrorLog) Path() string {
	return l.path
}

// Errorf appends one "<timestamp> - ERROR - <message>" line
func (l *ErrorLog) Errorf(format string, args ...any) error {
	if l == nil || l.path == "" {
		return nil
	}

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating error log directory: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening error log: %w", err)
	}

	// one record per line, even for multi-line tool output
	msg := strings.ReplaceAll(fmt.Sprintf(format, args...), "\n", " ")
	line := fmt.Sprintf("%s - ERROR - %s\n", l.now().Format(errorLogTimeLayout), msg)
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("writing error log: %w", err)
	}
	return f.Close()
}
