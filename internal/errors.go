package internal

import (
	"errors"
	"fmt"
)

// Error categories. Every failure surfaced by a pipeline is tagged with one of these.
var (
	// ErrInvalidInput marks a bad or missing URL, file, column or directory.
	ErrInvalidInput = errors.New("invalid input")

	// ErrExternalTool marks a non-zero exit from yt-dlp.
	ErrExternalTool = errors.New("external tool failure")

	// ErrTransfer marks an error raised while sending upload chunks.
	ErrTransfer = errors.New("network transfer failure")

	// ErrAuthentication marks a token refresh or interactive flow failure.
	ErrAuthentication = errors.New("authentication failure")
)

// CategoryError tags an error with one of the category sentinels.
// errors.Is matches both the category and anything in the wrapped chain.
type CategoryError struct {
	Category error
	Err      error
}

func (e *CategoryError) Error() string {
	return e.Err.Error()
}

func (e *CategoryError) Unwrap() []error {
	return []error{e.Category, e.Err}
}

// Categorize wraps err with the given category. A nil err stays nil.
func Categorize(category, err error) error {
	if err == nil {
		return nil
	}
	return &CategoryError{Category: category, Err: err}
}

// invalidInputf builds an ErrInvalidInput error from a format string
func invalidInputf(format string, args ...any) error {
	return Categorize(ErrInvalidInput, fmt.Errorf(format, args...))
}

// UploadError is the permanent failure of an upload job after its retry budget is spent.
type UploadError struct {
	Job      UploadJob
	Attempts int
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("uploading %s failed after %d attempt(s): %v", e.Job.Path, e.Attempts, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
