package internal

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorizeMatchesCategoryAndCause(t *testing.T) {
	err := Categorize(ErrTransfer, fmt.Errorf("sending chunk: %w", os.ErrDeadlineExceeded))

	assert.ErrorIs(t, err, ErrTransfer)
	assert.ErrorIs(t, err, os.ErrDeadlineExceeded)
	assert.NotErrorIs(t, err, ErrAuthentication)
	assert.Equal(t, "sending chunk: i/o timeout", err.Error())
	assert.NoError(t, Categorize(ErrTransfer, nil))
}

func TestUploadErrorUnwrapsLastAttempt(t *testing.T) {
	last := Categorize(ErrTransfer, errors.New("connection reset"))
	err := fmt.Errorf("batch: %w", &UploadError{Job: UploadJob{Path: "a.mp4"}, Attempts: 3, Err: last})

	var uploadErr *UploadError
	assert.True(t, errors.As(err, &uploadErr))
	assert.Equal(t, 3, uploadErr.Attempts)
	assert.ErrorIs(t, err, ErrTransfer)
	assert.Equal(t, "batch: uploading a.mp4 failed after 3 attempt(s): connection reset", err.Error())
}
