package internal

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottledReaderUnlimited(t *testing.T) {
	r := strings.NewReader("payload")
	assert.Same(t, r, NewThrottledReader(context.Background(), r, 0))
}

func TestThrottledReaderPassesData(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 3000)
	r := NewThrottledReader(context.Background(), bytes.NewReader(data), 1024) // 1 MiB/s

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestThrottledReaderCapsReadSize(t *testing.T) {
	r := NewThrottledReader(context.Background(), bytes.NewReader(make([]byte, 8192)), 1)

	buf := make([]byte, 4096)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 1024, n)
}

func TestThrottledReaderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewThrottledReader(ctx, strings.NewReader("payload"), 1)
	_, err := r.Read(make([]byte, 16))
	assert.ErrorIs(t, err, context.Canceled)
}
