package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkStatusFraction(t *testing.T) {
	tests := []struct {
		name   string
		status ChunkStatus
		want   float64
	}{
		{"unknown total", ChunkStatus{Sent: 10}, 0},
		{"half", ChunkStatus{Sent: 50, Total: 100}, 0.5},
		{"done", ChunkStatus{Sent: 100, Total: 100}, 1},
		{"overshoot", ChunkStatus{Sent: 150, Total: 100}, 1},
		{"negative", ChunkStatus{Sent: -1, Total: 100}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.status.Fraction(), 1e-9)
		})
	}
}

func TestProgressTrackerFold(t *testing.T) {
	statuses := []ChunkStatus{
		{Sent: 1 << 20, Total: 10 << 20},
		{Sent: 1 << 20, Total: 10 << 20},
		{Sent: 2 << 20, Total: 10 << 20},
		{Sent: 1 << 20, Total: 10 << 20}, // going backwards is never reported
		{Sent: 10 << 20, Total: 10 << 20},
	}

	tracker := ProgressTracker{}
	var reported []int
	for _, s := range statuses {
		var increased bool
		tracker, increased = tracker.Advance(s)
		if increased {
			reported = append(reported, tracker.Percent)
		}
	}

	assert.Equal(t, []int{10, 20, 100}, reported)
	assert.Equal(t, 100, tracker.Percent)
}

func TestWriterUIManagerQuietBars(t *testing.T) {
	ui, buf := newTestUI()
	bar := ui.NewProgressBar(100, "Downloading")
	bar.Set(50)
	bar.Describe("ignored")
	bar.Finish()

	ui.Verbose("hidden %d\n", 1)
	ui.Printf("shown %d\n", 2)
	assert.Equal(t, "shown 2\n", buf.String())
	assert.False(t, ui.Interactive())
}
