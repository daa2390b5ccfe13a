package internal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// fakeFetcher stands in for yt-dlp
type fakeFetcher struct {
	titles      map[string]string
	titleErrs   map[string]error
	downloadErr map[string]error

	titleCalls    []string
	downloadCalls []string
	templates     []string
}

func (f *fakeFetcher) Title(ctx context.Context, url string) (string, error) {
	f.titleCalls = append(f.titleCalls, url)
	if err := f.titleErrs[url]; err != nil {
		return "", err
	}
	if title, ok := f.titles[url]; ok {
		return title, nil
	}
	return "Video " + url, nil
}

func (f *fakeFetcher) Download(ctx context.Context, url, outputTemplate string) error {
	f.downloadCalls = append(f.downloadCalls, url)
	f.templates = append(f.templates, outputTemplate)
	return f.downloadErr[url]
}

func (f *fakeFetcher) toolCalls() int {
	return len(f.titleCalls) + len(f.downloadCalls)
}

// scriptedTransfer fails each job's first N attempts and reports the given chunk statuses
type scriptedTransfer struct {
	mu       sync.Mutex
	failures map[string]int // job name -> attempts that fail before one succeeds
	chunks   []ChunkStatus
	attempts map[string]int
}

func newScriptedTransfer(failures map[string]int) *scriptedTransfer {
	return &scriptedTransfer{failures: failures, attempts: map[string]int{}}
}

func (s *scriptedTransfer) Send(ctx context.Context, job UploadJob, onChunk func(ChunkStatus)) (string, error) {
	s.mu.Lock()
	s.attempts[job.Name]++
	n := s.attempts[job.Name]
	s.mu.Unlock()

	for _, c := range s.chunks {
		onChunk(c)
	}
	if n <= s.failures[job.Name] {
		return "", fmt.Errorf("connection reset on attempt %d", n)
	}
	return "id-" + job.Name, nil
}

// alwaysFail is a failure count larger than any retry budget
const alwaysFail = 1000

// recordingSleeper records requested pauses without sleeping
type recordingSleeper struct {
	durations []time.Duration
	err       error
}

func (r *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	r.durations = append(r.durations, d)
	return r.err
}

var errBoom = errors.New("boom")

// newTestUI captures status output
func newTestUI() (UIManager, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewWriterUIManager(&buf, false), &buf
}
