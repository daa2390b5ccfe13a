package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	// DefaultMaxRetries is the number of attempts per upload job
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the fixed pause between attempts
	DefaultRetryDelay = 5 * time.Second
)

// Transfer performs one complete upload of a job, from request construction
// to the final response. onChunk is called after every acknowledged chunk.
type Transfer interface {
	Send(ctx context.Context, job UploadJob, onChunk func(ChunkStatus)) (videoID string, err error)
}

// Sleeper pauses between attempts
type Sleeper func(ctx context.Context, d time.Duration) error

// contextSleep waits for d or until ctx is done
func contextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Uploader uploads one job with a bounded, fixed-delay retry budget
type Uploader struct {
	transfer   Transfer
	maxRetries int
	retryDelay time.Duration
	urlBase    string
	sleep      Sleeper
	ui         UIManager
}

// UploaderOption customizes Uploader creation
type UploaderOption func(*Uploader)

// WithRetryPolicy overrides the attempt budget and delay
func WithRetryPolicy(maxRetries int, delay time.Duration) UploaderOption {
	return func(u *Uploader) {
		if maxRetries > 0 {
			u.maxRetries = maxRetries
		}
		if delay >= 0 {
			u.retryDelay = delay
		}
	}
}

// WithSleeper replaces the pause between attempts
func WithSleeper(sleep Sleeper) UploaderOption {
	return func(u *Uploader) {
		u.sleep = sleep
	}
}

// WithURLBase sets the prefix the video ID is appended to
func WithURLBase(base string) UploaderOption {
	return func(u *Uploader) {
		if base != "" {
			u.urlBase = base
		}
	}
}

// NewUploader creates an uploader over transfer
func NewUploader(transfer Transfer, ui UIManager, options ...UploaderOption) *Uploader {
	u := &Uploader{
		transfer:   transfer,
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		urlBase:    "https://youtube.com/shorts/",
		sleep:      contextSleep,
		ui:         ui,
	}

	for _, option := range options {
		option(u)
	}

	return u
}

// Upload runs the job's state machine: each attempt restarts the transfer from the
// beginning; after maxRetries failed attempts the last error is returned wrapped in
// an UploadError. No pause follows the final attempt.
func (u *Uploader) Upload(ctx context.Context, job UploadJob) (UploadOutcome, error) {
	outcome := UploadOutcome{Job: job, State: JobNotStarted}

	for attempt := 1; attempt <= u.maxRetries; attempt++ {
		outcome.State = JobAttempting
		outcome.Attempts = attempt

		u.ui.Printf("\nUpload attempt %d of %d for: %s\n", attempt, u.maxRetries, job.Title)
		result := u.attempt(ctx, job, attempt)
		if result.Succeeded() {
			outcome.State = JobSucceeded
			outcome.URL = u.VideoURL(result.VideoID)
			return outcome, nil
		}

		outcome.Err = result.Err
		u.ui.Printf("Attempt %d failed: %v\n", attempt, result.Err)

		// a cancelled run is not retried
		if ctx.Err() != nil {
			break
		}
		if attempt < u.maxRetries {
			u.ui.Printf("Retrying in %d seconds...\n", int(u.retryDelay.Seconds()))
			if err := u.sleep(ctx, u.retryDelay); err != nil {
				break
			}
		}
	}

	outcome.State = JobPermanentlyFailed
	if ctx.Err() != nil && outcome.Err == nil {
		outcome.Err = ctx.Err()
	}
	err := &UploadError{Job: job, Attempts: outcome.Attempts, Err: outcome.Err}
	outcome.Err = err
	return outcome, err
}

// attempt performs one transfer and folds its chunk statuses into progress lines
func (u *Uploader) attempt(ctx context.Context, job UploadJob, n int) AttemptResult {
	tracker := ProgressTracker{}
	report := func(status ChunkStatus) {
		next, increased := tracker.Advance(status)
		if increased {
			u.ui.Printf("Upload progress: %d%%\n", next.Percent)
		}
		tracker = next
	}

	id, err := u.transfer.Send(ctx, job, report)
	if err == nil && id == "" {
		err = fmt.Errorf("upload response carried no video id")
	}
	if err != nil {
		return AttemptResult{Attempt: n, Err: Categorize(ErrTransfer, err)}
	}
	return AttemptResult{Attempt: n, VideoID: id}
}

// VideoURL builds the public URL of an uploaded video
func (u *Uploader) VideoURL(videoID string) string {
	return u.urlBase + videoID
}

// UploadBatch runs every job sequentially. A permanent failure is recorded
// and the batch moves on to the next job.
func (u *Uploader) UploadBatch(ctx context.Context, jobs []UploadJob) UploadSummary {
	summary := UploadSummary{Total: len(jobs)}

	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}

		u.ui.Printf("\nProcessing: %s (%s)\n", job.Name, job.Title)
		outcome, err := u.Upload(ctx, job)
		if err != nil {
			u.ui.Printf("Failed to upload %s: %v\n", job.Name, unwrapUploadError(err))
		} else {
			u.ui.Printf("Success! View at: %s\n", outcome.URL)
		}
		summary.Record(outcome)
	}

	return summary
}

// unwrapUploadError returns the last attempt's error for display
func unwrapUploadError(err error) error {
	var ue *UploadError
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err
	}
	return err
}

// ListUploadJobs returns one job per file in dir whose extension matches ext
// (case-insensitive), sorted by file name
func ListUploadJobs(dir, ext string) ([]UploadJob, error) {
	if !DirExists(dir) {
		return nil, invalidInputf("directory not found - %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, invalidInputf("reading directory %s: %w", dir, err)
	}

	ext = normalizeExtension(ext)
	var jobs []UploadJob
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(strings.ToLower(name), ext) {
			continue
		}
		jobs = append(jobs, UploadJob{
			Path:  filepath.Join(dir, name),
			Name:  name,
			Title: TitleFromFilename(name),
		})
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs, nil
}
