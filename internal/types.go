package internal

import (
	"fmt"
	"time"
)

// Row is one spreadsheet record from the link column
type Row struct {
	// Number is the 1-based worksheet row the value came from
	Number int `json:"row"`
	// Value is the raw cell text
	Value string `json:"value"`
	// Present is false when the cell is empty
	Present bool `json:"present"`
	// Text is false when the cell holds a number, date, bool or error
	Text bool `json:"text"`
}

// String returns the value the way it is shown in skip messages
func (r Row) String() string {
	if !r.Present {
		return "<empty>"
	}
	return r.Value
}

// DownloadStatus tags a DownloadResult
type DownloadStatus int

const (
	DownloadSucceeded DownloadStatus = iota
	DownloadFailed
	DownloadSkipped
)

// String returns a human-readable representation of the status
func (s DownloadStatus) String() string {
	switch s {
	case DownloadSucceeded:
		return "success"
	case DownloadSkipped:
		return "skipped"
	default:
		return "failure"
	}
}

// DownloadResult is the outcome for one URL
type DownloadResult struct {
	URL    string
	Status DownloadStatus
	// Title is set on success
	Title string
	// Err is set on failure or skip
	Err error
}

// OK reports whether the download succeeded
func (r DownloadResult) OK() bool {
	return r.Status == DownloadSucceeded
}

// DownloadSummary aggregates one download batch
type DownloadSummary struct {
	Total     int
	Succeeded int
	Failed    int
	Elapsed   time.Duration
	Results   []DownloadResult
}

// Record adds a result to the summary counters
func (s *DownloadSummary) Record(r DownloadResult) {
	s.Results = append(s.Results, r)
	if r.OK() {
		s.Succeeded++
	} else {
		s.Failed++
	}
}

// UploadJob is a local video queued for upload
type UploadJob struct {
	Path  string `json:"path"`
	Name  string `json:"file"`
	Title string `json:"title"`
}

// JobState is the position of an upload job in its retry state machine
type JobState int

const (
	JobNotStarted JobState = iota
	JobAttempting
	JobSucceeded
	JobPermanentlyFailed
)

// String returns a human-readable representation of the state
func (s JobState) String() string {
	switch s {
	case JobAttempting:
		return "attempting"
	case JobSucceeded:
		return "succeeded"
	case JobPermanentlyFailed:
		return "permanently failed"
	default:
		return "not started"
	}
}

// AttemptResult is the tagged outcome of one transfer attempt
type AttemptResult struct {
	Attempt int
	VideoID string
	Err     error
}

// Succeeded reports whether the attempt produced a resource identifier
func (r AttemptResult) Succeeded() bool {
	return r.Err == nil && r.VideoID != ""
}

// UploadOutcome is what the batch driver keeps for each job
type UploadOutcome struct {
	Job      UploadJob
	State    JobState
	Attempts int
	URL      string
	Err      error
}

// UploadSummary aggregates one upload batch
type UploadSummary struct {
	Total     int
	Succeeded int
	Failed    int
	Outcomes  []UploadOutcome
}

// Record adds an outcome to the summary counters
func (s *UploadSummary) Record(o UploadOutcome) {
	s.Outcomes = append(s.Outcomes, o)
	if o.State == JobSucceeded {
		s.Succeeded++
	} else {
		s.Failed++
	}
}

// URLs returns the resource URLs of every successful job
func (s *UploadSummary) URLs() []string {
	var urls []string
	for _, o := range s.Outcomes {
		if o.State == JobSucceeded {
			urls = append(urls, o.URL)
		}
	}
	return urls
}

// String returns the final summary line
func (s *UploadSummary) String() string {
	return fmt.Sprintf("Upload complete. Successfully uploaded %d of %d videos", s.Succeeded, s.Total)
}
