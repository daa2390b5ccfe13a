package internal

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// UIManager handles all user interface concerns (progress, verbose output, status lines)
type UIManager interface {
	// Progress bars
	NewProgressBar(total int, description string) ProgressBar

	// Verbose output
	Verbose(format string, args ...interface{})

	// Status messages
	Printf(format string, args ...interface{})
	Println(args ...interface{})

	// Interactive reports whether output goes to a terminal
	Interactive() bool
}

// ProgressBar interface abstracts progress bar operations
type ProgressBar interface {
	Set(current int)
	Describe(description string)
	Finish()
}

// StandardUIManager handles normal UI operations
type StandardUIManager struct {
	out     io.Writer
	verbose bool
	quiet   bool
	tty     bool
}

func NewUIManager(verbose, quiet bool) UIManager {
	return &StandardUIManager{
		out:     os.Stdout,
		verbose: verbose,
		quiet:   quiet,
		tty:     isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}
}

// NewWriterUIManager writes status output to w and never draws progress bars
func NewWriterUIManager(w io.Writer, verbose bool) UIManager {
	return &StandardUIManager{out: w, verbose: verbose}
}

// Progress Bar Methods
func (ui *StandardUIManager) NewProgressBar(total int, description string) ProgressBar {
	if ui.quiet || !ui.tty {
		return &SilentProgressBar{bar: progressbar.DefaultSilent(int64(total))}
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(ui.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
	return &VisibleProgressBar{bar: bar}
}

// Verbose Output Methods
func (ui *StandardUIManager) Verbose(format string, args ...interface{}) {
	if ui.verbose {
		fmt.Fprintf(ui.out, format, args...)
	}
}

// Status Message Methods
func (ui *StandardUIManager) Printf(format string, args ...interface{}) {
	if !ui.quiet {
		fmt.Fprintf(ui.out, format, args...)
	}
}

func (ui *StandardUIManager) Println(args ...interface{}) {
	if !ui.quiet {
		fmt.Fprintln(ui.out, args...)
	}
}

func (ui *StandardUIManager) Interactive() bool {
	return ui.tty && !ui.quiet
}

// VisibleProgressBar wraps the actual progress bar
type VisibleProgressBar struct {
	bar *progressbar.ProgressBar
}

func (v *VisibleProgressBar) Set(current int) {
	v.bar.Set(current)
}

func (v *VisibleProgressBar) Describe(description string) {
	v.bar.Describe(description)
}

func (v *VisibleProgressBar) Finish() {
	v.bar.Finish()
}

// SilentProgressBar implements a silent progress bar
type SilentProgressBar struct {
	bar *progressbar.ProgressBar
}

func (s *SilentProgressBar) Set(current int) {
	s.bar.Set(current)
}

func (s *SilentProgressBar) Describe(description string) {
	// Do nothing for silent mode
}

func (s *SilentProgressBar) Finish() {
	s.bar.Finish()
}

// ChunkStatus is the intermediate state reported after each acknowledged chunk
type ChunkStatus struct {
	Sent  int64
	Total int64
}

// Fraction returns completion in [0,1]
func (s ChunkStatus) Fraction() float64 {
	if s.Total <= 0 {
		return 0
	}
	f := float64(s.Sent) / float64(s.Total)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// ProgressTracker folds chunk statuses into the last reported integer percentage
type ProgressTracker struct {
	Percent int
}

// Advance returns the next tracker state and whether the percentage strictly increased
func (t ProgressTracker) Advance(status ChunkStatus) (ProgressTracker, bool) {
	percent := int(status.Fraction() * 100)
	if percent > t.Percent {
		return ProgressTracker{Percent: percent}, true
	}
	return t, false
}
