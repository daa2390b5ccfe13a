package internal

import (
	"context"
	"fmt"
	"path/filepath"
	"time"
)

// BatchDownloader runs the spreadsheet download loop, one URL at a time
type BatchDownloader struct {
	fetcher   MediaFetcher
	outputDir string
	errLog    *ErrorLog
	ui        UIManager
	now       func() time.Time
}

// NewBatchDownloader creates a download loop writing into outputDir
func NewBatchDownloader(fetcher MediaFetcher, outputDir string, errLog *ErrorLog, ui UIManager) *BatchDownloader {
	return &BatchDownloader{
		fetcher:   fetcher,
		outputDir: outputDir,
		errLog:    errLog,
		ui:        ui,
		now:       time.Now,
	}
}

// Run processes every row in order. Failures are recorded and never stop the batch;
// only a cancelled context ends it early.
func (d *BatchDownloader) Run(ctx context.Context, rows []Row) DownloadSummary {
	start := d.now()
	summary := DownloadSummary{Total: len(rows)}

	for _, row := range rows {
		if ctx.Err() != nil {
			break
		}

		url, err := ValidateLink(row)
		if err != nil {
			d.ui.Printf("Skipping invalid URL: %s\n", row)
			d.ui.Verbose("%v\n", err)
			summary.Record(DownloadResult{URL: row.Value, Status: DownloadSkipped, Err: err})
			continue
		}

		d.ui.Printf("\nProcessing: %s\n", url)
		result := d.DownloadOne(ctx, url)
		if result.OK() {
			d.ui.Printf("Successfully downloaded: %s\n", result.Title)
		} else {
			d.ui.Printf("Failed to download: %v\n", result.Err)
		}
		summary.Record(result)
	}

	summary.Elapsed = d.now().Sub(start)
	return summary
}

// DownloadOne fetches the title of url, derives a safe file name and downloads the media
func (d *BatchDownloader) DownloadOne(ctx context.Context, url string) DownloadResult {
	if err := EnsureDirs(d.outputDir); err != nil {
		return d.fail(url, fmt.Errorf("creating output directory: %w", err))
	}

	title, err := d.fetcher.Title(ctx, url)
	if err != nil {
		return d.fail(url, err)
	}

	outputTemplate := filepath.Join(d.outputDir, SanitizeTitle(title)+".%(ext)s")
	d.ui.Verbose("Output template: %s\n", outputTemplate)

	if err := d.fetcher.Download(ctx, url, outputTemplate); err != nil {
		return d.fail(url, err)
	}

	return DownloadResult{URL: url, Status: DownloadSucceeded, Title: title}
}

// fail records a per-URL failure in the error log
func (d *BatchDownloader) fail(url string, err error) DownloadResult {
	if logErr := d.errLog.Errorf("Failed to download %s: %v", url, err); logErr != nil {
		d.ui.Printf("Warning: %v\n", logErr)
	}
	return DownloadResult{URL: url, Status: DownloadFailed, Err: err}
}

// PrintDownloadSummary writes the end-of-run report
func PrintDownloadSummary(ui UIManager, summary DownloadSummary, errLogPath string) {
	ui.Printf("\n=== Download Summary ===\n")
	ui.Printf("Total URLs processed: %d\n", summary.Total)
	ui.Printf("Successfully downloaded: %d\n", summary.Succeeded)
	ui.Printf("Failed downloads: %d\n", summary.Failed)
	ui.Printf("Time taken: %s\n", summary.Elapsed.Round(time.Millisecond))
	ui.Printf("Error log saved to: %s\n", errLogPath)
	ui.Println("Done.")
}
