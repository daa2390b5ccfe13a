package internal

import (
	"context"
	"fmt"
	"net/http"
)

// App holds the application state and dependencies
type App struct {
	config   *Config
	ui       UIManager
	errLog   *ErrorLog
	fetcher  MediaFetcher
	transfer Transfer
	sleep    Sleeper
	auth     func(ctx context.Context) (*http.Client, error)
}

// NewApp initializes the application
func NewApp(config *Config, options ...AppOption) *App {
	app := &App{
		config: config,
		ui:     NewUIManager(config.Verbose, config.Quiet),
		errLog: NewErrorLog(config.ErrorLog),
		sleep:  contextSleep,
	}
	app.auth = app.defaultAuth

	for _, option := range options {
		option(app)
	}

	if app.fetcher == nil {
		app.fetcher = NewYtDlp(YtDlpOptionsFromConfig(config), app.ui)
	}

	return app
}

// AppOption customizes App creation
type AppOption func(*App)

// WithUI sets a custom UI manager
func WithUI(ui UIManager) AppOption {
	return func(a *App) {
		a.ui = ui
	}
}

// WithFetcher sets a custom media fetcher
func WithFetcher(fetcher MediaFetcher) AppOption {
	return func(a *App) {
		a.fetcher = fetcher
	}
}

// WithTransfer sets the upload transfer, bypassing authentication
func WithTransfer(transfer Transfer) AppOption {
	return func(a *App) {
		a.transfer = transfer
	}
}

// WithAppSleeper sets the pause used between upload attempts
func WithAppSleeper(sleep Sleeper) AppOption {
	return func(a *App) {
		a.sleep = sleep
	}
}

// WithAuth sets how the authorized HTTP client is obtained
func WithAuth(auth func(ctx context.Context) (*http.Client, error)) AppOption {
	return func(a *App) {
		a.auth = auth
	}
}

// Config returns the application configuration
func (app *App) Config() *Config {
	return app.config
}

// ErrorLog returns the shared error log
func (app *App) ErrorLog() *ErrorLog {
	return app.errLog
}

// Sheet returns the configured spreadsheet location
func (app *App) Sheet(path string) Sheet {
	if path == "" {
		path = app.config.SheetPath
	}
	return Sheet{Path: path, Column: app.config.LinkColumn, Name: app.config.SheetName}
}

// Downloader returns the batch download loop over the configured fetcher
func (app *App) Downloader() *BatchDownloader {
	return NewBatchDownloader(app.fetcher, app.config.DownloadsDir, app.errLog, app.ui)
}

// DownloadFromSheet runs the downloader pipeline. Only an unreadable spreadsheet
// or a missing link column is returned as an error.
func (app *App) DownloadFromSheet(ctx context.Context, sheet Sheet) (DownloadSummary, error) {
	app.ui.Println("Starting YouTube downloader...")

	rows, err := ReadRows(sheet)
	if err != nil {
		return DownloadSummary{}, err
	}

	summary := app.Downloader().Run(ctx, rows)
	PrintDownloadSummary(app.ui, summary, app.errLog.Path())
	return summary, nil
}

// Authenticate bootstraps the OAuth credential and returns an authorized client
func (app *App) Authenticate(ctx context.Context) (*http.Client, error) {
	return app.auth(ctx)
}

func (app *App) defaultAuth(ctx context.Context) (*http.Client, error) {
	authenticator, err := NewAuthenticator(app.config, app.ui)
	if err != nil {
		return nil, err
	}
	return authenticator.Client(ctx)
}

// uploader authenticates (unless a transfer was injected) and builds the retry loop
func (app *App) uploader(ctx context.Context) (*Uploader, error) {
	transfer := app.transfer
	if transfer == nil {
		client, err := app.Authenticate(ctx)
		if err != nil {
			return nil, err
		}
		yt, err := NewYouTubeTransfer(ctx, client, VideoSettingsFromConfig(app.config))
		if err != nil {
			return nil, Categorize(ErrAuthentication, err)
		}
		transfer = yt
	}

	return NewUploader(transfer, app.ui,
		WithRetryPolicy(app.config.MaxRetries, app.config.RetryDelay),
		WithURLBase(app.config.ShortsURLBase),
		WithSleeper(app.sleep),
	), nil
}

// UploadDirectory runs the uploader pipeline over dir. A missing directory or an
// authentication failure aborts before any job starts; per-job failures never do.
func (app *App) UploadDirectory(ctx context.Context, dir string) (UploadSummary, error) {
	if dir == "" {
		dir = app.config.DownloadsDir
	}

	app.ui.Printf("\nYouTube Shorts Uploader\n%s\n", "==============================")

	if !DirExists(dir) {
		return UploadSummary{}, invalidInputf("directory not found - %s", dir)
	}

	uploader, err := app.uploader(ctx)
	if err != nil {
		return UploadSummary{}, fmt.Errorf("authentication failed: %w", err)
	}

	jobs, err := ListUploadJobs(dir, app.config.MediaExtension)
	if err != nil {
		return UploadSummary{}, err
	}

	if len(jobs) == 0 {
		app.ui.Printf("No %s files found in %s\n", app.config.MediaExtension, dir)
		return UploadSummary{}, nil
	}

	app.ui.Printf("\nFound %d videos to upload:\n", len(jobs))
	for i, job := range jobs {
		app.ui.Printf("%d. %s\n", i+1, job.Name)
	}

	summary := uploader.UploadBatch(ctx, jobs)
	app.ui.Printf("\n%s\n", summary.String())
	return summary, nil
}
