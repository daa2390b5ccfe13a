package internal

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

// MediaFetcher fetches titles and media for a URL through an external downloader
type MediaFetcher interface {
	Title(ctx context.Context, url string) (string, error)
	Download(ctx context.Context, url, outputTemplate string) error
}

// YtDlpOptions are the media fetch parameters passed to yt-dlp
type YtDlpOptions struct {
	Executable         string
	Format             string
	MergeOutputFormat  string
	ExternalDownloader string
	Retries            int
	FragmentRetries    int
	SocketTimeout      time.Duration
}

// YtDlpOptionsFromConfig extracts the yt-dlp settings from config
func YtDlpOptionsFromConfig(config *Config) YtDlpOptions {
	return YtDlpOptions{
		Executable:         config.YtDlpPath,
		Format:             config.Format,
		MergeOutputFormat:  config.MergeOutputFormat,
		ExternalDownloader: config.ExternalDownloader,
		Retries:            config.DownloadRetries,
		FragmentRetries:    config.FragmentRetries,
		SocketTimeout:      config.SocketTimeout,
	}
}

// YtDlp drives the yt-dlp binary through go-ytdlp
type YtDlp struct {
	opts       YtDlpOptions
	executable string
	ui         UIManager
}

// NewYtDlp creates a fetcher; the executable is resolved on first use
func NewYtDlp(opts YtDlpOptions, ui UIManager) *YtDlp {
	return &YtDlp{opts: opts, ui: ui}
}

// ResolveExecutable finds yt-dlp: the configured path first, then PATH,
// then a managed copy installed by go-ytdlp
func (y *YtDlp) ResolveExecutable(ctx context.Context) (string, error) {
	if y.executable != "" {
		return y.executable, nil
	}

	if y.opts.Executable != "" {
		path, err := exec.LookPath(y.opts.Executable)
		if err != nil {
			return "", Categorize(ErrExternalTool, fmt.Errorf("yt-dlp not found at %s: %w", y.opts.Executable, err))
		}
		y.executable = path
		return path, nil
	}

	if path, err := exec.LookPath("yt-dlp"); err == nil {
		y.executable = path
		return path, nil
	}

	y.ui.Verbose("yt-dlp not found on PATH, installing managed copy...\n")
	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return "", Categorize(ErrExternalTool, fmt.Errorf("installing yt-dlp: %w", err))
	}
	y.executable = resolved.Executable
	return y.executable, nil
}

// command returns a fresh go-ytdlp builder bound to the resolved executable
func (y *YtDlp) command(ctx context.Context) (*ytdlp.Command, error) {
	executable, err := y.ResolveExecutable(ctx)
	if err != nil {
		return nil, err
	}
	return ytdlp.New().SetExecutable(executable).NoWarnings(), nil
}

// Title returns the video title (yt-dlp --print title)
func (y *YtDlp) Title(ctx context.Context, url string) (string, error) {
	dl, err := y.command(ctx)
	if err != nil {
		return "", err
	}

	result, err := dl.Print("title").SkipDownload().Run(ctx, url)
	if err != nil {
		return "", toolError("fetching title", result, err)
	}

	title := strings.TrimSpace(result.Stdout)
	if title == "" {
		return "", Categorize(ErrExternalTool, fmt.Errorf("yt-dlp returned an empty title for %s", url))
	}
	return title, nil
}

// Download fetches and merges the media into outputTemplate
func (y *YtDlp) Download(ctx context.Context, url, outputTemplate string) error {
	dl, err := y.command(ctx)
	if err != nil {
		return err
	}

	dl = dl.
		Format(y.opts.Format).
		MergeOutputFormat(y.opts.MergeOutputFormat).
		Retries(strconv.Itoa(y.opts.Retries)).
		FragmentRetries(strconv.Itoa(y.opts.FragmentRetries)).
		SocketTimeout(y.opts.SocketTimeout.Seconds()).
		ConsoleTitle().
		Output(outputTemplate)

	// aria2c is optional; yt-dlp's native downloader is used when it is missing
	if y.opts.ExternalDownloader != "" {
		if _, err := exec.LookPath(y.opts.ExternalDownloader); err == nil {
			dl = dl.Downloader(y.opts.ExternalDownloader)
		} else {
			y.ui.Verbose("%s not found on PATH, using the native downloader\n", y.opts.ExternalDownloader)
		}
	}

	bar := y.ui.NewProgressBar(100, "Downloading")
	defer bar.Finish()
	dl.ProgressFunc(500*time.Millisecond, func(update ytdlp.ProgressUpdate) {
		if update.TotalBytes > 0 {
			bar.Set(int(float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100))
		}
	})

	result, err := dl.Run(ctx, url)
	if err != nil {
		return toolError("downloading", result, err)
	}
	return nil
}

// toolError wraps a failed yt-dlp run with its exit status and stderr
func toolError(action string, result *ytdlp.Result, err error) error {
	if result != nil {
		stderr := strings.TrimSpace(result.Stderr)
		if stderr != "" {
			return Categorize(ErrExternalTool, fmt.Errorf("%s: yt-dlp exited with status %d: %s", action, result.ExitCode, stderr))
		}
		return Categorize(ErrExternalTool, fmt.Errorf("%s: yt-dlp exited with status %d: %w", action, result.ExitCode, err))
	}
	return Categorize(ErrExternalTool, fmt.Errorf("%s: %w", action, err))
}
