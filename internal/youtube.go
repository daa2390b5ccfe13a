package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// VideoSettings is the metadata policy applied to every upload
type VideoSettings struct {
	Description string
	Privacy     string
	MadeForKids bool
	CategoryID  string
	ChunkSize   int
	// RateLimit caps upload throughput in KiB/s; 0 disables throttling
	RateLimit int
}

// VideoSettingsFromConfig extracts the upload metadata policy from config
func VideoSettingsFromConfig(config *Config) VideoSettings {
	return VideoSettings{
		Description: config.Description,
		Privacy:     config.Privacy,
		MadeForKids: config.MadeForKids,
		CategoryID:  config.CategoryID,
		ChunkSize:   config.ChunkSize,
		RateLimit:   config.UploadRateLimit,
	}
}

// YouTubeTransfer uploads videos through the YouTube Data API resumable insert
type YouTubeTransfer struct {
	service  *youtube.Service
	settings VideoSettings
}

// NewYouTubeTransfer builds the API service over an authenticated HTTP client
func NewYouTubeTransfer(ctx context.Context, client *http.Client, settings VideoSettings, opts ...option.ClientOption) (*YouTubeTransfer, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating YouTube client: %w", err)
	}
	if settings.ChunkSize <= 0 {
		settings.ChunkSize = DefaultChunkSize
	}
	return &YouTubeTransfer{service: service, settings: settings}, nil
}

// Video builds the snippet/status resource sent with the media
func (t *YouTubeTransfer) Video(title string) *youtube.Video {
	return newVideoResource(title, t.settings)
}

func newVideoResource(title string, settings VideoSettings) *youtube.Video {
	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       title,
			Description: settings.Description,
			CategoryId:  settings.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           settings.Privacy,
			SelfDeclaredMadeForKids: settings.MadeForKids,
			// false would be dropped by omitempty otherwise
			ForceSendFields: []string{"SelfDeclaredMadeForKids"},
		},
	}
	return video
}

// Send opens the file and streams it in fixed-size chunks with a single insert call
// that creates the video and uploads its content. A file no larger than one chunk
// is sent as one multipart request.
func (t *YouTubeTransfer) Send(ctx context.Context, job UploadJob, onChunk func(ChunkStatus)) (string, error) {
	file, err := os.Open(job.Path)
	if err != nil {
		return "", Categorize(ErrInvalidInput, fmt.Errorf("opening video file: %w", err))
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", Categorize(ErrInvalidInput, fmt.Errorf("reading video file info: %w", err))
	}
	size := info.Size()

	call := t.service.Videos.Insert([]string{"snippet", "status"}, t.Video(job.Title))
	call = call.Media(
		NewThrottledReader(ctx, file, t.settings.RateLimit),
		googleapi.ChunkSize(t.settings.ChunkSize),
		googleapi.ContentType("video/mp4"),
	)
	call = call.ProgressUpdater(func(current, total int64) {
		if total <= 0 {
			total = size
		}
		if onChunk != nil {
			onChunk(ChunkStatus{Sent: current, Total: total})
		}
	})

	video, err := call.Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("making YouTube API call: %w", err)
	}
	// files within one chunk go up as a single multipart request with no callbacks
	if onChunk != nil {
		onChunk(ChunkStatus{Sent: size, Total: size})
	}
	return video.Id, nil
}
