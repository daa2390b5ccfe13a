package internal

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Config holds application settings
type Config struct {
	// Downloader pipeline
	SheetPath          string
	LinkColumn         string
	SheetName          string
	DownloadsDir       string
	ErrorLog           string
	YtDlpPath          string
	Format             string
	MergeOutputFormat  string
	ExternalDownloader string
	DownloadRetries    int
	FragmentRetries    int
	SocketTimeout      time.Duration

	// Uploader pipeline
	ClientSecretsFile string
	TokenFile         string
	OAuthPort         int
	MediaExtension    string
	ChunkSize         int
	MaxRetries        int
	RetryDelay        time.Duration
	Privacy           string
	MadeForKids       bool
	Description       string
	CategoryID        string
	ShortsURLBase     string
	UploadRateLimit   int // KiB/s, 0 disables throttling

	Verbose bool
	Quiet   bool

	// Fixed XDG paths (not configurable)
	ConfigDir string
	DataDir   string
	CacheDir  string
}

//go:embed config.toml
var defaultFS embed.FS

// DefaultChunkSize is the size of each upload chunk (1 MiB)
const DefaultChunkSize = 1 << 20

// ensureDefaultFile checks if a file exists in the specified directory
// and creates it from the embedded default if it doesn't exist
func ensureDefaultFile(configDir, embedFilename, description string) error {
	filePath := filepath.Join(configDir, embedFilename)

	if FileExists(filePath) {
		return nil
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaultContent, err := defaultFS.ReadFile(embedFilename)
	if err != nil {
		return fmt.Errorf("reading embedded default %s: %w", description, err)
	}

	if err := os.WriteFile(filePath, defaultContent, 0644); err != nil {
		return fmt.Errorf("writing default %s: %w", description, err)
	}

	fmt.Printf("Created default %s at %s\n", description, filePath)
	return nil
}

// EnsureDefaultConfig checks if a config file exists in the XDG config directory
// and creates it from the embedded default if it doesn't exist
func EnsureDefaultConfig(configDir string) error {
	return ensureDefaultFile(configDir, "config.toml", "configuration")
}

// newViper returns a viper instance with defaults, config paths and env bindings set
func newViper(configDir, configFile string) *viper.Viper {
	v := viper.New()

	v.SetDefault("sheet_path", "videos.xlsx")
	v.SetDefault("link_column", "Link")
	v.SetDefault("sheet_name", "")
	v.SetDefault("downloads_dir", "downloads")
	v.SetDefault("error_log", "error_log.txt")
	v.SetDefault("ytdlp_path", "")
	v.SetDefault("format", "bestvideo+bestaudio")
	v.SetDefault("merge_output_format", "mp4")
	v.SetDefault("external_downloader", "aria2c")
	v.SetDefault("download_retries", 10)
	v.SetDefault("fragment_retries", 10)
	v.SetDefault("socket_timeout", 30*time.Second)

	v.SetDefault("client_secrets_file", filepath.Join(configDir, "client_secrets.json"))
	v.SetDefault("token_file", filepath.Join(configDir, "token.json"))
	v.SetDefault("oauth_port", 8080)
	v.SetDefault("media_extension", ".mp4")
	v.SetDefault("chunk_size", DefaultChunkSize)
	v.SetDefault("max_retries", DefaultMaxRetries)
	v.SetDefault("retry_delay", DefaultRetryDelay)
	v.SetDefault("privacy", "public")
	v.SetDefault("made_for_kids", false)
	v.SetDefault("description", "Uploaded automatically by YouTube Shorts Uploader")
	v.SetDefault("category_id", "")
	v.SetDefault("shorts_url_base", "https://youtube.com/shorts/")
	v.SetDefault("upload_rate_limit", 0)

	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("YTBATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return v
}

// configFromViper copies the resolved settings into a Config
func configFromViper(v *viper.Viper) *Config {
	return &Config{
		SheetPath:          v.GetString("sheet_path"),
		LinkColumn:         v.GetString("link_column"),
		SheetName:          v.GetString("sheet_name"),
		DownloadsDir:       v.GetString("downloads_dir"),
		ErrorLog:           v.GetString("error_log"),
		YtDlpPath:          v.GetString("ytdlp_path"),
		Format:             v.GetString("format"),
		MergeOutputFormat:  v.GetString("merge_output_format"),
		ExternalDownloader: v.GetString("external_downloader"),
		DownloadRetries:    v.GetInt("download_retries"),
		FragmentRetries:    v.GetInt("fragment_retries"),
		SocketTimeout:      v.GetDuration("socket_timeout"),

		ClientSecretsFile: v.GetString("client_secrets_file"),
		TokenFile:         v.GetString("token_file"),
		OAuthPort:         v.GetInt("oauth_port"),
		MediaExtension:    normalizeExtension(v.GetString("media_extension")),
		ChunkSize:         v.GetInt("chunk_size"),
		MaxRetries:        v.GetInt("max_retries"),
		RetryDelay:        v.GetDuration("retry_delay"),
		Privacy:           v.GetString("privacy"),
		MadeForKids:       v.GetBool("made_for_kids"),
		Description:       v.GetString("description"),
		CategoryID:        v.GetString("category_id"),
		ShortsURLBase:     v.GetString("shorts_url_base"),
		UploadRateLimit:   v.GetInt("upload_rate_limit"),

		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
	}
}

// InitConfig initializes Viper and loads configuration.
// configFile overrides the XDG lookup when non-empty.
func InitConfig(configFile string) *Config {
	configDir := filepath.Join(xdg.ConfigHome, "ytbatch")
	dataDir := filepath.Join(xdg.DataHome, "ytbatch")
	cacheDir := filepath.Join(xdg.CacheHome, "ytbatch")

	v := newViper(configDir, configFile)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: Error reading config file: %v\n", err)
		}
	}

	config := configFromViper(v)
	config.ConfigDir = configDir
	config.DataDir = dataDir
	config.CacheDir = cacheDir

	if config.Verbose {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	return config
}

// normalizeExtension lower-cases ext and makes sure it starts with a dot
func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
