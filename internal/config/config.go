// Package config loads the service configuration from the environment once at
// startup. Both binaries share the same Config.
package config

import (
	"fmt"
	"strings"
	"time"

	"mediakit/internal/worker/util"
)

// Storage provider names.
const (
	ProviderGCS     = "gcs"
	ProviderS3      = "s3"
	ProviderGDrive  = "gdrive"
	ProviderLocalFS = "localfs"
)

// Config is immutable after Load.
type Config struct {
	TempDir string

	Storage StorageConfig
	Tools   ToolsConfig

	DatabaseURL       string
	RedisAddr         string
	QueueName         string
	WorkerConcurrency int

	HTTPPort        string
	APIKey          string
	CORSOrigins     string
	DownloadTimeout time.Duration
}

// StorageConfig selects and configures the durable storage provider.
type StorageConfig struct {
	Provider      string
	Bucket        string
	LocalRoot     string
	PublicBaseURL string

	GCSCredentialsFile string
	GCSMakePublic      bool

	S3Region         string
	S3Endpoint       string
	S3AccessKey      string
	S3SecretKey      string
	S3ForcePathStyle bool

	GDriveClientID     string
	GDriveClientSecret string
	GDriveRefreshToken string
}

// ToolsConfig names the external binaries.
type ToolsConfig struct {
	FFmpeg       string
	FFprobe      string
	YtDlp        string
	Whisper      string
	WhisperModel string
}

// MissingError lists every required key that was not set.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return "missing required configuration: " + strings.Join(e.Keys, ", ")
}

// Load reads the environment. It fails with *MissingError naming all absent
// required keys, or with an error for an unknown storage provider.
func Load() (Config, error) {
	cfg := Config{
		TempDir: util.Env("TEMP_DIR", ""),
		Storage: StorageConfig{
			Provider:           strings.ToLower(util.Env("STORAGE_PROVIDER", ProviderGCS)),
			Bucket:             util.FirstEnv("STORAGE_BUCKET", "GCP_BUCKET_NAME"),
			LocalRoot:          util.Env("STORAGE_LOCAL_ROOT", "./data/storage"),
			PublicBaseURL:      strings.TrimRight(util.Env("STORAGE_PUBLIC_BASE_URL", ""), "/"),
			GCSCredentialsFile: util.Env("GCS_CREDENTIALS_FILE", ""),
			GCSMakePublic:      util.BoolEnv("GCS_MAKE_PUBLIC", true),
			S3Region:           util.Env("S3_REGION", "us-east-1"),
			S3Endpoint:         strings.TrimRight(util.Env("S3_ENDPOINT", ""), "/"),
			S3AccessKey:        util.Env("S3_ACCESS_KEY", ""),
			S3SecretKey:        util.Env("S3_SECRET_KEY", ""),
			S3ForcePathStyle:   util.BoolEnv("S3_FORCE_PATH_STYLE", false),
			GDriveClientID:     util.Env("GDRIVE_CLIENT_ID", ""),
			GDriveClientSecret: util.Env("GDRIVE_CLIENT_SECRET", ""),
			GDriveRefreshToken: util.Env("GDRIVE_REFRESH_TOKEN", ""),
		},
		Tools: ToolsConfig{
			FFmpeg:       util.Env("FFMPEG_PATH", "ffmpeg"),
			FFprobe:      util.Env("FFPROBE_PATH", "ffprobe"),
			YtDlp:        util.Env("YTDLP_PATH", "yt-dlp"),
			Whisper:      util.Env("WHISPER_PATH", "whisper"),
			WhisperModel: util.Env("WHISPER_MODEL", "base"),
		},
		DatabaseURL:       util.Env("DATABASE_URL", ""),
		RedisAddr:         util.Env("REDIS_ADDR", ""),
		QueueName:         util.Env("JOB_QUEUE_NAME", "mediakit:jobs"),
		WorkerConcurrency: util.IntEnv("WORKER_CONCURRENCY", 1),
		HTTPPort:          util.Env("HTTP_PORT", "8080"),
		APIKey:            util.Env("API_KEY", ""),
		CORSOrigins:       util.Env("CORS_ALLOWED_ORIGINS", ""),
		DownloadTimeout:   util.DurationEnv("DOWNLOAD_TIMEOUT", 10*time.Minute),
	}

	var missing []string
	require := func(key, val string) {
		if val == "" {
			missing = append(missing, key)
		}
	}
	require("TEMP_DIR", cfg.TempDir)
	require("STORAGE_BUCKET", cfg.Storage.Bucket)
	require("DATABASE_URL", cfg.DatabaseURL)
	require("REDIS_ADDR", cfg.RedisAddr)

	switch cfg.Storage.Provider {
	case ProviderGCS, ProviderLocalFS:
	case ProviderS3:
		require("S3_ACCESS_KEY", cfg.Storage.S3AccessKey)
		require("S3_SECRET_KEY", cfg.Storage.S3SecretKey)
	case ProviderGDrive:
		require("GDRIVE_CLIENT_ID", cfg.Storage.GDriveClientID)
		require("GDRIVE_CLIENT_SECRET", cfg.Storage.GDriveClientSecret)
		require("GDRIVE_REFRESH_TOKEN", cfg.Storage.GDriveRefreshToken)
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_PROVIDER %q", cfg.Storage.Provider)
	}

	if len(missing) > 0 {
		return Config{}, &MissingError{Keys: missing}
	}
	return cfg, nil
}
