package config

import (
	"time"

	"github.com/spf13/viper"
)

type MediaBackend string

const (
	MediaBackendLocal MediaBackend = "local" // Files under Media.Path (default)
	MediaBackendS3    MediaBackend = "s3"    // S3 or an S3-compatible service
)

type (
	Config struct {
		HTTP
		Global
		Database
		Media
		S3
		Owner
		Logging
		Tasks
		MediaSweep
		Prompts
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Media struct {
		Backend   MediaBackend
		Path      string // Root directory for the local backend
		URLPrefix string // Path local media is served under
	}
	S3 struct {
		Bucket    string
		Region    string
		Endpoint  string // Set for MinIO and other S3-compatible services
		AccessKey string
		SecretKey string
		Prefix    string
	}
	Owner struct {
		ID string // Single fixed owner of all entries
	}
	Logging struct {
		Level  string
		Format string // "text" or "json"
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	MediaSweep struct {
		Enabled  bool
		Schedule string        // Cron format: "30 3 * * *" = daily at 03:30
		Grace    time.Duration // Directories modified more recently are skipped
	}
	Prompts struct {
		APIKey string
		Model  string
		APIURL string
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 5001)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("media_backend", string(MediaBackendLocal))
	v.SetDefault("media_path", DefaultMediaPath)
	v.SetDefault("media_url_prefix", DefaultMediaURLPrefix)
	v.SetDefault("s3_region", "us-east-1")
	v.SetDefault("s3_prefix", "media/")
	v.SetDefault("owner_id", DefaultOwnerID)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	// Orphaned media sweep defaults
	v.SetDefault("media_sweep_enabled", true)
	v.SetDefault("media_sweep_schedule", "30 3 * * *") // Daily at 03:30
	v.SetDefault("media_sweep_grace", "1h")

	v.SetDefault("prompt_model", DefaultPromptModel)
	v.SetDefault("prompt_api_url", DefaultPromptAPIURL)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Media: Media{
			Backend:   MediaBackend(v.GetString("MEDIA_BACKEND")),
			Path:      v.GetString("MEDIA_PATH"),
			URLPrefix: v.GetString("MEDIA_URL_PREFIX"),
		},
		S3: S3{
			Bucket:    v.GetString("S3_BUCKET"),
			Region:    v.GetString("S3_REGION"),
			Endpoint:  v.GetString("S3_ENDPOINT"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			Prefix:    v.GetString("S3_PREFIX"),
		},
		Owner: Owner{
			ID: v.GetString("OWNER_ID"),
		},
		Logging: Logging{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		MediaSweep: MediaSweep{
			Enabled:  v.GetBool("MEDIA_SWEEP_ENABLED"),
			Schedule: v.GetString("MEDIA_SWEEP_SCHEDULE"),
			Grace:    v.GetDuration("MEDIA_SWEEP_GRACE"),
		},
		Prompts: Prompts{
			APIKey: v.GetString("ANTHROPIC_API_KEY"),
			Model:  v.GetString("PROMPT_MODEL"),
			APIURL: v.GetString("PROMPT_API_URL"),
		},
	}
}
