package config

import (
	"time"

	"github.com/spf13/viper"

	"packci/internal/artifact"
)

type Config struct {
	Server    ServerConfig
	Engine    EngineConfig
	Artifacts ArtifactConfig
	Logger    LoggerConfig
}

type ServerConfig struct {
	Host          string
	Port          int
	WebhookSecret string
}

type EngineConfig struct {
	WorkflowPath  string
	WorkspaceRoot string
	LogDir        string
	JournalPath   string
	StepTimeout   time.Duration
}

// ArtifactConfig selects the store backend: "fs" or "s3".
type ArtifactConfig struct {
	Backend string
	Dir     string // fs backend
	S3      artifact.S3Config
}

type LoggerConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("WEBHOOK_SECRET", "")
	v.SetDefault("WORKFLOW_PATH", "workflow.yaml")
	v.SetDefault("WORKSPACE_ROOT", "./workspaces")
	v.SetDefault("LOG_DIR", "./logs")
	v.SetDefault("JOURNAL_PATH", "./runs.jsonl")
	v.SetDefault("STEP_TIMEOUT", "5m")
	v.SetDefault("ARTIFACT_BACKEND", "fs")
	v.SetDefault("ARTIFACT_DIR", "./artifacts")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_REGION", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_BUCKET", "packci-artifacts")
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "text")

	// Env
	v.AutomaticEnv()

	timeout, err := time.ParseDuration(v.GetString("STEP_TIMEOUT"))
	if err != nil {
		timeout = 5 * time.Minute
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:          v.GetString("SERVER_HOST"),
			Port:          v.GetInt("SERVER_PORT"),
			WebhookSecret: v.GetString("WEBHOOK_SECRET"),
		},
		Engine: EngineConfig{
			WorkflowPath:  v.GetString("WORKFLOW_PATH"),
			WorkspaceRoot: v.GetString("WORKSPACE_ROOT"),
			LogDir:        v.GetString("LOG_DIR"),
			JournalPath:   v.GetString("JOURNAL_PATH"),
			StepTimeout:   timeout,
		},
		Artifacts: ArtifactConfig{
			Backend: v.GetString("ARTIFACT_BACKEND"),
			Dir:     v.GetString("ARTIFACT_DIR"),
			S3: artifact.S3Config{
				Endpoint:  v.GetString("S3_ENDPOINT"),
				Region:    v.GetString("S3_REGION"),
				AccessKey: v.GetString("S3_ACCESS_KEY"),
				SecretKey: v.GetString("S3_SECRET_KEY"),
				Bucket:    v.GetString("S3_BUCKET"),
				UseSSL:    v.GetBool("S3_USE_SSL"),
			},
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
	}
	return cfg, nil
}
