package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath = "config.yaml"
	defaultBaseHost   = "gdata.youtube.com"
	defaultAuthHost   = "www.google.com"
	defaultMIMEType   = "video/mp4"
)

type Config struct {
	YouTubeUser           string `validate:"required"`
	YouTubePassword       string `validate:"required"`
	YouTubePasswordSecret string
	YouTubeClientID       string `validate:"required"`
	YouTubeDeveloperKey   string `validate:"required"`
	GoogleCredentialsFile string

	YouTube YouTubeConfig `yaml:"youtube"`
	Storage StorageConfig `yaml:"storage"`
	GCS     GCSConfig     `yaml:"gcs"`
}

type YouTubeConfig struct {
	BaseHost   string `yaml:"base_host" validate:"required"`
	UploadHost string `yaml:"upload_host"`
	AuthHost   string `yaml:"auth_host" validate:"required"`
	// Insecure sends API requests over plain http. ClientLogin stays on https.
	Insecure    bool     `yaml:"insecure"`
	Category    string   `yaml:"category"`
	DefaultTags []string `yaml:"default_tags"`
	Private     bool     `yaml:"private"`
	MIMEType    string   `yaml:"mime_type" validate:"required,contains=/"`
	// TimeoutSeconds bounds each request; zero waits for the transport.
	TimeoutSeconds int `yaml:"timeout_seconds" validate:"gte=0"`
}

type StorageConfig struct {
	BaseDir string `yaml:"base_dir"`
}

type GCSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint" validate:"omitempty,url"`
}

func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		YouTubeUser:           os.Getenv("YOUTUBE_USER"),
		YouTubePassword:       os.Getenv("YOUTUBE_PASSWORD"),
		YouTubePasswordSecret: os.Getenv("YOUTUBE_PASSWORD_SECRET"),
		YouTubeClientID:       os.Getenv("YOUTUBE_CLIENT_ID"),
		YouTubeDeveloperKey:   os.Getenv("YOUTUBE_DEVELOPER_KEY"),
		GoogleCredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
	}

	if err := loadYAMLConfig(cfg, defaultConfigPath); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	if cfg.YouTubePassword == "" && cfg.YouTubePasswordSecret != "" {
		password, err := secretAccessor(ctx, cfg.YouTubePasswordSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve password secret: %w", err)
		}
		cfg.YouTubePassword = password
	}

	return cfg, nil
}

func loadYAMLConfig(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("No config.yaml found, using defaults")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	applyYouTubeDefaults(cfg)
}

func applyYouTubeDefaults(cfg *Config) {
	if cfg.YouTube.BaseHost == "" {
		cfg.YouTube.BaseHost = defaultBaseHost
	}
	if cfg.YouTube.UploadHost == "" {
		cfg.YouTube.UploadHost = "uploads." + cfg.YouTube.BaseHost
	}
	if cfg.YouTube.AuthHost == "" {
		cfg.YouTube.AuthHost = defaultAuthHost
	}
	if cfg.YouTube.MIMEType == "" {
		cfg.YouTube.MIMEType = defaultMIMEType
	}
	if cfg.YouTube.DefaultTags == nil {
		cfg.YouTube.DefaultTags = []string{}
	}
}

// Validate reports every missing or malformed setting at once.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("invalid config: %s", describe(verrs))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func describe(verrs validator.ValidationErrors) string {
	msg := ""
	for i, fe := range verrs {
		if i > 0 {
			msg += ", "
		}
		msg += fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
	}
	return msg
}
