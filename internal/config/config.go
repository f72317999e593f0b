package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds all controller configuration.
type Config struct {
	API    APIConfig
	Upload UploadConfig
	Banner BannerConfig
	Log    LogConfig
}

// APIConfig holds extraction service endpoint settings.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// TimeoutSecs of 0 disables the request timeout; a timeout, when set,
	// surfaces through the same failure path as any transport error.
	TimeoutSecs int `mapstructure:"timeout_secs"`
}

// Timeout returns the configured request timeout, or 0 for none.
func (a *APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSecs) * time.Second
}

// UploadConfig holds file selection policy settings.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
	MaxBatchFiles int   `mapstructure:"max_batch_files"`
}

// MaxFileSizeBytes returns the per-file size cap in bytes.
func (u *UploadConfig) MaxFileSizeBytes() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}

// BannerConfig holds transient banner settings.
type BannerConfig struct {
	DismissSecs int `mapstructure:"dismiss_secs"`
}

// DismissAfter returns how long a validation banner stays up before the
// presentation layer auto-clears it.
func (b *BannerConfig) DismissAfter() time.Duration {
	return time.Duration(b.DismissSecs) * time.Second
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the MARKLENS_
// prefix, loading a .env file first when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("MARKLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// API defaults
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout_secs", 0)

	// Upload policy defaults
	v.SetDefault("upload.max_file_size_mb", 10)
	v.SetDefault("upload.max_batch_files", 10)

	// Banner defaults
	v.SetDefault("banner.dismiss_secs", 5)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration without consulting the
// environment.
func Default() *Config {
	return &Config{
		API:    APIConfig{BaseURL: "http://localhost:8000"},
		Upload: UploadConfig{MaxFileSizeMB: 10, MaxBatchFiles: 10},
		Banner: BannerConfig{DismissSecs: 5},
		Log:    LogConfig{Level: "info", Format: "console"},
	}
}

// NewLogger builds a zap logger from log settings.
func NewLogger(cfg *LogConfig) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err == nil {
		zc.Level = level
	}
	return zc.Build()
}
