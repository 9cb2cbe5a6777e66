package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/jb-miles/castscout/internal/constants"
)

type Config struct {
	Lookup  LookupConfig
	Photo   PhotoConfig
	Export  ExportConfig
	Logging LoggingConfig
}

type LookupConfig struct {
	BaseURL     string
	InputPath   string
	OutputPath  string
	Concurrency int
	BaseDelay   time.Duration
	Resume      bool
	Headless    bool
	NavTimeout  time.Duration
}

// PhotoKind selects which destination folders receive the harvested image.
type PhotoKind string

const (
	PhotoKindPoster PhotoKind = "poster"
	PhotoKindFace   PhotoKind = "face"
	PhotoKindBoth   PhotoKind = "both"
)

type PhotoConfig struct {
	Enabled   bool
	Root      string
	Kind      PhotoKind
	Overwrite bool
}

type ExportConfig struct {
	ServerURL      string
	Token          string
	OutputPath     string
	CheckpointPath string
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Lookup: LookupConfig{
			BaseURL:     getEnv("CASTSCOUT_BASE_URL", "https://www.iafd.com"),
			InputPath:   getEnv("CASTSCOUT_INPUT", "performers.txt"),
			OutputPath:  getEnv("CASTSCOUT_OUTPUT", "lookup_results.csv"),
			Concurrency: getEnvInt("CASTSCOUT_CONCURRENCY", 2),
			BaseDelay:   getEnvDuration("CASTSCOUT_BASE_DELAY", constants.PoolConfig.BaseDelay),
			Resume:      getEnvBool("CASTSCOUT_RESUME", false),
			Headless:    getEnvBool("CASTSCOUT_HEADLESS", true),
			NavTimeout:  getEnvDuration("CASTSCOUT_NAV_TIMEOUT", constants.NavigationConfig.DefaultTimeout),
		},
		Photo: PhotoConfig{
			Enabled:   getEnvBool("CASTSCOUT_PHOTOS", false),
			Root:      getEnv("CASTSCOUT_PHOTO_ROOT", "photos"),
			Kind:      PhotoKind(getEnv("CASTSCOUT_PHOTO_KIND", string(PhotoKindBoth))),
			Overwrite: getEnvBool("CASTSCOUT_PHOTO_OVERWRITE", false),
		},
		Export: ExportConfig{
			ServerURL:      getEnv("CASTSCOUT_PLEX_URL", "http://localhost:32400"),
			Token:          getEnv("CASTSCOUT_PLEX_TOKEN", ""),
			OutputPath:     getEnv("CASTSCOUT_EXPORT_OUTPUT", "performers.txt"),
			CheckpointPath: getEnv("CASTSCOUT_EXPORT_CHECKPOINT", "export_checkpoint.json"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Lookup.BaseURL == "" {
		return fmt.Errorf("CASTSCOUT_BASE_URL is required")
	}
	if c.Lookup.Concurrency < 1 {
		c.Lookup.Concurrency = 1
	}
	if c.Lookup.Concurrency > constants.PoolConfig.MaxWorkers {
		c.Lookup.Concurrency = constants.PoolConfig.MaxWorkers
	}
	switch c.Photo.Kind {
	case PhotoKindPoster, PhotoKindFace, PhotoKindBoth:
	default:
		return fmt.Errorf("CASTSCOUT_PHOTO_KIND must be poster, face or both, got %q", c.Photo.Kind)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// bare numbers are read as seconds
	if secs, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
