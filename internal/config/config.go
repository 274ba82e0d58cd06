package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/famomatic/hlsfetch/internal/manifest"
)

type Config struct {
	HTTP struct {
		Origin            string        `yaml:"origin"`
		Referer           string        `yaml:"referer"`
		UserAgent         string        `yaml:"user_agent"`
		Timeout           time.Duration `yaml:"timeout"`
		RequestsPerSecond float64       `yaml:"requests_per_second"`
	} `yaml:"http"`

	Retry struct {
		MaxAttempts int           `yaml:"max_attempts"`
		Delay       time.Duration `yaml:"delay"`
	} `yaml:"retry"`

	Download struct {
		PreferredResolution   string `yaml:"preferred_resolution"`
		OutputDir             string `yaml:"output_dir"`
		KeepIntermediateFiles bool   `yaml:"keep_intermediate_files"`
	} `yaml:"download"`

	FFmpeg struct {
		Path string `yaml:"path"`
	} `yaml:"ffmpeg"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Metrics struct {
		ListenAddress string `yaml:"listen_address"`
	} `yaml:"metrics"`
}

// PreferredTier parses download.preferred_resolution.
func (c *Config) PreferredTier() manifest.Tier {
	return manifest.ParseTier(c.Download.PreferredResolution)
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	// HTTP
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must be >= 0")
	}
	if c.HTTP.RequestsPerSecond < 0 {
		return fmt.Errorf("http.requests_per_second must be >= 0")
	}

	// Retry
	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("retry.max_attempts must be > 0")
	}
	if c.Retry.Delay < 0 {
		return fmt.Errorf("retry.delay must be >= 0")
	}

	// Download
	if c.PreferredTier() == manifest.TierUnknown {
		return fmt.Errorf("download.preferred_resolution must be one of FULL-HD, HD, SD, got %q", c.Download.PreferredResolution)
	}
	if c.Download.OutputDir == "" {
		return fmt.Errorf("download.output_dir must not be empty")
	}

	if c.FFmpeg.Path == "" {
		return fmt.Errorf("ffmpeg.path must not be empty")
	}

	// Logging
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}

	return nil
}

// Load reads configuration from YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case os.IsNotExist(err):
			// fall back to defaults
		case err != nil:
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.HTTP.Timeout = 60 * time.Second

	cfg.Retry.MaxAttempts = 3
	cfg.Retry.Delay = time.Second

	cfg.Download.PreferredResolution = "HD"
	cfg.Download.OutputDir = "."

	cfg.FFmpeg.Path = "ffmpeg"

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "console"

	return cfg
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("HLSFETCH_ORIGIN"); v != "" {
		c.HTTP.Origin = v
	}
	if v := os.Getenv("HLSFETCH_REFERER"); v != "" {
		c.HTTP.Referer = v
	}
	if v := os.Getenv("HLSFETCH_USER_AGENT"); v != "" {
		c.HTTP.UserAgent = v
	}
	if v := os.Getenv("HLSFETCH_RETRY_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HLSFETCH_RETRY_MAX_ATTEMPTS: %w", err)
		}
		c.Retry.MaxAttempts = n
	}
	if v := os.Getenv("HLSFETCH_RETRY_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HLSFETCH_RETRY_DELAY: %w", err)
		}
		c.Retry.Delay = d
	}
	if v := os.Getenv("HLSFETCH_RESOLUTION"); v != "" {
		c.Download.PreferredResolution = v
	}
	if v := os.Getenv("HLSFETCH_OUTPUT_DIR"); v != "" {
		c.Download.OutputDir = v
	}
	if v := os.Getenv("HLSFETCH_FFMPEG_PATH"); v != "" {
		c.FFmpeg.Path = v
	}
	if v := os.Getenv("HLSFETCH_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("HLSFETCH_METRICS_ADDRESS"); v != "" {
		c.Metrics.ListenAddress = v
	}
	return nil
}
