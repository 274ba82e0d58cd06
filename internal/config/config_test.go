package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famomatic/hlsfetch/internal/manifest"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "hlsfetch.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Retry.Delay)
	assert.Equal(t, manifest.TierHD, cfg.PreferredTier())
	assert.Equal(t, "ffmpeg", cfg.FFmpeg.Path)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, `
http:
  origin: https://www.course.test
  referer: https://www.course.test/
  timeout: 30s
  requests_per_second: 4
retry:
  max_attempts: 5
  delay: 250ms
download:
  preferred_resolution: FULL-HD
  output_dir: /tmp/lessons
  keep_intermediate_files: true
logging:
  level: debug
  format: json
metrics:
  listen_address: 127.0.0.1:9102
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://www.course.test", cfg.HTTP.Origin)
	assert.Equal(t, "https://www.course.test/", cfg.HTTP.Referer)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 4.0, cfg.HTTP.RequestsPerSecond)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.Delay)
	assert.Equal(t, manifest.TierFullHD, cfg.PreferredTier())
	assert.Equal(t, "/tmp/lessons", cfg.Download.OutputDir)
	assert.True(t, cfg.Download.KeepIntermediateFiles)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "127.0.0.1:9102", cfg.Metrics.ListenAddress)
	assert.Equal(t, "ffmpeg", cfg.FFmpeg.Path, "unset keys keep defaults")
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "http:\n  origin: https://from-file.test\n")
	t.Setenv("HLSFETCH_ORIGIN", "https://from-env.test")
	t.Setenv("HLSFETCH_RETRY_MAX_ATTEMPTS", "7")
	t.Setenv("HLSFETCH_RETRY_DELAY", "2s")
	t.Setenv("HLSFETCH_RESOLUTION", "sd")
	t.Setenv("HLSFETCH_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://from-env.test", cfg.HTTP.Origin)
	assert.Equal(t, 7, cfg.Retry.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Retry.Delay)
	assert.Equal(t, manifest.TierSD, cfg.PreferredTier())
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_BadEnvOverride(t *testing.T) {
	t.Setenv("HLSFETCH_RETRY_MAX_ATTEMPTS", "many")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "retry: [unclosed\n"))
	assert.Error(t, err)
}

func TestValidate_InvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "max attempts must be > 0", mutate: func(c *Config) { c.Retry.MaxAttempts = 0 }},
		{name: "delay must be >= 0", mutate: func(c *Config) { c.Retry.Delay = -time.Second }},
		{name: "rps must be >= 0", mutate: func(c *Config) { c.HTTP.RequestsPerSecond = -1 }},
		{name: "timeout must be >= 0", mutate: func(c *Config) { c.HTTP.Timeout = -time.Second }},
		{name: "resolution must be known", mutate: func(c *Config) { c.Download.PreferredResolution = "4K" }},
		{name: "output dir required", mutate: func(c *Config) { c.Download.OutputDir = "" }},
		{name: "ffmpeg path required", mutate: func(c *Config) { c.FFmpeg.Path = "" }},
		{name: "log level", mutate: func(c *Config) { c.Logging.Level = "loud" }},
		{name: "log format", mutate: func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
