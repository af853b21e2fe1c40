package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/robalyx/stylist/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv(config.EnvGeminiAPIKey, "")
	t.Setenv(config.EnvWeatherAPIKey, "")

	path := writeConfig(t, `
version = 1

[gemini]
api_key = "file-key"
text_model = "gemini-test"
max_concurrent = 2

[weather]
cache_ttl = 600

[redis]
enabled = true
port = 6380

[server]
addr = "127.0.0.1:9000"
`)

	cfg, dir, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Dir(path), dir)

	assert.Equal(t, "file-key", cfg.Gemini.APIKey)
	assert.Equal(t, "gemini-test", cfg.Gemini.TextModel)
	assert.Equal(t, int64(2), cfg.Gemini.MaxConcurrent)
	assert.Equal(t, 600, cfg.Weather.CacheTTL)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 6380, cfg.Redis.Port)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)

	// Defaults fill the rest
	assert.Equal(t, "info", cfg.Debug.LogLevel)
	assert.NotEmpty(t, cfg.Gemini.ImageModel)
	assert.Equal(t, "https://api.openweathermap.org", cfg.Weather.BaseURL)
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.InDelta(t, 0.7, cfg.Gemini.Temperature, 1e-6)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv(config.EnvGeminiAPIKey, "env-gemini")
	t.Setenv(config.EnvWeatherAPIKey, "env-weather")

	cfg, _, err := config.LoadConfig(writeConfig(t, "version = 1\n[gemini]\napi_key = \"file-key\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "env-gemini", cfg.Gemini.APIKey)
	assert.Equal(t, "env-weather", cfg.Weather.APIKey)
}

func TestLoadConfigVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "missing version", content: "[gemini]\napi_key = \"x\"\n", wantErr: config.ErrConfigVersionMissing},
		{name: "future version", content: "version = 99\n", wantErr: config.ErrConfigVersionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := config.LoadConfig(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()

	_, _, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.ErrorIs(t, err, config.ErrConfigFileNotFound)
}
