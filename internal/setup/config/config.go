package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
)

// RepositoryVersion is the repository version tag for config file references.
const RepositoryVersion = "v0.3.0"

// CurrentVersion is the current version of the config file.
const CurrentVersion = 1

// ConfigFileName is the file searched for in every config path.
const ConfigFileName = "config.toml"

// Environment variables that override secrets from the config file.
const (
	EnvGeminiAPIKey  = "GEMINI_API_KEY"
	EnvWeatherAPIKey = "OPENWEATHER_API_KEY"
)

// Config represents the entire application configuration.
type Config struct {
	// Version of the config file.
	Version        int            `koanf:"version"`
	Debug          Debug          `koanf:"debug"`
	Gemini         Gemini         `koanf:"gemini"`
	CircuitBreaker CircuitBreaker `koanf:"circuit_breaker"`
	Weather        Weather        `koanf:"weather"`
	Redis          Redis          `koanf:"redis"`
	History        History        `koanf:"history"`
	Server         Server         `koanf:"server"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Maximum log sessions to keep.
	MaxLogsToKeep int `koanf:"max_logs_to_keep"`
	// Maximum lines per log file.
	MaxLogLines int `koanf:"max_log_lines"`
}

// Gemini contains generative model configuration.
type Gemini struct {
	// API key for authentication.
	APIKey string `koanf:"api_key"`
	// Model used for structured style recommendations.
	TextModel string `koanf:"text_model"`
	// Model used for outfit image synthesis.
	ImageModel string `koanf:"image_model"`
	// Maximum concurrent model requests.
	MaxConcurrent int64 `koanf:"max_concurrent"`
	// Request timeout in milliseconds.
	RequestTimeout int `koanf:"request_timeout"`
	// Longest photo side sent to the model, 0 sends the original.
	UploadMaxDimension int `koanf:"upload_max_dimension"`
	// Sampling temperature for recommendations.
	Temperature float32 `koanf:"temperature"`
}

// CircuitBreaker contains circuit breaker configuration.
type CircuitBreaker struct {
	// Maximum number of requests allowed to pass through when the circuit is half-open.
	MaxRequests uint32 `koanf:"max_requests"`
	// The cyclic period of the closed state for the circuit breaker to clear the internal counts.
	Interval int `koanf:"interval"`
	// The period of the open state after which the state of the circuit breaker becomes half-open.
	Timeout int `koanf:"timeout"`
}

// Weather contains OpenWeather configuration.
type Weather struct {
	// API key for authentication.
	APIKey string `koanf:"api_key"`
	// Base URL for the API.
	BaseURL string `koanf:"base_url"`
	// Request timeout in milliseconds.
	RequestTimeout int `koanf:"request_timeout"`
	// Cache lifetime in seconds, 0 disables caching.
	CacheTTL int `koanf:"cache_ttl"`
}

// Redis contains Redis connection configuration.
type Redis struct {
	// Enable the Redis weather cache.
	Enabled bool `koanf:"enabled"`
	// Redis hostname.
	Host string `koanf:"host"`
	// Redis port.
	Port int `koanf:"port"`
	// Redis username.
	Username string `koanf:"username"`
	// Redis password.
	Password string `koanf:"password"`
}

// History contains analysis history configuration.
type History struct {
	// Record completed looks.
	Enabled bool `koanf:"enabled"`
	// Path of the SQLite database.
	Path string `koanf:"path"`
}

// Server contains HTTP API configuration.
type Server struct {
	// Listen address.
	Addr string `koanf:"addr"`
	// Idle session lifetime in seconds.
	SessionTTL int `koanf:"session_ttl"`
}

// LoadConfig loads the configuration from the given file, or from the first
// config path holding config.toml when path is empty.
// Returns the config along with the used config directory.
func LoadConfig(path string) (*Config, string, error) {
	k := koanf.New(".")

	var usedConfigPath string

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, "", fmt.Errorf("%w: %s: %w", ErrConfigFileNotFound, path, err)
		}

		usedConfigPath = filepath.Dir(path)
	} else {
		configPaths, err := searchPaths()
		if err != nil {
			return nil, "", err
		}

		for _, dir := range configPaths {
			if err := k.Load(file.Provider(filepath.Join(dir, ConfigFileName)), toml.Parser()); err == nil {
				usedConfigPath = dir
				break
			}
		}

		if usedConfigPath == "" {
			return nil, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, ConfigFileName)
		}
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := checkConfigVersion(config.Version, CurrentVersion); err != nil {
		return nil, "", err
	}

	// Secrets from .env or the environment take precedence
	for _, envFile := range []string{filepath.Join(usedConfigPath, ".env"), ".env"} {
		_ = godotenv.Load(envFile)
	}
	applyEnv(&config)
	applyDefaults(&config)

	return &config, usedConfigPath, nil
}

// searchPaths lists the directories searched for the config file.
func searchPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	return []string{
		".stylist",
		filepath.Join(homeDir, ".stylist", "config"),
		"/etc/stylist",
		"/app/config",
		"config",
		".",
	}, nil
}

// applyEnv overrides secrets with environment variables when set.
func applyEnv(c *Config) {
	if key := os.Getenv(EnvGeminiAPIKey); key != "" {
		c.Gemini.APIKey = key
	}

	if key := os.Getenv(EnvWeatherAPIKey); key != "" {
		c.Weather.APIKey = key
	}
}

// applyDefaults fills values left unset by the config file.
func applyDefaults(c *Config) {
	setDefault(&c.Debug.LogLevel, "info")
	setDefault(&c.Debug.MaxLogsToKeep, 10)
	setDefault(&c.Debug.MaxLogLines, 10000)

	setDefault(&c.Gemini.TextModel, "gemini-2.0-flash")
	setDefault(&c.Gemini.ImageModel, "gemini-2.0-flash-preview-image-generation")
	setDefault(&c.Gemini.MaxConcurrent, 4)
	setDefault(&c.Gemini.RequestTimeout, 90000)
	setDefault(&c.Gemini.Temperature, 0.7)

	setDefault(&c.CircuitBreaker.MaxRequests, 1)
	setDefault(&c.CircuitBreaker.Timeout, 60000)

	setDefault(&c.Weather.BaseURL, "https://api.openweathermap.org")
	setDefault(&c.Weather.RequestTimeout, 5000)

	setDefault(&c.Redis.Host, "localhost")
	setDefault(&c.Redis.Port, 6379)

	setDefault(&c.History.Path, "stylist.db")

	setDefault(&c.Server.Addr, ":8080")
	setDefault(&c.Server.SessionTTL, 1800)
}

func setDefault[T comparable](field *T, value T) {
	var zero T
	if *field == zero {
		*field = value
	}
}

// checkConfigVersion checks if the config file version is correct.
func checkConfigVersion(current, expected int) error {
	if current == 0 {
		return fmt.Errorf("%w: %s", ErrConfigVersionMissing, ConfigFileName)
	}

	if current != expected {
		return fmt.Errorf(
			"%w: %s (got: %d, expected: %d)\n"+
				"Please update your config file from: https://github.com/robalyx/stylist/tree/%s/config/%s",
			ErrConfigVersionMismatch,
			ConfigFileName,
			current,
			expected,
			RepositoryVersion,
			ConfigFileName,
		)
	}

	return nil
}
