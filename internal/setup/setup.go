package setup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	textGenAI "github.com/google/generative-ai-go/genai"
	"github.com/robalyx/stylist/internal/ai"
	aiClient "github.com/robalyx/stylist/internal/ai/client"
	"github.com/robalyx/stylist/internal/history"
	"github.com/robalyx/stylist/internal/redis"
	"github.com/robalyx/stylist/internal/session"
	"github.com/robalyx/stylist/internal/setup/client"
	"github.com/robalyx/stylist/internal/setup/config"
	"github.com/robalyx/stylist/internal/setup/telemetry"
	"github.com/robalyx/stylist/internal/weather"
	"github.com/robalyx/stylist/pkg/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/genai"
)

// ErrMissingGeminiKey indicates the model API key is not configured.
var ErrMissingGeminiKey = errors.New("gemini API key is not configured")

// App bundles all core dependencies and services needed by the application.
type App struct {
	Config       *config.Config     // Application configuration
	Logger       *zap.Logger        // Main application logger
	LogManager   *telemetry.Manager // Log management system
	GenAIClient  *textGenAI.Client  // Structured text model client
	ImageClient  *genai.Client      // Image synthesis client
	Gateway      *aiClient.Gateway  // Shared model call guard
	Advisor      *ai.Advisor        // Style recommendation client
	Renderer     *ai.Renderer       // Outfit image client
	Weather      weather.Provider   // Weather lookup, cached when Redis is enabled
	RedisManager *redis.Manager     // Redis connection manager, nil when disabled
	History      *history.Store     // Look history, nil when disabled
}

// InitializeLogging loads the configuration and starts the log manager.
// Returns the config, the log manager and the main logger.
func InitializeLogging(
	serviceType telemetry.ServiceType, logDir, configPath string,
) (*config.Config, *telemetry.Manager, *zap.Logger, error) {
	cfg, configDir, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	logManager := telemetry.NewManager(serviceType, logDir, &cfg.Debug)

	logger, err := logManager.GetLogger()
	if err != nil {
		return nil, nil, nil, err
	}

	logger.Info("Loaded configuration",
		zap.String("configDir", configDir),
		zap.Stringer("service", serviceType))

	return cfg, logManager, logger, nil
}

// InitializeApp bootstraps all application dependencies in the correct order.
func InitializeApp(ctx context.Context, serviceType telemetry.ServiceType, logDir, configPath string) (*App, error) {
	cfg, logManager, logger, err := InitializeLogging(serviceType, logDir, configPath)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:     cfg,
		Logger:     logger,
		LogManager: logManager,
	}

	if err := app.initModels(ctx, serviceType); err != nil {
		app.Cleanup(ctx)
		return nil, err
	}

	if err := app.initWeather(); err != nil {
		app.Cleanup(ctx)
		return nil, err
	}

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			app.Cleanup(ctx)
			return nil, err
		}
		app.History = store
	}

	return app, nil
}

// NewSession creates an idle session wired to the app's models and history.
func (a *App) NewSession(opts ...session.Option) *session.Orchestrator {
	base := []session.Option{session.WithUploadMaxDimension(a.Config.Gemini.UploadMaxDimension)}
	if a.History != nil {
		base = append(base, session.WithRecorder(a.History))
	}

	return session.NewOrchestrator(a.Advisor, a.Renderer, a.Logger, append(base, opts...)...)
}

// initModels creates both model clients behind a shared gateway.
func (a *App) initModels(ctx context.Context, serviceType telemetry.ServiceType) error {
	cfg := &a.Config.Gemini
	if cfg.APIKey == "" {
		return fmt.Errorf("%w: set gemini.api_key or %s", ErrMissingGeminiKey, config.EnvGeminiAPIKey)
	}

	genAIClient, err := textGenAI.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return fmt.Errorf("failed to create text model client: %w", err)
	}
	a.GenAIClient = genAIClient

	imageClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return fmt.Errorf("failed to create image model client: %w", err)
	}
	a.ImageClient = imageClient

	a.Gateway = aiClient.NewGateway(cfg, &a.Config.CircuitBreaker, serviceType.GetRequestTimeout(a.Config), a.Logger)
	a.Advisor = ai.NewAdvisor(ai.ConfigureTextModel(genAIClient, cfg), cfg.TextModel, a.Gateway, a.Logger)
	a.Renderer = ai.NewRenderer(imageClient.Models, cfg.ImageModel, a.Gateway, a.Logger)

	return nil
}

// initWeather builds the OpenWeather client and its optional Redis cache.
func (a *App) initWeather() error {
	cfg := &a.Config.Weather

	httpClient := client.NewHTTPClient(
		&a.Config.CircuitBreaker,
		a.Logger,
		time.Duration(cfg.RequestTimeout)*time.Millisecond,
	)

	var provider weather.Provider = weather.NewClient(httpClient, cfg, utils.GetWeatherRetryOptions(), a.Logger)

	if a.Config.Redis.Enabled && cfg.CacheTTL > 0 {
		a.RedisManager = redis.NewManager(&a.Config.Redis, a.Logger)

		redisClient, err := a.RedisManager.GetClient(redis.WeatherCacheDBIndex)
		if err != nil {
			return err
		}

		provider = weather.NewCache(provider, redisClient, time.Duration(cfg.CacheTTL)*time.Second, a.Logger)
	}

	a.Weather = provider
	return nil
}

// Cleanup ensures graceful shutdown of all components in reverse initialization order.
// Logs but does not fail on cleanup errors so every component gets a cleanup attempt.
func (a *App) Cleanup(_ context.Context) {
	if a.History != nil {
		if err := a.History.Close(); err != nil {
			a.Logger.Error("Failed to close history store", zap.Error(err))
		}
	}

	if a.GenAIClient != nil {
		if err := a.GenAIClient.Close(); err != nil {
			a.Logger.Error("Failed to close text model client", zap.Error(err))
		}
	}

	// Close Redis connections last as other components might need it during cleanup
	if a.RedisManager != nil {
		a.RedisManager.Close()
	}

	// Sync buffered logs before shutdown
	if err := a.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	a.LogManager.Stop()
}
