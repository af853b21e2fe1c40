// Package weather resolves a short weather summary for the user's location.
package weather

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// DefaultSummary is used whenever the real weather cannot be determined.
const DefaultSummary = "Clear skies, around 25°C"

var (
	// ErrUnavailable wraps every failure to produce a weather summary.
	ErrUnavailable = errors.New("weather unavailable")
	// ErrMissingAPIKey indicates the provider has no API key configured.
	ErrMissingAPIKey = errors.New("weather API key is not configured")
	// ErrMalformedResponse indicates a response body without the expected fields.
	ErrMalformedResponse = errors.New("malformed weather response")
)

// Provider returns a human readable weather summary for a coordinate.
type Provider interface {
	Weather(ctx context.Context, lat, lon float64) (string, error)
}

// Resolve asks the provider for a summary and falls back to DefaultSummary on any failure.
func Resolve(ctx context.Context, provider Provider, lat, lon float64, logger *zap.Logger) string {
	if provider == nil {
		return DefaultSummary
	}

	summary, err := provider.Weather(ctx, lat, lon)
	if err != nil || summary == "" {
		logger.Warn("Failed to fetch weather, using default",
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
			zap.Error(err))
		return DefaultSummary
	}

	return summary
}
