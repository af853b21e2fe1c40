// Package client builds the outbound HTTP client shared by the upstream integrations.
package client

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/jaxron/axonet/middleware/circuitbreaker"
	"github.com/jaxron/axonet/middleware/singleflight"
	"github.com/jaxron/axonet/pkg/client"
	"github.com/jaxron/axonet/pkg/client/middleware"
	"github.com/robalyx/stylist/internal/setup/config"
	"go.uber.org/zap"
)

// NewHTTPClient constructs an HTTP client with a middleware chain for reliability.
// Retries are left to the callers so each integration can pick its own budget.
func NewHTTPClient(cbCfg *config.CircuitBreaker, zapLogger *zap.Logger, requestTimeout time.Duration) *client.Client {
	// Build middleware chain - order matters!
	middlewares := []middleware.Middleware{
		circuitbreaker.New(
			cbCfg.MaxRequests,
			time.Duration(cbCfg.Interval)*time.Millisecond,
			time.Duration(cbCfg.Timeout)*time.Millisecond,
		),
		singleflight.New(),
	}

	return client.NewClient(
		client.WithMarshalFunc(sonic.Marshal),
		client.WithUnmarshalFunc(sonic.Unmarshal),
		client.WithLogger(NewLogger(zapLogger.Named("http"))),
		client.WithTimeout(requestTimeout),
		client.WithMiddleware(middlewares...),
	)
}
