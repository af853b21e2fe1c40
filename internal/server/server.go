// Package server exposes analysis sessions over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robalyx/stylist/internal/session"
	"github.com/robalyx/stylist/internal/weather"
	"github.com/robalyx/stylist/pkg/utils"
	"go.uber.org/zap"
)

// weatherTimeout bounds the background weather lookup of a new session.
const weatherTimeout = 15 * time.Second

// SessionFactory creates a new idle session.
type SessionFactory func(opts ...session.Option) *session.Orchestrator

// Server holds the live sessions and serves the HTTP API.
type Server struct {
	sessions   *utils.TTLMap[string, *session.Orchestrator]
	newSession SessionFactory
	weather    weather.Provider
	logger     *zap.Logger
}

// New creates a Server whose idle sessions expire after ttl.
func New(factory SessionFactory, provider weather.Provider, ttl time.Duration, logger *zap.Logger) *Server {
	s := &Server{
		sessions:   utils.NewTTLMap[string, *session.Orchestrator](ttl),
		newSession: factory,
		weather:    provider,
		logger:     logger.Named("server"),
	}

	s.sessions.OnEvict(func(id string, _ *session.Orchestrator) {
		s.logger.Debug("Session expired", zap.String("sessionID", id))
	})

	return s
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, s.requestLogger)

	r.Get("/healthz", s.health)

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Post("/submit", s.submit)
			r.Post("/regenerate", s.regenerate)
			r.Post("/reset", s.reset)
		})
	})

	return r
}

// Close stops the session expiry loop.
func (s *Server) Close() {
	s.sessions.Close()
}

// startWeather resolves the weather for a session in the background.
// Submission stays gated until the summary is set.
func (s *Server) startWeather(orchestrator *session.Orchestrator, lat, lon float64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), weatherTimeout)
		defer cancel()

		summary := weather.Resolve(ctx, s.weather, lat, lon, s.logger)
		orchestrator.SetWeather(summary)
	}()
}

// requestLogger logs every request with zap.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Debug("Handled request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("requestID", middleware.GetReqID(r.Context())))
	})
}
