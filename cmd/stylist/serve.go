package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/robalyx/stylist/internal/server"
	"github.com/robalyx/stylist/internal/setup"
	"github.com/robalyx/stylist/internal/setup/telemetry"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// shutdownTimeout bounds how long in-flight requests may run after a stop signal.
const shutdownTimeout = 30 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (overrides server.addr)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			app, err := setup.InitializeApp(ctx, telemetry.ServiceServer, ServerLogDir, c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer app.Cleanup(ctx)

			addr := app.Config.Server.Addr
			if c.String("addr") != "" {
				addr = c.String("addr")
			}

			srv := server.New(
				app.NewSession,
				app.Weather,
				time.Duration(app.Config.Server.SessionTTL)*time.Second,
				app.Logger,
			)
			defer srv.Close()

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				app.Logger.Info("HTTP server listening", zap.String("addr", addr))
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("http server failed: %w", err)
			case <-ctx.Done():
			}

			app.Logger.Info("Shutting down HTTP server")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("failed to shut down http server: %w", err)
			}
			return nil
		},
	}
}
