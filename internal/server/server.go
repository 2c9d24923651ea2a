// Package server is the HTTP front door: it terminates inbound requests,
// enforces the origin policy before any handler group runs, serves the
// built-in diagnostics and uploaded assets, and mounts the realtime
// gateway's handshake endpoint.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/M-uzair-abbasi/YaarFetch/internal/realtime"
	"github.com/M-uzair-abbasi/YaarFetch/internal/server/middleware"
	"github.com/M-uzair-abbasi/YaarFetch/pkg/api"
	"github.com/M-uzair-abbasi/YaarFetch/pkg/config"
	"github.com/M-uzair-abbasi/YaarFetch/pkg/cors"
)

type App struct {
	logger   *slog.Logger
	config   *config.Config
	policy   *cors.Policy
	realtime *realtime.Gateway
	groups   map[string]api.Handler
	http     *http.Server

	ctx context.Context
}

func NewApp(logger *slog.Logger, rootCtx context.Context, cfg *config.Config, policy *cors.Policy, rt *realtime.Gateway, groups map[string]api.Handler) (*App, error) {
	if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensuring uploads directory %q: %w", cfg.Uploads.Dir, err)
	}

	app := &App{
		logger:   logger,
		config:   cfg,
		policy:   policy,
		realtime: rt,
		groups:   groups,
		ctx:      rootCtx,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", app.handleHealth)
	mux.HandleFunc("GET /api/cors-test", app.handleCORSTest)
	mux.HandleFunc("GET /uploads/", app.handleUploads)
	mux.HandleFunc("/api/", app.handleAPI)
	mux.HandleFunc("/socket", rt.HandleUpgrade)

	// Every inbound request, including the websocket handshake, runs the
	// origin decision before anything else can touch it.
	handler := middleware.Chain(mux,
		middleware.RequestMetadataMiddleware(),
		middleware.NewRequestLogger(app.logger),
		middleware.NewRecover(app.logger),
		middleware.NewCORS(app.logger, policy),
		middleware.NewBodyLimit(cfg.Server.MaxBodyBytes),
		middleware.NewIdentity(app.logger, cfg.Server.JWTSecret),
	)

	app.http = &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: handler,
		BaseContext: func(l net.Listener) context.Context {
			return app.ctx
		},
	}
	return app, nil
}

// Handler exposes the fully chained handler for tests.
func (a *App) Handler() http.Handler {
	return a.http.Handler
}

func (a *App) Run() error {
	go func() {
		a.logger.Info("Server starting", slog.String("addr", a.http.Addr))
		if err := a.http.ListenAndServe(); err != http.ErrServerClosed {
			a.logger.Error("HTTP server failed", slog.Any("error", err))
		}
	}()

	<-a.ctx.Done()
	return a.Shutdown()
}

// Shutdown drains the HTTP server, then closes every live realtime
// connection and waits for their cleanup.
func (a *App) Shutdown() error {
	a.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.http.Shutdown(shutdownCtx); err != nil {
		return err
	}

	a.logger.Info("Closing all active connections...")
	a.realtime.Shutdown(errors.New("graceful shutdown"))
	a.logger.Info("Server shut down gracefully.")
	return nil
}
