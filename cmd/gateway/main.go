package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/M-uzair-abbasi/YaarFetch/internal/realtime"
	"github.com/M-uzair-abbasi/YaarFetch/internal/server"
	"github.com/M-uzair-abbasi/YaarFetch/pkg/api"
	"github.com/M-uzair-abbasi/YaarFetch/pkg/config"
	"github.com/M-uzair-abbasi/YaarFetch/pkg/cors"
	"github.com/M-uzair-abbasi/YaarFetch/pkg/logging"
	"github.com/M-uzair-abbasi/YaarFetch/pkg/state/roommanager"
)

// groupNames are the resource domains the gateway routes to. The real
// handler groups live outside the gateway; this binary mounts placeholders
// until they are wired in.
var groupNames = []string{"auth", "users", "orders", "offers", "matches", "messages", "reviews"}

func main() {
	logger := logging.New(logging.LevelInfo)
	slog.SetDefault(logger)

	cfg, err := config.Load(logger, "config")
	if err != nil {
		logger.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger = logging.New(logging.ParseLevel(cfg.Server.LogLevel))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	policy := cors.NewPolicy(cfg.CORS.AllowedOrigins)
	manager := roommanager.NewInMemoryManager(logger)
	// rt doubles as the process-wide publish bridge: real handler groups
	// receive it as a realtime.Publisher and nothing more.
	rt := realtime.NewGateway(logger, policy, manager, cfg.Transport)

	groups := make(map[string]api.Handler, len(groupNames))
	for _, name := range groupNames {
		groups[name] = api.Unimplemented(name)
	}

	app, err := server.NewApp(logger, ctx, cfg, policy, rt, groups)
	if err != nil {
		logger.Error("Failed to build server", slog.Any("error", err))
		os.Exit(1)
	}
	if err := app.Run(); err != nil {
		logger.Error("Application run failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Application shut down successfully.")
}
