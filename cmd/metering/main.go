package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/platefulapp/plateful/modules/metering"
	"github.com/platefulapp/plateful/pkg/httpserver"
	"github.com/platefulapp/plateful/pkg/logger"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := metering.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(logger.WithProduction("metering"))
	if cfg.Environment == "development" {
		log = logger.New(logger.WithDevelopment("metering"))
	}

	mod, err := metering.New(ctx, cfg)
	if err != nil {
		log.ErrorContext(ctx, "failed to assemble metering module", slog.Any("error", err))
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", httpserver.HealthHandler(log))
	r.Get("/readyz", httpserver.HealthHandler(log, mod.Healthchecks()...))
	r.Mount("/v1/metering", mod.Router(nil))

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	if err := srv.Run(ctx, r); err != nil {
		log.ErrorContext(ctx, "http server failed", slog.Any("error", err))
		os.Exit(1)
	}
}
