package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"startup-funding-api/internal/clock"
	"startup-funding-api/internal/config"
	"startup-funding-api/internal/controller"
	"startup-funding-api/internal/repo"
	"startup-funding-api/internal/service"
	"startup-funding-api/internal/validation"
	"startup-funding-api/migrations"
	"startup-funding-api/pkg/database"
	"startup-funding-api/pkg/http_server"

	"github.com/labstack/echo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type App struct {
	logger  *slog.Logger
	pool    *database.Pool
	handler *echo.Echo
}

// New connects the database, applies migrations and wires the HTTP handler.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	pool := database.NewPool(database.Dialect(cfg.Database.Driver), cfg.Database.DSN, database.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		TxTimeout:       cfg.Database.TxTimeout,
	}, logger)

	logger.Info("connecting database", "driver", cfg.Database.Driver)
	store, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	logger.Info("running migrations")
	if err := migrations.Up(store, logger); err != nil {
		_ = pool.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	repositories := repo.NewRepositories(store, clock.Real(), validation.New())
	services := service.NewServices(service.Dependencies{
		Repos:   repositories,
		Clock:   clock.Real(),
		Logger:  logger,
		Metrics: service.NewMetrics(registry),
	})

	handler := echo.New()
	handler.HideBanner = true
	handler.HidePort = true

	logger.Info("setup routes")
	controller.SetupRoutesHandlers(handler, services, logger, registry)

	return &App{logger: logger, pool: pool, handler: handler}, nil
}

func (a *App) Handler() http.Handler {
	return a.handler
}

func (a *App) Close() error {
	return a.pool.Close()
}

// Run serves until SIGINT, SIGTERM or a server failure, then shuts down
// gracefully.
func Run(cfg *config.Config, logger *slog.Logger) error {
	a, err := New(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("close database", "error", err)
		}
	}()

	httpServer := http_server.New(a.handler, cfg.Server.Address,
		http_server.ShutdownTimeout(cfg.Server.ShutdownTimeout),
		http_server.ReadHeaderTimeout(cfg.Server.ReadHeaderTimeout),
	)
	logger.Info("ready to process requests", "address", httpServer.Addr())

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	select {
	case s := <-interrupt:
		logger.Info("got signal", "signal", s.String())
	case err := <-httpServer.Notify():
		return fmt.Errorf("http server: %w", err)
	}

	logger.Info("shutting down")
	if err := httpServer.Shutdown(); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("successful shutdown")

	return nil
}
