package controller

import (
	"log/slog"

	"startup-funding-api/internal/service"
	"startup-funding-api/internal/validation"

	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutesHandlers mounts the API under /api and the metrics exposition
// on /metrics.
func SetupRoutesHandlers(handler *echo.Echo, services *service.Services, logger *slog.Logger, gatherer prometheus.Gatherer) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	handler.HTTPErrorHandler = errorHandler(logger)
	handler.Use(middleware.Recover())
	handler.Use(requestLogger(logger))

	if gatherer != nil {
		handler.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	validate := validation.New()
	api := handler.Group("/api")
	newDiagnosticRoutesHandler(api, services)
	newBidRoutesHandler(api, services, validate)
	newInvestorRoutesHandler(api, services)
}
