package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"amount-detection/internal/config"
	"amount-detection/internal/handlers"
	"amount-detection/internal/middleware"
	"amount-detection/internal/ocr"
	"amount-detection/internal/services"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file loaded", "error", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()

	logger.Info("starting amount detection API",
		"environment", cfg.Server.Environment,
		"ocr_enabled", cfg.OCR.Enabled,
	)

	e := buildServer(cfg, logger)

	if err := runServer(e, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// buildServer assembles the Echo instance: pipeline services, handlers,
// middleware, and routes.
func buildServer(cfg *config.Config, logger *slog.Logger) *echo.Echo {
	metrics := services.NewPrometheusMetrics()

	extractor := services.NewTokenExtractor(cfg.Heuristics, logger)
	normalizer := services.NewNormalizer(logger)
	classifier := services.NewClassifier(cfg.Detection, logger)
	detector := services.NewDetectionService(extractor, normalizer, classifier, cfg.Detection, metrics, logger)

	var recognizer ocr.RecognizerInterface
	if cfg.OCR.Enabled {
		recognizer = ocr.NewRecognizer(cfg.OCR, logger)
	}

	detectionHandler := handlers.NewDetectionHandler(detector, recognizer, cfg.Detection, metrics, logger)
	healthHandler := handlers.NewHealthCheckHandler(recognizer)
	apiHandler := handlers.NewAPIInfoHandler()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = middleware.CustomHTTPErrorHandler

	e.Use(middleware.RequestID())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.PanicRecovery())
	e.Use(middleware.RateLimiterWithConfig(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitBurst))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.GET("", apiHandler.APIInfo)
	api.GET("/health", healthHandler.HealthCheck)
	api.POST("/detect-amounts-text", detectionHandler.DetectText)
	api.POST("/detect-amounts-image", detectionHandler.DetectImage)

	return e
}

// runServer starts the HTTP server and blocks until shutdown
func runServer(e *echo.Echo, cfg *config.Config, logger *slog.Logger) error {
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server started", "addr", addr)
		serverErrors <- e.Start(addr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := e.Shutdown(ctx); err != nil {
			e.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		logger.Info("server stopped gracefully")
	}

	return nil
}
