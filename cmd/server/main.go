package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"urbannest/internal/config"
	"urbannest/internal/handler"
	"urbannest/internal/logging"
	"urbannest/internal/model"
	"urbannest/internal/registry"
	"urbannest/internal/repository"
	"urbannest/internal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Logging, cfg.Fluent, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logger.Close()

	logger.Info("UrbanNest flat price estimator",
		"version", Version,
		"build_time", BuildTime,
		"git_commit", GitCommit,
	)

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	ctx := context.Background()

	// Load models; the server never starts with a partial registry
	models, err := registry.Load(ctx, cfg.Models, logger.Logger)
	if err != nil {
		fatal(logger, "Failed to load models", err)
	}

	// Resources released by fatal before exiting
	var closers []io.Closer

	// Initialize prediction history (optional)
	var history service.HistoryStore
	if cfg.HistoryEnabled() {
		repo, err := repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			fatal(logger, "Failed to connect to database", err)
		}
		defer repo.Close()
		closers = append(closers, repo)

		if err := repo.EnsureSchema(ctx, models.Dimensions()); err != nil {
			fatal(logger, "Failed to prepare database schema", err, closers...)
		}
		history = repo
		logger.Info("connected to PostgreSQL, prediction history enabled")
	} else {
		logger.Warn("prediction history disabled", "hint", "set DATABASE_URL or PG_HOST to enable it")
	}

	// Initialize services
	geocoder := service.NewNominatimClient(&cfg.Geocoder, cfg.History.GeohashPrecision, logger.Logger)
	predictionService := service.NewPredictionService(models, geocoder, history, cfg.History, logger.Logger)
	defaultKind, err := model.ParseKind(cfg.Models.DefaultKindSlug)
	if err != nil {
		fatal(logger, "Invalid default model", err, closers...)
	}
	predictionService.SetDefaultModel(defaultKind)

	// Initialize handlers
	predictionHandler := handler.NewPredictionHandler(predictionService, cfg.Server.MaxBatchSize, logger.Logger)
	historyHandler := handler.NewHistoryHandler(predictionService)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitList(cfg.Server.AllowedOrigins)
	corsConfig.AllowMethods = splitList(cfg.Server.AllowedMethods)
	corsConfig.AllowHeaders = splitList(cfg.Server.AllowedHeaders)
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "healthy",
			"service":         "urbannest",
			"version":         Version,
			"models":          len(models.Entries()),
			"history_enabled": predictionService.HistoryEnabled(),
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		// Form metadata
		apiV1.GET("/models", predictionHandler.Models)
		apiV1.GET("/options", predictionHandler.Options)
		apiV1.GET("/geocode", predictionHandler.Geocode)

		// Valuation
		apiV1.POST("/predict", predictionHandler.Predict)
		apiV1.POST("/predict/batch", predictionHandler.PredictBatch)

		// History and feedback
		apiV1.GET("/predictions", historyHandler.Recent)
		apiV1.GET("/predictions/:id/similar", historyHandler.Similar)
		apiV1.POST("/feedback", historyHandler.Feedback)
	}

	// Serve the form
	// This function is implemented in embed.go (production) or static_dev.go (development)
	if err := setupStaticFiles(router, &cfg.Server, logger.Logger); err != nil {
		fatal(logger, "Failed to set up static files", err, closers...)
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		logger.Info("starting server", "addr", addr, "web_ui", fmt.Sprintf("http://localhost:%d", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "Failed to start server", err, closers...)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}

	// Let pending history writes finish before the pool closes
	predictionService.Wait()
	logger.Info("server stopped")
}

// fatal logs err, releases closers and flushes the logger before exiting,
// since os.Exit skips deferred calls
func fatal(logger *logging.Logger, msg string, err error, closers ...io.Closer) {
	release(logger, msg, err, closers...)
	os.Exit(1)
}

func release(logger *logging.Logger, msg string, err error, closers ...io.Closer) {
	logger.Error(msg, "error", err)
	for i := len(closers) - 1; i >= 0; i-- {
		if cerr := closers[i].Close(); cerr != nil {
			logger.Warn("failed to release resource", "error", cerr)
		}
	}
	_ = logger.Close()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
