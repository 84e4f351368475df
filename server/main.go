package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-enhance/internal/config"
	"github.com/phambaophuc/image-enhance/internal/http/handlers"
	"github.com/phambaophuc/image-enhance/internal/http/routes"
	"github.com/phambaophuc/image-enhance/internal/services/processor"
	"github.com/phambaophuc/image-enhance/internal/services/queue"
	"github.com/phambaophuc/image-enhance/internal/services/storage"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	if !cfg.Processing.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize services
	imageProcessor := processor.NewImageProcessor(processor.ProcessorOptions{
		Workers:     cfg.Processing.Workers,
		JPEGQuality: cfg.Processing.JPEGQuality,
		MaxFileSize: cfg.Storage.MaxFileSize,
	})

	storageService, err := storage.NewStorageService(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage service", zap.Error(err))
	}
	defer storageService.Close()

	var queueService *queue.QueueService
	if cfg.RabbitMQ.URL != "" {
		queueService, err = queue.NewQueueService(cfg.RabbitMQ, logger)
		if err != nil {
			// Batch events are optional; processing keeps working without them.
			logger.Warn("Failed to initialize queue service", zap.Error(err))
			queueService = nil
		} else {
			defer queueService.Close()
		}
	}

	// Initialize handlers
	imageHandler := handlers.NewImageHandler(imageProcessor, storageService, queueService, logger, cfg)

	router := routes.NewRouter(imageHandler, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	// Start server
	go func() {
		logger.Info("Starting server",
			zap.String("addr", server.Addr),
			zap.String("processed_dir", storageService.ProcessedDir()),
			zap.Bool("cache", storageService.CacheEnabled()),
			zap.Bool("mirror", storageService.MirrorEnabled()),
			zap.Bool("events", queueService != nil))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
