package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-enhance/internal/config"
	"github.com/phambaophuc/image-enhance/internal/models"
	"github.com/phambaophuc/image-enhance/internal/services/processor"
	"github.com/phambaophuc/image-enhance/internal/services/queue"
	"github.com/phambaophuc/image-enhance/internal/services/storage"
	"go.uber.org/zap"
)

const (
	imagesParamKey = "images"
	logoParamKey   = "logo"
	optionsKey     = "options"
	filenameParam  = "filename"
)

type ImageHandler struct {
	processor *processor.ImageProcessor
	storage   *storage.StorageService
	queue     *queue.QueueService
	logger    *zap.Logger
	config    *config.Config
}

func NewImageHandler(
	processor *processor.ImageProcessor,
	storage *storage.StorageService,
	queue *queue.QueueService,
	logger *zap.Logger,
	config *config.Config,
) *ImageHandler {
	return &ImageHandler{
		processor: processor,
		storage:   storage,
		queue:     queue,
		logger:    logger,
		config:    config,
	}
}

// === MAIN API ENDPOINTS ===

// Process enhances every uploaded image and reports the processed names.
func (h *ImageHandler) Process(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(h.config.Storage.MaxFileSize); err != nil {
		h.respondError(c, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	req, err := h.parseEnhanceParams(c)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	files := c.Request.MultipartForm.File[imagesParamKey]
	logoHeaders := c.Request.MultipartForm.File[logoParamKey]

	if h.config.Processing.Debug {
		h.logger.Debug("Received upload",
			zap.Int("images", len(files)),
			zap.Bool("logo", len(logoHeaders) > 0))
	}

	logoData, logo, err := h.readLogo(logoHeaders)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	uploads := h.readUploads(files)
	images := h.processUploads(c.Request.Context(), uploads, logoData, logo, req)
	h.mirror(c.Request.Context(), images)

	processed := make([]string, 0, len(images))
	for _, img := range images {
		processed = append(processed, img.Filename)
	}

	h.logger.Info("Batch processed",
		zap.Int("received", len(files)),
		zap.Strings("processed", processed))

	h.publishEvent(c.Request.Context(), req, len(files), logo != nil, images)

	c.JSON(http.StatusOK, models.ProcessResponse{Processed: processed})
}

// ServeProcessed returns a processed image from disk.
func (h *ImageHandler) ServeProcessed(c *gin.Context) {
	path, err := h.storage.Path(c.Param(filenameParam))
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid filename")
		return
	}

	if !fileExists(path) {
		h.respondError(c, http.StatusNotFound, "File not found")
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.File(path)
}

// HealthCheck
func (h *ImageHandler) HealthCheck(c *gin.Context) {
	services := h.storage.HealthCheck(c.Request.Context())
	if h.queue != nil {
		services["rabbitmq"] = h.queue.HealthCheck()
	} else {
		services["rabbitmq"] = storage.StatusNotConfigured
	}

	overall := h.calculateOverallHealth(services)

	statusCode := http.StatusOK
	if overall == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, models.APIResponse{
		Success: overall == "healthy",
		Data: models.HealthCheck{
			Status:    overall,
			Timestamp: time.Now(),
			Services:  services,
		},
	})
}

func (h *ImageHandler) GetStats(c *gin.Context) {
	cacheStats, err := h.storage.GetCacheStats(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get cache stats", zap.Error(err))
	}

	stats := map[string]interface{}{
		"cache":     cacheStats,
		"timestamp": time.Now(),
	}

	if h.queue != nil {
		queueStats, err := h.queue.GetQueueStats()
		if err != nil {
			h.logger.Error("Failed to get queue stats", zap.Error(err))
		}
		stats["queue"] = queueStats
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    stats,
	})
}
