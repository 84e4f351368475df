package handlers

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/phambaophuc/image-enhance/internal/models"
	"github.com/phambaophuc/image-enhance/internal/services/processor"
	"github.com/phambaophuc/image-enhance/internal/services/storage"
	"github.com/phambaophuc/image-enhance/pkg/utils"
	"go.uber.org/zap"
)

// === REQUEST PARSING ===

func (h *ImageHandler) parseEnhanceParams(c *gin.Context) (*models.EnhanceRequest, error) {
	req := models.NewEnhanceRequest()

	var err error
	if req.Brightness, err = h.parseIntField(c.PostForm("brightness_val"), "brightness_val", req.Brightness); err != nil {
		return nil, err
	}
	if req.Contrast, err = h.parseIntField(c.PostForm("contrast_val"), "contrast_val", req.Contrast); err != nil {
		return nil, err
	}
	if req.Sharpen, err = h.parseIntField(c.PostForm("sharpen_val"), "sharpen_val", req.Sharpen); err != nil {
		return nil, err
	}
	if req.Temperature, err = h.parseIntField(c.PostForm("temp_val"), "temp_val", req.Temperature); err != nil {
		return nil, err
	}
	if req.Opacity, err = h.parseFloatField(c.PostForm("opacity"), "opacity", req.Opacity); err != nil {
		return nil, err
	}
	if req.Scale, err = h.parseFloatField(c.PostForm("scale"), "scale", req.Scale); err != nil {
		return nil, err
	}

	if position := c.PostForm("position"); position != "" {
		req.Position = position
	}
	if format := strings.ToLower(c.PostForm("output_format")); format != "" {
		req.OutputFormat = format
	}

	for _, opt := range c.PostFormArray(optionsKey) {
		req.Options[opt] = true
	}

	return req, nil
}

func (h *ImageHandler) parseIntField(value, fieldName string, defaultVal int) (int, error) {
	if value == "" {
		return defaultVal, nil
	}

	num, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be a number", fieldName)
	}
	return num, nil
}

func (h *ImageHandler) parseFloatField(value, fieldName string, defaultVal float64) (float64, error) {
	if value == "" {
		return defaultVal, nil
	}

	num, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be a number", fieldName)
	}
	return num, nil
}

// === FILE OPERATIONS ===

func (h *ImageHandler) readLogo(headers []*multipart.FileHeader) ([]byte, image.Image, error) {
	if len(headers) == 0 || headers[0].Filename == "" {
		return nil, nil, nil
	}

	data, err := h.readFile(headers[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read logo: %v", err)
	}

	logo, err := h.processor.DecodeLogo(data)
	if err != nil {
		return nil, nil, err
	}
	return data, logo, nil
}

// readUploads reads every named image part. Unreadable or non-image parts
// are logged and skipped.
func (h *ImageHandler) readUploads(files []*multipart.FileHeader) []processor.Upload {
	uploads := make([]processor.Upload, 0, len(files))

	for _, fh := range files {
		if fh == nil || fh.Filename == "" {
			continue
		}

		data, err := h.readFile(fh)
		if err != nil {
			h.logger.Warn("Could not read upload", zap.String("filename", fh.Filename), zap.Error(err))
			continue
		}

		if contentType, ok := utils.DetectImageType(data, h.config.Storage.AllowedTypes); !ok {
			h.logger.Warn("Skipping unsupported upload",
				zap.String("filename", fh.Filename),
				zap.String("content_type", contentType))
			continue
		}

		uploads = append(uploads, processor.Upload{Filename: fh.Filename, Data: data})
	}

	return uploads
}

func (h *ImageHandler) readFile(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > h.config.Storage.MaxFileSize {
		return nil, fmt.Errorf("file size %d exceeds maximum allowed size %d", fh.Size, h.config.Storage.MaxFileSize)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// === PROCESSING LOGIC ===

// processUploads serves cached results where possible, processes the rest
// on the worker pool and saves every output. The returned images keep
// upload order; failed uploads are left out.
func (h *ImageHandler) processUploads(
	ctx context.Context,
	uploads []processor.Upload,
	logoData []byte,
	logo image.Image,
	req *models.EnhanceRequest,
) []models.ProcessedImage {
	format := processor.OutputFormat(req.OutputFormat)
	results := make([]*processor.Result, len(uploads))
	keys := make([]string, len(uploads))
	hits := make([]bool, len(uploads))

	var misses []processor.Upload
	var missIdx []int

	for i, upload := range uploads {
		keys[i] = storage.GenerateCacheKey(upload.Data, logoData, req)

		cached, err := h.storage.GetFromCache(ctx, keys[i])
		if err != nil {
			h.logger.Warn("Cache lookup failed", zap.String("cache_key", keys[i]), zap.Error(err))
		}
		if cached != nil {
			h.logger.Info("Cache hit", zap.String("filename", upload.Filename))
			hits[i] = true
			results[i] = &processor.Result{
				Original: upload.Filename,
				Filename: processor.OutputFilename(upload.Filename, format),
				Format:   format,
				Buffer:   bytes.NewBuffer(cached),
			}
			continue
		}

		misses = append(misses, upload)
		missIdx = append(missIdx, i)
	}

	batch := h.processor.ProcessBatch(misses, logo, req)
	for j := range batch {
		res := &batch[j]
		i := missIdx[j]
		results[i] = res

		if res.Err != nil {
			continue
		}
		if err := h.storage.SetCache(ctx, keys[i], res.Buffer.Bytes()); err != nil {
			h.logger.Warn("Failed to cache data", zap.String("cache_key", keys[i]), zap.Error(err))
		}
	}

	images := make([]models.ProcessedImage, 0, len(results))
	for i, res := range results {
		if res.Err != nil {
			h.logger.Warn("Could not process image", zap.String("filename", res.Original), zap.Error(res.Err))
			continue
		}

		if _, err := h.storage.SaveFile(ctx, res.Buffer.Bytes(), res.Filename); err != nil {
			h.logger.Error("Failed to save processed image", zap.String("filename", res.Filename), zap.Error(err))
			continue
		}

		images = append(images, models.ProcessedImage{
			Filename:    res.Filename,
			Original:    res.Original,
			Format:      res.Format,
			FileSize:    int64(res.Buffer.Len()),
			Cached:      hits[i],
			ProcessedAt: time.Now(),
		})
	}

	return images
}

// === STORAGE OPERATIONS ===

func (h *ImageHandler) mirror(ctx context.Context, images []models.ProcessedImage) {
	if !h.storage.MirrorEnabled() || len(images) == 0 {
		return
	}

	files := make([]storage.MirrorFile, 0, len(images))
	idx := make([]int, 0, len(images))
	for i, img := range images {
		data, err := h.storage.Download(ctx, img.Filename)
		if err != nil {
			h.logger.Warn("Failed to read processed image", zap.String("filename", img.Filename), zap.Error(err))
			continue
		}
		files = append(files, storage.MirrorFile{
			Filename:    img.Filename,
			Data:        data,
			ContentType: processor.ContentType(img.Format),
		})
		idx = append(idx, i)
	}

	urls, err := h.storage.UploadMultiple(ctx, files)
	if err != nil {
		h.logger.Warn("Failed to upload to Storage", zap.Error(err))
	}
	for j, url := range urls {
		images[idx[j]].URL = url
	}
}

func (h *ImageHandler) publishEvent(ctx context.Context, req *models.EnhanceRequest, received int, hasLogo bool, images []models.ProcessedImage) {
	if h.queue == nil {
		return
	}

	status := models.StatusCompleted
	if len(images) == 0 {
		status = models.StatusEmpty
	}

	options := make([]string, 0, len(req.Options))
	for opt := range req.Options {
		options = append(options, opt)
	}
	sort.Strings(options)

	event := &models.BatchEvent{
		ID:           uuid.New().String(),
		Status:       status,
		Received:     received,
		Images:       images,
		Options:      options,
		OutputFormat: processor.OutputFormat(req.OutputFormat),
		HasLogo:      hasLogo,
		CreatedAt:    time.Now(),
	}

	if err := h.queue.PublishBatch(ctx, event); err != nil {
		h.logger.Warn("Failed to publish batch event", zap.Error(err))
	}
}

// === RESPONSE HANDLING ===

func (h *ImageHandler) respondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

// === UTILITY METHODS ===

func (h *ImageHandler) calculateOverallHealth(services map[string]string) string {
	for _, status := range services {
		if status != "healthy" && status != storage.StatusNotConfigured {
			return "unhealthy"
		}
	}
	return "healthy"
}
