package storage

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/phambaophuc/image-enhance/internal/models"
	"github.com/redis/go-redis/v9"
)

const CacheKeyPrefix = "img_cache:"

func (s *StorageService) CacheEnabled() bool {
	return s.redisClient != nil
}

func (s *StorageService) GetFromCache(ctx context.Context, cacheKey string) ([]byte, error) {
	if s.redisClient == nil {
		return nil, nil
	}

	data, err := s.redisClient.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("cache get error: %w", err)
	}
	return data, nil
}

func (s *StorageService) SetCache(ctx context.Context, cacheKey string, data []byte) error {
	if s.redisClient == nil {
		return nil
	}
	return s.redisClient.Set(ctx, cacheKey, data, s.cacheDuration).Err()
}

// GenerateCacheKey hashes the image bytes, the logo bytes and every
// parameter that changes the output.
func GenerateCacheKey(image, logo []byte, req *models.EnhanceRequest) string {
	options := make([]string, 0, len(req.Options))
	for opt, on := range req.Options {
		if on {
			options = append(options, opt)
		}
	}
	sort.Strings(options)

	hash := sha256.New()
	hash.Write(image)
	hash.Write([]byte{0})
	hash.Write(logo)
	fmt.Fprintf(hash, "|%s|%s|%d|%d|%d|%d",
		strings.Join(options, ","), req.OutputFormat,
		req.Brightness, req.Contrast, req.Sharpen, req.Temperature)
	if len(logo) > 0 {
		fmt.Fprintf(hash, "|%s|%.4f|%.4f", req.Position, req.Opacity, req.Scale)
	}

	return fmt.Sprintf("%s%x", CacheKeyPrefix, hash.Sum(nil))
}

func (s *StorageService) GetCacheStats(ctx context.Context) (map[string]interface{}, error) {
	if s.redisClient == nil {
		return map[string]interface{}{"status": StatusNotConfigured}, nil
	}

	pipeline := s.redisClient.Pipeline()

	infoCmd := pipeline.Info(ctx, "memory")
	dbSizeCmd := pipeline.DBSize(ctx)

	if _, err := pipeline.Exec(ctx); err != nil {
		return nil, fmt.Errorf("pipeline error: %w", err)
	}

	stats := map[string]interface{}{
		"db_keys": dbSizeCmd.Val(),
		"info":    infoCmd.Val(),
	}

	return stats, nil
}
