package storage

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/phambaophuc/image-enhance/internal/config"
	"github.com/redis/go-redis/v9"
	storage_go "github.com/supabase-community/storage-go"
)

const StatusNotConfigured = "not configured"

var ErrInvalidFilename = errors.New("invalid filename")

// StorageService keeps processed files on local disk and optionally mirrors
// them to Supabase Storage and caches them in Redis.
type StorageService struct {
	processedDir  string
	sbClient      *storage_go.Client
	redisClient   *redis.Client
	bucket        string
	cacheDuration time.Duration
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	if err := os.MkdirAll(cfg.Storage.ProcessedPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create processed dir: %w", err)
	}

	s := &StorageService{
		processedDir:  cfg.Storage.ProcessedPath,
		bucket:        cfg.Supabase.BUCKET,
		cacheDuration: cfg.Storage.CacheDuration,
	}

	if cfg.Supabase.Enabled() {
		s.sbClient = storage_go.NewClient(cfg.Supabase.URL+"/storage/v1", cfg.Supabase.KEY, nil)
	}

	if cfg.Redis.Addr != "" {
		s.redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	return s, nil
}

// ProcessedDir returns the directory processed files are served from.
func (s *StorageService) ProcessedDir() string {
	return s.processedDir
}

// Close releases the Redis connection pool.
func (s *StorageService) Close() error {
	if s.redisClient != nil {
		return s.redisClient.Close()
	}
	return nil
}
