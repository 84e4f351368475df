package storage

import (
	"context"
	"os"

	storage_go "github.com/supabase-community/storage-go"
)

// HealthCheck checks the processed directory, Redis and Supabase.
func (s *StorageService) HealthCheck(ctx context.Context) map[string]string {
	status := make(map[string]string)

	if info, err := os.Stat(s.processedDir); err != nil {
		status["disk"] = "unhealthy: " + err.Error()
	} else if !info.IsDir() {
		status["disk"] = "unhealthy: not a directory"
	} else {
		status["disk"] = "healthy"
	}

	if s.redisClient == nil {
		status["redis"] = StatusNotConfigured
	} else if err := s.redisClient.Ping(ctx).Err(); err != nil {
		status["redis"] = "unhealthy: " + err.Error()
	} else {
		status["redis"] = "healthy"
	}

	if s.sbClient == nil {
		status["supabase"] = StatusNotConfigured
	} else if _, err := s.sbClient.ListFiles(s.bucket, "", storage_go.FileSearchOptions{}); err != nil {
		status["supabase"] = "unhealthy: " + err.Error()
	} else {
		status["supabase"] = "healthy"
	}

	return status
}
