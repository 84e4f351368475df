package storage

import (
	"context"
	"fmt"
	"os"
)

// Download reads a processed file back from disk.
func (s *StorageService) Download(ctx context.Context, filename string) ([]byte, error) {
	path, err := s.Path(filename)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return data, nil
}
