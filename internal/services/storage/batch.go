package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
)

const mirrorWorkers = 5

// MirrorFile is one processed file to upload to Supabase.
type MirrorFile struct {
	Filename    string
	Data        []byte
	ContentType string
}

// UploadMultiple mirrors files concurrently. The returned URLs are indexed
// like files; failed uploads leave an empty URL and are reported together.
func (s *StorageService) UploadMultiple(ctx context.Context, files []MirrorFile) ([]string, error) {
	if len(files) == 0 {
		return []string{}, nil
	}

	urls := make([]string, len(files))
	errs := make([]error, len(files))

	numWorkers := mirrorWorkers
	if len(files) < numWorkers {
		numWorkers = len(files)
	}

	jobs := make(chan int, len(files))
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				url, err := s.Upload(ctx, bytes.NewBuffer(files[i].Data), files[i].Filename, files[i].ContentType)
				urls[i] = url
				errs[i] = err
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	var failedUploads []string
	for i, err := range errs {
		if err != nil {
			failedUploads = append(failedUploads, fmt.Sprintf("%s: %v", files[i].Filename, err))
		}
	}

	if len(failedUploads) > 0 {
		return urls, fmt.Errorf("failed to upload %d files: %s",
			len(failedUploads), strings.Join(failedUploads, "; "))
	}

	return urls, nil
}
