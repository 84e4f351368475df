package models

import "time"

// ProcessResponse is the body returned by POST /process.
type ProcessResponse struct {
	Processed []string `json:"processed"`
}

// ProcessedImage describes one output file of a batch.
type ProcessedImage struct {
	Filename    string    `json:"filename"`
	Original    string    `json:"original"`
	Format      string    `json:"format"`
	FileSize    int64     `json:"file_size"`
	URL         string    `json:"url,omitempty"`
	Cached      bool      `json:"cached"`
	ProcessedAt time.Time `json:"processed_at"`
}
