package models

import "time"

const (
	StatusCompleted = "completed"
	StatusEmpty     = "empty"
)

// BatchEvent is published after every POST /process request.
type BatchEvent struct {
	ID           string           `json:"id"`
	Status       string           `json:"status"`
	Received     int              `json:"received"`
	Images       []ProcessedImage `json:"images,omitempty"`
	Options      []string         `json:"options,omitempty"`
	OutputFormat string           `json:"output_format"`
	HasLogo      bool             `json:"has_logo"`
	CreatedAt    time.Time        `json:"created_at"`
}
