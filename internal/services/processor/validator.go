package processor

import (
	"bytes"
	"fmt"
	"image"
)

func (p *ImageProcessor) ValidateImage(data []byte, maxSize int64) error {
	if len(data) == 0 {
		return fmt.Errorf("empty image data")
	}

	if size := int64(len(data)); size > maxSize {
		return fmt.Errorf("file size %d exceeds maximum allowed size %d", size, maxSize)
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("invalid image format: %w", err)
	}

	return nil
}
