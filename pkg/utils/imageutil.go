package utils

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultImageTypes are accepted when no allow-list is configured.
var DefaultImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/bmp",
	"image/tiff",
}

// IsValidImageType reports whether contentType is in allowed, falling back
// to DefaultImageTypes when allowed is empty.
func IsValidImageType(contentType string, allowed []string) bool {
	if len(allowed) == 0 {
		allowed = DefaultImageTypes
	}

	ct := strings.ToLower(contentType)
	for _, validType := range allowed {
		if strings.Contains(ct, strings.ToLower(validType)) {
			return true
		}
	}
	return false
}

// DetectImageType reads the image header of data and reports its content
// type and whether it is allowed. Data no registered decoder recognises is
// reported as application/octet-stream.
func DetectImageType(data []byte, allowed []string) (string, bool) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "application/octet-stream", false
	}

	contentType := "image/" + format
	return contentType, IsValidImageType(contentType, allowed)
}

// GenerateStorageKey returns a unique object key for a processed file.
func GenerateStorageKey(filename string) string {
	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filename, ext)
	timestamp := time.Now().Unix()
	id := uuid.New().String()[:8]

	return fmt.Sprintf("processed/%s_%d_%s%s", name, timestamp, id, ext)
}
