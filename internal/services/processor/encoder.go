package processor

import (
	"image"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/image-enhance/internal/models"
)

func (p *ImageProcessor) encodeImage(w io.Writer, img image.Image, format string) error {
	switch format {
	case models.FormatJPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(p.jpegQuality))
	default:
		// Uncompressed PNG keeps gradients intact.
		return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(png.NoCompression))
	}
}

// OutputFormat maps the requested output format to an encoder. WebP has
// no encoder available, so it falls back to PNG like any unknown value.
func OutputFormat(format string) string {
	switch format {
	case models.FormatJPEG, models.FormatJPG:
		return models.FormatJPEG
	default:
		return models.FormatPNG
	}
}

func extension(format string) string {
	if format == models.FormatJPEG {
		return ".jpg"
	}
	return ".png"
}

// ContentType returns the MIME type of an encoded format.
func ContentType(format string) string {
	if format == models.FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}
