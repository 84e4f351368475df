package processor

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/image-enhance/internal/models"
)

const LogoMargin = 20

// addLogo scales the logo to a fraction of the base width, keeping its
// aspect ratio, and composites it at the requested position.
func (p *ImageProcessor) addLogo(base *image.NRGBA, logo image.Image, position string, opacity, scale float64) *image.NRGBA {
	bw, bh := base.Bounds().Dx(), base.Bounds().Dy()
	lb := logo.Bounds()
	if lb.Dx() == 0 || lb.Dy() == 0 {
		return base
	}

	lw := int(float64(bw) * scale)
	lh := int(float64(lb.Dy()) * (float64(bw) * scale / float64(lb.Dx())))
	if lw < 1 || lh < 1 {
		return base
	}

	resized := imaging.Resize(logo, lw, lh, imaging.Lanczos)
	opacity = min(1.0, max(0.0, opacity))

	return imaging.Overlay(base, resized, LogoPosition(position, bw, bh, lw, lh), opacity)
}

// LogoPosition returns the top-left corner of the logo. Unknown positions
// place it top-right.
func LogoPosition(position string, bw, bh, lw, lh int) image.Point {
	switch position {
	case models.PositionBottomRight:
		return image.Pt(bw-lw-LogoMargin, bh-lh-LogoMargin)
	case models.PositionBottomLeft:
		return image.Pt(LogoMargin, bh-lh-LogoMargin)
	case models.PositionTopLeft:
		return image.Pt(LogoMargin, LogoMargin)
	case models.PositionCenter:
		return image.Pt((bw-lw)/2, (bh-lh)/2)
	default:
		return image.Pt(bw-lw-LogoMargin, LogoMargin)
	}
}
