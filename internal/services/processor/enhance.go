package processor

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/image-enhance/internal/models"
)

const (
	denoiseSigma     = 0.5
	sharpenSigma     = 2.0
	temperatureShift = 0.1
)

// flatten converts any decoded image to opaque 8-bit NRGBA, dropping alpha.
func flatten(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

// enhance applies the checked options in a fixed order: denoise, tone,
// sharpen, temperature.
func (p *ImageProcessor) enhance(img *image.NRGBA, req *models.EnhanceRequest) *image.NRGBA {
	result := img

	if req.Has(models.OptionDenoise) {
		result = imaging.Blur(result, denoiseSigma)
	}

	if req.Has(models.OptionBrightness) || req.Has(models.OptionContrast) {
		result = adjustTone(result, req.Brightness, req.Contrast)
	}

	if req.Has(models.OptionSharpen) {
		result = unsharpMask(result, float64(req.Sharpen)/100)
	}

	if req.Has(models.OptionTemperature) {
		result = adjustTemperature(result, req.Temperature)
	}

	return result
}

// ToneFactors returns the brightness shift and contrast factor for slider
// values where 50 is neutral.
func ToneFactors(brightness, contrast int) (shift, factor float64) {
	b := 1.0 + float64(brightness-50)/200.0
	c := 1.0 + float64(contrast-50)/200.0
	return (b - 1.0) * 0.25, c
}

// adjustTone stretches contrast around mid gray and shifts brightness.
func adjustTone(img *image.NRGBA, brightness, contrast int) *image.NRGBA {
	shift, factor := ToneFactors(brightness, contrast)

	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		tone := func(v uint8) uint8 {
			return fromUnit((toUnit(v)-0.5)*factor + 0.5 + shift)
		}
		return color.NRGBA{R: tone(c.R), G: tone(c.G), B: tone(c.B), A: c.A}
	})
}

// unsharpMask sharpens with strength in [0,1]. Zero strength is a no-op.
func unsharpMask(img *image.NRGBA, strength float64) *image.NRGBA {
	if strength <= 0 {
		return img
	}

	blur := imaging.Blur(img, sharpenSigma)
	out := imaging.Clone(img)
	amount := 0.5 * strength

	for i := 0; i < len(out.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := toUnit(img.Pix[i+c])*(1+amount) - toUnit(blur.Pix[i+c])*amount
			out.Pix[i+c] = fromUnit(v)
		}
	}
	return out
}

// adjustTemperature warms (temp > 50) or cools (temp < 50) the image.
func adjustTemperature(img *image.NRGBA, temp int) *image.NRGBA {
	t := float64(temp-50) / 100 * temperatureShift
	if t == 0 {
		return img
	}

	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: fromUnit(toUnit(c.R) + t),
			G: c.G,
			B: fromUnit(toUnit(c.B) - t),
			A: c.A,
		}
	})
}

func toUnit(v uint8) float64 {
	return float64(v) / 255.0
}

func fromUnit(v float64) uint8 {
	v = math.Max(0, math.Min(1, v))
	return uint8(math.Round(v * 255.0))
}
