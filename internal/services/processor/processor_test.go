package processor

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/phambaophuc/image-enhance/internal/models"
)

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}
	return buf.Bytes()
}

func decode(t *testing.T, buf *bytes.Buffer) image.Image {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	return img
}

func TestToneFactors(t *testing.T) {
	shift, factor := ToneFactors(50, 50)
	if shift != 0 || factor != 1 {
		t.Errorf("expected neutral factors, got shift=%v factor=%v", shift, factor)
	}

	shift, factor = ToneFactors(100, 0)
	if shift != 0.0625 {
		t.Errorf("expected shift 0.0625, got %v", shift)
	}
	if factor != 0.75 {
		t.Errorf("expected factor 0.75, got %v", factor)
	}
}

func TestEnhance(t *testing.T) {
	p := NewImageProcessor()
	gray := color.NRGBA{R: 100, G: 120, B: 140, A: 255}

	t.Run("Neutral Is Identity", func(t *testing.T) {
		req := models.NewEnhanceRequest()
		req.Options = map[string]bool{models.OptionBrightness: true, models.OptionContrast: true, models.OptionTemperature: true}
		req.Brightness, req.Contrast, req.Temperature = 50, 50, 50

		out := p.enhance(solidImage(4, 4, gray), req)
		if got := out.NRGBAAt(1, 1); got != gray {
			t.Errorf("expected %v, got %v", gray, got)
		}
	})

	t.Run("Unchecked Options Are Ignored", func(t *testing.T) {
		req := models.NewEnhanceRequest()
		req.Brightness = 100

		out := p.enhance(solidImage(4, 4, gray), req)
		if got := out.NRGBAAt(2, 2); got != gray {
			t.Errorf("expected %v, got %v", gray, got)
		}
	})

	t.Run("Brightness Raises Values", func(t *testing.T) {
		req := models.NewEnhanceRequest()
		req.Options = map[string]bool{models.OptionBrightness: true}
		req.Brightness, req.Contrast = 100, 50

		got := p.enhance(solidImage(4, 4, gray), req).NRGBAAt(0, 0)
		if got.R <= gray.R || got.G <= gray.G || got.B <= gray.B {
			t.Errorf("expected brighter pixel than %v, got %v", gray, got)
		}
	})

	t.Run("Temperature Warms", func(t *testing.T) {
		req := models.NewEnhanceRequest()
		req.Options = map[string]bool{models.OptionTemperature: true}
		req.Temperature = 100

		got := p.enhance(solidImage(4, 4, gray), req).NRGBAAt(0, 0)
		if got.R <= gray.R || got.B >= gray.B || got.G != gray.G {
			t.Errorf("expected warmer pixel than %v, got %v", gray, got)
		}
	})

	t.Run("Sharpen Flat Image Unchanged", func(t *testing.T) {
		req := models.NewEnhanceRequest()
		req.Options = map[string]bool{models.OptionSharpen: true, models.OptionDenoise: true}
		req.Sharpen = 100

		got := p.enhance(solidImage(8, 8, gray), req).NRGBAAt(4, 4)
		if got != gray {
			t.Errorf("expected %v, got %v", gray, got)
		}
	})
}

func TestFlattenDropsAlpha(t *testing.T) {
	img := solidImage(2, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 0})
	got := flatten(img).NRGBAAt(0, 0)
	if got.A != 255 || got.R != 10 {
		t.Errorf("expected opaque pixel keeping color, got %v", got)
	}
}

func TestLogoPosition(t *testing.T) {
	tests := []struct {
		position string
		want     image.Point
	}{
		{models.PositionTopLeft, image.Pt(20, 20)},
		{models.PositionTopRight, image.Pt(130, 20)},
		{models.PositionBottomLeft, image.Pt(20, 30)},
		{models.PositionBottomRight, image.Pt(130, 30)},
		{models.PositionCenter, image.Pt(75, 25)},
		{"nowhere", image.Pt(130, 20)},
	}

	for _, tt := range tests {
		t.Run(tt.position, func(t *testing.T) {
			if got := LogoPosition(tt.position, 200, 100, 50, 50); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestProcessImage(t *testing.T) {
	p := NewImageProcessor()
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	data := encodePNG(t, solidImage(200, 100, white))

	t.Run("PNG Output", func(t *testing.T) {
		buf, format, err := p.ProcessImage(Upload{Filename: "a.png", Data: data}, nil, models.NewEnhanceRequest())
		if err != nil {
			t.Fatalf("ProcessImage() error = %v", err)
		}
		if format != models.FormatPNG {
			t.Errorf("expected png, got %s", format)
		}
		if b := decode(t, buf).Bounds(); b.Dx() != 200 || b.Dy() != 100 {
			t.Errorf("expected 200x100, got %dx%d", b.Dx(), b.Dy())
		}
	})

	t.Run("JPEG Output", func(t *testing.T) {
		req := models.NewEnhanceRequest()
		req.OutputFormat = models.FormatJPEG

		buf, format, err := p.ProcessImage(Upload{Filename: "a.png", Data: data}, nil, req)
		if err != nil {
			t.Fatalf("ProcessImage() error = %v", err)
		}
		if format != models.FormatJPEG {
			t.Errorf("expected jpeg, got %s", format)
		}
		if _, kind, err := image.Decode(bytes.NewReader(buf.Bytes())); err != nil || kind != "jpeg" {
			t.Errorf("expected jpeg payload, got %s (%v)", kind, err)
		}
	})

	t.Run("WebP Falls Back To PNG", func(t *testing.T) {
		req := models.NewEnhanceRequest()
		req.OutputFormat = models.FormatWebP

		_, format, err := p.ProcessImage(Upload{Filename: "a.png", Data: data}, nil, req)
		if err != nil {
			t.Fatalf("ProcessImage() error = %v", err)
		}
		if format != models.FormatPNG {
			t.Errorf("expected png fallback, got %s", format)
		}
	})

	t.Run("Logo Composited", func(t *testing.T) {
		red := color.NRGBA{R: 255, A: 255}
		logo := solidImage(10, 10, red)

		req := models.NewEnhanceRequest()
		req.Position = models.PositionBottomRight
		req.Opacity = 1
		req.Scale = 0.25

		buf, _, err := p.ProcessImage(Upload{Filename: "a.png", Data: data}, logo, req)
		if err != nil {
			t.Fatalf("ProcessImage() error = %v", err)
		}
		out := decode(t, buf)

		if r, g, _, _ := out.At(150, 50).RGBA(); r>>8 != 255 || g>>8 > 5 {
			t.Errorf("expected logo pixel at (150,50), got r=%d g=%d", r>>8, g>>8)
		}
		if r, g, b, _ := out.At(10, 10).RGBA(); r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
			t.Errorf("expected untouched pixel at (10,10), got %d,%d,%d", r>>8, g>>8, b>>8)
		}
	})

	t.Run("Invalid Data", func(t *testing.T) {
		if _, _, err := p.ProcessImage(Upload{Filename: "x.png", Data: []byte("nope")}, nil, models.NewEnhanceRequest()); err == nil {
			t.Fatal("expected error for invalid image")
		}
	})
}

func TestProcessBatch(t *testing.T) {
	p := NewImageProcessor(ProcessorOptions{Workers: 2})
	data := encodePNG(t, solidImage(8, 8, color.NRGBA{R: 1, G: 2, B: 3, A: 255}))

	uploads := []Upload{
		{Filename: "one.jpeg", Data: data},
		{Filename: "two.png", Data: []byte("broken")},
		{Filename: "three.tiff", Data: data},
		{Filename: "four.png", Data: data},
	}

	results := p.ProcessBatch(uploads, nil, models.NewEnhanceRequest())
	if len(results) != len(uploads) {
		t.Fatalf("expected %d results, got %d", len(uploads), len(results))
	}

	want := []string{"one.png", "", "three.png", "four.png"}
	for i, r := range results {
		if r.Original != uploads[i].Filename {
			t.Errorf("result %d: expected original %s, got %s", i, uploads[i].Filename, r.Original)
		}
		if r.Filename != want[i] {
			t.Errorf("result %d: expected %q, got %q", i, want[i], r.Filename)
		}
	}
	if results[1].Err == nil {
		t.Error("expected error for broken upload")
	}

	if got := p.ProcessBatch(nil, nil, models.NewEnhanceRequest()); len(got) != 0 {
		t.Errorf("expected no results, got %d", len(got))
	}
}

func TestOutputFilename(t *testing.T) {
	tests := map[string]string{
		"photo.HEIC":         "photo.png",
		"../../etc/passwd":   "passwd.png",
		"dir/sub/image.jpeg": "image.png",
		"noext":              "noext.png",
	}
	for in, want := range tests {
		if got := OutputFilename(in, models.FormatPNG); got != want {
			t.Errorf("OutputFilename(%q) = %q, want %q", in, got, want)
		}
	}
	if got := OutputFilename("a.png", models.FormatJPEG); got != "a.jpg" {
		t.Errorf("expected a.jpg, got %s", got)
	}
}

func TestValidateImage(t *testing.T) {
	p := NewImageProcessor()
	data := encodePNG(t, solidImage(2, 2, color.NRGBA{A: 255}))

	if err := p.ValidateImage(data, int64(len(data))); err != nil {
		t.Errorf("expected valid image, got %v", err)
	}
	if err := p.ValidateImage(data, int64(len(data)-1)); err == nil {
		t.Error("expected size error")
	}
	if err := p.ValidateImage(nil, 10); err == nil {
		t.Error("expected error for empty data")
	}
}
