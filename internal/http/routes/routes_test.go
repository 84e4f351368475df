package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/phambaophuc/image-enhance/internal/client"
	"github.com/phambaophuc/image-enhance/internal/config"
	"github.com/phambaophuc/image-enhance/internal/form"
	"github.com/phambaophuc/image-enhance/internal/http/handlers"
	"github.com/phambaophuc/image-enhance/internal/models"
	"github.com/phambaophuc/image-enhance/internal/services/processor"
	"github.com/phambaophuc/image-enhance/internal/services/storage"
	"go.uber.org/zap"
	"golang.org/x/image/tiff"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router       *gin.Engine
	processedDir string
}

func newTestEnv(t *testing.T, allowedTypes ...string) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Storage: config.StorageConfig{
			MaxFileSize:   10 << 20,
			AllowedTypes:  allowedTypes,
			ProcessedPath: filepath.Join(t.TempDir(), "processed"),
			CacheDuration: time.Hour,
		},
		Processing: config.ProcessingConfig{Workers: 2, JPEGQuality: 90},
	}

	store, err := storage.NewStorageService(cfg)
	if err != nil {
		t.Fatalf("NewStorageService() error = %v", err)
	}
	proc := processor.NewImageProcessor(processor.ProcessorOptions{
		Workers:     cfg.Processing.Workers,
		JPEGQuality: cfg.Processing.JPEGQuality,
		MaxFileSize: cfg.Storage.MaxFileSize,
	})

	logger := zap.NewNop()
	handler := handlers.NewImageHandler(proc, store, nil, logger, cfg)

	return &testEnv{
		router:       NewRouter(handler, logger).SetupRoutes(),
		processedDir: cfg.Storage.ProcessedPath,
	}
}

func pngBytes(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}
	return buf.Bytes()
}

func tiffBytes(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	buf := &bytes.Buffer{}
	if err := tiff.Encode(buf, img, nil); err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}
	return buf.Bytes()
}

func baseState() form.State {
	return form.State{
		OutputFormat: "png",
		Sliders:      form.Sliders{Brightness: 50, Contrast: 50, Sharpen: 25, Temp: 50},
		Position:     "bottom-right",
		Opacity:      "0.8",
		Scale:        "0.25",
	}
}

func (e *testEnv) post(t *testing.T, state form.State) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := form.BuildPayload(state)
	if err != nil {
		t.Fatalf("BuildPayload() error = %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/process", payload.Body)
	req.Header.Set("Content-Type", payload.ContentType)

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeProcessed(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()

	var resp models.ProcessResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	if resp.Processed == nil {
		t.Fatalf("expected processed list in %s", w.Body.String())
	}
	return resp.Processed
}

func TestProcess(t *testing.T) {
	gray := color.NRGBA{R: 120, G: 120, B: 120, A: 255}

	t.Run("Processes In Upload Order", func(t *testing.T) {
		env := newTestEnv(t)
		state := baseState()
		state.Options = []string{"brightness", "contrast", "sharpen"}
		state.Images = []form.File{
			{Name: "b.jpeg", Reader: bytes.NewReader(pngBytes(t, 20, 10, gray))},
			{Name: "a.png", Reader: bytes.NewReader(pngBytes(t, 20, 10, gray))},
		}

		w := env.post(t, state)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		if diff := cmp.Diff([]string{"b.png", "a.png"}, decodeProcessed(t, w)); diff != "" {
			t.Errorf("processed mismatch (-want +got):\n%s", diff)
		}
		for _, name := range []string{"a.png", "b.png"} {
			if _, err := os.Stat(filepath.Join(env.processedDir, name)); err != nil {
				t.Errorf("expected %s on disk: %v", name, err)
			}
		}
	})

	t.Run("Accepts TIFF", func(t *testing.T) {
		env := newTestEnv(t)
		state := baseState()
		state.Images = []form.File{{Name: "scan.tiff", Reader: bytes.NewReader(tiffBytes(t, 8, 8, gray))}}

		w := env.post(t, state)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if diff := cmp.Diff([]string{"scan.png"}, decodeProcessed(t, w)); diff != "" {
			t.Errorf("processed mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Skips Types Outside Allow List", func(t *testing.T) {
		env := newTestEnv(t, "image/png")
		state := baseState()
		state.Images = []form.File{
			{Name: "scan.tiff", Reader: bytes.NewReader(tiffBytes(t, 8, 8, gray))},
			{Name: "photo.png", Reader: bytes.NewReader(pngBytes(t, 8, 8, gray))},
		}

		w := env.post(t, state)
		if diff := cmp.Diff([]string{"photo.png"}, decodeProcessed(t, w)); diff != "" {
			t.Errorf("processed mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Undecodable Uploads Yield Empty List", func(t *testing.T) {
		env := newTestEnv(t)
		state := baseState()
		state.Images = []form.File{{Name: "notes.txt", Reader: strings.NewReader("hello")}}

		w := env.post(t, state)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if got := decodeProcessed(t, w); len(got) != 0 {
			t.Errorf("expected empty list, got %v", got)
		}
	})

	t.Run("Logo And JPEG Output", func(t *testing.T) {
		env := newTestEnv(t)
		state := baseState()
		state.OutputFormat = "jpeg"
		state.Images = []form.File{{Name: "photo.png", Reader: bytes.NewReader(pngBytes(t, 40, 40, gray))}}
		state.Logo = &form.File{Name: "logo.png", Reader: bytes.NewReader(pngBytes(t, 8, 4, color.NRGBA{R: 255, A: 255}))}

		w := env.post(t, state)
		if diff := cmp.Diff([]string{"photo.jpg"}, decodeProcessed(t, w)); diff != "" {
			t.Errorf("processed mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Invalid Logo", func(t *testing.T) {
		env := newTestEnv(t)
		state := baseState()
		state.Images = []form.File{{Name: "photo.png", Reader: bytes.NewReader(pngBytes(t, 4, 4, gray))}}
		state.Logo = &form.File{Name: "logo.png", Reader: strings.NewReader("not an image")}

		if w := env.post(t, state); w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})

	t.Run("Invalid Slider Value", func(t *testing.T) {
		env := newTestEnv(t)
		state := baseState()
		state.Opacity = "opaque"

		w := env.post(t, state)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "invalid opacity") {
			t.Errorf("unexpected body %s", w.Body.String())
		}
	})

	t.Run("Rejects Non Multipart", func(t *testing.T) {
		env := newTestEnv(t)
		req := httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		if w.Code != http.StatusUnsupportedMediaType {
			t.Errorf("expected 415, got %d", w.Code)
		}
	})
}

func TestServeProcessed(t *testing.T) {
	env := newTestEnv(t)
	data := pngBytes(t, 2, 2, color.NRGBA{A: 255})
	if err := os.WriteFile(filepath.Join(env.processedDir, "a.png"), data, 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	tests := []struct {
		path string
		want int
	}{
		{"/processed/a.png?t=1700000000000", http.StatusOK},
		{"/processed/missing.png", http.StatusNotFound},
		{"/processed/..", http.StatusBadRequest},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if w.Code != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.want, w.Code)
		}
	}
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool               `json:"success"`
		Data    models.HealthCheck `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	want := map[string]string{
		"disk":     "healthy",
		"redis":    storage.StatusNotConfigured,
		"supabase": storage.StatusNotConfigured,
		"rabbitmq": storage.StatusNotConfigured,
	}
	if diff := cmp.Diff(want, resp.Data.Services); diff != "" {
		t.Errorf("services mismatch (-want +got):\n%s", diff)
	}
	if !resp.Success || resp.Data.Status != "healthy" {
		t.Errorf("expected healthy response, got %+v", resp)
	}
}

func TestSubmitterAgainstServer(t *testing.T) {
	env := newTestEnv(t)
	server := httptest.NewServer(env.router)
	defer server.Close()

	state := baseState()
	state.Options = []string{"denoise", "temperature"}
	state.Images = []form.File{
		{Name: "a.png", Reader: bytes.NewReader(pngBytes(t, 16, 16, color.NRGBA{R: 90, G: 100, B: 110, A: 255}))},
		{Name: "b.png", Reader: bytes.NewReader(pngBytes(t, 16, 16, color.NRGBA{R: 10, G: 20, B: 30, A: 255}))},
	}

	submitter := client.NewSubmitter(server.URL, server.Client(), zap.NewNop())
	page := client.NewPage()

	res := submitter.Submit(context.Background(), state, page)
	if res.Outcome != client.OutcomeSuccess {
		t.Fatalf("expected success, got %s (%v)", res.Outcome, res.Err)
	}
	if got := page.Status(); got != "✅ Done! Processed 2 image(s)." {
		t.Errorf("unexpected status %q", got)
	}

	results := page.Results()
	if len(results) != 2 {
		t.Fatalf("expected 2 images, got %d", len(results))
	}
	if !strings.HasPrefix(results[0], server.URL+"/processed/a.png?t=") {
		t.Errorf("unexpected image source %s", results[0])
	}

	dest, err := submitter.Download(context.Background(), results[1], t.TempDir())
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	f, err := os.Open(dest)
	if err != nil {
		t.Fatalf("failed to open download: %v", err)
	}
	defer f.Close()
	if _, kind, err := image.Decode(f); err != nil || kind != "png" {
		t.Errorf("expected png download, got %s (%v)", kind, err)
	}
}
