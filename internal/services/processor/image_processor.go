package processor

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/image-enhance/internal/models"
	_ "golang.org/x/image/webp"
)

const (
	DefaultWorkers     = 5
	DefaultJPEGQuality = 95
	MaxFileSize        = 32 << 20 // 32MB
)

type ProcessorOptions struct {
	Workers     int
	JPEGQuality int
	MaxFileSize int64
}

var DefaultOptions = ProcessorOptions{
	Workers:     DefaultWorkers,
	JPEGQuality: DefaultJPEGQuality,
	MaxFileSize: MaxFileSize,
}

// Upload is one received image.
type Upload struct {
	Filename string
	Data     []byte
}

// Result is the outcome of processing one Upload.
type Result struct {
	Original string
	Filename string
	Format   string
	Buffer   *bytes.Buffer
	Err      error
}

type ImageProcessor struct {
	workers     int
	jpegQuality int
	maxFileSize int64
}

func NewImageProcessor(opts ...ProcessorOptions) *ImageProcessor {
	options := DefaultOptions
	if len(opts) > 0 {
		options = opts[0]
	}
	if options.Workers <= 0 {
		options.Workers = DefaultWorkers
	}
	if options.JPEGQuality < 1 || options.JPEGQuality > 100 {
		options.JPEGQuality = DefaultJPEGQuality
	}
	if options.MaxFileSize <= 0 {
		options.MaxFileSize = MaxFileSize
	}

	return &ImageProcessor{
		workers:     options.Workers,
		jpegQuality: options.JPEGQuality,
		maxFileSize: options.MaxFileSize,
	}
}

// ProcessImage enhances one image, composites the logo when given and
// encodes the result in the requested format.
func (p *ImageProcessor) ProcessImage(upload Upload, logo image.Image, req *models.EnhanceRequest) (*bytes.Buffer, string, error) {
	if err := p.ValidateImage(upload.Data, p.maxFileSize); err != nil {
		return nil, "", err
	}

	img, err := imaging.Decode(bytes.NewReader(upload.Data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	result := p.enhance(flatten(img), req)

	if logo != nil {
		result = p.addLogo(result, logo, req.Position, req.Opacity, req.Scale)
	}

	format := OutputFormat(req.OutputFormat)

	buffer := &bytes.Buffer{}
	if err := p.encodeImage(buffer, result, format); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}

	return buffer, format, nil
}

// ProcessBatch processes uploads concurrently. Results keep upload order.
func (p *ImageProcessor) ProcessBatch(uploads []Upload, logo image.Image, req *models.EnhanceRequest) []Result {
	results := make([]Result, len(uploads))
	if len(uploads) == 0 {
		return results
	}

	jobs := make(chan int, len(uploads))

	numWorkers := p.workers
	if len(uploads) < numWorkers {
		numWorkers = len(uploads)
	}

	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				p.processJob(i, uploads, logo, req, results)
			}
		}()
	}

	for i := range uploads {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// DecodeLogo decodes the uploaded logo image.
func (p *ImageProcessor) DecodeLogo(data []byte) (image.Image, error) {
	if err := p.ValidateImage(data, p.maxFileSize); err != nil {
		return nil, fmt.Errorf("invalid logo: %w", err)
	}

	logo, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode logo: %w", err)
	}
	return logo, nil
}

func (p *ImageProcessor) processJob(i int, uploads []Upload, logo image.Image, req *models.EnhanceRequest, results []Result) {
	upload := uploads[i]
	results[i] = Result{Original: upload.Filename}

	buffer, format, err := p.ProcessImage(upload, logo, req)
	if err != nil {
		results[i].Err = fmt.Errorf("failed to process %s: %w", upload.Filename, err)
		return
	}

	results[i].Filename = OutputFilename(upload.Filename, format)
	results[i].Format = format
	results[i].Buffer = buffer
}

// OutputFilename derives the processed file name from the uploaded one.
func OutputFilename(original, format string) string {
	base := filepath.Base(filepath.Clean("/" + original))
	return strings.TrimSuffix(base, filepath.Ext(base)) + extension(format)
}
