// Package client submits the upload form to the processing server and
// renders the outcome into a View.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/phambaophuc/image-enhance/internal/form"
	"go.uber.org/zap"
)

const (
	ProcessPath   = "/process"
	ProcessedPath = "/processed/"
)

// Status messages shown in the status element.
const (
	StatusProcessing  = "Processing... please wait ⏳"
	StatusEmpty       = "⚠️ No images were processed."
	StatusDone        = "✅ Done! Processed %d image(s)."
	StatusHTTPError   = "❌ Error during processing."
	StatusClientError = "❌ JS error. See console."
)

var ErrMalformedResponse = errors.New("malformed response")

// Outcome classifies how a submission ended.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeEmpty
	OutcomeHTTPError
	OutcomeClientError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeEmpty:
		return "empty"
	case OutcomeHTTPError:
		return "http_error"
	case OutcomeClientError:
		return "client_error"
	default:
		return "unknown"
	}
}

// Result is what a submission produced.
type Result struct {
	Outcome   Outcome
	Processed []string
	Err       error
}

type Submitter struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// NewSubmitter creates a submitter posting to baseURL. An empty baseURL
// keeps every URL relative to the page origin.
func NewSubmitter(baseURL string, httpClient *http.Client, logger *zap.Logger) *Submitter {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Submitter{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
	}
}

// Submit posts the form snapshot and updates the view with the outcome.
func (s *Submitter) Submit(ctx context.Context, state form.State, view View) Result {
	payload, err := form.BuildPayload(state)
	if err != nil {
		return s.fail(view, fmt.Errorf("failed to build payload: %w", err))
	}

	view.ClearResults()
	view.SetStatus(StatusProcessing)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+ProcessPath, payload.Body)
	if err != nil {
		return s.fail(view, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", payload.ContentType)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return s.fail(view, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Warn("Processing request failed", zap.Int("status", resp.StatusCode))
		view.SetStatus(StatusHTTPError)
		return Result{Outcome: OutcomeHTTPError}
	}

	processed, err := decodeProcessed(resp)
	if err != nil {
		return s.fail(view, err)
	}

	if len(processed) == 0 {
		view.SetStatus(StatusEmpty)
		return Result{Outcome: OutcomeEmpty, Processed: processed}
	}

	view.SetStatus(fmt.Sprintf(StatusDone, len(processed)))
	for _, filename := range processed {
		view.AppendImage(s.ImageURL(filename))
	}

	return Result{Outcome: OutcomeSuccess, Processed: processed}
}

// ImageURL returns the cache-busted address of a processed file.
func (s *Submitter) ImageURL(filename string) string {
	return s.baseURL + ProcessedPath + url.PathEscape(filename) +
		"?t=" + strconv.FormatInt(s.now().UnixMilli(), 10)
}

func (s *Submitter) fail(view View, err error) Result {
	s.logger.Error("Submission failed", zap.Error(err))
	view.SetStatus(StatusClientError)
	return Result{Outcome: OutcomeClientError, Err: err}
}

func decodeProcessed(resp *http.Response) ([]string, error) {
	var body struct {
		Processed *[]string `json:"processed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if body.Processed == nil {
		return nil, fmt.Errorf("%w: missing processed list", ErrMalformedResponse)
	}

	return *body.Processed, nil
}
