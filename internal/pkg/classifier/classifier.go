// Package classifier talks to the external spam-detection model service
// and enforces load-once semantics: the service is probed exactly once,
// concurrent load attempts fail fast, and no classification runs before
// a successful warm-up.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/judiguard/judi_guard_server/config"
)

// Classification labels produced by the model.
const (
	LabelJudi    = "JUDI"
	LabelNonJudi = "NON_JUDI"
)

var (
	// ErrAlreadyLoading is returned when a load is requested while
	// another goroutine's load is still in flight.
	ErrAlreadyLoading = errors.New("classifier: load already in progress")

	// ErrNotLoaded is returned by Classify before a successful Load.
	ErrNotLoaded = errors.New("classifier: model not loaded")

	// ErrModelLoad wraps warm-up failures.
	ErrModelLoad = errors.New("classifier: model load failed")

	// ErrInference wraps per-text prediction failures.
	ErrInference = errors.New("classifier: inference failed")
)

// Result is a single classification outcome.
type Result struct {
	Classification string
	Confidence     float64
	ModelVersion   string
}

type predictRequest struct {
	Text string `json:"text"`
}

type predictResponse struct {
	Classification  string  `json:"classification"`
	ConfidenceScore float64 `json:"confidenceScore"`
	Error           string  `json:"error"`
}

// Classifier is the process-wide handle to the model service. Use Load to
// obtain it; the zero value is not usable.
type Classifier struct {
	baseURL      string
	modelVersion string
	httpClient   *http.Client
}

var (
	instance atomic.Pointer[Classifier]
	loading  atomic.Bool
)

// Load warms up the model service and publishes the classifier instance.
// If a usable instance already exists it is returned immediately. If a
// concurrent call is mid-load, Load fails fast with ErrAlreadyLoading
// rather than queueing behind it.
func Load(ctx context.Context, cfg *config.MLConfig) (*Classifier, error) {
	if c := instance.Load(); c != nil {
		return c, nil
	}

	if !loading.CompareAndSwap(false, true) {
		return nil, ErrAlreadyLoading
	}
	defer loading.Store(false)

	// Another goroutine may have finished between our first check and
	// winning the flag.
	if c := instance.Load(); c != nil {
		return c, nil
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Classifier{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		modelVersion: cfg.ModelVersion,
		httpClient:   &http.Client{Timeout: timeout},
	}

	// Warm-up probe: a real prediction against the service, so the
	// instance is only published once inference is known to work.
	if _, err := c.predict(ctx, "warmup"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}

	instance.Store(c)
	return c, nil
}

// Get returns the loaded classifier, or ErrNotLoaded.
func Get() (*Classifier, error) {
	c := instance.Load()
	if c == nil {
		return nil, ErrNotLoaded
	}
	return c, nil
}

// Classify runs the model on a single comment text.
func (c *Classifier) Classify(ctx context.Context, text string) (*Result, error) {
	resp, err := c.predict(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}

	return &Result{
		Classification: resp.Classification,
		Confidence:     resp.ConfidenceScore,
		ModelVersion:   c.modelVersion,
	}, nil
}

// ModelVersion reports the configured model identifier recorded alongside
// every classification.
func (c *Classifier) ModelVersion() string {
	return c.modelVersion
}

func (c *Classifier) predict(ctx context.Context, text string) (*predictResponse, error) {
	body, err := json.Marshal(predictRequest{Text: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/predict", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("model service returned %d: %s", resp.StatusCode, string(raw))
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode prediction: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("model service error: %s", out.Error)
	}
	if out.Classification != LabelJudi && out.Classification != LabelNonJudi {
		return nil, fmt.Errorf("unexpected classification %q", out.Classification)
	}

	return &out, nil
}

// resetForTest clears the singleton so tests can exercise Load repeatedly.
func resetForTest() {
	instance.Store(nil)
	loading.Store(false)
}
