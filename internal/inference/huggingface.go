package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultHuggingFaceEndpoint = "https://api-inference.huggingface.co"
	DefaultModelName           = "facebook/bart-large-mnli"

	warmupText = "Warm-up request."
)

var warmupLabels = []string{"ready", "not ready"}

type HuggingFaceConfig struct {
	Endpoint          string
	Model             string
	Token             string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int

	// HTTPClient overrides the default client, mostly for tests.
	HTTPClient *http.Client
}

// HuggingFace talks to a Hugging Face zero-shot-classification endpoint,
// either the hosted Inference API or a dedicated Inference Endpoint serving
// the same pipeline.
type HuggingFace struct {
	endpoint string
	model    string
	token    string
	client   *http.Client
	limiter  *rate.Limiter
}

func NewHuggingFace(cfg HuggingFaceConfig) (*HuggingFace, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model name is required")
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = DefaultHuggingFaceEndpoint
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &HuggingFace{
		endpoint: endpoint,
		model:    cfg.Model,
		token:    cfg.Token,
		client:   client,
		limiter:  limiter,
	}, nil
}

func (h *HuggingFace) Name() string {
	return "huggingface"
}

func (h *HuggingFace) Devices() []Device {
	return []Device{DeviceGPU, DeviceCPU}
}

// Open binds the model to a device and sends a warm-up request so that a
// device the endpoint cannot serve is reported here rather than on the first
// user request.
func (h *HuggingFace) Open(ctx context.Context, device Device) (Model, error) {
	if device != DeviceGPU && device != DeviceCPU {
		return nil, fmt.Errorf("huggingface backend cannot open device %q", device)
	}

	m := &hfModel{backend: h, device: device}
	if _, err := m.Classify(ctx, warmupText, warmupLabels, false); err != nil {
		return nil, fmt.Errorf("warm-up on %s failed: %w", device, err)
	}

	return m, nil
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
	Options    hfOptions    `json:"options"`
}

type hfParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

type hfOptions struct {
	UseGPU       bool `json:"use_gpu"`
	WaitForModel bool `json:"wait_for_model"`
	UseCache     bool `json:"use_cache"`
}

type hfResponse struct {
	Sequence string    `json:"sequence"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}

type hfError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time,omitempty"`
}

type hfModel struct {
	backend *HuggingFace
	device  Device
}

func (m *hfModel) Name() string   { return m.backend.model }
func (m *hfModel) Device() Device { return m.device }

func (m *hfModel) Classify(ctx context.Context, text string, labels []string, multiLabel bool) (Result, error) {
	if len(labels) == 0 {
		return nil, ErrNoLabels
	}

	if err := m.backend.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(hfRequest{
		Inputs: text,
		Parameters: hfParameters{
			CandidateLabels: labels,
			MultiLabel:      multiLabel,
		},
		Options: hfOptions{
			UseGPU:       m.device == DeviceGPU,
			WaitForModel: true,
			UseCache:     true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", m.backend.endpoint, m.backend.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.backend.token != "" {
		req.Header.Set("Authorization", "Bearer "+m.backend.token)
	}

	resp, err := m.backend.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr hfError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("inference endpoint returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("inference endpoint returned %d", resp.StatusCode)
	}

	var out hfResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}

	if len(out.Labels) != len(out.Scores) {
		return nil, fmt.Errorf("%w: %d labels but %d scores", ErrUnexpectedResponse, len(out.Labels), len(out.Scores))
	}

	res := make(Result, len(out.Labels))
	for i := range out.Labels {
		res[i] = Score{Label: out.Labels[i], Score: out.Scores[i]}
	}

	return checkResult(res, labels)
}
