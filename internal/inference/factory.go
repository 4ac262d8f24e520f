package inference

import (
	"fmt"
	"time"
)

const (
	BackendHuggingFace = "huggingface"
	BackendOpenAI      = "openai"
	BackendCompatible  = "openai-compatible"
)

// BackendOptions carries every setting a backend may need. Each backend
// reads only its own fields.
type BackendOptions struct {
	Backend           string
	Model             string
	Endpoint          string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int

	HuggingFaceToken string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIModel      string
}

// NewBackend builds the backend named by opts.Backend.
func NewBackend(opts BackendOptions) (Backend, error) {
	switch opts.Backend {
	case BackendHuggingFace, "":
		return NewHuggingFace(HuggingFaceConfig{
			Endpoint:          opts.Endpoint,
			Model:             opts.Model,
			Token:             opts.HuggingFaceToken,
			Timeout:           opts.Timeout,
			RequestsPerSecond: opts.RequestsPerSecond,
			Burst:             opts.Burst,
		})
	case BackendOpenAI:
		return NewOpenAI(OpenAIConfig{
			APIKey:  opts.OpenAIAPIKey,
			BaseURL: opts.OpenAIBaseURL,
			Model:   opts.OpenAIModel,
			Timeout: opts.Timeout,
		})
	case BackendCompatible:
		model := opts.OpenAIModel
		if model == "" {
			model = opts.Model
		}
		return NewCompatible(CompatibleConfig{
			BaseURL: opts.OpenAIBaseURL,
			APIKey:  opts.OpenAIAPIKey,
			Model:   model,
			Timeout: opts.Timeout,
		})
	default:
		return nil, fmt.Errorf("unknown model backend %q", opts.Backend)
	}
}
