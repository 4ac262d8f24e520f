package inference

import (
	"context"
	"fmt"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
)

type CompatibleConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Compatible scores labels with a chat model served behind an
// OpenAI-compatible API, such as Ollama, vLLM or LM Studio.
type Compatible struct {
	client  *goopenai.Client
	model   string
	timeout time.Duration
}

func NewCompatible(cfg CompatibleConfig) (*Compatible, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required for an OpenAI-compatible backend")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model name is required")
	}

	clientConfig := goopenai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = cfg.BaseURL

	return &Compatible{
		client:  goopenai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

func (c *Compatible) Name() string {
	return "openai-compatible"
}

func (c *Compatible) Devices() []Device {
	return []Device{DeviceHosted}
}

func (c *Compatible) Open(ctx context.Context, _ Device) (Model, error) {
	m := &llmModel{name: c.model, completer: c}
	if err := warmup(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *Compatible) complete(ctx context.Context, system, user string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	seed := int(llmSeed)
	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: system},
			{Role: goopenai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Seed:        &seed,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("request to %s failed: %w", c.model, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty completion", ErrUnexpectedResponse)
	}

	return resp.Choices[0].Message.Content, nil
}
