package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"postforge/internal/catalog"
	"postforge/internal/models"
)

const (
	// defaultMaxTokens caps completion output when the caller does not ask
	// for a specific budget.
	defaultMaxTokens = 1000

	defaultVisionPrompt = "Describe this image in detail."
)

// Config holds dispatcher settings.
type Config struct {
	// RequestTimeout bounds every outbound provider call. The reference
	// system had no deadline at all; a hung provider blocked its caller
	// indefinitely.
	RequestTimeout time.Duration

	// AzureEndpoint is the Azure OpenAI resource URL, e.g.
	// https://myresource.openai.azure.com. Required only when a config
	// names the azure provider.
	AzureEndpoint string
}

// Dispatcher routes calls to provider adapters and normalizes their results.
// Construct once at startup; it holds no mutable state and is safe for
// concurrent use.
type Dispatcher struct {
	adapters map[catalog.Provider]adapter
}

// NewDispatcher builds the adapter table. All adapters share one HTTP client
// so connection pooling and the request deadline apply uniformly.
func NewDispatcher(cfg Config) *Dispatcher {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &Dispatcher{
		adapters: map[catalog.Provider]adapter{
			catalog.ProviderOpenAI:     newOpenAIAdapter(client),
			catalog.ProviderGroq:       newGroqAdapter(client),
			catalog.ProviderGemini:     newGeminiAdapter(client),
			catalog.ProviderAnthropic:  newAnthropicAdapter(client),
			catalog.ProviderAzure:      newAzureAdapter(cfg.AzureEndpoint, client),
			catalog.ProviderCerebras:   newCerebrasAdapter(client),
			catalog.ProviderOpenRouter: newOpenRouterAdapter(client),
		},
	}
}

// GenerateText issues a text completion through the configured provider.
// An empty req.Model falls back to the config's default text model.
func (d *Dispatcher) GenerateText(ctx context.Context, config *models.ProviderConfig, req TextRequest) (*TextResult, error) {
	a, provider, err := d.adapterFor(config)
	if err != nil {
		return nil, err
	}

	if req.Model == "" {
		req.Model = config.DefaultModelText
	}
	if req.Model == "" {
		return nil, fmt.Errorf("text generation: %w", ErrNoModelConfigured)
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = defaultMaxTokens
	}

	result, err := a.GenerateText(ctx, config.APIKey, req)
	if err != nil {
		return nil, d.wrap(provider, CallText, err)
	}
	return result, nil
}

// Transcribe sends raw audio bytes to the provider's transcription endpoint.
func (d *Dispatcher) Transcribe(ctx context.Context, config *models.ProviderConfig, req AudioRequest) (*TranscriptionResult, error) {
	a, provider, err := d.adapterFor(config)
	if err != nil {
		return nil, err
	}

	if req.Model == "" {
		req.Model = config.DefaultModelSpeechToText
	}
	if req.Model == "" {
		return nil, fmt.Errorf("speech-to-text: %w", ErrNoModelConfigured)
	}
	if req.Filename == "" {
		req.Filename = "audio.wav"
	}

	result, err := a.TranscribeAudio(ctx, config.APIKey, req)
	if err != nil {
		return nil, d.wrap(provider, CallSpeechToText, err)
	}
	return result, nil
}

// DescribeImage sends image bytes plus an instruction through the provider's
// multimodal schema.
func (d *Dispatcher) DescribeImage(ctx context.Context, config *models.ProviderConfig, req VisionRequest) (*VisionResult, error) {
	a, provider, err := d.adapterFor(config)
	if err != nil {
		return nil, err
	}

	if req.Model == "" {
		req.Model = config.DefaultModelVisionToText
	}
	if req.Model == "" {
		return nil, fmt.Errorf("vision-to-text: %w", ErrNoModelConfigured)
	}
	if req.Prompt == "" {
		req.Prompt = defaultVisionPrompt
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = defaultMaxTokens
	}

	result, err := a.DescribeImage(ctx, config.APIKey, req)
	if err != nil {
		return nil, d.wrap(provider, CallVisionToText, err)
	}
	return result, nil
}

// TestConfiguration issues a trivial text call to verify a credential works
// end to end.
func (d *Dispatcher) TestConfiguration(ctx context.Context, config *models.ProviderConfig) error {
	_, err := d.GenerateText(ctx, config, TextRequest{
		Prompt:    "Hello, this is a test.",
		MaxTokens: 16,
	})
	return err
}

func (d *Dispatcher) adapterFor(config *models.ProviderConfig) (adapter, catalog.Provider, error) {
	if config == nil {
		return nil, "", ErrNoConfiguration
	}

	provider := catalog.Provider(strings.ToLower(config.ProviderName))
	a, ok := d.adapters[provider]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedProvider, config.ProviderName)
	}
	return a, provider, nil
}

// wrap maps adapter failures onto the error taxonomy. Capability refusals
// pass through; everything else becomes a CallError so raw transport errors
// never reach callers.
func (d *Dispatcher) wrap(provider catalog.Provider, kind CallKind, err error) error {
	if errors.Is(err, ErrCapabilityUnsupported) {
		return fmt.Errorf("%s: %w", provider, ErrCapabilityUnsupported)
	}
	return &CallError{Provider: provider, Kind: kind, Err: err}
}
