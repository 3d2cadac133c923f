package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"
)

// anthropicAdapter speaks the messages schema: typed content blocks, a
// top-level system field, x-api-key auth, input/output token accounting.
// No transcription endpoint.
type anthropicAdapter struct {
	baseURL string
	client  *http.Client
}

func newAnthropicAdapter(client *http.Client) *anthropicAdapter {
	return &anthropicAdapter{baseURL: anthropicBaseURL, client: client}
}

type anthropicImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicBlock struct {
	Type   string                `json:"type"`
	Text   string                `json:"text,omitempty"`
	Source *anthropicImageSource `json:"source,omitempty"`
}

type anthropicMessage struct {
	Role    string           `json:"role"`
	Content []anthropicBlock `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Temperature float64            `json:"temperature,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateText sends a single-user-turn messages request.
func (a *anthropicAdapter) GenerateText(ctx context.Context, apiKey string, req TextRequest) (*TextResult, error) {
	body := anthropicRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		System:      req.System,
		Temperature: req.Temperature,
		Messages: []anthropicMessage{
			{Role: "user", Content: []anthropicBlock{{Type: "text", Text: req.Prompt}}},
		},
	}

	resp, err := a.post(ctx, apiKey, body)
	if err != nil {
		return nil, err
	}

	return &TextResult{
		Content: resp.Content[0].Text,
		Usage:   a.usage(resp),
	}, nil
}

// TranscribeAudio is not offered by this provider.
func (a *anthropicAdapter) TranscribeAudio(ctx context.Context, apiKey string, req AudioRequest) (*TranscriptionResult, error) {
	return nil, ErrCapabilityUnsupported
}

// DescribeImage sends the image as a typed image block next to a text block.
func (a *anthropicAdapter) DescribeImage(ctx context.Context, apiKey string, req VisionRequest) (*VisionResult, error) {
	body := anthropicRequest{
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
		Messages: []anthropicMessage{
			{
				Role: "user",
				Content: []anthropicBlock{
					{
						Type: "image",
						Source: &anthropicImageSource{
							Type:      "base64",
							MediaType: "image/jpeg",
							Data:      base64.StdEncoding.EncodeToString(req.Image),
						},
					},
					{Type: "text", Text: req.Prompt},
				},
			},
		},
	}

	resp, err := a.post(ctx, apiKey, body)
	if err != nil {
		return nil, err
	}

	return &VisionResult{
		Description: resp.Content[0].Text,
		Usage:       a.usage(resp),
	}, nil
}

func (a *anthropicAdapter) usage(resp *anthropicResponse) Usage {
	return Usage{
		PromptTokens:     resp.Usage.InputTokens,
		CompletionTokens: resp.Usage.OutputTokens,
		TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}
}

func (a *anthropicAdapter) post(ctx context.Context, apiKey string, body anthropicRequest) (*anthropicResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("anthropic API returned status %d: %s", resp.StatusCode, truncate(respBody))
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("anthropic API error: %s", parsed.Error.Message)
	}
	if len(parsed.Content) == 0 {
		return nil, fmt.Errorf("no response from anthropic")
	}

	return &parsed, nil
}
