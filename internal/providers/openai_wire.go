package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"postforge/internal/catalog"
)

const (
	openAIBaseURL     = "https://api.openai.com/v1"
	groqBaseURL       = "https://api.groq.com/openai/v1"
	cerebrasBaseURL   = "https://api.cerebras.ai/v1"
	openRouterBaseURL = "https://openrouter.ai/api/v1"

	azureAPIVersion = "2024-06-01"
)

// openAIWire serves every provider speaking the OpenAI chat-completions
// schema. Groq, Cerebras and OpenRouter differ only in base URL; Azure also
// swaps the auth header for api-key and addresses models as deployments.
type openAIWire struct {
	provider  catalog.Provider
	baseURL   string
	client    *http.Client
	keyHeader string // non-empty overrides Authorization: Bearer
	azurePath bool   // deployment-style URLs with api-version
	audio     bool   // transcription endpoint offered
}

func newOpenAIAdapter(client *http.Client) *openAIWire {
	return &openAIWire{provider: catalog.ProviderOpenAI, baseURL: openAIBaseURL, client: client, audio: true}
}

func newGroqAdapter(client *http.Client) *openAIWire {
	return &openAIWire{provider: catalog.ProviderGroq, baseURL: groqBaseURL, client: client, audio: true}
}

func newCerebrasAdapter(client *http.Client) *openAIWire {
	return &openAIWire{provider: catalog.ProviderCerebras, baseURL: cerebrasBaseURL, client: client}
}

func newOpenRouterAdapter(client *http.Client) *openAIWire {
	return &openAIWire{provider: catalog.ProviderOpenRouter, baseURL: openRouterBaseURL, client: client}
}

func newAzureAdapter(endpoint string, client *http.Client) *openAIWire {
	return &openAIWire{
		provider:  catalog.ProviderAzure,
		baseURL:   endpoint,
		client:    client,
		keyHeader: "api-key",
		azurePath: true,
	}
}

//
// wire types
//

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (w *openAIWire) chatURL(model string) string {
	if w.azurePath {
		return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s", w.baseURL, model, azureAPIVersion)
	}
	return w.baseURL + "/chat/completions"
}

func (w *openAIWire) transcriptionURL() string {
	return w.baseURL + "/audio/transcriptions"
}

func (w *openAIWire) authorize(req *http.Request, apiKey string) {
	if w.keyHeader != "" {
		req.Header.Set(w.keyHeader, apiKey)
		return
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
}

// GenerateText sends a single-user-turn chat completion.
func (w *openAIWire) GenerateText(ctx context.Context, apiKey string, req TextRequest) (*TextResult, error) {
	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body := chatRequest{
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if !w.azurePath {
		body.Model = req.Model
	}

	resp, err := w.postChat(ctx, apiKey, w.chatURL(req.Model), body)
	if err != nil {
		return nil, err
	}

	return &TextResult{
		Content: resp.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// TranscribeAudio posts raw audio bytes as a multipart upload.
func (w *openAIWire) TranscribeAudio(ctx context.Context, apiKey string, req AudioRequest) (*TranscriptionResult, error) {
	if !w.audio {
		return nil, ErrCapabilityUnsupported
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", req.Filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(req.Data); err != nil {
		return nil, err
	}
	if err := writer.WriteField("model", req.Model); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.transcriptionURL(), &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	w.authorize(httpReq, apiKey)

	resp, err := w.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var transcription struct {
		Text  string `json:"text"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &transcription); err != nil {
		return nil, fmt.Errorf("%s API returned status %d: %s", w.provider, resp.StatusCode, truncate(respBody))
	}
	if transcription.Error != nil {
		return nil, fmt.Errorf("%s API error: %s", w.provider, transcription.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s API returned status %d: %s", w.provider, resp.StatusCode, truncate(respBody))
	}

	return &TranscriptionResult{Transcription: transcription.Text}, nil
}

// DescribeImage sends the image inline as a base64 data URL next to the
// prompt, per the OpenAI multimodal content-part schema.
func (w *openAIWire) DescribeImage(ctx context.Context, apiKey string, req VisionRequest) (*VisionResult, error) {
	encoded := base64.StdEncoding.EncodeToString(req.Image)
	parts := []any{
		map[string]any{"type": "text", "text": req.Prompt},
		map[string]any{
			"type": "image_url",
			"image_url": map[string]string{
				"url": "data:image/jpeg;base64," + encoded,
			},
		},
	}

	body := chatRequest{
		Messages:  []chatMessage{{Role: "user", Content: parts}},
		MaxTokens: req.MaxTokens,
	}
	if !w.azurePath {
		body.Model = req.Model
	}

	resp, err := w.postChat(ctx, apiKey, w.chatURL(req.Model), body)
	if err != nil {
		return nil, err
	}

	return &VisionResult{
		Description: resp.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func (w *openAIWire) postChat(ctx context.Context, apiKey, url string, body chatRequest) (*chatResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	w.authorize(httpReq, apiKey)

	resp, err := w.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%s API returned status %d: %s", w.provider, resp.StatusCode, truncate(respBody))
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("%s API error: %s", w.provider, parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s API returned status %d: %s", w.provider, resp.StatusCode, truncate(respBody))
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("no response from %s", w.provider)
	}

	return &parsed, nil
}

func truncate(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
