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

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// geminiAdapter speaks the generateContent schema: contents/parts with
// inline_data blocks for images, usageMetadata for token accounting, API key
// as a query parameter. No transcription endpoint.
type geminiAdapter struct {
	baseURL string
	client  *http.Client
}

func newGeminiAdapter(client *http.Client) *geminiAdapter {
	return &geminiAdapter{baseURL: geminiBaseURL, client: client}
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	GenerationConfig  struct {
		MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
		Temperature     float64 `json:"temperature,omitempty"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateText sends a single-turn generateContent request.
func (g *geminiAdapter) GenerateText(ctx context.Context, apiKey string, req TextRequest) (*TextResult, error) {
	body := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}},
		},
	}
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	body.GenerationConfig.MaxOutputTokens = req.MaxTokens
	body.GenerationConfig.Temperature = req.Temperature

	resp, err := g.generate(ctx, apiKey, req.Model, body)
	if err != nil {
		return nil, err
	}

	return &TextResult{
		Content: resp.Candidates[0].Content.Parts[0].Text,
		Usage:   g.usage(resp),
	}, nil
}

// TranscribeAudio is not offered by this provider.
func (g *geminiAdapter) TranscribeAudio(ctx context.Context, apiKey string, req AudioRequest) (*TranscriptionResult, error) {
	return nil, ErrCapabilityUnsupported
}

// DescribeImage sends the image as an inline_data part next to the prompt.
func (g *geminiAdapter) DescribeImage(ctx context.Context, apiKey string, req VisionRequest) (*VisionResult, error) {
	body := geminiRequest{
		Contents: []geminiContent{
			{
				Role: "user",
				Parts: []geminiPart{
					{Text: req.Prompt},
					{InlineData: &geminiInlineData{
						MimeType: "image/jpeg",
						Data:     base64.StdEncoding.EncodeToString(req.Image),
					}},
				},
			},
		},
	}
	body.GenerationConfig.MaxOutputTokens = req.MaxTokens

	resp, err := g.generate(ctx, apiKey, req.Model, body)
	if err != nil {
		return nil, err
	}

	return &VisionResult{
		Description: resp.Candidates[0].Content.Parts[0].Text,
		Usage:       g.usage(resp),
	}, nil
}

func (g *geminiAdapter) usage(resp *geminiResponse) Usage {
	return Usage{
		PromptTokens:     resp.UsageMetadata.PromptTokenCount,
		CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
		TotalTokens:      resp.UsageMetadata.TotalTokenCount,
	}
}

func (g *geminiAdapter) generate(ctx context.Context, apiKey, model string, body geminiRequest) (*geminiResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, model, apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("gemini API returned status %d: %s", resp.StatusCode, truncate(respBody))
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("gemini API error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from gemini")
	}

	return &parsed, nil
}
