package providers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"postforge/internal/catalog"
	"postforge/internal/models"
)

func testConfig(provider, model string) *models.ProviderConfig {
	return &models.ProviderConfig{
		UserID:           1,
		ProviderName:     provider,
		APIKey:           "test-key",
		DefaultModelText: model,
	}
}

// chatServer returns a server speaking the OpenAI chat-completions schema
// and a pointer to the last request it saw.
func chatServer(t *testing.T, content string) (*httptest.Server, *http.Request, *[]byte) {
	t.Helper()
	var lastReq http.Request
	var lastBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastReq = *r
		lastBody, _ = io.ReadAll(r.Body)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": content}},
			},
			"usage": map[string]int{
				"prompt_tokens":     10,
				"completion_tokens": 5,
				"total_tokens":      15,
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &lastReq, &lastBody
}

func TestGenerateTextNilConfig(t *testing.T) {
	d := NewDispatcher(Config{})

	_, err := d.GenerateText(context.Background(), nil, TextRequest{Prompt: "hi"})
	if !errors.Is(err, ErrNoConfiguration) {
		t.Errorf("Expected ErrNoConfiguration, got %v", err)
	}
}

func TestGenerateTextUnsupportedProvider(t *testing.T) {
	d := NewDispatcher(Config{})

	_, err := d.GenerateText(context.Background(), testConfig("mystery", "m1"), TextRequest{Prompt: "hi"})
	if !errors.Is(err, ErrUnsupportedProvider) {
		t.Errorf("Expected ErrUnsupportedProvider, got %v", err)
	}
}

func TestGenerateTextNoModel(t *testing.T) {
	d := NewDispatcher(Config{})

	// Neither the request nor the config names a text model
	_, err := d.GenerateText(context.Background(), testConfig("openai", ""), TextRequest{Prompt: "hi"})
	if !errors.Is(err, ErrNoModelConfigured) {
		t.Errorf("Expected ErrNoModelConfigured, got %v", err)
	}
}

func TestGenerateTextModelFallback(t *testing.T) {
	srv, lastReq, lastBody := chatServer(t, "generated text")

	d := NewDispatcher(Config{})
	d.adapters[catalog.ProviderOpenAI] = &openAIWire{
		provider: catalog.ProviderOpenAI,
		baseURL:  srv.URL,
		client:   srv.Client(),
		audio:    true,
	}

	result, err := d.GenerateText(context.Background(), testConfig("openai", "gpt-4o-mini"), TextRequest{
		Prompt: "write a post",
		System: "you are a copywriter",
	})
	if err != nil {
		t.Fatalf("GenerateText failed: %v", err)
	}
	if result.Content != "generated text" {
		t.Errorf("Expected normalized content, got %q", result.Content)
	}
	if result.Usage.TotalTokens != 15 {
		t.Errorf("Expected usage to be normalized, got %+v", result.Usage)
	}

	if got := lastReq.Header.Get("Authorization"); got != "Bearer test-key" {
		t.Errorf("Expected bearer auth, got %q", got)
	}

	var sent chatRequest
	if err := json.Unmarshal(*lastBody, &sent); err != nil {
		t.Fatalf("Failed to decode request body: %v", err)
	}
	if sent.Model != "gpt-4o-mini" {
		t.Errorf("Expected config default model in request, got %q", sent.Model)
	}
	if len(sent.Messages) != 2 || sent.Messages[0].Role != "system" {
		t.Errorf("Expected system then user message, got %+v", sent.Messages)
	}
	if sent.MaxTokens != defaultMaxTokens {
		t.Errorf("Expected default max tokens %d, got %d", defaultMaxTokens, sent.MaxTokens)
	}
}

func TestGenerateTextWrapsTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"upstream exploded"}}`))
	}))
	defer srv.Close()

	d := NewDispatcher(Config{})
	d.adapters[catalog.ProviderOpenAI] = &openAIWire{
		provider: catalog.ProviderOpenAI,
		baseURL:  srv.URL,
		client:   srv.Client(),
	}

	_, err := d.GenerateText(context.Background(), testConfig("openai", "gpt-4o"), TextRequest{Prompt: "hi"})
	if err == nil {
		t.Fatal("Expected error from failing provider")
	}

	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("Expected CallError, got %T: %v", err, err)
	}
	if callErr.Provider != catalog.ProviderOpenAI || callErr.Kind != CallText {
		t.Errorf("CallError misattributed: %+v", callErr)
	}
	if !strings.Contains(callErr.Error(), "upstream exploded") {
		t.Errorf("Expected wrapped cause in message, got %q", callErr.Error())
	}
}

func TestTranscribeCapabilityRefusal(t *testing.T) {
	d := NewDispatcher(Config{})

	for _, provider := range []string{"gemini", "anthropic", "cerebras", "openrouter"} {
		cfg := testConfig(provider, "")
		cfg.DefaultModelSpeechToText = "some-model"
		_, err := d.Transcribe(context.Background(), cfg, AudioRequest{Data: []byte("audio")})
		if !errors.Is(err, ErrCapabilityUnsupported) {
			t.Errorf("%s: expected ErrCapabilityUnsupported, got %v", provider, err)
		}
		// Capability refusals pass through, they are not call failures
		var callErr *CallError
		if errors.As(err, &callErr) {
			t.Errorf("%s: capability refusal should not be a CallError", provider)
		}
	}
}

func TestTranscribe(t *testing.T) {
	var gotModel, gotFilename string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("Expected multipart upload: %v", err)
		}
		gotModel = r.FormValue("model")
		if _, header, err := r.FormFile("file"); err == nil {
			gotFilename = header.Filename
		}
		json.NewEncoder(w).Encode(map[string]string{"text": "hello world"})
	}))
	defer srv.Close()

	d := NewDispatcher(Config{})
	d.adapters[catalog.ProviderGroq] = &openAIWire{
		provider: catalog.ProviderGroq,
		baseURL:  srv.URL,
		client:   srv.Client(),
		audio:    true,
	}

	cfg := testConfig("groq", "")
	cfg.DefaultModelSpeechToText = "whisper-large-v3"

	result, err := d.Transcribe(context.Background(), cfg, AudioRequest{Data: []byte("fake audio")})
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if result.Transcription != "hello world" {
		t.Errorf("Expected transcription, got %q", result.Transcription)
	}
	if gotModel != "whisper-large-v3" {
		t.Errorf("Expected config default speech model, got %q", gotModel)
	}
	if gotFilename != "audio.wav" {
		t.Errorf("Expected fallback filename audio.wav, got %q", gotFilename)
	}
}

func TestDescribeImage(t *testing.T) {
	srv, _, lastBody := chatServer(t, "a cat on a keyboard")

	d := NewDispatcher(Config{})
	d.adapters[catalog.ProviderOpenAI] = &openAIWire{
		provider: catalog.ProviderOpenAI,
		baseURL:  srv.URL,
		client:   srv.Client(),
		audio:    true,
	}

	cfg := testConfig("openai", "")
	cfg.DefaultModelVisionToText = "gpt-4o"

	result, err := d.DescribeImage(context.Background(), cfg, VisionRequest{Image: []byte("jpegbytes")})
	if err != nil {
		t.Fatalf("DescribeImage failed: %v", err)
	}
	if result.Description != "a cat on a keyboard" {
		t.Errorf("Expected description, got %q", result.Description)
	}

	body := string(*lastBody)
	if !strings.Contains(body, "data:image/jpeg;base64,") {
		t.Error("Expected inline base64 data URL in request")
	}
	if !strings.Contains(body, defaultVisionPrompt) {
		t.Error("Expected default vision prompt when none given")
	}
}

func TestAzureWire(t *testing.T) {
	var gotPath, gotKey string
	var lastBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("api-key")
		lastBody, _ = io.ReadAll(r.Body)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": "ok"}}},
		})
	}))
	defer srv.Close()

	d := NewDispatcher(Config{AzureEndpoint: srv.URL})
	d.adapters[catalog.ProviderAzure] = newAzureAdapter(srv.URL, srv.Client())

	_, err := d.GenerateText(context.Background(), testConfig("azure", "gpt-4o"), TextRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("GenerateText failed: %v", err)
	}

	if gotPath != "/openai/deployments/gpt-4o/chat/completions" {
		t.Errorf("Expected deployment-style path, got %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("Expected api-key header, got %q", gotKey)
	}

	var sent chatRequest
	if err := json.Unmarshal(lastBody, &sent); err != nil {
		t.Fatalf("Failed to decode request body: %v", err)
	}
	// Azure addresses the model through the URL, not the body
	if sent.Model != "" {
		t.Errorf("Expected no model in azure body, got %q", sent.Model)
	}
}

func TestGeminiWire(t *testing.T) {
	var gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": "gemini says hi"}}}},
			},
			"usageMetadata": map[string]int{
				"promptTokenCount":     7,
				"candidatesTokenCount": 3,
				"totalTokenCount":      10,
			},
		})
	}))
	defer srv.Close()

	d := NewDispatcher(Config{})
	d.adapters[catalog.ProviderGemini] = &geminiAdapter{baseURL: srv.URL, client: srv.Client()}

	result, err := d.GenerateText(context.Background(), testConfig("gemini", "gemini-1.5-flash"), TextRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("GenerateText failed: %v", err)
	}
	if result.Content != "gemini says hi" {
		t.Errorf("Expected gemini content, got %q", result.Content)
	}
	if result.Usage.PromptTokens != 7 || result.Usage.CompletionTokens != 3 {
		t.Errorf("Expected usageMetadata normalized, got %+v", result.Usage)
	}
	if !strings.Contains(gotURL, "/models/gemini-1.5-flash:generateContent") {
		t.Errorf("Expected generateContent URL, got %q", gotURL)
	}
	if !strings.Contains(gotURL, "key=test-key") {
		t.Errorf("Expected API key as query parameter, got %q", gotURL)
	}
}

func TestAnthropicWire(t *testing.T) {
	var gotKey, gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"text": "claude says hi"}},
			"usage":   map[string]int{"input_tokens": 8, "output_tokens": 4},
		})
	}))
	defer srv.Close()

	d := NewDispatcher(Config{})
	d.adapters[catalog.ProviderAnthropic] = &anthropicAdapter{baseURL: srv.URL, client: srv.Client()}

	result, err := d.GenerateText(context.Background(), testConfig("anthropic", "claude-3-haiku-20240307"), TextRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("GenerateText failed: %v", err)
	}
	if result.Content != "claude says hi" {
		t.Errorf("Expected anthropic content, got %q", result.Content)
	}
	// Total is derived, anthropic does not report it
	if result.Usage.TotalTokens != 12 {
		t.Errorf("Expected derived total of 12, got %d", result.Usage.TotalTokens)
	}
	if gotKey != "test-key" {
		t.Errorf("Expected x-api-key header, got %q", gotKey)
	}
	if gotVersion == "" {
		t.Error("Expected anthropic-version header")
	}
}

func TestProviderNameCaseInsensitive(t *testing.T) {
	srv, _, _ := chatServer(t, "ok")

	d := NewDispatcher(Config{})
	d.adapters[catalog.ProviderOpenAI] = &openAIWire{
		provider: catalog.ProviderOpenAI,
		baseURL:  srv.URL,
		client:   srv.Client(),
	}

	_, err := d.GenerateText(context.Background(), testConfig("OpenAI", "gpt-4o"), TextRequest{Prompt: "hi"})
	if err != nil {
		t.Errorf("Expected mixed-case provider name to resolve, got %v", err)
	}
}

func TestTestConfiguration(t *testing.T) {
	srv, _, lastBody := chatServer(t, "pong")

	d := NewDispatcher(Config{})
	d.adapters[catalog.ProviderOpenAI] = &openAIWire{
		provider: catalog.ProviderOpenAI,
		baseURL:  srv.URL,
		client:   srv.Client(),
	}

	if err := d.TestConfiguration(context.Background(), testConfig("openai", "gpt-4o")); err != nil {
		t.Fatalf("TestConfiguration failed: %v", err)
	}

	var sent chatRequest
	if err := json.Unmarshal(*lastBody, &sent); err != nil {
		t.Fatalf("Failed to decode request body: %v", err)
	}
	if sent.MaxTokens != 16 {
		t.Errorf("Expected tiny verification budget, got %d", sent.MaxTokens)
	}
}
