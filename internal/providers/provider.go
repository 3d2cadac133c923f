package providers

import (
	"context"
)

// CallKind selects one of the three request shapes a provider can serve.
type CallKind string

const (
	CallText         CallKind = "text"
	CallSpeechToText CallKind = "speech_to_text"
	CallVisionToText CallKind = "vision_to_text"
)

// Usage is the normalized token accounting across providers. Providers that
// do not report usage leave it zeroed.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// TextRequest is a single-user-turn completion request.
type TextRequest struct {
	Model       string
	Prompt      string
	System      string
	MaxTokens   int
	Temperature float64
}

// TextResult is the normalized outcome of a text call.
type TextResult struct {
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
}

// AudioRequest carries raw audio bytes for transcription. Filename hints the
// container format to providers that sniff by extension.
type AudioRequest struct {
	Model    string
	Filename string
	Data     []byte
}

// TranscriptionResult is the normalized outcome of a speech-to-text call.
type TranscriptionResult struct {
	Transcription string `json:"transcription"`
}

// VisionRequest carries raw image bytes plus a free-text instruction. The
// adapter base64-encodes the image into the provider's multimodal schema.
type VisionRequest struct {
	Model     string
	Prompt    string
	Image     []byte
	MaxTokens int
}

// VisionResult is the normalized outcome of a vision-to-text call.
type VisionResult struct {
	Description string `json:"description"`
	Usage       Usage  `json:"usage"`
}

// adapter is implemented by each provider variant. Adapters translate the
// normalized request into the provider's wire schema, issue exactly one HTTP
// call, and normalize the response. Kinds an adapter cannot serve return
// ErrCapabilityUnsupported.
type adapter interface {
	GenerateText(ctx context.Context, apiKey string, req TextRequest) (*TextResult, error)
	TranscribeAudio(ctx context.Context, apiKey string, req AudioRequest) (*TranscriptionResult, error)
	DescribeImage(ctx context.Context, apiKey string, req VisionRequest) (*VisionResult, error)
}
