package generator

import (
	"encoding/json"
	"strings"
)

// parsedOutput is the two-path result of reading a model response: either
// the structured JSON the system prompt asked for, or a best-effort
// extraction from free text. Parsing never fails outright.
type parsedOutput struct {
	Structured   bool
	Content      string
	Hashtags     []string
	CallToAction string
	PlatformNote string
}

// parseModelOutput decodes the four-field JSON schema. When the model
// ignored the format instruction, the first line becomes the content and
// #-prefixed tokens are pulled out as hashtags.
func parseModelOutput(raw string) parsedOutput {
	raw = strings.TrimSpace(raw)

	var structured struct {
		Content      string   `json:"content"`
		Hashtags     []string `json:"hashtags"`
		CallToAction string   `json:"call_to_action"`
		PlatformNote string   `json:"platform_notes"`
	}
	// JSON literals like null, {} or a bare array decode without error but
	// carry no content. Only take the structured path when it actually
	// produced something to post.
	if err := json.Unmarshal([]byte(raw), &structured); err == nil && structured.Content != "" {
		hashtags := structured.Hashtags
		if hashtags == nil {
			hashtags = []string{}
		}
		return parsedOutput{
			Structured:   true,
			Content:      structured.Content,
			Hashtags:     hashtags,
			CallToAction: structured.CallToAction,
			PlatformNote: structured.PlatformNote,
		}
	}

	mainLine := raw
	if idx := strings.IndexByte(raw, '\n'); idx >= 0 {
		mainLine = raw[:idx]
	}

	hashtags := []string{}
	var clean []string
	for _, word := range strings.Fields(mainLine) {
		if strings.HasPrefix(word, "#") {
			hashtags = append(hashtags, word)
		} else {
			clean = append(clean, word)
		}
	}

	return parsedOutput{
		Content:  strings.Join(clean, " "),
		Hashtags: hashtags,
	}
}

// parseHashtagLines extracts up to count #-prefixed lines from a response.
func parseHashtagLines(raw string, count int) []string {
	var hashtags []string
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			hashtags = append(hashtags, line)
		}
		if len(hashtags) == count {
			break
		}
	}
	return hashtags
}
