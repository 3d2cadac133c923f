package generator

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"postforge/internal/credentials"
	"postforge/internal/logging"
	"postforge/internal/models"
	"postforge/internal/providers"
)

const (
	generateMaxTokens = 500
	hashtagMaxTokens  = 200
	temperature       = 0.7

	defaultContentType  = "post"
	defaultPlatform     = "twitter"
	defaultHashtagCount = 8
)

// Request names everything one generation call needs. Provider and Model
// are optional overrides; empty values defer to the resolved config.
type Request struct {
	UserID       int64
	Trend        *models.Trend
	Character    *models.CharacterProfile
	ContentType  string
	Platform     string
	Provider     string
	Model        string
	ExtraContext string
}

func (r *Request) normalize() {
	if r.ContentType == "" {
		r.ContentType = defaultContentType
	}
	if r.Platform == "" {
		r.Platform = defaultPlatform
	}
}

// Generator orchestrates prompt building, credential resolution, provider
// dispatch and response parsing. Stateless; safe for concurrent use.
type Generator struct {
	resolver   *credentials.Resolver
	dispatcher *providers.Dispatcher
}

// New creates a Generator over the given resolver and dispatcher.
func New(resolver *credentials.Resolver, dispatcher *providers.Dispatcher) *Generator {
	return &Generator{resolver: resolver, dispatcher: dispatcher}
}

// Generate produces one content draft. It never returns a Go error: dispatch
// failures come back as a GeneratedContent with Error set and all content
// fields blank, so route handlers serialize one shape either way.
func (g *Generator) Generate(ctx context.Context, req Request) *models.GeneratedContent {
	req.normalize()

	result, err := g.callText(ctx, req, providers.TextRequest{
		Model:       req.Model,
		Prompt:      BuildContentPrompt(req.Trend, req.Character, req.ContentType, req.Platform, req.ExtraContext),
		System:      systemPrompt,
		MaxTokens:   generateMaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		logging.Warningf("content generation failed for user %d: %v", req.UserID, err)
		return &models.GeneratedContent{
			Error:       fmt.Sprintf("failed to generate content: %v", err),
			Hashtags:    []string{},
			ContentType: req.ContentType,
			Platform:    req.Platform,
		}
	}

	parsed := parseModelOutput(result.Content)
	return &models.GeneratedContent{
		Content:      parsed.Content,
		Hashtags:     parsed.Hashtags,
		CallToAction: parsed.CallToAction,
		PlatformNote: parsed.PlatformNote,
		ContentType:  req.ContentType,
		Platform:     req.Platform,
	}
}

// GenerateVariations runs count independent generations concurrently and
// returns them in request order. Slot i always corresponds to variation i;
// a failed slot carries its own error and does not cancel the rest.
func (g *Generator) GenerateVariations(ctx context.Context, req Request, count int) []*models.GeneratedContent {
	req.normalize()

	results := make([]*models.GeneratedContent, count)
	group, ctx := errgroup.WithContext(ctx)

	for i := 0; i < count; i++ {
		slot := i
		variation := req
		variation.ExtraContext = fmt.Sprintf("Variation %d: Create a unique approach to this content.", slot+1)

		group.Go(func() error {
			results[slot] = g.Generate(ctx, variation)
			return nil
		})
	}

	// Generate never returns an error, so Wait only synchronizes.
	_ = group.Wait()
	return results
}

// GenerateHashtags asks for newline-delimited hashtags. On dispatch failure
// it falls back to a deterministic list derived from the trend and persona,
// so the operation degrades without touching the network again.
func (g *Generator) GenerateHashtags(ctx context.Context, req Request, count int) []string {
	req.normalize()
	if count <= 0 {
		count = defaultHashtagCount
	}

	result, err := g.callText(ctx, req, providers.TextRequest{
		Model:       req.Model,
		Prompt:      buildHashtagPrompt(req.Trend, req.Character, count),
		MaxTokens:   hashtagMaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		logging.Warningf("hashtag generation failed for user %d, using fallback: %v", req.UserID, err)
		return fallbackHashtags(req.Trend, req.Character)
	}

	return parseHashtagLines(result.Content, count)
}

// callText resolves the credential and issues a text dispatch.
func (g *Generator) callText(ctx context.Context, req Request, textReq providers.TextRequest) (*providers.TextResult, error) {
	config, err := g.resolver.Resolve(ctx, req.UserID, req.Provider)
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, providers.ErrNoConfiguration
	}
	return g.dispatcher.GenerateText(ctx, config, textReq)
}

// fallbackHashtags derives tags from stored fields only. Reproducible for
// the same inputs.
func fallbackHashtags(trend *models.Trend, character *models.CharacterProfile) []string {
	return []string{
		"#" + strings.ToLower(strings.ReplaceAll(trend.Keyword, " ", "")),
		"#" + trend.Category,
		"#" + character.Tone,
		"#trending",
		"#viral",
	}
}

// OptimizeForPlatform applies platform truncation rules. Pure; callers
// invoke it explicitly, Generate does not apply it.
func OptimizeForPlatform(content, platform string) string {
	switch platform {
	case "twitter":
		return truncateWithEllipsis(content, 280)
	case "facebook":
		return truncateWithEllipsis(content, 80)
	}
	return content
}

// truncateWithEllipsis caps content at limit characters, ending in "..."
// when it had to cut. Limits count runes, not bytes, so multi-byte text is
// never split mid-character.
func truncateWithEllipsis(content string, limit int) string {
	if utf8.RuneCountInString(content) <= limit {
		return content
	}
	runes := []rune(content)
	return string(runes[:limit-3]) + "..."
}
