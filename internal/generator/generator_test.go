package generator

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"postforge/internal/credentials"
	"postforge/internal/models"
	"postforge/internal/providers"
	"postforge/internal/storage"
)

// fixedSource hands every user the same config, or reports absence.
type fixedSource struct {
	config *models.ProviderConfig
}

func (f *fixedSource) GetDefault(ctx context.Context, userID int64, providerName string) (*models.ProviderConfig, error) {
	if f.config == nil {
		return nil, storage.ErrConfigNotFound
	}
	return f.config, nil
}

func newTestGenerator(config *models.ProviderConfig) *Generator {
	resolver := credentials.NewResolver(&fixedSource{config: config}, 1)
	dispatcher := providers.NewDispatcher(providers.Config{})
	return New(resolver, dispatcher)
}

func testRequest() Request {
	return Request{
		UserID:    42,
		Trend:     testTrend(),
		Character: testCharacter(),
	}
}

func TestGenerateNoConfiguration(t *testing.T) {
	g := newTestGenerator(nil)

	content := g.Generate(context.Background(), testRequest())
	if !content.Failed() {
		t.Fatal("Expected error-shaped content when no config exists")
	}
	if !strings.Contains(content.Error, providers.ErrNoConfiguration.Error()) {
		t.Errorf("Expected no-configuration cause, got %q", content.Error)
	}
	if content.Content != "" {
		t.Error("Failed generation must leave content blank")
	}
	if content.Hashtags == nil {
		t.Error("Hashtags should never be nil")
	}
	// Defaults applied even on the error path
	if content.ContentType != "post" || content.Platform != "twitter" {
		t.Errorf("Expected defaults on error shape, got %s/%s", content.ContentType, content.Platform)
	}
}

func TestGenerateUnsupportedProvider(t *testing.T) {
	g := newTestGenerator(&models.ProviderConfig{
		UserID:           42,
		ProviderName:     "mystery",
		APIKey:           "k",
		DefaultModelText: "m",
	})

	content := g.Generate(context.Background(), testRequest())
	if !content.Failed() {
		t.Fatal("Expected error-shaped content for unknown provider")
	}
	if !strings.Contains(content.Error, "unsupported provider") {
		t.Errorf("Expected unsupported-provider cause, got %q", content.Error)
	}
}

func TestGenerateRespectsRequestedType(t *testing.T) {
	g := newTestGenerator(nil)

	req := testRequest()
	req.ContentType = "reel"
	req.Platform = "instagram"

	content := g.Generate(context.Background(), req)
	if content.ContentType != "reel" || content.Platform != "instagram" {
		t.Errorf("Expected requested type/platform echoed back, got %s/%s", content.ContentType, content.Platform)
	}
}

func TestGenerateVariationsOrderAndIsolation(t *testing.T) {
	g := newTestGenerator(nil)

	results := g.GenerateVariations(context.Background(), testRequest(), 4)
	if len(results) != 4 {
		t.Fatalf("Expected 4 variations, got %d", len(results))
	}
	for i, result := range results {
		if result == nil {
			t.Fatalf("Slot %d is nil, order not preserved", i)
		}
		// One slot failing must not blank out the others
		if !result.Failed() {
			t.Errorf("Slot %d should carry its own error", i)
		}
	}
}

func TestGenerateHashtagsFallback(t *testing.T) {
	g := newTestGenerator(nil)

	hashtags := g.GenerateHashtags(context.Background(), testRequest(), 8)
	if len(hashtags) == 0 {
		t.Fatal("Expected fallback hashtags when dispatch fails")
	}
	if hashtags[0] != "#sustainablefashion" {
		t.Errorf("Expected keyword-derived tag first, got %q", hashtags[0])
	}

	// Fallback is deterministic
	again := g.GenerateHashtags(context.Background(), testRequest(), 8)
	if len(again) != len(hashtags) {
		t.Error("Fallback hashtags should be reproducible")
	}
	for i := range hashtags {
		if hashtags[i] != again[i] {
			t.Errorf("Fallback slot %d differs between runs: %q vs %q", i, hashtags[i], again[i])
		}
	}
}

func TestOptimizeForPlatform(t *testing.T) {
	long := strings.Repeat("a", 300)

	twitter := OptimizeForPlatform(long, "twitter")
	if got := utf8.RuneCountInString(twitter); got != 280 {
		t.Errorf("Expected 280 chars for twitter, got %d", got)
	}
	if !strings.HasSuffix(twitter, "...") {
		t.Error("Expected ellipsis suffix")
	}

	facebook := OptimizeForPlatform(long, "facebook")
	if got := utf8.RuneCountInString(facebook); got != 80 {
		t.Errorf("Expected 80 chars for facebook, got %d", got)
	}

	short := "fits anywhere"
	if OptimizeForPlatform(short, "twitter") != short {
		t.Error("Short content must pass through untouched")
	}
	if OptimizeForPlatform(long, "linkedin") != long {
		t.Error("Platforms without a rule must pass through untouched")
	}
}

func TestOptimizeForPlatformMultiByte(t *testing.T) {
	// 150 characters but 300 bytes; within the twitter limit, so it must
	// pass through whole.
	accented := strings.Repeat("é", 150)
	if got := OptimizeForPlatform(accented, "twitter"); got != accented {
		t.Errorf("Content under the character limit was altered: %d chars returned", utf8.RuneCountInString(got))
	}

	// Over the limit: truncation counts characters and must never split a
	// multi-byte character.
	overLimit := strings.Repeat("é", 300)
	truncated := OptimizeForPlatform(overLimit, "twitter")
	if got := utf8.RuneCountInString(truncated); got != 280 {
		t.Errorf("Expected 280 chars after truncation, got %d", got)
	}
	if !utf8.ValidString(truncated) {
		t.Error("Truncated content is not valid UTF-8")
	}
	if !strings.HasSuffix(truncated, "...") {
		t.Error("Expected ellipsis suffix")
	}
	if !strings.HasPrefix(truncated, "é") {
		t.Errorf("Truncated content lost its leading characters: %q", truncated[:12])
	}

	facebook := OptimizeForPlatform(strings.Repeat("日本語", 40), "facebook")
	if got := utf8.RuneCountInString(facebook); got != 80 {
		t.Errorf("Expected 80 chars for facebook, got %d", got)
	}
	if !utf8.ValidString(facebook) {
		t.Error("Truncated content is not valid UTF-8")
	}
}
