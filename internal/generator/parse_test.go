package generator

import (
	"reflect"
	"testing"
)

func TestParseModelOutputStructured(t *testing.T) {
	raw := `{
		"content": "Check out this amazing trend!",
		"hashtags": ["#trend", "#viral"],
		"call_to_action": "Follow for more",
		"platform_notes": "Keep it under 280 characters"
	}`

	parsed := parseModelOutput(raw)
	if !parsed.Structured {
		t.Error("Expected structured parse")
	}
	if parsed.Content != "Check out this amazing trend!" {
		t.Errorf("Unexpected content: %q", parsed.Content)
	}
	if !reflect.DeepEqual(parsed.Hashtags, []string{"#trend", "#viral"}) {
		t.Errorf("Unexpected hashtags: %v", parsed.Hashtags)
	}
	if parsed.CallToAction != "Follow for more" {
		t.Errorf("Unexpected call to action: %q", parsed.CallToAction)
	}
	if parsed.PlatformNote != "Keep it under 280 characters" {
		t.Errorf("Unexpected platform note: %q", parsed.PlatformNote)
	}
}

func TestParseModelOutputStructuredNilHashtags(t *testing.T) {
	parsed := parseModelOutput(`{"content": "just text"}`)
	if !parsed.Structured {
		t.Error("Expected structured parse")
	}
	if parsed.Hashtags == nil {
		t.Error("Hashtags should never be nil")
	}
}

func TestParseModelOutputEmptyJSONLiterals(t *testing.T) {
	// null and {} decode without error but produce nothing postable; both
	// must take the free-text path instead of yielding blank structured
	// output.
	for _, raw := range []string{"null", "{}", `{"hashtags": ["#x"]}`} {
		parsed := parseModelOutput(raw)
		if parsed.Structured {
			t.Errorf("Input %q reported as structured despite empty content", raw)
		}
	}
}

func TestParseModelOutputFreeText(t *testing.T) {
	raw := "Big news about #AI today everyone #tech\nSecond line is ignored"

	parsed := parseModelOutput(raw)
	if parsed.Structured {
		t.Error("Expected fallback parse for free text")
	}
	if parsed.Content != "Big news about today everyone" {
		t.Errorf("Expected hashtags stripped from content, got %q", parsed.Content)
	}
	if !reflect.DeepEqual(parsed.Hashtags, []string{"#AI", "#tech"}) {
		t.Errorf("Unexpected hashtags: %v", parsed.Hashtags)
	}
}

func TestParseModelOutputFreeTextNoHashtags(t *testing.T) {
	parsed := parseModelOutput("  plain response with no tags  ")
	if parsed.Content != "plain response with no tags" {
		t.Errorf("Unexpected content: %q", parsed.Content)
	}
	if len(parsed.Hashtags) != 0 {
		t.Errorf("Expected no hashtags, got %v", parsed.Hashtags)
	}
}

func TestParseHashtagLines(t *testing.T) {
	raw := "Here are your hashtags:\n#one\n  #two  \nnot a hashtag\n#three\n#four"

	hashtags := parseHashtagLines(raw, 3)
	if !reflect.DeepEqual(hashtags, []string{"#one", "#two", "#three"}) {
		t.Errorf("Unexpected hashtags: %v", hashtags)
	}
}

func TestParseHashtagLinesFewerThanRequested(t *testing.T) {
	hashtags := parseHashtagLines("#only", 5)
	if !reflect.DeepEqual(hashtags, []string{"#only"}) {
		t.Errorf("Unexpected hashtags: %v", hashtags)
	}
}
