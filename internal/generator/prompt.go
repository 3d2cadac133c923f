package generator

import (
	"fmt"
	"strings"

	"postforge/internal/models"
)

// systemPrompt frames every generation call. It pins the response contract:
// pure JSON with the four-field schema the parser expects.
const systemPrompt = `You are an expert social media content creator and strategist. Your job is to create engaging, platform-appropriate content that aligns with current trends and the user's character profile.

Guidelines:
- Create content that is authentic and matches the specified tone
- Include relevant hashtags (3-8 hashtags)
- Add a clear call-to-action when appropriate
- Ensure content is optimized for the specified platform
- Keep content within platform character limits
- Make content engaging and likely to drive interaction

Format your response as JSON with the following structure:
{
    "content": "The main content text",
    "hashtags": ["#hashtag1", "#hashtag2", "#hashtag3"],
    "call_to_action": "Specific call to action",
    "platform_notes": "Any platform-specific considerations"
}`

// characterLimits maps platform → content type → advertised limit text.
var characterLimits = map[string]map[string]string{
	"twitter": {
		"post":   "280 characters",
		"thread": "280 characters per tweet",
	},
	"instagram": {
		"post":  "2,200 characters",
		"story": "2,200 characters",
		"reel":  "2,200 characters",
	},
	"tiktok": {
		"video": "4,000 characters",
		"story": "150 characters",
	},
	"facebook": {
		"post":  "63,206 characters (but aim for 40-80 characters for best engagement)",
		"story": "2,200 characters",
	},
	"linkedin": {
		"post":    "3,000 characters",
		"article": "125,000 characters",
	},
}

// characterLimit returns the advertised limit for a platform/content-type
// pair. Unknown pairs fall back to the strictest common limit.
func characterLimit(platform, contentType string) string {
	if limit, ok := characterLimits[platform][contentType]; ok {
		return limit
	}
	return "280 characters"
}

// BuildContentPrompt assembles the user-turn prompt from a trend, a persona
// and the content specifications. Deterministic, no I/O, and tolerant of
// malformed stored lists (they degrade to empty).
func BuildContentPrompt(trend *models.Trend, character *models.CharacterProfile, contentType, platform, extraContext string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create a %s for %s based on the following:\n\n", contentType, platform)

	fmt.Fprintf(&b, "TRENDING TOPIC:\n")
	fmt.Fprintf(&b, "- Keyword: %s\n", trend.Keyword)
	fmt.Fprintf(&b, "- Platform: %s\n", trend.Platform)
	fmt.Fprintf(&b, "- Category: %s\n", trend.Category)
	fmt.Fprintf(&b, "- Engagement Score: %.1f/10\n", trend.EngagementScore)
	fmt.Fprintf(&b, "- Sentiment: %s\n", trend.Sentiment)
	fmt.Fprintf(&b, "- Related Hashtags: %s\n\n", strings.Join(trend.HashtagList(), ", "))

	fmt.Fprintf(&b, "CHARACTER PROFILE:\n")
	fmt.Fprintf(&b, "- Name: %s\n", character.Name)
	fmt.Fprintf(&b, "- Description: %s\n", character.Description)
	fmt.Fprintf(&b, "- Tone: %s\n", character.Tone)
	fmt.Fprintf(&b, "- Target Audience: %s\n", character.TargetAudience)
	fmt.Fprintf(&b, "- Content Style: %s\n", character.ContentStyle)
	fmt.Fprintf(&b, "- Keywords: %s\n", strings.Join(character.KeywordList(), ", "))
	fmt.Fprintf(&b, "- Preferred Platforms: %s\n", strings.Join(character.PlatformList(), ", "))
	if character.DialogueStyle != "" {
		fmt.Fprintf(&b, "- Dialogue Style: %s\n", character.DialogueStyle)
	}
	if character.VisualWardrobe != "" {
		fmt.Fprintf(&b, "- Visual Wardrobe: %s\n", character.VisualWardrobe)
	}
	if character.VisualProps != "" {
		fmt.Fprintf(&b, "- Visual Props: %s\n", character.VisualProps)
	}
	if character.VisualBackground != "" {
		fmt.Fprintf(&b, "- Visual Background: %s\n", character.VisualBackground)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "CONTENT SPECIFICATIONS:\n")
	fmt.Fprintf(&b, "- Content Type: %s\n", contentType)
	fmt.Fprintf(&b, "- Target Platform: %s\n", platform)
	fmt.Fprintf(&b, "- Character Limit: %s\n\n", characterLimit(platform, contentType))

	if extraContext != "" {
		b.WriteString(extraContext)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "Create engaging content that:\n")
	fmt.Fprintf(&b, "1. Incorporates the trending topic naturally\n")
	fmt.Fprintf(&b, "2. Matches the character's tone and style\n")
	fmt.Fprintf(&b, "3. Appeals to the target audience\n")
	fmt.Fprintf(&b, "4. Is optimized for %s\n", platform)
	fmt.Fprintf(&b, "5. Includes relevant hashtags\n")
	fmt.Fprintf(&b, "6. Has a clear call-to-action\n\n")
	fmt.Fprintf(&b, "Respond in JSON format only.")

	return b.String()
}

// buildHashtagPrompt asks for newline-delimited hashtags only.
func buildHashtagPrompt(trend *models.Trend, character *models.CharacterProfile, count int) string {
	return fmt.Sprintf(
		"Generate %d relevant hashtags for a social media post about %q in the %s category, targeting %s with a %s tone.\n\nReturn only the hashtags, one per line, starting with #.",
		count, trend.Keyword, trend.Category, character.TargetAudience, character.Tone,
	)
}
