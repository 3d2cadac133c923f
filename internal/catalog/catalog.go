package catalog

// Package catalog is the static model catalog: which providers exist, which
// models each one exposes, and what those models can do. It performs no I/O
// and is safe for concurrent use. Capability metadata is informational; the
// dispatcher does not gate requests on it.

// Provider enumerates supported provider tags.
type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderGroq       Provider = "groq"
	ProviderGemini     Provider = "gemini"
	ProviderAnthropic  Provider = "anthropic"
	ProviderAzure      Provider = "azure"
	ProviderCerebras   Provider = "cerebras"
	ProviderOpenRouter Provider = "openrouter"
)

// Capability describes what a model can consume or produce.
type Capability string

const (
	CapText            Capability = "text"
	CapImage           Capability = "image"
	CapAudio           Capability = "audio"
	CapVideo           Capability = "video"
	CapImageGeneration Capability = "image_generation"
)

// Model describes one model offered by a provider.
type Model struct {
	Name         string       `json:"name"`
	Provider     Provider     `json:"provider"`
	Capabilities []Capability `json:"capabilities"`
	MaxTokens    int          `json:"max_tokens"`
	CostPerToken float64      `json:"cost_per_token"`
}

// Can reports whether the model declares the given capability.
func (m Model) Can(cap Capability) bool {
	for _, c := range m.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}

// Catalog maps providers to their model lists. Construct once at startup and
// treat as immutable.
type Catalog struct {
	models map[Provider][]Model
}

// New returns the built-in catalog.
func New() *Catalog {
	c := &Catalog{models: make(map[Provider][]Model)}

	c.models[ProviderOpenAI] = []Model{
		{Name: "gpt-4o", Provider: ProviderOpenAI, Capabilities: []Capability{CapText, CapImage}, MaxTokens: 128000},
		{Name: "gpt-4o-mini", Provider: ProviderOpenAI, Capabilities: []Capability{CapText, CapImage}, MaxTokens: 128000},
		{Name: "gpt-3.5-turbo", Provider: ProviderOpenAI, Capabilities: []Capability{CapText}, MaxTokens: 16385},
		{Name: "whisper-1", Provider: ProviderOpenAI, Capabilities: []Capability{CapAudio}, MaxTokens: 25000000},
		{Name: "dall-e-3", Provider: ProviderOpenAI, Capabilities: []Capability{CapImageGeneration}, MaxTokens: 4000},
	}

	c.models[ProviderGroq] = []Model{
		{Name: "llama-3.1-405b-reasoning", Provider: ProviderGroq, Capabilities: []Capability{CapText}, MaxTokens: 131072},
		{Name: "llama-3.1-70b-versatile", Provider: ProviderGroq, Capabilities: []Capability{CapText}, MaxTokens: 131072},
		{Name: "llama-3.1-8b-instant", Provider: ProviderGroq, Capabilities: []Capability{CapText}, MaxTokens: 131072},
		{Name: "mixtral-8x7b-32768", Provider: ProviderGroq, Capabilities: []Capability{CapText}, MaxTokens: 32768},
		{Name: "gemma2-9b-it", Provider: ProviderGroq, Capabilities: []Capability{CapText}, MaxTokens: 8192},
		{Name: "whisper-large-v3", Provider: ProviderGroq, Capabilities: []Capability{CapAudio}, MaxTokens: 25000000},
		{Name: "llama-3.2-90b-vision-preview", Provider: ProviderGroq, Capabilities: []Capability{CapText, CapImage}, MaxTokens: 131072},
		{Name: "llama-3.2-11b-vision-preview", Provider: ProviderGroq, Capabilities: []Capability{CapText, CapImage}, MaxTokens: 131072},
	}

	c.models[ProviderGemini] = []Model{
		{Name: "gemini-1.5-pro", Provider: ProviderGemini, Capabilities: []Capability{CapText, CapImage, CapVideo}, MaxTokens: 2000000},
		{Name: "gemini-1.5-flash", Provider: ProviderGemini, Capabilities: []Capability{CapText, CapImage, CapVideo}, MaxTokens: 1000000},
		{Name: "gemini-pro", Provider: ProviderGemini, Capabilities: []Capability{CapText}, MaxTokens: 32768},
	}

	c.models[ProviderAnthropic] = []Model{
		{Name: "claude-3-5-sonnet-20241022", Provider: ProviderAnthropic, Capabilities: []Capability{CapText, CapImage}, MaxTokens: 200000},
		{Name: "claude-3-haiku-20240307", Provider: ProviderAnthropic, Capabilities: []Capability{CapText, CapImage}, MaxTokens: 200000},
	}

	c.models[ProviderAzure] = []Model{
		{Name: "gpt-4o", Provider: ProviderAzure, Capabilities: []Capability{CapText, CapImage}, MaxTokens: 128000},
		{Name: "gpt-35-turbo", Provider: ProviderAzure, Capabilities: []Capability{CapText}, MaxTokens: 16385},
	}

	c.models[ProviderCerebras] = []Model{
		{Name: "llama3.1-8b", Provider: ProviderCerebras, Capabilities: []Capability{CapText}, MaxTokens: 128000},
		{Name: "llama3.1-70b", Provider: ProviderCerebras, Capabilities: []Capability{CapText}, MaxTokens: 128000},
	}

	c.models[ProviderOpenRouter] = []Model{
		{Name: "anthropic/claude-3.5-sonnet", Provider: ProviderOpenRouter, Capabilities: []Capability{CapText}, MaxTokens: 200000},
		{Name: "meta-llama/llama-3.1-405b-instruct", Provider: ProviderOpenRouter, Capabilities: []Capability{CapText}, MaxTokens: 131072},
		{Name: "google/gemini-pro-1.5", Provider: ProviderOpenRouter, Capabilities: []Capability{CapText, CapImage}, MaxTokens: 2000000},
		{Name: "openai/gpt-4o", Provider: ProviderOpenRouter, Capabilities: []Capability{CapText, CapImage}, MaxTokens: 128000},
	}

	return c
}

// Providers returns all provider tags in the catalog, unordered.
func (c *Catalog) Providers() []Provider {
	out := make([]Provider, 0, len(c.models))
	for p := range c.models {
		out = append(out, p)
	}
	return out
}

// ModelsFor returns the models a provider exposes. Unknown providers yield
// an empty slice, never an error.
func (c *Catalog) ModelsFor(provider Provider) []Model {
	models := c.models[provider]
	out := make([]Model, len(models))
	copy(out, models)
	return out
}

// Model looks up a model by provider and name.
func (c *Catalog) Model(provider Provider, name string) (Model, bool) {
	for _, m := range c.models[provider] {
		if m.Name == name {
			return m, true
		}
	}
	return Model{}, false
}

// Status summarizes one provider for display.
type Status struct {
	Provider     Provider     `json:"provider"`
	ModelCount   int          `json:"models_count"`
	Capabilities []Capability `json:"capabilities"`
}

// ProviderStatus reports per-provider model counts and the union of their
// capabilities.
func (c *Catalog) ProviderStatus() []Status {
	order := []Provider{
		ProviderOpenAI, ProviderGroq, ProviderGemini, ProviderAnthropic,
		ProviderAzure, ProviderCerebras, ProviderOpenRouter,
	}

	out := make([]Status, 0, len(order))
	for _, p := range order {
		seen := make(map[Capability]bool)
		var caps []Capability
		for _, m := range c.models[p] {
			for _, cap := range m.Capabilities {
				if !seen[cap] {
					seen[cap] = true
					caps = append(caps, cap)
				}
			}
		}
		out = append(out, Status{Provider: p, ModelCount: len(c.models[p]), Capabilities: caps})
	}
	return out
}
