package catalog

import (
	"testing"
)

func TestProviders(t *testing.T) {
	c := New()

	providers := c.Providers()
	if len(providers) != 7 {
		t.Errorf("Expected 7 providers, got %d", len(providers))
	}

	seen := make(map[Provider]bool)
	for _, p := range providers {
		seen[p] = true
	}
	for _, want := range []Provider{ProviderOpenAI, ProviderGroq, ProviderGemini, ProviderAnthropic, ProviderAzure, ProviderCerebras, ProviderOpenRouter} {
		if !seen[want] {
			t.Errorf("Provider %s missing from catalog", want)
		}
	}
}

func TestModelsForUnknownProvider(t *testing.T) {
	c := New()

	models := c.ModelsFor(Provider("doesnotexist"))
	if models == nil {
		t.Error("Expected empty slice for unknown provider, got nil")
	}
	if len(models) != 0 {
		t.Errorf("Expected no models for unknown provider, got %d", len(models))
	}
}

func TestModelsForReturnsCopy(t *testing.T) {
	c := New()

	models := c.ModelsFor(ProviderOpenAI)
	if len(models) == 0 {
		t.Fatal("Expected openai models")
	}
	models[0].Name = "mutated"

	again := c.ModelsFor(ProviderOpenAI)
	if again[0].Name == "mutated" {
		t.Error("ModelsFor should return a copy, catalog was mutated")
	}
}

func TestModelLookup(t *testing.T) {
	c := New()

	m, ok := c.Model(ProviderOpenAI, "gpt-4o")
	if !ok {
		t.Fatal("Expected to find gpt-4o")
	}
	if !m.Can(CapText) || !m.Can(CapImage) {
		t.Error("gpt-4o should declare text and image capabilities")
	}
	if m.Can(CapAudio) {
		t.Error("gpt-4o should not declare audio capability")
	}

	if _, ok := c.Model(ProviderOpenAI, "nope"); ok {
		t.Error("Expected lookup miss for unknown model")
	}
	if _, ok := c.Model(Provider("doesnotexist"), "gpt-4o"); ok {
		t.Error("Expected lookup miss for unknown provider")
	}
}

func TestProviderStatus(t *testing.T) {
	c := New()

	statuses := c.ProviderStatus()
	if len(statuses) != 7 {
		t.Fatalf("Expected 7 statuses, got %d", len(statuses))
	}

	// Order is fixed for display; openai comes first
	if statuses[0].Provider != ProviderOpenAI {
		t.Errorf("Expected openai first, got %s", statuses[0].Provider)
	}
	if statuses[0].ModelCount != len(c.ModelsFor(ProviderOpenAI)) {
		t.Errorf("ModelCount %d does not match catalog", statuses[0].ModelCount)
	}

	// Capabilities are deduplicated
	caps := make(map[Capability]int)
	for _, cap := range statuses[0].Capabilities {
		caps[cap]++
		if caps[cap] > 1 {
			t.Errorf("Capability %s listed more than once", cap)
		}
	}
	if caps[CapText] == 0 || caps[CapAudio] == 0 {
		t.Error("openai status should include text and audio capabilities")
	}
}
