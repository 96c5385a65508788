package sim

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCatalogue(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write catalogue: %v", err)
	}
	return path
}

func TestLoadCatalogue(t *testing.T) {
	path := writeCatalogue(t, `
scenarios:
  - category: emotional
    prompt_id: breakup_01
    persona: |
      You recently went through a breakup and feel lost.
    opening: "I don't even know where to start."
  - category: decision
    prompt_id: job_offer_01
    persona: You received a job offer in another city.
    turns: 3
`)
	cat, err := LoadCatalogue(path)
	if err != nil {
		t.Fatalf("LoadCatalogue: %v", err)
	}
	if len(cat.Scenarios) != 2 {
		t.Fatalf("got %d scenarios, want 2", len(cat.Scenarios))
	}
	first := cat.Scenarios[0]
	if first.Category != "emotional" || first.PromptID != "breakup_01" {
		t.Errorf("scenario 0 = %+v", first)
	}
	if !strings.Contains(first.Persona, "breakup") {
		t.Errorf("persona = %q", first.Persona)
	}
	if first.Opening != "I don't even know where to start." {
		t.Errorf("opening = %q", first.Opening)
	}
	if cat.Scenarios[1].Opening != "" {
		t.Error("opening should be optional")
	}
	if cat.Scenarios[0].Turns != 0 || cat.Scenarios[1].Turns != 3 {
		t.Errorf("turn overrides = %d, %d", cat.Scenarios[0].Turns, cat.Scenarios[1].Turns)
	}
}

func TestLoadCatalogueRejectsDuplicates(t *testing.T) {
	path := writeCatalogue(t, `
scenarios:
  - {category: a, prompt_id: x, persona: p}
  - {category: a, prompt_id: x, persona: q}
`)
	if _, err := LoadCatalogue(path); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("want duplicate error, got %v", err)
	}
}

func TestLoadCatalogueRejectsMissingFields(t *testing.T) {
	for name, body := range map[string]string{
		"empty":      `scenarios: []`,
		"no_id":      `scenarios: [{category: a, persona: p}]`,
		"no_persona": `scenarios: [{category: a, prompt_id: x}]`,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadCatalogue(writeCatalogue(t, body)); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}
