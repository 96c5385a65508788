// Package sim runs the turn orchestrator unattended across scripted
// scenarios and exports per-scenario transcripts for offline
// evaluation.
package sim

// #region imports
import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// #endregion imports

// #region types

// Scenario is one scripted conversation: a category/prompt-id pair
// plus the persona fragment injected into the seeker's system prompt.
type Scenario struct {
	Category string `yaml:"category"`
	PromptID string `yaml:"prompt_id"`
	Persona  string `yaml:"persona"`

	// Opening, when set, is used verbatim as the seeker's first
	// message instead of generating one.
	Opening string `yaml:"opening,omitempty"`

	// Turns overrides the run-level turn count when positive.
	Turns int `yaml:"turns,omitempty"`
}

// Catalogue is the full scenario list for a simulation run.
type Catalogue struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// #endregion types

// #region loader

// LoadCatalogue reads and validates a YAML scenario file.
func LoadCatalogue(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalogue %s: %w", path, err)
	}
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalogue %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("catalogue %s: %w", path, err)
	}
	return &c, nil
}

// Validate checks required fields and category/prompt-id uniqueness.
func (c *Catalogue) Validate() error {
	if len(c.Scenarios) == 0 {
		return fmt.Errorf("no scenarios defined")
	}
	seen := make(map[string]bool, len(c.Scenarios))
	for i, sc := range c.Scenarios {
		if sc.Category == "" || sc.PromptID == "" {
			return fmt.Errorf("scenario %d: category and prompt_id are required", i)
		}
		if sc.Persona == "" {
			return fmt.Errorf("scenario %s/%s: persona is required", sc.Category, sc.PromptID)
		}
		key := sc.Category + "/" + sc.PromptID
		if seen[key] {
			return fmt.Errorf("duplicate scenario %s", key)
		}
		seen[key] = true
	}
	return nil
}

// #endregion loader
