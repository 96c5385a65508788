package sim

// #region imports
import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/danielpatrickdp/mental-model-chat/internal/mental"
)

// #endregion imports

// #region export-types

// TurnExport is one turn of a scenario transcript. The situation log
// is stripped from the per-turn mental model and hoisted to the
// scenario level, since it only grows monotonically.
type TurnExport struct {
	TurnIndex        int                    `json:"turnIndex"`
	UserMessage      string                 `json:"userMessage"`
	AssistantMessage string                 `json:"assistantMessage"`
	MentalModel      map[string]interface{} `json:"mentalModel,omitempty"`
}

// ExportMetadata identifies one scenario run.
type ExportMetadata struct {
	RunID       string    `json:"runId"`
	Category    string    `json:"category"`
	PromptID    string    `json:"promptId"`
	Mode        string    `json:"mode"`
	Turns       int       `json:"turns"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// ScenarioExport is the JSON file written per scenario.
type ScenarioExport struct {
	Metadata     ExportMetadata         `json:"metadata"`
	Turns        []TurnExport           `json:"turns"`
	SituationLog map[string]interface{} `json:"situation_log,omitempty"`
}

// #endregion export-types

// #region writer

// WriteScenario persists one scenario transcript at
// <outDir>/<run-id>/<category>/<prompt-id>.json.
func WriteScenario(outDir string, export ScenarioExport) (string, error) {
	dir := filepath.Join(outDir, export.Metadata.RunID, export.Metadata.Category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, export.Metadata.PromptID+".json")

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal export: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export %s: %w", path, err)
	}
	return path, nil
}

// exportModel prepares a TurnState for the per-turn record: a deep
// copy with memory.situation_log removed.
func exportModel(turnState map[string]interface{}) map[string]interface{} {
	if turnState == nil {
		return nil
	}
	return mental.WithoutSituationLog(turnState)
}

// #endregion writer
