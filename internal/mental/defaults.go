// Package mental defines the turn-state and memory value trees and the
// merge rules that fold loosely-structured model output into them.
// Trees are plain encoding/json values (map / slice / string / float64 /
// bool / nil) so the merge stays generic and tolerant of partial output.
package mental

// #region turn-state-defaults

// Defaults returns the canonical TurnState tree with every field present
// and zeroed. Model output is overlaid onto a copy of this.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"behavior": map[string]interface{}{
			"turn_id":      "",
			"text":         "",
			"observations": []interface{}{},
		},
		"mental_state": map[string]interface{}{
			"mind3d": map[string]interface{}{
				"rationality":   0.0,
				"valence":       0.0,
				"social_impact": 0.0,
			},
			"immediate_intent": map[string]interface{}{
				"label":      "",
				"confidence": 0.0,
			},
			"horizontal_warmth":   0.5,
			"vertical_competence": 0.5,
			"role_hypothesis": map[string]interface{}{
				"label":      "",
				"confidence": 0.0,
			},
			"user_model_of_llm": map[string]interface{}{
				"label":      "",
				"confidence": 0.0,
			},
		},
		"motives_goals": map[string]interface{}{
			"inferred_motives": []interface{}{},
			"goal": map[string]interface{}{
				"label":      "",
				"confidence": 0.0,
			},
		},
		"long_term": map[string]interface{}{
			"items": []interface{}{},
		},
		"memory": NewMemory(),
	}
}

// NewMemory returns an empty cross-turn memory tree.
func NewMemory() map[string]interface{} {
	return map[string]interface{}{
		"situation_log": map[string]interface{}{
			"summary": "",
			"facts":   []interface{}{},
		},
		"turn_index": map[string]interface{}{},
	}
}

// #endregion turn-state-defaults

// #region legacy-defaults

// legacyKeys is the closed field set of the flat legacy model. Unknown
// keys in model output are dropped, matching the superseded behavior.
var legacyKeys = []string{
	"user_certainty",
	"model_seen_as_expert",
	"expects_correction",
	"validation_seeking",
	"objectivity_seeking",
	"empathy_expectation",
	"directness",
	"informativeness",
	"assistant_role",
}

// LegacyDefaults returns the flat legacy mental model with its original
// default values.
func LegacyDefaults() map[string]interface{} {
	return map[string]interface{}{
		"user_certainty":       0.5,
		"model_seen_as_expert": 0.8,
		"expects_correction":   true,
		"validation_seeking":   0.5,
		"objectivity_seeking":  0.5,
		"empathy_expectation":  0.5,
		"directness":           0.5,
		"informativeness":      0.7,
		"assistant_role":       "Neutral assistant",
	}
}

// #endregion legacy-defaults
