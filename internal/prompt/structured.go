package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/danielpatrickdp/mental-model-chat/internal/llm"
	"github.com/danielpatrickdp/mental-model-chat/internal/mental"
)

// #region system-instruction

// StructuredSystem is the full person-perception instruction. The schema
// description and filling instructions are fixed wording.
const StructuredSystem = `You observe an ongoing conversation and infer a structured person-perception model of the user from their newest message. Output STRICT JSON matching this schema (no markdown, no comments):

{
  "behavior": {
    "turn_id": "string",
    "text": "string (the user's message, verbatim)",
    "observations": [
      {"observed_evidence": "string",
       "diagnosticity": {"situational_force": 0.0, "consistency": 0.0}}
    ]
  },
  "mental_state": {
    "mind3d": {"rationality": 0.0, "valence": 0.0, "social_impact": 0.0},
    "immediate_intent": {"label": "string", "confidence": 0.0},
    "horizontal_warmth": 0.0,
    "vertical_competence": 0.0,
    "role_hypothesis": {"label": "string", "confidence": 0.0},
    "user_model_of_llm": {"label": "string", "confidence": 0.0}
  },
  "motives_goals": {
    "inferred_motives": [{"label": "string", "confidence": 0.0}],
    "goal": {"label": "string", "confidence": 0.0}
  },
  "long_term": {
    "items": [
      {"label": "string", "type": "preference|tendency|other",
       "status": "candidate|trait", "confidence": 0.0,
       "evidence_turn_ids": ["t000"]}
    ]
  },
  "memory": {
    "situation_log": {"summary": "string",
                      "facts": [{"fact": "string", "turn_id": "string"}]},
    "turn_index": {"t000": {}}
  }
}

Filling instructions:
- mind3d axes are in [-1, 1]: rationality (deliberate reasoning vs affect-driven), valence (negative vs positive state), social_impact (withdrawing vs socially assertive).
- horizontal_warmth and vertical_competence are in [0, 1]: how warmly the user engages, and how much competence they project.
- diagnosticity: situational_force is how strongly the situation alone explains the behavior; consistency is how consistent the behavior is with prior turns. Both in [0, 1]. High situational force means the behavior is weak evidence for a stable trait.
- long_term holds at most 5 items. New items start with status "candidate". Promote a candidate to "trait" only when it is supported by evidence_turn_ids from at least 3 distinct turns and confidence is at least 0.7. Revise or drop items deliberately; never silently renumber evidence.
- memory.situation_log: update the summary each turn. If you return a facts array it replaces the previous list entirely, so always return the complete updated list; omit the facts field to leave the previous list unchanged.
- memory.turn_index: add an entry for the current turn id containing your person_perception snapshot (or a short note).
Output the JSON object only.`

// #endregion system-instruction

// #region builder

// BuildStructured composes the system and user messages for a structured
// person-perception inference. The memory view is condensed: the full
// situation_log but only the immediately preceding turn's snapshot —
// older turns stay in the carried memory object, not in the prompt.
func BuildStructured(history []llm.Message, userMsg string, memory map[string]interface{}, turnID string) (system, user string) {
	var b strings.Builder

	if h := FormatHistory(history, historyWindow*2); h != "" {
		fmt.Fprintf(&b, "Conversation so far (last %d turns):\n%s\n\n", historyWindow, h)
	}
	fmt.Fprintf(&b, "Current user message [%s]:\n%s\n", turnID, userMsg)

	slog := mental.GetMap(memory, "situation_log")
	if len(slog) > 0 {
		logJSON, _ := json.MarshalIndent(slog, "", "  ")
		fmt.Fprintf(&b, "\nPrevious situation log:\n%s\n", logJSON)
	}

	if entries := mental.TurnIndexEntries(memory); len(entries) > 0 {
		last := entries[len(entries)-1]
		snapJSON, _ := json.MarshalIndent(last.Snapshot, "", "  ")
		fmt.Fprintf(&b, "\nPerception of the previous turn [%s]:\n%s\n", last.TurnID, snapJSON)
	}

	return StructuredSystem, b.String()
}

// #endregion builder
