package prompt

import "fmt"

// #region legacy

// LegacySystem is the single-turn flat-model instruction.
const LegacySystem = "You analyze a single user message and infer the user's conversational expectations. Output STRICT JSON ONLY (no markdown, no comments)."

const legacyUserTemplate = `User message:
%s

Return a JSON object with exactly these keys:

- user_certainty (float 0-1)
- model_seen_as_expert (float 0-1)
- expects_correction (boolean)
- validation_seeking (float 0-1)
- objectivity_seeking (float 0-1)
- empathy_expectation (float 0-1)
- directness (float 0-1)
- informativeness (float 0-1)
- assistant_role (string, one of: "Neutral assistant", "Expert", "Friend/peer", "Therapist-like listener")

Output STRICT JSON only.`

// BuildLegacy composes the stateless flat-model inference prompt.
// Single-turn: no history, no memory.
func BuildLegacy(userMsg string) (system, user string) {
	return LegacySystem, fmt.Sprintf(legacyUserTemplate, userMsg)
}

// #endregion legacy
