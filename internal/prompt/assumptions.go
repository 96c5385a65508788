package prompt

import (
	"fmt"

	"github.com/danielpatrickdp/mental-model-chat/internal/llm"
)

// #region assumptions

// AssumptionsSystem asks for uncertain assumptions, not obvious facts.
const AssumptionsSystem = "Before answering, pause and reconsider assumptions. Output uncertain assumptions about the user and their situation, with probabilities, in JSON format ONLY. Do not include any additional text."

const assumptionsUserTemplate = `Conversation so far (most recent at bottom):
%s

Return STRICT JSON with this schema:

{
  "assumptions": [
    {
      "assumption": "string",
      "probability": 0.0,
      "evidence": "string (brief quote/paraphrase cue from the conversation, optional)"
    }
  ]
}

Rules:
- Provide 3 to 8 assumptions.
- Probabilities must be between 0 and 1.
- Assumptions should be *uncertain* (not obvious facts).
- Keep assumptions specific and conversationally relevant.
- Output JSON only.`

// BuildAssumptions composes the assumptions inference over the full
// conversation history. Independent of memory.
func BuildAssumptions(history []llm.Message) (system, user string) {
	return AssumptionsSystem, fmt.Sprintf(assumptionsUserTemplate, FormatHistory(history, 0))
}

// #endregion assumptions
