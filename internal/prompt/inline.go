package prompt

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/mental-model-chat/internal/llm"
)

// #region variants

// InlineVariant selects one of the four combined perception+reply
// taxonomies. Closed set; the orchestrator maps its modes onto these.
type InlineVariant string

const (
	VariantSupport      InlineVariant = "support"
	VariantInduct       InlineVariant = "induct"
	VariantHypotheses   InlineVariant = "structured_hypotheses"
	VariantTypesSupport InlineVariant = "types_support"
)

// #endregion variants

// #region taxonomies

// Taxonomy wording is fixed: the evaluation pipeline keys on these exact
// labels.

const supportTaxonomy = `Assess what kind of support the user is seeking in their newest message. Rate each dimension:

{
  "mental_model": {
    "support_seeking": {
      "informational":     {"score": 0.0, "evidence": "string"},
      "validation_esteem": {"score": 0.0, "evidence": "string"},
      "emotional":         {"score": 0.0, "evidence": "string"}
    }
  }
}

- informational: seeking facts, explanations, or advice on what to do.
- validation_esteem: seeking affirmation that their view, choice, or self-worth is sound.
- emotional: seeking comfort, empathy, or a listener for distress.
Scores are in [0, 1] and independent of each other.`

const inductTaxonomy = `From the user's newest message, induce candidate stable characteristics, listing for each the competing situational explanation:

{
  "mental_model": {
    "induced_traits": [
      {"trait": "string", "confidence": 0.0,
       "situational_explanation": "string (what about the situation alone could produce this behavior)"}
    ]
  }
}

- List 1 to 4 traits. Confidence in [0, 1].
- A strong situational explanation should lower the confidence.`

const hypothesesTaxonomy = `Form explicit hypotheses about the user from their newest message:

{
  "mental_model": {
    "role_hypothesis":   {"label": "string (how the user treats the assistant)", "confidence": 0.0},
    "goal_hypothesis":   {"label": "string (what the user wants from this turn)", "confidence": 0.0},
    "stance_hypothesis": {"label": "string (the user's stance toward their own situation)", "confidence": 0.0}
  }
}

Confidences are in [0, 1]. Prefer specific labels over generic ones.`

const typesSupportTaxonomy = `Classify the user's newest message into the support-interaction taxonomy:

{
  "mental_model": {
    "interaction_type": {
      "label": "string, one of: advice_seeking, venting, reassurance_seeking, information_seeking, co_reflection",
      "confidence": 0.0
    },
    "support_seeking": {
      "informational":     {"score": 0.0},
      "validation_esteem": {"score": 0.0},
      "emotional":         {"score": 0.0}
    }
  }
}

- advice_seeking: wants concrete guidance on what to do.
- venting: wants to express feelings without being fixed.
- reassurance_seeking: wants confirmation that things will be okay.
- information_seeking: wants facts or explanations.
- co_reflection: wants to think the situation through together.`

var inlineTaxonomies = map[InlineVariant]string{
	VariantSupport:      supportTaxonomy,
	VariantInduct:       inductTaxonomy,
	VariantHypotheses:   hypothesesTaxonomy,
	VariantTypesSupport: typesSupportTaxonomy,
}

// #endregion taxonomies

// #region builder

const inlineReplyInstruction = `First output the JSON object only. Then, on a new line, write RESPONSE: followed by your conversational reply to the user. The reply must respect what you just inferred, without restating it explicitly.`

// BuildInline composes the single combined perception+reply call for the
// given variant: one round-trip, at the cost of coupling the perception
// and the reply to the same sampling.
func BuildInline(variant InlineVariant, history []llm.Message, userMsg, turnID string) (system, user string) {
	taxonomy, ok := inlineTaxonomies[variant]
	if !ok {
		taxonomy = supportTaxonomy
	}
	system = taxonomy + "\n\n" + inlineReplyInstruction

	var b strings.Builder
	if h := FormatHistory(history, 0); h != "" {
		fmt.Fprintf(&b, "Conversation so far:\n%s\n\n", h)
	}
	fmt.Fprintf(&b, "New user message [%s]:\n%s", turnID, userMsg)
	return system, b.String()
}

// #endregion builder
