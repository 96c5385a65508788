package prompt

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/mental-model-chat/internal/mental"
)

// #region intro

const preambleIntro = `You are an assistant responding to a user. Before answering, read this
description of the user's inferred conversational expectations and goals.
Use it to shape your tone and structure, but do NOT restate it explicitly.`

// #endregion intro

// #region structured-preamble

// BuildPreamble converts a merged TurnState into the second-person
// system-prompt framing for the reply call. Sections whose source fields
// are absent are omitted rather than rendered with placeholders.
func BuildPreamble(turnState map[string]interface{}) string {
	var b strings.Builder
	b.WriteString(preambleIntro)

	ms := mental.GetMap(turnState, "mental_state")
	if len(ms) > 0 {
		var lines []string
		mind := mental.GetMap(ms, "mind3d")
		if r, ok := mental.GetFloat(mind, "rationality"); ok {
			v, _ := mental.GetFloat(mind, "valence")
			s, _ := mental.GetFloat(mind, "social_impact")
			lines = append(lines, fmt.Sprintf("- Rationality %.2f, valence %.2f, social impact %.2f (each -1 to 1)", r, v, s))
		}
		if w, ok := mental.GetFloat(ms, "horizontal_warmth"); ok {
			c, _ := mental.GetFloat(ms, "vertical_competence")
			lines = append(lines, fmt.Sprintf("- Warmth (0-1): %.2f | Projected competence (0-1): %.2f", w, c))
		}
		if label := mental.GetString(mental.GetMap(ms, "immediate_intent"), "label"); label != "" {
			lines = append(lines, fmt.Sprintf("- Immediate intent: %s", label))
		}
		if label := mental.GetString(mental.GetMap(ms, "role_hypothesis"), "label"); label != "" {
			lines = append(lines, fmt.Sprintf("- The user treats you as: %s", label))
		}
		if label := mental.GetString(mental.GetMap(ms, "user_model_of_llm"), "label"); label != "" {
			lines = append(lines, fmt.Sprintf("- The user's model of you: %s", label))
		}
		writeSection(&b, "[Mental state]", lines)
	}

	mg := mental.GetMap(turnState, "motives_goals")
	if len(mg) > 0 {
		var lines []string
		for _, m := range mental.GetSlice(mg, "inferred_motives") {
			if mm, ok := m.(map[string]interface{}); ok {
				if label := mental.GetString(mm, "label"); label != "" {
					conf, _ := mental.GetFloat(mm, "confidence")
					lines = append(lines, fmt.Sprintf("- Motive: %s (confidence %.2f)", label, conf))
				}
			}
		}
		if label := mental.GetString(mental.GetMap(mg, "goal"), "label"); label != "" {
			lines = append(lines, fmt.Sprintf("- Goal this turn: %s", label))
		}
		writeSection(&b, "[Motives and goals]", lines)
	}

	lt := mental.GetMap(turnState, "long_term")
	if items := mental.GetSlice(lt, "items"); len(items) > 0 {
		var lines []string
		for _, it := range items {
			im, ok := it.(map[string]interface{})
			if !ok {
				continue
			}
			label := mental.GetString(im, "label")
			if label == "" {
				continue
			}
			status := mental.GetString(im, "status")
			lines = append(lines, fmt.Sprintf("- %s (%s)", label, status))
		}
		writeSection(&b, "[Stable characteristics]", lines)
	}

	slog := mental.GetMap(mental.Memory(turnState), "situation_log")
	if summary := mental.GetString(slog, "summary"); summary != "" {
		writeSection(&b, "[Situation]", []string{"- " + summary})
	}

	return b.String()
}

func writeSection(b *strings.Builder, header string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(b, "\n\n%s\n%s", header, strings.Join(lines, "\n"))
}

// #endregion structured-preamble

// #region legacy-preamble

// BuildLegacyPreamble renders the flat legacy model as the reply-call
// system prompt.
func BuildLegacyPreamble(legacy map[string]interface{}) string {
	f := func(key string) float64 {
		v, _ := mental.GetFloat(legacy, key)
		return v
	}
	expects := false
	if v, ok := legacy["expects_correction"].(bool); ok {
		expects = v
	}
	role := mental.GetString(legacy, "assistant_role")

	return fmt.Sprintf(`%s

[Epistemic stance]
- User certainty (0-1): %.2f
- User treats assistant as expert (0-1): %.2f
- Expects explicit correction: %t

[Relational goals]
- Validation seeking (0-1): %.2f
- Objectivity seeking (0-1): %.2f
- Empathy expectation (0-1): %.2f

[Style]
- Directness (0-1): %.2f
- Informativeness (0-1): %.2f

[Role]
- Assistant role: %s`,
		preambleIntro,
		f("user_certainty"), f("model_seen_as_expert"), expects,
		f("validation_seeking"), f("objectivity_seeking"), f("empathy_expectation"),
		f("directness"), f("informativeness"), role)
}

// #endregion legacy-preamble
