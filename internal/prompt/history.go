// Package prompt composes the exact text sent to the generation
// endpoint. The instructional scaffolding and taxonomy wording are a
// fixed contract with the model: downstream schema-filling depends on
// the model recognizing these labels verbatim.
package prompt

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/mental-model-chat/internal/llm"
)

// #region history

// historyWindow bounds how many trailing turns the structured builder
// includes, to keep prompt size bounded.
const historyWindow = 3

// FormatHistory renders messages as "User:/Assistant:" lines. last <= 0
// means the full history.
func FormatHistory(history []llm.Message, last int) string {
	msgs := history
	if last > 0 && len(msgs) > last {
		msgs = msgs[len(msgs)-last:]
	}
	var b strings.Builder
	for _, m := range msgs {
		label := "Assistant"
		if m.Role == "user" {
			label = "User"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, m.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}

// #endregion history
