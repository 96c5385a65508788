package sim

// #region imports
import (
	"context"
	"fmt"
	"strings"

	"github.com/danielpatrickdp/mental-model-chat/internal/llm"
)

// #endregion imports

// #region seeker

const seekerInstruction = `You are role-playing the HELP-SEEKER side of a conversation with an assistant. Stay in character per the persona below. Write only your next message, in first person, with no quotation marks and no meta-commentary.

Persona:
%s`

var seekerSampling = struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
}{MaxTokens: 250, Temperature: 0.9, TopP: 1.0}

// seeker generates the scripted user's side of the dialogue through
// the same completion endpoint as the evaluated assistant.
type seeker struct {
	completer llm.Completer
	retry     *llm.Retryer
	persona   string
}

// Next produces the seeker's next message given the conversation so
// far. The roles are flipped: the assistant's messages become the
// seeker's interlocutor.
func (s *seeker) Next(ctx context.Context, history []llm.Message) (string, error) {
	msgs := make([]llm.Message, 0, len(history)+1)
	msgs = append(msgs, llm.Message{
		Role:    "system",
		Content: fmt.Sprintf(seekerInstruction, s.persona),
	})
	for _, m := range history {
		flipped := m
		if m.Role == "user" {
			flipped.Role = "assistant"
		} else {
			flipped.Role = "user"
		}
		msgs = append(msgs, flipped)
	}

	req := llm.CompletionRequest{
		Messages:    msgs,
		MaxTokens:   seekerSampling.MaxTokens,
		Temperature: seekerSampling.Temperature,
		TopP:        seekerSampling.TopP,
	}
	out, err := s.retry.Do(ctx, func(ctx context.Context) (string, error) {
		return s.completer.Complete(ctx, req)
	})
	if err != nil {
		return "", fmt.Errorf("seeker turn: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// #endregion seeker
