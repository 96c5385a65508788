package orchestrator

// #region imports
import (
	"fmt"
	"time"

	"github.com/danielpatrickdp/mental-model-chat/internal/prompt"
)

// #endregion

// #region mode

// Mode selects which inference variant runs on each submitted turn.
// Closed set: the dispatch in Session.Submit has one handler per mode.
type Mode string

const (
	ModeLegacy           Mode = "legacy"
	ModeStructured       Mode = "structured"
	ModeInlineSupport    Mode = "inline_support"
	ModeInlineInduct     Mode = "inline_induct"
	ModeInlineHypotheses Mode = "inline_structured_hypotheses"
	ModeInlineTypes      Mode = "inline_types_support"
)

// ParseMode validates a mode name from a flag or env var.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLegacy, ModeStructured, ModeInlineSupport, ModeInlineInduct, ModeInlineHypotheses, ModeInlineTypes:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Inline reports whether the mode runs perception and reply as one
// combined call.
func (m Mode) Inline() bool {
	switch m {
	case ModeInlineSupport, ModeInlineInduct, ModeInlineHypotheses, ModeInlineTypes:
		return true
	}
	return false
}

// Variant maps an inline mode onto its prompt taxonomy.
func (m Mode) Variant() prompt.InlineVariant {
	switch m {
	case ModeInlineInduct:
		return prompt.VariantInduct
	case ModeInlineHypotheses:
		return prompt.VariantHypotheses
	case ModeInlineTypes:
		return prompt.VariantTypesSupport
	default:
		return prompt.VariantSupport
	}
}

// #endregion mode

// #region session-state

// SessionState is the per-conversation state machine position.
type SessionState string

const (
	StateIdle               SessionState = "idle"
	StateAwaitingPerception SessionState = "awaiting_perception"
	StateAwaitingReply      SessionState = "awaiting_reply"
)

// #endregion session-state

// #region sampling

// Sampling bundles the generation parameters for one call class.
type Sampling struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// #endregion sampling

// #region turn-result

// TurnResult is what one successful Submit hands back to the caller.
type TurnResult struct {
	TurnID string
	Reply  string

	// TurnState is the merged perception for structured mode, the
	// defaults-merged flat model for legacy mode, or the raw inline
	// object for inline modes. Nil when perception failed or parsed
	// to nothing.
	TurnState map[string]interface{}

	// PerceptionErr records a swallowed perception failure. The turn
	// itself still succeeded.
	PerceptionErr error
}

// #endregion turn-result

// #region assumptions

// Assumption is one uncertain inference about the user.
type Assumption struct {
	Assumption  string
	Probability float64
	Evidence    string
}

// AssumptionSet is one background inference's output, appended to a
// flat history rather than merged.
type AssumptionSet struct {
	TurnID     string
	Items      []Assumption
	InferredAt time.Time
}

// #endregion assumptions

// #region recorder

// TurnRecord is the provenance row for one completed turn.
type TurnRecord struct {
	SessionID    string
	TurnID       string
	Mode         Mode
	UserText     string
	Reply        string
	PerceptionOK bool
	CreatedAt    time.Time
}

// Recorder persists turn provenance. Implementations must tolerate
// being called once per turn from a single goroutine.
type Recorder interface {
	RecordTurn(rec TurnRecord) error
}

// #endregion recorder
