// Package orchestrator runs the per-turn control loop: mode dispatch,
// perception inference, memory merging, and the final reply call.
package orchestrator

// #region imports
import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/mental-model-chat/internal/llm"
	"github.com/danielpatrickdp/mental-model-chat/internal/mental"
	"github.com/danielpatrickdp/mental-model-chat/internal/parse"
	"github.com/danielpatrickdp/mental-model-chat/internal/prompt"
)

// #endregion

// #region defaults

var (
	// PerceptionSampling keeps perception calls near-deterministic.
	PerceptionSampling = Sampling{MaxTokens: 1200, Temperature: 0.2, TopP: 1.0}

	// ReplySampling is the conversational reply call.
	ReplySampling = Sampling{MaxTokens: 700, Temperature: 0.7, TopP: 1.0}

	// InlineSampling covers the combined perception+reply call.
	InlineSampling = Sampling{MaxTokens: 1500, Temperature: 0.5, TopP: 1.0}
)

const assumptionsBuffer = 8

// #endregion defaults

// #region session-struct

// Session owns one conversation: history, accumulated memory, the turn
// counter, and the state machine position. Not safe for concurrent
// Submit calls; the front-end drives exactly one turn at a time.
type Session struct {
	id        string
	completer llm.Completer
	retry     *llm.Retryer
	recorder  Recorder

	mode    Mode
	state   SessionState
	history []llm.Message
	turn    int

	memory    map[string]interface{}
	lastState map[string]interface{} // last merged TurnState, structured mode
	legacy    map[string]interface{} // last flat model, legacy mode

	assumptions chan AssumptionSet
}

// Options configures a Session. Zero values fall back to defaults.
type Options struct {
	Mode     Mode
	Retryer  *llm.Retryer
	Recorder Recorder
}

// NewSession wires a session around a completion endpoint.
func NewSession(completer llm.Completer, opts Options) *Session {
	mode := opts.Mode
	if mode == "" {
		mode = ModeStructured
	}
	retry := opts.Retryer
	if retry == nil {
		retry = llm.NewRetryer()
	}
	return &Session{
		id:          uuid.NewString(),
		completer:   completer,
		retry:       retry,
		recorder:    opts.Recorder,
		mode:        mode,
		state:       StateIdle,
		memory:      mental.NewMemory(),
		assumptions: make(chan AssumptionSet, assumptionsBuffer),
	}
}

// #endregion session-struct

// #region accessors

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Mode returns the active inference mode.
func (s *Session) Mode() Mode { return s.mode }

// State returns the state machine position.
func (s *Session) State() SessionState { return s.state }

// Turn returns the zero-based index of the next turn.
func (s *Session) Turn() int { return s.turn }

// Memory returns the accumulated cross-turn memory. Callers must not
// mutate it.
func (s *Session) Memory() map[string]interface{} { return s.memory }

// History returns the conversation so far.
func (s *Session) History() []llm.Message { return s.history }

// Assumptions exposes the background inference results. The channel is
// buffered; sets that arrive while the buffer is full are dropped.
func (s *Session) Assumptions() <-chan AssumptionSet { return s.assumptions }

// #endregion accessors

// #region set-mode

// SetMode switches the inference variant. The other mode's accumulated
// state is discarded on switch; only the visible conversation history
// survives. Rejected while a turn is in flight.
func (s *Session) SetMode(mode Mode) error {
	if s.state != StateIdle {
		return fmt.Errorf("cannot switch mode in state %s", s.state)
	}
	if mode == s.mode {
		return nil
	}
	log.Printf("[TURN] mode switch %s → %s, discarding accumulated state", s.mode, mode)
	s.mode = mode
	s.memory = mental.NewMemory()
	s.lastState = nil
	s.legacy = nil
	return nil
}

// #endregion set-mode

// #region close

// Close releases the session. Background inferences still in flight
// are not cancelled; their results land in the buffered channel and
// are simply never consumed.
func (s *Session) Close() {
	for {
		select {
		case <-s.assumptions:
		default:
			return
		}
	}
}

// #endregion close

// #region submit

// Submit runs one full turn for the given user message. Perception is
// best-effort: its failure is recorded on the result, not returned.
// Reply failure is terminal for the turn and the counter does not
// advance. On success the counter advances regardless of perception
// outcome.
func (s *Session) Submit(ctx context.Context, text string) (*TurnResult, error) {
	if s.state != StateIdle {
		return nil, fmt.Errorf("turn already in flight (state %s)", s.state)
	}
	turnID := fmt.Sprintf("t%03d", s.turn)

	var res *TurnResult
	var err error
	switch s.mode {
	case ModeLegacy:
		res, err = s.runLegacy(ctx, turnID, text)
	case ModeStructured:
		res, err = s.runStructured(ctx, turnID, text)
	case ModeInlineSupport, ModeInlineInduct, ModeInlineHypotheses, ModeInlineTypes:
		res, err = s.runInline(ctx, turnID, text)
	default:
		err = fmt.Errorf("unknown mode %q", s.mode)
	}
	if err != nil {
		s.setState(StateIdle)
		return nil, err
	}

	s.history = append(s.history,
		llm.Message{Role: "user", Content: text},
		llm.Message{Role: "assistant", Content: res.Reply},
	)
	s.turn++
	s.setState(StateIdle)

	if s.recorder != nil {
		rec := TurnRecord{
			SessionID:    s.id,
			TurnID:       turnID,
			Mode:         s.mode,
			UserText:     text,
			Reply:        res.Reply,
			PerceptionOK: res.PerceptionErr == nil && res.TurnState != nil,
			CreatedAt:    time.Now(),
		}
		if rerr := s.recorder.RecordTurn(rec); rerr != nil {
			log.Printf("[TURN] record failed: %v", rerr)
		}
	}

	// Legacy mode re-examines assumptions over the updated history in
	// the background; the turn is already complete at this point.
	if s.mode == ModeLegacy {
		s.spawnAssumptions(turnID)
	}

	return res, nil
}

// #endregion submit

// #region structured

func (s *Session) runStructured(ctx context.Context, turnID, text string) (*TurnResult, error) {
	res := &TurnResult{TurnID: turnID}

	s.setState(StateAwaitingPerception)
	sys, usr := prompt.BuildStructured(s.history, text, s.memory, turnID)
	raw, err := s.complete(ctx, sys, usr, PerceptionSampling)
	if err != nil {
		log.Printf("[TURN] %s perception failed, keeping previous memory: %v", turnID, err)
		res.PerceptionErr = err
	} else {
		model, _ := parse.Parse(raw)
		if len(model) == 0 {
			log.Printf("[TURN] %s perception returned no structured signal", turnID)
		}
		merged := mental.MergeTurn(s.memory, model, turnID, text)
		s.memory = mental.Memory(merged)
		s.lastState = merged
		res.TurnState = merged
	}

	s.setState(StateAwaitingReply)
	preamble := prompt.BuildPreamble(s.replyBasis())
	reply, err := s.reply(ctx, preamble, text)
	if err != nil {
		return nil, err
	}
	res.Reply = reply
	return res, nil
}

// replyBasis picks the TurnState the preamble is derived from: the
// fresh merge when perception succeeded, the previous turn's state when
// it failed, defaults on the very first turn.
func (s *Session) replyBasis() map[string]interface{} {
	if s.lastState != nil {
		return s.lastState
	}
	return mental.Defaults()
}

// #endregion structured

// #region legacy

func (s *Session) runLegacy(ctx context.Context, turnID, text string) (*TurnResult, error) {
	res := &TurnResult{TurnID: turnID}

	s.setState(StateAwaitingPerception)
	sys, usr := prompt.BuildLegacy(text)
	raw, err := s.complete(ctx, sys, usr, PerceptionSampling)
	if err != nil {
		log.Printf("[TURN] %s legacy perception failed: %v", turnID, err)
		res.PerceptionErr = err
	} else {
		model, _ := parse.Parse(raw)
		s.legacy = mental.MergeLegacy(model)
		res.TurnState = s.legacy
	}

	s.setState(StateAwaitingReply)
	basis := s.legacy
	if basis == nil {
		basis = mental.LegacyDefaults()
	}
	reply, err := s.reply(ctx, prompt.BuildLegacyPreamble(basis), text)
	if err != nil {
		return nil, err
	}
	res.Reply = reply
	return res, nil
}

// #endregion legacy

// #region inline

func (s *Session) runInline(ctx context.Context, turnID, text string) (*TurnResult, error) {
	res := &TurnResult{TurnID: turnID}

	// One combined call: perception and reply are atomic here.
	s.setState(StateAwaitingReply)
	sys, usr := prompt.BuildInline(s.mode.Variant(), s.history, text, turnID)
	raw, err := s.complete(ctx, sys, usr, InlineSampling)
	if err != nil {
		return nil, err
	}

	model, reply := parse.Parse(raw)
	if reply == "" && len(model) == 0 {
		// The model ignored the format entirely; the raw text is the
		// only reply we have.
		reply = raw
	}
	if len(model) > 0 {
		res.TurnState = model
	}
	res.Reply = reply
	return res, nil
}

// #endregion inline

// #region assumptions

// spawnAssumptions fires the background inference over a snapshot of
// the updated history. Failures are logged and dropped; results land on
// the buffered channel whenever they resolve.
func (s *Session) spawnAssumptions(turnID string) {
	history := make([]llm.Message, len(s.history))
	copy(history, s.history)

	go func() {
		sys, usr := prompt.BuildAssumptions(history)
		raw, err := s.complete(context.Background(), sys, usr, PerceptionSampling)
		if err != nil {
			log.Printf("[TURN] %s assumptions failed: %v", turnID, err)
			return
		}
		model, _ := parse.Parse(raw)
		set := parseAssumptions(model, turnID)
		if len(set.Items) == 0 {
			log.Printf("[TURN] %s assumptions returned nothing usable", turnID)
			return
		}
		select {
		case s.assumptions <- set:
		default:
			log.Printf("[TURN] %s assumptions dropped, buffer full", turnID)
		}
	}()
}

func parseAssumptions(model map[string]interface{}, turnID string) AssumptionSet {
	set := AssumptionSet{TurnID: turnID, InferredAt: time.Now()}
	for _, raw := range mental.GetSlice(model, "assumptions") {
		m, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		text := mental.GetString(m, "assumption")
		if text == "" {
			continue
		}
		p, _ := mental.GetFloat(m, "probability")
		set.Items = append(set.Items, Assumption{
			Assumption:  text,
			Probability: p,
			Evidence:    mental.GetString(m, "evidence"),
		})
	}
	return set
}

// #endregion assumptions

// #region calls

func (s *Session) complete(ctx context.Context, system, user string, p Sampling) (string, error) {
	req := llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
		TopP:        p.TopP,
	}
	return s.retry.Do(ctx, func(ctx context.Context) (string, error) {
		return s.completer.Complete(ctx, req)
	})
}

// reply issues the final reply call: preamble as system prompt, full
// history, then the current message.
func (s *Session) reply(ctx context.Context, preamble, text string) (string, error) {
	msgs := make([]llm.Message, 0, len(s.history)+2)
	msgs = append(msgs, llm.Message{Role: "system", Content: preamble})
	msgs = append(msgs, s.history...)
	msgs = append(msgs, llm.Message{Role: "user", Content: text})

	req := llm.CompletionRequest{
		Messages:    msgs,
		MaxTokens:   ReplySampling.MaxTokens,
		Temperature: ReplySampling.Temperature,
		TopP:        ReplySampling.TopP,
	}
	return s.retry.Do(ctx, func(ctx context.Context) (string, error) {
		return s.completer.Complete(ctx, req)
	})
}

func (s *Session) setState(next SessionState) {
	if s.state == next {
		return
	}
	s.state = next
}

// #endregion calls
