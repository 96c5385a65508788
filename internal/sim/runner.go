package sim

// #region imports
import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/danielpatrickdp/mental-model-chat/internal/llm"
	"github.com/danielpatrickdp/mental-model-chat/internal/mental"
	"github.com/danielpatrickdp/mental-model-chat/internal/orchestrator"
	"github.com/danielpatrickdp/mental-model-chat/internal/state"
)

// #endregion imports

// #region runner-types

// RunnerConfig sets up one simulation run.
type RunnerConfig struct {
	Mode   orchestrator.Mode
	Turns  int
	OutDir string

	// RunID resumes an existing run when set; empty allocates a new
	// id from the per-mode counter.
	RunID string
}

// Runner drives the orchestrator across a catalogue. Scenarios run
// strictly sequentially; the transport's pacing delay is the shared
// rate-limit budget.
type Runner struct {
	store     *state.Store
	completer llm.Completer
	retry     *llm.Retryer
	cfg       RunnerConfig
}

// RunSummary aggregates one run's outcome.
type RunSummary struct {
	RunID     string
	Scenarios int
	Skipped   int
	Files     []string
}

// NewRunner wires a runner. A nil retryer falls back to the defaults.
func NewRunner(store *state.Store, completer llm.Completer, retry *llm.Retryer, cfg RunnerConfig) *Runner {
	if retry == nil {
		retry = llm.NewRetryer()
	}
	if cfg.Turns <= 0 {
		cfg.Turns = 5
	}
	if cfg.Mode == "" {
		cfg.Mode = orchestrator.ModeStructured
	}
	return &Runner{store: store, completer: completer, retry: retry, cfg: cfg}
}

// #endregion runner-types

// #region run

// Run executes every scenario in the catalogue, checkpointing after
// each one. Memory persists across turns within a scenario and resets
// between scenarios. A resumed run skips scenarios its checkpoint
// already covers.
func (r *Runner) Run(ctx context.Context, cat *Catalogue) (*RunSummary, error) {
	runID := r.cfg.RunID
	start := 0
	if runID == "" {
		n, err := r.store.NextRun(string(r.cfg.Mode))
		if err != nil {
			return nil, fmt.Errorf("allocate run id: %w", err)
		}
		runID = fmt.Sprintf("%s-run-%03d", r.cfg.Mode, n)
	} else {
		cp, ok, err := r.store.LoadCheckpoint(runID)
		if err != nil {
			return nil, err
		}
		if ok {
			start = cp.ScenarioIndex
			log.Printf("[SIM] resuming %s at scenario %d/%d", runID, start, cp.Total)
		}
	}

	summary := &RunSummary{RunID: runID, Skipped: start}
	total := len(cat.Scenarios)

	for i := start; i < total; i++ {
		sc := cat.Scenarios[i]
		log.Printf("[SIM] %s scenario %d/%d: %s/%s", runID, i+1, total, sc.Category, sc.PromptID)

		path, err := r.runScenario(ctx, runID, sc)
		if err != nil {
			return summary, fmt.Errorf("scenario %s/%s: %w", sc.Category, sc.PromptID, err)
		}
		summary.Scenarios++
		summary.Files = append(summary.Files, path)

		if err := r.store.SaveCheckpoint(runID, i+1, total); err != nil {
			return summary, err
		}
	}

	if err := r.store.ClearCheckpoint(runID); err != nil {
		return summary, err
	}
	log.Printf("[SIM] %s complete: %d scenarios", runID, summary.Scenarios)
	return summary, nil
}

// #endregion run

// #region run-scenario

// runScenario plays one scripted conversation with fresh memory and
// writes its transcript.
func (r *Runner) runScenario(ctx context.Context, runID string, sc Scenario) (string, error) {
	session := orchestrator.NewSession(r.completer, orchestrator.Options{
		Mode:    r.cfg.Mode,
		Retryer: r.retry,
	})
	sk := &seeker{completer: r.completer, retry: r.retry, persona: sc.Persona}

	turns := r.cfg.Turns
	if sc.Turns > 0 {
		turns = sc.Turns
	}

	export := ScenarioExport{
		Metadata: ExportMetadata{
			RunID:       runID,
			Category:    sc.Category,
			PromptID:    sc.PromptID,
			Mode:        string(r.cfg.Mode),
			Turns:       turns,
			GeneratedAt: time.Now().UTC(),
		},
	}

	for turn := 0; turn < turns; turn++ {
		var userMsg string
		if turn == 0 && sc.Opening != "" {
			userMsg = sc.Opening
		} else {
			msg, err := sk.Next(ctx, session.History())
			if err != nil {
				return "", err
			}
			userMsg = msg
		}

		res, err := session.Submit(ctx, userMsg)
		if err != nil {
			return "", fmt.Errorf("turn %d: %w", turn, err)
		}
		if res.PerceptionErr != nil {
			log.Printf("[SIM] %s/%s turn %d perception skipped: %v",
				sc.Category, sc.PromptID, turn, res.PerceptionErr)
		}

		export.Turns = append(export.Turns, TurnExport{
			TurnIndex:        turn,
			UserMessage:      userMsg,
			AssistantMessage: res.Reply,
			MentalModel:      exportModel(res.TurnState),
		})
	}

	// The situation log is hoisted out of the per-turn records and
	// taken from the final memory only.
	if slog := mental.GetMap(session.Memory(), "situation_log"); len(slog) > 0 {
		export.SituationLog = slog
	}

	return WriteScenario(r.cfg.OutDir, export)
}

// #endregion run-scenario
