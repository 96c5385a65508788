package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/mental-model-chat/internal/assume"
	"github.com/danielpatrickdp/mental-model-chat/internal/logging"
	"github.com/danielpatrickdp/mental-model-chat/internal/orchestrator"
	"github.com/danielpatrickdp/mental-model-chat/internal/state"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to mental_model.db")
	last := flag.Int("last", 20, "show N most recent turns")
	turn := flag.String("turn", "", "show one turn's assumptions")
	runs := flag.Bool("runs", false, "show run counters and checkpoints")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/mental_model.db [--last N] [--turn id] [--runs] [--json]")
		os.Exit(2)
	}

	store, err := state.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case *runs:
		err = runRunsMode(store, *jsonOut)
	case *turn != "":
		err = runTurnMode(store, *turn, *jsonOut)
	default:
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	TurnID       string `json:"turn_id"`
	Mode         string `json:"mode"`
	UserText     string `json:"user_text"`
	Reply        string `json:"reply"`
	PerceptionOK bool   `json:"perception_ok"`
	CreatedAt    string `json:"created_at"`
}

func runListMode(store *state.Store, last int, jsonOut bool) error {
	turnLog := logging.NewTurnLog(store.DB())
	recs, err := turnLog.Recent(last)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(os.Stderr, "no turns found")
		return nil
	}

	// Store returns DESC, reverse for chronological display.
	rows := make([]listRow, len(recs))
	for i, rec := range recs {
		rows[len(recs)-1-i] = listRow{
			TurnID:       rec.TurnID,
			Mode:         string(rec.Mode),
			UserText:     truncate(rec.UserText, 40),
			Reply:        truncate(rec.Reply, 40),
			PerceptionOK: rec.PerceptionOK,
			CreatedAt:    rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-6s  %-28s  %-10s  %-40s  %s\n", "Turn", "Mode", "Perception", "User", "Time")
	for _, r := range rows {
		perception := "ok"
		if !r.PerceptionOK {
			perception = "skipped"
		}
		fmt.Printf("%-6s  %-28s  %-10s  %-40s  %s\n", r.TurnID, r.Mode, perception, r.UserText, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region turn-mode

type turnOutput struct {
	TurnID      string                    `json:"turn_id"`
	Assumptions []orchestrator.Assumption `json:"assumptions"`
}

func runTurnMode(store *state.Store, turnID string, jsonOut bool) error {
	items, err := assume.NewStore(store.DB()).ForTurn(turnID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintf(os.Stderr, "no assumptions recorded for %s\n", turnID)
		return nil
	}

	if jsonOut {
		return printJSON(turnOutput{TurnID: turnID, Assumptions: items})
	}

	fmt.Printf("Assumptions for %s:\n", turnID)
	for _, a := range items {
		fmt.Printf("  %.2f  %s\n", a.Probability, a.Assumption)
		if a.Evidence != "" {
			fmt.Printf("        evidence: %s\n", a.Evidence)
		}
	}
	return nil
}

// #endregion turn-mode

// #region runs-mode

type runsOutput struct {
	Counters    map[string]int     `json:"counters"`
	Checkpoints []state.Checkpoint `json:"checkpoints"`
}

func runRunsMode(store *state.Store, jsonOut bool) error {
	counters, err := store.Counters()
	if err != nil {
		return err
	}
	checkpoints, err := store.ListCheckpoints()
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(runsOutput{Counters: counters, Checkpoints: checkpoints})
	}

	fmt.Println("Run counters:")
	if len(counters) == 0 {
		fmt.Println("  (none)")
	}
	for key, n := range counters {
		fmt.Printf("  %-32s %d\n", key, n)
	}

	fmt.Println("\nIn-progress runs:")
	if len(checkpoints) == 0 {
		fmt.Println("  (none)")
	}
	for _, cp := range checkpoints {
		fmt.Printf("  %-32s %d/%d scenarios  %s\n",
			cp.RunID, cp.ScenarioIndex, cp.Total, cp.UpdatedAt.Format("2006-01-02T15:04:05Z"))
	}
	return nil
}

// #endregion runs-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

// #endregion output
