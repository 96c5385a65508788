package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/danielpatrickdp/mental-model-chat/internal/llm"
	"github.com/danielpatrickdp/mental-model-chat/internal/orchestrator"
	"github.com/danielpatrickdp/mental-model-chat/internal/sim"
	"github.com/danielpatrickdp/mental-model-chat/internal/state"
)

// #region main

func main() {
	cataloguePath := flag.String("scenarios", "", "path to scenario catalogue YAML (required)")
	modeName := flag.String("mode", string(orchestrator.ModeStructured), "inference mode")
	turns := flag.Int("turns", 5, "turns per scenario")
	outDir := flag.String("out", "sim-out", "export directory")
	dbPath := flag.String("db", "mental_model.db", "path to the state database")
	resumeID := flag.String("resume", "", "run id to resume from its checkpoint")
	flag.Parse()

	if *cataloguePath == "" {
		fmt.Fprintln(os.Stderr, "usage: simulate --scenarios scenarios.yaml [--mode structured] [--turns 5] [--out sim-out] [--resume <run-id>]")
		os.Exit(2)
	}

	mode, err := orchestrator.ParseMode(*modeName)
	if err != nil {
		log.Fatalf("--mode: %v", err)
	}

	cat, err := sim.LoadCatalogue(*cataloguePath)
	if err != nil {
		log.Fatalf("load scenarios: %v", err)
	}

	cfg := llm.DefaultConfig()
	client, err := llm.NewClient(cfg)
	if err != nil {
		log.Fatalf("endpoint config: %v", err)
	}

	store, err := state.NewStore(*dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	runner := sim.NewRunner(store, client, nil, sim.RunnerConfig{
		Mode:   mode,
		Turns:  *turns,
		OutDir: *outDir,
		RunID:  *resumeID,
	})

	summary, err := runner.Run(context.Background(), cat)
	if err != nil {
		// The checkpoint covers everything already exported; rerun
		// with --resume to continue.
		if summary != nil && summary.RunID != "" {
			log.Fatalf("run %s aborted after %d scenarios: %v", summary.RunID, summary.Scenarios, err)
		}
		log.Fatalf("run failed: %v", err)
	}

	fmt.Printf("run %s complete: %d scenarios (%d skipped via checkpoint)\n",
		summary.RunID, summary.Scenarios, summary.Skipped)
	for _, f := range summary.Files {
		fmt.Printf("  %s\n", f)
	}
}

// #endregion main
