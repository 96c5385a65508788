package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/danielpatrickdp/mental-model-chat/internal/assume"
	"github.com/danielpatrickdp/mental-model-chat/internal/llm"
	"github.com/danielpatrickdp/mental-model-chat/internal/logging"
	"github.com/danielpatrickdp/mental-model-chat/internal/orchestrator"
	"github.com/danielpatrickdp/mental-model-chat/internal/state"
)

// #region main
func main() {
	dbPath := envOr("CHAT_DB", "mental_model.db")
	modeName := envOr("CHAT_MODE", string(orchestrator.ModeStructured))

	mode, err := orchestrator.ParseMode(modeName)
	if err != nil {
		log.Fatalf("CHAT_MODE: %v", err)
	}

	cfg := llm.DefaultConfig()
	client, err := llm.NewClient(cfg)
	if err != nil {
		log.Fatalf("endpoint config: %v", err)
	}

	store, err := state.NewStore(dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	turnLog := logging.NewTurnLog(store.DB())
	assumptions := assume.NewStore(store.DB())

	session := orchestrator.NewSession(client, orchestrator.Options{
		Mode:     mode,
		Recorder: turnLog,
	})
	defer session.Close()

	fmt.Println("Mental-model chat ready.")
	fmt.Printf("  DB: %s | Mode: %s | Model: %s\n", dbPath, mode, cfg.Model)
	fmt.Println("Type a message ('/mode <name>' to switch, 'quit' to exit):")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		drainAssumptions(session, assumptions)

		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "quit" || text == "exit" {
			break
		}
		if handled := handleCommand(session, text); handled {
			continue
		}

		res, err := session.Submit(context.Background(), text)
		if err != nil {
			fmt.Printf("\n[error] %v\n\n", err)
			continue
		}

		fmt.Printf("\n%s\n\n", res.Reply)
		status := "ok"
		if res.PerceptionErr != nil {
			status = "skipped"
		}
		fmt.Printf("[%s] perception=%s\n", res.TurnID, status)
	}
}

// #endregion main

// #region commands

// handleCommand processes slash commands; returns false for a normal
// message.
func handleCommand(session *orchestrator.Session, text string) bool {
	switch {
	case strings.HasPrefix(text, "/mode "):
		name := strings.TrimSpace(strings.TrimPrefix(text, "/mode "))
		mode, err := orchestrator.ParseMode(name)
		if err != nil {
			fmt.Printf("[error] %v\n", err)
			return true
		}
		if err := session.SetMode(mode); err != nil {
			fmt.Printf("[error] %v\n", err)
			return true
		}
		fmt.Printf("mode: %s\n", mode)
		return true

	case text == "/memory":
		data, _ := json.MarshalIndent(session.Memory(), "", "  ")
		fmt.Println(string(data))
		return true
	}
	return false
}

// drainAssumptions persists and prints any background inference
// results that landed since the last prompt.
func drainAssumptions(session *orchestrator.Session, store *assume.Store) {
	for {
		select {
		case set := <-session.Assumptions():
			if err := store.Append(session.ID(), set); err != nil {
				log.Printf("assumptions store: %v", err)
			}
			fmt.Printf("\n[assumptions %s]\n", set.TurnID)
			for _, a := range set.Items {
				fmt.Printf("  %.2f  %s\n", a.Probability, a.Assumption)
			}
		default:
			return
		}
	}
}

// #endregion commands

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
