package state

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNextRunStartsAtOneAndIncrements(t *testing.T) {
	s := newTestStore(t)

	for want := 1; want <= 3; want++ {
		got, err := s.NextRun("structured")
		if err != nil {
			t.Fatalf("NextRun: %v", err)
		}
		if got != want {
			t.Errorf("NextRun = %d, want %d", got, want)
		}
	}
}

func TestNextRunCountersAreIndependentPerMode(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.NextRun("structured"); err != nil {
		t.Fatalf("NextRun: %v", err)
	}
	if _, err := s.NextRun("structured"); err != nil {
		t.Fatalf("NextRun: %v", err)
	}
	got, err := s.NextRun("legacy")
	if err != nil {
		t.Fatalf("NextRun: %v", err)
	}
	if got != 1 {
		t.Errorf("legacy counter = %d, want 1", got)
	}
}

func TestCountersAndCheckpointListing(t *testing.T) {
	s := newTestStore(t)

	s.NextRun("structured")
	s.NextRun("structured")
	s.NextRun("legacy")
	if err := s.SaveCheckpoint("structured-run-002", 4, 12); err != nil {
		t.Fatalf("SaveCheckpoint: %v", err)
	}

	counters, err := s.Counters()
	if err != nil {
		t.Fatalf("Counters: %v", err)
	}
	if counters["structured"] != 2 || counters["legacy"] != 1 {
		t.Errorf("counters = %v", counters)
	}

	cps, err := s.ListCheckpoints()
	if err != nil {
		t.Fatalf("ListCheckpoints: %v", err)
	}
	if len(cps) != 1 || cps[0].RunID != "structured-run-002" || cps[0].ScenarioIndex != 4 {
		t.Errorf("checkpoints = %+v", cps)
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if _, ok, err := s.LoadCheckpoint("run-1"); err != nil || ok {
		t.Fatalf("LoadCheckpoint on empty db = ok=%v err=%v", ok, err)
	}

	if err := s.SaveCheckpoint("run-1", 3, 10); err != nil {
		t.Fatalf("SaveCheckpoint: %v", err)
	}
	cp, ok, err := s.LoadCheckpoint("run-1")
	if err != nil || !ok {
		t.Fatalf("LoadCheckpoint: ok=%v err=%v", ok, err)
	}
	if cp.ScenarioIndex != 3 || cp.Total != 10 {
		t.Errorf("checkpoint = %+v", cp)
	}

	// Overwrite with progress.
	if err := s.SaveCheckpoint("run-1", 7, 10); err != nil {
		t.Fatalf("SaveCheckpoint: %v", err)
	}
	cp, _, _ = s.LoadCheckpoint("run-1")
	if cp.ScenarioIndex != 7 {
		t.Errorf("scenario_index after update = %d, want 7", cp.ScenarioIndex)
	}

	if err := s.ClearCheckpoint("run-1"); err != nil {
		t.Fatalf("ClearCheckpoint: %v", err)
	}
	if _, ok, _ := s.LoadCheckpoint("run-1"); ok {
		t.Error("checkpoint should be gone after clear")
	}
}
