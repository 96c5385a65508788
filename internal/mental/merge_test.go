package mental

import (
	"fmt"
	"testing"
)

func TestDeepMerge_ObjectsRecurse(t *testing.T) {
	dst := map[string]interface{}{
		"a": map[string]interface{}{"x": 1.0, "y": 2.0},
	}
	src := map[string]interface{}{
		"a": map[string]interface{}{"y": 9.0},
	}
	out := DeepMerge(dst, src)
	a := out["a"].(map[string]interface{})
	if a["x"] != 1.0 || a["y"] != 9.0 {
		t.Fatalf("recursive merge failed: %v", a)
	}
}

func TestDeepMerge_ArraysReplaceWholesale(t *testing.T) {
	dst := map[string]interface{}{"items": []interface{}{"a", "b", "c"}}
	src := map[string]interface{}{"items": []interface{}{"z"}}
	out := DeepMerge(dst, src)
	items := out["items"].([]interface{})
	if len(items) != 1 || items[0] != "z" {
		t.Fatalf("expected wholesale replace, got %v", items)
	}
}

func TestDeepMerge_NilDoesNotOverwrite(t *testing.T) {
	dst := map[string]interface{}{"keep": "original"}
	src := map[string]interface{}{"keep": nil}
	out := DeepMerge(dst, src)
	if out["keep"] != "original" {
		t.Fatal("nil overwrote a defined value")
	}
}

func TestDeepMerge_DoesNotMutateInputs(t *testing.T) {
	dst := map[string]interface{}{"a": map[string]interface{}{"x": 1.0}}
	src := map[string]interface{}{"a": map[string]interface{}{"y": 2.0}}
	DeepMerge(dst, src)
	if _, ok := dst["a"].(map[string]interface{})["y"]; ok {
		t.Fatal("dst was mutated")
	}
}

func TestMergeTurn_BehaviorIsAuthoritative(t *testing.T) {
	output := map[string]interface{}{
		"behavior": map[string]interface{}{
			"turn_id": "t999",
			"text":    "a translated or corrupted echo",
		},
	}
	ts := MergeTurn(nil, output, "t000", "I think I did something wrong at work")
	behavior := GetMap(ts, "behavior")
	if behavior["turn_id"] != "t000" {
		t.Errorf("turn_id not forced: %v", behavior["turn_id"])
	}
	if behavior["text"] != "I think I did something wrong at work" {
		t.Errorf("text not forced: %v", behavior["text"])
	}
}

func TestMergeTurn_TurnIndexAccumulatesSorted(t *testing.T) {
	var mem map[string]interface{}
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("t%03d", i)
		output := map[string]interface{}{
			"memory": map[string]interface{}{
				"turn_index": map[string]interface{}{
					id: map[string]interface{}{"note": id},
				},
			},
		}
		ts := MergeTurn(mem, output, id, "msg "+id)
		mem = Memory(ts)
	}

	entries := TurnIndexEntries(mem)
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}
	for i, e := range entries {
		want := fmt.Sprintf("t%03d", i)
		if e.TurnID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, e.TurnID)
		}
	}
}

func TestMergeTurn_ReinferredTurnOverwrites(t *testing.T) {
	first := MergeTurn(nil, map[string]interface{}{
		"memory": map[string]interface{}{
			"turn_index": map[string]interface{}{
				"t000": map[string]interface{}{"note": "first"},
			},
		},
	}, "t000", "hi")

	second := MergeTurn(Memory(first), map[string]interface{}{
		"memory": map[string]interface{}{
			"turn_index": map[string]interface{}{
				"t000": map[string]interface{}{"note": "revised"},
			},
		},
	}, "t000", "hi")

	entries := TurnIndexEntries(Memory(second))
	if len(entries) != 1 {
		t.Fatalf("expected unique key, got %d entries", len(entries))
	}
	snap := entries[0].Snapshot.(map[string]interface{})
	if snap["note"] != "revised" {
		t.Errorf("re-inference did not overwrite: %v", snap)
	}
}

func TestMergeTurn_CurrentTurnAlwaysIndexed(t *testing.T) {
	ts := MergeTurn(nil, map[string]interface{}{}, "t000", "hello")
	entries := TurnIndexEntries(Memory(ts))
	if len(entries) != 1 || entries[0].TurnID != "t000" {
		t.Fatalf("expected t000 entry, got %v", entries)
	}
}

func TestMergeTurn_OmittedFactsKeepsPrevious(t *testing.T) {
	prev := map[string]interface{}{
		"situation_log": map[string]interface{}{
			"summary": "old summary",
			"facts": []interface{}{
				map[string]interface{}{"fact": "works at a lab", "turn_id": "t000"},
			},
		},
		"turn_index": map[string]interface{}{},
	}

	ts := MergeTurn(prev, map[string]interface{}{
		"memory": map[string]interface{}{
			"situation_log": map[string]interface{}{"summary": "new summary"},
		},
	}, "t001", "more")

	slog := GetMap(Memory(ts), "situation_log")
	if slog["summary"] != "new summary" {
		t.Errorf("summary should prefer fresh: %v", slog["summary"])
	}
	facts := slog["facts"].([]interface{})
	if len(facts) != 1 {
		t.Fatalf("omitted facts must keep previous, got %v", facts)
	}
	if facts[0].(map[string]interface{})["fact"] != "works at a lab" {
		t.Errorf("previous fact lost: %v", facts[0])
	}
}

func TestMergeTurn_ExplicitEmptyFactsReplaces(t *testing.T) {
	prev := map[string]interface{}{
		"situation_log": map[string]interface{}{
			"summary": "old",
			"facts": []interface{}{
				map[string]interface{}{"fact": "stale", "turn_id": "t000"},
			},
		},
		"turn_index": map[string]interface{}{},
	}

	ts := MergeTurn(prev, map[string]interface{}{
		"memory": map[string]interface{}{
			"situation_log": map[string]interface{}{"facts": []interface{}{}},
		},
	}, "t001", "x")

	facts := GetMap(Memory(ts), "situation_log")["facts"].([]interface{})
	if len(facts) != 0 {
		t.Fatalf("explicit empty array must replace, got %v", facts)
	}
}

func TestMergeTurn_DefaultsFilledForMissingSections(t *testing.T) {
	ts := MergeTurn(nil, map[string]interface{}{}, "t000", "hi")
	ms := GetMap(ts, "mental_state")
	if w, ok := GetFloat(ms, "horizontal_warmth"); !ok || w != 0.5 {
		t.Errorf("expected default warmth 0.5, got %v", ms["horizontal_warmth"])
	}
	if GetSlice(GetMap(ts, "long_term"), "items") == nil {
		t.Error("expected empty long_term.items array")
	}
}

func TestMergeTurn_NonObjectSectionsDegrade(t *testing.T) {
	ts := MergeTurn(nil, map[string]interface{}{
		"behavior":     "hello",
		"mental_state": 3.0,
		"memory":       "nope",
	}, "t000", "hi")

	b := GetMap(ts, "behavior")
	if b["turn_id"] != "t000" || b["text"] != "hi" {
		t.Errorf("behavior not restored to an object: %v", ts["behavior"])
	}
	if GetSlice(b, "observations") == nil {
		t.Error("expected default observations array")
	}
	ms := GetMap(ts, "mental_state")
	if w, ok := GetFloat(ms, "horizontal_warmth"); !ok || w != 0.5 {
		t.Errorf("flattened mental_state not restored: %v", ts["mental_state"])
	}
	mem := Memory(ts)
	if mem == nil {
		t.Fatal("memory not rebuilt as an object")
	}
	if entries := TurnIndexEntries(mem); len(entries) != 1 || entries[0].TurnID != "t000" {
		t.Errorf("turn_index = %v", entries)
	}
}

func TestMergeLegacy_DefaultsAndFiltering(t *testing.T) {
	out := MergeLegacy(map[string]interface{}{
		"user_certainty": 0.9,
		"assistant_role": "Expert",
		"hallucinated":   "dropped",
		"directness":     nil,
	})
	if out["user_certainty"] != 0.9 {
		t.Errorf("known key not overlaid: %v", out["user_certainty"])
	}
	if out["assistant_role"] != "Expert" {
		t.Errorf("role not overlaid: %v", out["assistant_role"])
	}
	if _, ok := out["hallucinated"]; ok {
		t.Error("unknown key must be dropped")
	}
	if out["directness"] != 0.5 {
		t.Errorf("nil must not overwrite default: %v", out["directness"])
	}
	if out["model_seen_as_expert"] != 0.8 {
		t.Errorf("untouched default wrong: %v", out["model_seen_as_expert"])
	}
}

func TestWithoutSituationLog(t *testing.T) {
	ts := MergeTurn(nil, map[string]interface{}{}, "t000", "hi")
	stripped := WithoutSituationLog(ts)
	if _, ok := Memory(stripped)["situation_log"]; ok {
		t.Error("situation_log not stripped")
	}
	// Original untouched.
	if _, ok := Memory(ts)["situation_log"]; !ok {
		t.Error("original was mutated")
	}
}
