package assume

import (
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/mental-model-chat/internal/orchestrator"
	"github.com/danielpatrickdp/mental-model-chat/internal/state"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := state.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewStore(st.DB())
}

func TestAppendAndForTurn(t *testing.T) {
	s := newTestStore(t)

	set := orchestrator.AssumptionSet{
		TurnID: "t002",
		Items: []orchestrator.Assumption{
			{Assumption: "user is deciding under time pressure", Probability: 0.7, Evidence: "mentions a deadline"},
			{Assumption: "user already leans toward declining", Probability: 0.55},
		},
	}
	if err := s.Append("sess-a", set); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := s.ForTurn("t002")
	if err != nil {
		t.Fatalf("ForTurn: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d items, want 2", len(got))
	}
	if got[0].Assumption != set.Items[0].Assumption || got[0].Probability != 0.7 {
		t.Errorf("item 0 = %+v", got[0])
	}
	if got[1].Evidence != "" {
		t.Errorf("empty evidence should round-trip empty, got %q", got[1].Evidence)
	}

	if other, _ := s.ForTurn("t999"); len(other) != 0 {
		t.Errorf("unexpected rows for unknown turn: %v", other)
	}
}
