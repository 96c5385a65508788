package state

import "time"

// #region checkpoint

// Checkpoint marks how far a simulation run has progressed, so an
// interrupted run can resume at the next scenario.
type Checkpoint struct {
	RunID         string
	ScenarioIndex int
	Total         int
	UpdatedAt     time.Time
}

// #endregion checkpoint
