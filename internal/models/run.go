// ABOUTME: Import run model with status and outcome counters.
// ABOUTME: One run covers one file or API batch against the store.
package models

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus is the lifecycle state of an import run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Outcome is the per-record resolution decided by the engine.
type Outcome string

const (
	OutcomeInserted   Outcome = "inserted"
	OutcomeSkipped    Outcome = "skipped"
	OutcomeConflicted Outcome = "conflicted"
	OutcomeEnriched   Outcome = "enriched"
)

// ImportRun is one invocation of the engine against one source file or
// API batch. Counters are monotonically non-decreasing and satisfy
// Processed == Inserted + Skipped + Conflicted + Enriched.
type ImportRun struct {
	ID         uuid.UUID
	Source     string
	Origin     string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     RunStatus
	Error      string

	Processed  int
	Inserted   int
	Skipped    int
	Conflicted int
	Enriched   int
}

// NewImportRun creates a running import run with zero counters.
func NewImportRun(source, origin string) *ImportRun {
	return &ImportRun{
		ID:        uuid.New(),
		Source:    source,
		Origin:    origin,
		StartedAt: time.Now(),
		Status:    RunRunning,
	}
}

// Count applies one outcome to the in-memory counters. The store keeps its
// own copy via SQL increments in the same transaction as the mutation.
func (r *ImportRun) Count(o Outcome) {
	r.Processed++
	switch o {
	case OutcomeInserted:
		r.Inserted++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeConflicted:
		r.Conflicted++
	case OutcomeEnriched:
		r.Enriched++
	}
}

// Finish sets the terminal status. Counters are left as accumulated so a
// failed run still reports the work completed before the error.
func (r *ImportRun) Finish(status RunStatus, errMsg string) {
	now := time.Now()
	r.FinishedAt = &now
	r.Status = status
	r.Error = errMsg
}
