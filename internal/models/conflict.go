// ABOUTME: Conflict entry model for value mismatches found during import.
// ABOUTME: Immutable after creation except for the resolution tag.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Resolution tags how a conflict was settled. The engine only ever writes
// ResolutionKeptExisting; the other tags are set by a later review step.
type Resolution string

const (
	ResolutionKeptExisting Resolution = "kept_existing"
	ResolutionOverwritten  Resolution = "overwritten"
	ResolutionManual       Resolution = "manual"
)

// IsValidResolution checks a resolution tag from external input.
func IsValidResolution(s string) bool {
	switch Resolution(s) {
	case ResolutionKeptExisting, ResolutionOverwritten, ResolutionManual:
		return true
	}
	return false
}

// ConflictEntry records a value mismatch between an existing row and an
// incoming record sharing the same natural key. Both full field snapshots
// are retained; ConflictFields names the subset that differed.
type ConflictEntry struct {
	ID             int64
	RunID          uuid.UUID
	Table          Table
	RecordKey      string
	Existing       map[string]Value
	Incoming       map[string]Value
	ConflictFields []string
	Resolution     Resolution
	ResolvedAt     *time.Time
	CreatedAt      time.Time
}

// NewConflictEntry builds an unresolved conflict with the default
// keep-existing resolution.
func NewConflictEntry(runID uuid.UUID, table Table, key string, existing, incoming map[string]Value, fields []string) *ConflictEntry {
	return &ConflictEntry{
		RunID:          runID,
		Table:          table,
		RecordKey:      key,
		Existing:       existing,
		Incoming:       incoming,
		ConflictFields: fields,
		Resolution:     ResolutionKeptExisting,
		CreatedAt:      time.Now(),
	}
}
