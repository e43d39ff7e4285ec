// ABOUTME: Gateway interface between the reconciliation engine and the store.
// ABOUTME: Defines point lookups and atomic per-record mutations.
package storage

import (
	"github.com/harperreed/healthimport/internal/models"
)

// ExistingRow is a stored row located by natural key or native id.
type ExistingRow struct {
	ID       int64
	NativeID int64 // activities only; 0 when unlinked
	Linked   bool  // activities only
	Fields   map[string]models.Value
}

// Gateway is the persistence boundary the engine depends on. Each mutating
// method applies the row mutation and the owning run's counter update as a
// single transaction, so a crash can never separate the two.
type Gateway interface {
	// Run ledger
	CreateRun(run *models.ImportRun) error
	FinishRun(run *models.ImportRun) error

	// Point lookups. Both return (nil, nil) when no row matches.
	FindByKey(rec *models.Record) (*ExistingRow, error)
	FindActivityByNativeID(nativeID int64) (*ExistingRow, error)

	// Per-record outcomes
	InsertRecord(run *models.ImportRun, rec *models.Record) (int64, error)
	SkipRecord(run *models.ImportRun) error
	LogConflict(run *models.ImportRun, entry *models.ConflictEntry) error
	AttachEnrichment(run *models.ImportRun, rowID int64, rec *models.Record, fill []string) error

	Close() error
}

var _ Gateway = (*DB)(nil)
