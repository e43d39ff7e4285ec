// ABOUTME: Import reconciliation engine: decides per-record outcomes.
// ABOUTME: Orchestrates resolver, conflict evaluator, enrichment merger, and ledger.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/harperreed/healthimport/internal/models"
	"github.com/harperreed/healthimport/internal/storage"
)

// RecordSource is the boundary with a record normalizer: a lazy, finite,
// non-restartable sequence of normalized records. Next returns io.EOF
// when the sequence is exhausted.
type RecordSource interface {
	Source() string
	Next() (*models.Record, error)
}

// Engine reconciles incoming normalized records against the store.
// Single-threaded: one run at a time, records strictly in source order.
type Engine struct {
	store storage.Gateway
	log   *log.Logger
}

// New creates an engine against the given store.
func New(store storage.Gateway, logger *log.Logger) *Engine {
	return &Engine{store: store, log: logger}
}

// Import runs one full reconciliation pass over a record source. The run
// row is created before the first record and finished in all cases; a
// fatal error marks the run failed and preserves the counters accumulated
// so far. The returned run doubles as the import summary.
func (e *Engine) Import(ctx context.Context, src RecordSource, origin string) (*models.ImportRun, error) {
	run, err := e.begin(src.Source(), origin)
	if err != nil {
		return nil, err
	}

	var runErr error
	for {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			runErr = fmt.Errorf("read record: %w", err)
			break
		}

		if err := e.process(run, rec); err != nil {
			runErr = err
			break
		}
	}

	if runErr != nil {
		e.finish(run, models.RunFailed, runErr)
		return run, runErr
	}
	e.finish(run, models.RunCompleted, nil)
	return run, nil
}

// process applies one record's resolution: enrichment merge for
// activities carrying a native id, otherwise resolve-then-evaluate.
func (e *Engine) process(run *models.ImportRun, rec *models.Record) error {
	if rec.Table == models.TableActivities && rec.NativeID != 0 {
		return e.merge(run, rec)
	}

	existing, err := e.resolve(rec)
	if err != nil {
		return err
	}
	if existing == nil {
		return e.insert(run, rec)
	}

	diffs := diffFields(models.SchemaFor(rec.Table), existing, rec)
	if len(diffs) == 0 {
		e.log.Debug("duplicate record", "table", rec.Table, "key", rec.KeyString())
		return e.store.SkipRecord(run)
	}
	return e.conflict(run, rec, existing.Fields, diffs)
}

// insert stores a new row. A uniqueness violation the resolver failed to
// predict is recovered as an implicit skip, never a run failure.
func (e *Engine) insert(run *models.ImportRun, rec *models.Record) error {
	if _, err := e.store.InsertRecord(run, rec); err != nil {
		if storage.IsUniqueViolation(err) {
			e.log.Debug("insert raced an existing row, skipping",
				"table", rec.Table, "key", rec.KeyString())
			return e.store.SkipRecord(run)
		}
		return err
	}
	e.log.Debug("inserted", "table", rec.Table, "key", rec.KeyString())
	return nil
}

// conflict keeps the existing row untouched and records the mismatch.
func (e *Engine) conflict(run *models.ImportRun, rec *models.Record, existing map[string]models.Value, diffs []string) error {
	entry := models.NewConflictEntry(run.ID, rec.Table, rec.KeyString(), existing, rec.Fields, diffs)
	e.logConflict(entry)
	return e.store.LogConflict(run, entry)
}
