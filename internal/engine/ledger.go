// ABOUTME: Run lifecycle bookkeeping and conflict reporting for imports.
// ABOUTME: Every run row is opened before the first record and closed on every path.
package engine

import (
	"github.com/harperreed/healthimport/internal/models"
)

func (e *Engine) begin(source, origin string) (*models.ImportRun, error) {
	run := models.NewImportRun(source, origin)
	if err := e.store.CreateRun(run); err != nil {
		return nil, err
	}
	e.log.Info("import started", "run", run.ID, "source", source, "origin", origin)
	return run, nil
}

// finish closes the run row. A failure here is logged, not returned: the
// import outcome has already been decided and the counters are already
// persisted record by record.
func (e *Engine) finish(run *models.ImportRun, status models.RunStatus, cause error) {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	run.Finish(status, msg)
	if err := e.store.FinishRun(run); err != nil {
		e.log.Error("finalize run", "run", run.ID, "error", err)
	}

	if status == models.RunFailed {
		e.log.Error("import failed", "run", run.ID, "error", cause,
			"processed", run.Processed)
		return
	}
	e.log.Info("import completed", "run", run.ID,
		"processed", run.Processed,
		"inserted", run.Inserted,
		"skipped", run.Skipped,
		"conflicted", run.Conflicted,
		"enriched", run.Enriched)
}

// logConflict reports a kept-existing decision field by field.
func (e *Engine) logConflict(entry *models.ConflictEntry) {
	e.log.Warn("conflict detected", "table", entry.Table, "key", entry.RecordKey)
	for _, field := range entry.ConflictFields {
		e.log.Warn("  field differs", "field", field,
			"existing", entry.Existing[field].Display(),
			"incoming", entry.Incoming[field].Display())
	}
	e.log.Warn("keeping existing record", "key", entry.RecordKey)
}
