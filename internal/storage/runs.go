// ABOUTME: Import run persistence: create, finish, fetch, list.
// ABOUTME: Counters are updated by the per-record mutations in records.go.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/healthimport/internal/models"
)

// CreateRun persists a new run with status running and zero counters.
// This happens before any record is processed, so a crash mid-import
// leaves an inspectable partial trail.
func (d *DB) CreateRun(run *models.ImportRun) error {
	query := `
		INSERT INTO import_runs (id, source, origin, started_at, status)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := d.db.Exec(query,
		run.ID.String(),
		run.Source,
		run.Origin,
		run.StartedAt.Format(time.RFC3339),
		string(run.Status),
	)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// FinishRun writes the terminal status and error message. Counters are
// not written here: the per-record transactions already committed them.
func (d *DB) FinishRun(run *models.ImportRun) error {
	finished := ""
	if run.FinishedAt != nil {
		finished = run.FinishedAt.Format(time.RFC3339)
	}
	query := `
		UPDATE import_runs SET finished_at = ?, status = ?, error_message = ?
		WHERE id = ?
	`
	_, err := d.db.Exec(query, finished, string(run.Status), run.Error, run.ID.String())
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by id.
func (d *DB) GetRun(id uuid.UUID) (*models.ImportRun, error) {
	query := runSelect + " WHERE id = ?"
	run, err := scanRun(d.db.QueryRow(query, id.String()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run not found: %s", id)
		}
		return nil, err
	}
	return run, nil
}

// ListRuns retrieves recent runs, newest first.
func (d *DB) ListRuns(limit int) ([]*models.ImportRun, error) {
	query := runSelect + " ORDER BY started_at DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.ImportRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

const runSelect = `
	SELECT id, source, origin, started_at, finished_at, status, error_message,
	       records_processed, records_inserted, records_skipped,
	       records_conflicted, records_enriched
	FROM import_runs
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.ImportRun, error) {
	var run models.ImportRun
	var idStr, startedAt, status string
	var finishedAt, errMsg sql.NullString

	err := row.Scan(&idStr, &run.Source, &run.Origin, &startedAt, &finishedAt,
		&status, &errMsg,
		&run.Processed, &run.Inserted, &run.Skipped, &run.Conflicted, &run.Enriched)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}

	run.ID, _ = uuid.Parse(idStr)
	run.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	run.Status = models.RunStatus(status)
	if finishedAt.Valid && finishedAt.String != "" {
		t, perr := time.Parse(time.RFC3339, finishedAt.String)
		if perr == nil {
			run.FinishedAt = &t
		}
	}
	if errMsg.Valid {
		run.Error = errMsg.String
	}

	return &run, nil
}
