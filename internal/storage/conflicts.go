// ABOUTME: Conflict entry persistence and retrieval.
// ABOUTME: Snapshots are stored as JSON; entries are append-only except the resolution tag.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/healthimport/internal/models"
)

func insertConflictTx(tx *sql.Tx, entry *models.ConflictEntry) error {
	existing, err := marshalValues(entry.Existing)
	if err != nil {
		return fmt.Errorf("marshal existing snapshot: %w", err)
	}
	incoming, err := marshalValues(entry.Incoming)
	if err != nil {
		return fmt.Errorf("marshal incoming snapshot: %w", err)
	}
	fields, err := json.Marshal(entry.ConflictFields)
	if err != nil {
		return fmt.Errorf("marshal conflict fields: %w", err)
	}

	query := `
		INSERT INTO import_conflicts
			(run_id, table_name, record_key, existing_value, new_value,
			 conflict_fields, resolution, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := tx.Exec(query,
		entry.RunID.String(),
		string(entry.Table),
		entry.RecordKey,
		existing,
		incoming,
		string(fields),
		string(entry.Resolution),
		entry.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert conflict: %w", err)
	}
	entry.ID, _ = res.LastInsertId()
	return nil
}

// ListConflicts retrieves conflict entries, optionally filtered by run.
func (d *DB) ListConflicts(runID *uuid.UUID, limit int) ([]*models.ConflictEntry, error) {
	query := `
		SELECT id, run_id, table_name, record_key, existing_value, new_value,
		       conflict_fields, resolution, resolved_at, created_at
		FROM import_conflicts
	`
	var args []any
	if runID != nil {
		query += " WHERE run_id = ?"
		args = append(args, runID.String())
	}
	query += " ORDER BY id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list conflicts: %w", err)
	}
	defer rows.Close()

	var entries []*models.ConflictEntry
	for rows.Next() {
		var e models.ConflictEntry
		var runStr, tableName, existing, incoming, fields, resolution, createdAt string
		var resolvedAt sql.NullString

		err := rows.Scan(&e.ID, &runStr, &tableName, &e.RecordKey,
			&existing, &incoming, &fields, &resolution, &resolvedAt, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scan conflict: %w", err)
		}

		e.RunID, _ = uuid.Parse(runStr)
		e.Table = models.Table(tableName)
		e.Existing = unmarshalValues(existing)
		e.Incoming = unmarshalValues(incoming)
		_ = json.Unmarshal([]byte(fields), &e.ConflictFields)
		e.Resolution = models.Resolution(resolution)
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		if resolvedAt.Valid && resolvedAt.String != "" {
			t, perr := time.Parse(time.RFC3339, resolvedAt.String)
			if perr == nil {
				e.ResolvedAt = &t
			}
		}

		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// ResolveConflict sets the resolution tag and timestamp on a conflict
// entry. This is the out-of-band review step; the engine itself only ever
// writes kept_existing.
func (d *DB) ResolveConflict(id int64, resolution models.Resolution) error {
	query := `
		UPDATE import_conflicts SET resolution = ?, resolved_at = ?
		WHERE id = ?
	`
	res, err := d.db.Exec(query, string(resolution), time.Now().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("resolve conflict: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolve conflict: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("conflict not found: %d", id)
	}
	return nil
}

// marshalValues flattens a Value map to plain JSON (numbers and strings).
func marshalValues(m map[string]models.Value) (string, error) {
	flat := make(map[string]any, len(m))
	for k, v := range m {
		flat[k] = v.Arg()
	}
	data, err := json.Marshal(flat)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalValues(s string) map[string]models.Value {
	var flat map[string]any
	if err := json.Unmarshal([]byte(s), &flat); err != nil {
		return nil
	}
	m := make(map[string]models.Value, len(flat))
	for k, v := range flat {
		switch x := v.(type) {
		case float64:
			m[k] = models.Num(x)
		case string:
			m[k] = models.Text(x)
		}
	}
	return m
}
