// ABOUTME: Record lookups and atomic per-record mutations.
// ABOUTME: Builds SQL from the declarative table schemas in models.
package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/healthimport/internal/models"
)

// lapColumns is the whitelist of insertable activity_laps columns.
var lapColumns = []string{
	"start_time", "distance_miles", "duration_seconds",
	"moving_duration_seconds", "avg_speed_mph", "max_speed_mph",
	"avg_pace_min_per_mile", "avg_hr", "max_hr", "avg_cadence",
	"max_cadence", "avg_power_watts", "max_power_watts",
	"normalized_power_watts", "calories", "elevation_gain_ft",
	"elevation_loss_ft", "avg_stride_length_ft",
	"avg_vertical_oscillation_in", "avg_ground_contact_time_ms",
	"avg_vertical_ratio",
}

// FindByKey looks up a row by the record's composite natural key.
// Returns (nil, nil) when no row matches.
func (d *DB) FindByKey(rec *models.Record) (*ExistingRow, error) {
	where := []string{"source = ?"}
	args := []any{rec.Source}
	for _, k := range rec.Key {
		where = append(where, k.Column+" = ?")
		args = append(args, k.Value.Arg())
	}
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s", rec.Table, strings.Join(where, " AND "))
	return d.queryExisting(rec.Table, query, args...)
}

// FindActivityByNativeID looks up an activity by source-native id.
// Returns (nil, nil) when the id has never been attached.
func (d *DB) FindActivityByNativeID(nativeID int64) (*ExistingRow, error) {
	return d.queryExisting(models.TableActivities,
		"SELECT * FROM activities WHERE native_id = ?", nativeID)
}

// queryExisting runs a point lookup and scans the row generically. The
// natural key and the native id are both unique, so at most one row matches.
func (d *DB) queryExisting(table models.Table, query string, args ...any) (*ExistingRow, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", table, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", table, err)
	}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("scan %s: %w", table, err)
	}

	sch := models.SchemaFor(table)
	row := &ExistingRow{Fields: make(map[string]models.Value)}
	for i, col := range cols {
		switch col {
		case "id":
			if n, ok := vals[i].(int64); ok {
				row.ID = n
			}
		case "native_id":
			if n, ok := vals[i].(int64); ok {
				row.NativeID = n
			}
		case "link_status":
			row.Linked = asString(vals[i]) == "linked"
		default:
			if !sch.HasColumn(col) {
				continue
			}
			if v, ok := toValue(vals[i]); ok {
				row.Fields[col] = v
			}
		}
	}
	return row, rows.Err()
}

// InsertRecord inserts a new row (with laps, for enriched activities) and
// bumps the run's inserted counter in the same transaction.
func (d *DB) InsertRecord(run *models.ImportRun, rec *models.Record) (int64, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", rec.Table, err)
	}
	defer func() { _ = tx.Rollback() }()

	rowID, err := insertRecordTx(tx, run.ID, rec)
	if err != nil {
		return 0, err
	}
	if err := insertLapsTx(tx, rowID, rec.Laps); err != nil {
		return 0, err
	}
	if err := bumpTx(tx, run.ID, "records_inserted"); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("insert %s: %w", rec.Table, err)
	}
	run.Count(models.OutcomeInserted)
	return rowID, nil
}

// SkipRecord bumps the run's skipped counter.
func (d *DB) SkipRecord(run *models.ImportRun) error {
	if err := d.bump(run.ID, "records_skipped"); err != nil {
		return err
	}
	run.Count(models.OutcomeSkipped)
	return nil
}

// LogConflict persists a conflict entry and bumps the conflicted counter
// in the same transaction.
func (d *DB) LogConflict(run *models.ImportRun, entry *models.ConflictEntry) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("log conflict: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertConflictTx(tx, entry); err != nil {
		return err
	}
	if err := bumpTx(tx, run.ID, "records_conflicted"); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("log conflict: %w", err)
	}
	run.Count(models.OutcomeConflicted)
	return nil
}

// AttachEnrichment links a native id to an existing activity row, fills
// only the named columns (those absent on the row), inserts laps, and
// bumps the enriched counter, all in one transaction. Populated columns
// are never touched.
func (d *DB) AttachEnrichment(run *models.ImportRun, rowID int64, rec *models.Record, fill []string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("attach enrichment: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	sets := []string{"native_id = ?", "link_status = 'linked'"}
	args := []any{rec.NativeID}
	sch := models.SchemaFor(rec.Table)
	for _, col := range fill {
		v, ok := rec.Fields[col]
		if !ok || !sch.HasColumn(col) {
			continue
		}
		sets = append(sets, col+" = ?")
		args = append(args, v.Arg())
	}
	args = append(args, rowID)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", rec.Table, strings.Join(sets, ", "))
	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("attach enrichment: %w", err)
	}
	if err := insertLapsTx(tx, rowID, rec.Laps); err != nil {
		return err
	}
	if err := bumpTx(tx, run.ID, "records_enriched"); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("attach enrichment: %w", err)
	}
	run.Count(models.OutcomeEnriched)
	return nil
}

func insertRecordTx(tx *sql.Tx, runID uuid.UUID, rec *models.Record) (int64, error) {
	cols := []string{"run_id", "source"}
	args := []any{runID.String(), rec.Source}

	for _, k := range rec.Key {
		cols = append(cols, k.Column)
		args = append(args, k.Value.Arg())
	}

	if rec.Table == models.TableActivities {
		cols = append(cols, "native_id", "link_status")
		if rec.NativeID != 0 {
			args = append(args, rec.NativeID, "linked")
		} else {
			args = append(args, nil, "unlinked")
		}
	}

	// Iterate the schema's column list for deterministic statement shape.
	sch := models.SchemaFor(rec.Table)
	for _, col := range sch.Columns {
		if v, ok := rec.Fields[col]; ok {
			cols = append(cols, col)
			args = append(args, v.Arg())
		}
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		rec.Table, strings.Join(cols, ", "), placeholders(len(cols)))
	res, err := tx.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", rec.Table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", rec.Table, err)
	}
	return id, nil
}

func insertLapsTx(tx *sql.Tx, activityID int64, laps []models.Lap) error {
	for _, lap := range laps {
		cols := []string{"activity_id", "lap_index"}
		args := []any{activityID, lap.Index}
		for _, col := range lapColumns {
			if v, ok := lap.Fields[col]; ok {
				cols = append(cols, col)
				args = append(args, v.Arg())
			}
		}
		query := fmt.Sprintf("INSERT OR REPLACE INTO activity_laps (%s) VALUES (%s)",
			strings.Join(cols, ", "), placeholders(len(cols)))
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("insert lap %d: %w", lap.Index, err)
		}
	}
	return nil
}

func bumpTx(tx *sql.Tx, runID uuid.UUID, counter string) error {
	query := fmt.Sprintf(
		"UPDATE import_runs SET records_processed = records_processed + 1, %s = %s + 1 WHERE id = ?",
		counter, counter)
	if _, err := tx.Exec(query, runID.String()); err != nil {
		return fmt.Errorf("update run counters: %w", err)
	}
	return nil
}

func (d *DB) bump(runID uuid.UUID, counter string) error {
	query := fmt.Sprintf(
		"UPDATE import_runs SET records_processed = records_processed + 1, %s = %s + 1 WHERE id = ?",
		counter, counter)
	if _, err := d.db.Exec(query, runID.String()); err != nil {
		return fmt.Errorf("update run counters: %w", err)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// toValue converts a scanned SQL value to a normalized Value.
// NULLs report ok=false and stay absent.
func toValue(v any) (models.Value, bool) {
	switch x := v.(type) {
	case nil:
		return models.Value{}, false
	case int64:
		return models.Num(float64(x)), true
	case float64:
		return models.Num(x), true
	case string:
		return models.Text(x), true
	case []byte:
		return models.Text(string(x)), true
	default:
		return models.Text(fmt.Sprint(x)), true
	}
}

func asString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return ""
	}
}
