// ABOUTME: Read-only queries over the normalized store.
// ABOUTME: Serves the CLI inspect command and the MCP query tools.
package storage

import (
	"fmt"

	"github.com/harperreed/healthimport/internal/models"
)

// ListRows returns recent rows from a target table as flat maps, newest
// first by rowid. The table name is validated against the declared
// schemas before being interpolated.
func (d *DB) ListRows(table models.Table, limit int) ([]map[string]any, error) {
	if !models.IsValidTable(string(table)) {
		return nil, fmt.Errorf("unknown table: %s", table)
	}
	if limit <= 0 {
		limit = 20
	}

	query := fmt.Sprintf("SELECT * FROM %s ORDER BY id DESC LIMIT ?", table)
	rows, err := d.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}

	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		m := make(map[string]any, len(cols))
		for i, col := range cols {
			if b, ok := vals[i].([]byte); ok {
				m[col] = string(b)
				continue
			}
			m[col] = vals[i]
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListRowsByDateRange returns rows whose date column falls within
// [from, to] inclusive, oldest first. Empty bounds are open.
func (d *DB) ListRowsByDateRange(table models.Table, dateColumn, from, to string, limit int) ([]map[string]any, error) {
	if !models.IsValidTable(string(table)) {
		return nil, fmt.Errorf("unknown table: %s", table)
	}
	sch := models.SchemaFor(table)
	valid := dateColumn == "start_time"
	for _, c := range sch.KeyColumns {
		if c == dateColumn {
			valid = true
		}
	}
	if !valid {
		return nil, fmt.Errorf("unknown date column %s for %s", dateColumn, table)
	}
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf("SELECT * FROM %s", table)
	var args []any
	where := ""
	if from != "" {
		where = fmt.Sprintf(" WHERE %s >= ?", dateColumn)
		args = append(args, from)
	}
	if to != "" {
		if where == "" {
			where = fmt.Sprintf(" WHERE %s <= ?", dateColumn)
		} else {
			where += fmt.Sprintf(" AND %s <= ?", dateColumn)
		}
		args = append(args, to)
	}
	query += where + fmt.Sprintf(" ORDER BY %s ASC LIMIT ?", dateColumn)
	args = append(args, limit)

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}

	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		m := make(map[string]any, len(cols))
		for i, col := range cols {
			if b, ok := vals[i].([]byte); ok {
				m[col] = string(b)
				continue
			}
			m[col] = vals[i]
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListLaps returns the laps attached to an activity, ordered by index.
func (d *DB) ListLaps(activityID int64) ([]map[string]any, error) {
	query := "SELECT * FROM activity_laps WHERE activity_id = ? ORDER BY lap_index"
	rows, err := d.db.Query(query, activityID)
	if err != nil {
		return nil, fmt.Errorf("list laps: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("list laps: %w", err)
	}

	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan lap: %w", err)
		}
		m := make(map[string]any, len(cols))
		for i, col := range cols {
			if b, ok := vals[i].([]byte); ok {
				m[col] = string(b)
				continue
			}
			m[col] = vals[i]
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CountRows returns the number of rows in a target table.
func (d *DB) CountRows(table models.Table) (int, error) {
	if !models.IsValidTable(string(table)) {
		return 0, fmt.Errorf("unknown table: %s", table)
	}
	var n int
	if err := d.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
