// ABOUTME: Natural-key resolver: locates the existing row for a record.
// ABOUTME: A known source-native id takes precedence over the composite key.
package engine

import (
	"github.com/harperreed/healthimport/internal/models"
	"github.com/harperreed/healthimport/internal/storage"
)

// resolve finds the row an incoming record corresponds to, or nil. For
// records carrying a source-native id the id is checked first: once
// assigned it is the authoritative match and the composite-key path is
// bypassed entirely. No side effects.
func (e *Engine) resolve(rec *models.Record) (*storage.ExistingRow, error) {
	if rec.Table == models.TableActivities && rec.NativeID != 0 {
		row, err := e.store.FindActivityByNativeID(rec.NativeID)
		if err != nil {
			return nil, err
		}
		if row != nil {
			return row, nil
		}
	}
	return e.store.FindByKey(rec)
}
