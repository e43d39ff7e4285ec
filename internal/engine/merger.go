// ABOUTME: Enrichment merger for activities carrying a source-native id.
// ABOUTME: Links API records to previously imported CSV rows and fills in gaps.
package engine

import (
	"github.com/harperreed/healthimport/internal/models"
	"github.com/harperreed/healthimport/internal/storage"
)

// merge reconciles an activity that carries a source-native id. Once a
// row holds that id it is the authoritative match; otherwise the
// composite key may identify an unlinked row imported earlier from a
// flat export, which gets linked and enriched rather than duplicated.
func (e *Engine) merge(run *models.ImportRun, rec *models.Record) error {
	sch := models.SchemaFor(rec.Table)

	byID, err := e.store.FindActivityByNativeID(rec.NativeID)
	if err != nil {
		return err
	}
	if byID != nil {
		// The id is already ours. If the composite key now points at a
		// different row the store holds two candidates for one workout;
		// surface that instead of guessing.
		byKey, err := e.store.FindByKey(rec)
		if err != nil {
			return err
		}
		if byKey != nil && byKey.ID != byID.ID {
			return e.nativeIDConflict(run, rec, byID)
		}

		// A known id is the authoritative match; once linked, re-fetching
		// the same activity is a pure no-op. Field values are not
		// re-compared, so overlapping range syncs stay idempotent.
		e.log.Debug("already linked", "table", rec.Table, "native_id", rec.NativeID)
		return e.store.SkipRecord(run)
	}

	byKey, err := e.store.FindByKey(rec)
	if err != nil {
		return err
	}
	if byKey == nil {
		return e.insert(run, rec)
	}
	if byKey.Linked && byKey.NativeID != rec.NativeID {
		// Same start time and type, but the row is already bound to a
		// different upstream activity.
		return e.nativeIDConflict(run, rec, byKey)
	}

	fill := fillColumns(sch, byKey, rec)
	if err := e.store.AttachEnrichment(run, byKey.ID, rec, fill); err != nil {
		return err
	}
	e.log.Info("enriched activity",
		"key", rec.KeyString(), "native_id", rec.NativeID, "filled", len(fill))
	return nil
}

// fillColumns lists the columns the incoming record can add: present on
// the record, absent on the existing row. Populated columns are left
// alone, matching or not.
func fillColumns(sch models.TableSchema, existing *storage.ExistingRow, rec *models.Record) []string {
	var fill []string
	for _, col := range sch.Columns {
		if _, ok := rec.Fields[col]; !ok {
			continue
		}
		if _, ok := existing.Fields[col]; ok {
			continue
		}
		fill = append(fill, col)
	}
	return fill
}

// nativeIDConflict records an identity-level mismatch: the conflicting
// field is the id binding itself, snapshotted alongside the row fields.
func (e *Engine) nativeIDConflict(run *models.ImportRun, rec *models.Record, existing *storage.ExistingRow) error {
	existingFields := make(map[string]models.Value, len(existing.Fields)+1)
	for k, v := range existing.Fields {
		existingFields[k] = v
	}
	existingFields["native_id"] = models.Num(float64(existing.NativeID))

	incomingFields := make(map[string]models.Value, len(rec.Fields)+1)
	for k, v := range rec.Fields {
		incomingFields[k] = v
	}
	incomingFields["native_id"] = models.Num(float64(rec.NativeID))

	entry := models.NewConflictEntry(run.ID, rec.Table, rec.KeyString(),
		existingFields, incomingFields, []string{"native_id"})
	e.logConflict(entry)
	return e.store.LogConflict(run, entry)
}
