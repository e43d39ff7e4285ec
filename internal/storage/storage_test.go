// ABOUTME: Tests for the SQLite gateway against a real temp database.
// ABOUTME: Covers lookups, atomic mutations, counters, and conflict persistence.
package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/harperreed/healthimport/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "health_data.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func startRun(t *testing.T, db *DB, source string) *models.ImportRun {
	t.Helper()

	run := models.NewImportRun(source, "test.csv")
	if err := db.CreateRun(run); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}
	return run
}

func TestOpenCreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "health_data.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file not created: %v", err)
	}
	for _, table := range models.AllTables() {
		n, err := db.CountRows(table)
		if err != nil {
			t.Errorf("CountRows(%s) failed: %v", table, err)
		}
		if n != 0 {
			t.Errorf("CountRows(%s) = %d, want 0", table, n)
		}
	}
}

func TestRunRoundTrip(t *testing.T) {
	db := openTestDB(t)
	run := startRun(t, db, "garmin_weight")

	got, err := db.GetRun(run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Source != "garmin_weight" || got.Origin != "test.csv" {
		t.Errorf("run = %+v", got)
	}
	if got.Status != models.RunRunning {
		t.Errorf("Status = %s, want running", got.Status)
	}
	if got.FinishedAt != nil {
		t.Error("expected nil FinishedAt on a running run")
	}

	run.Finish(models.RunFailed, "parse error")
	if err := db.FinishRun(run); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	got, err = db.GetRun(run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Status != models.RunFailed || got.Error != "parse error" {
		t.Errorf("run = %+v", got)
	}
	if got.FinishedAt == nil {
		t.Error("expected FinishedAt on a finished run")
	}
}

func TestInsertAndFindByKey(t *testing.T) {
	db := openTestDB(t)
	run := startRun(t, db, "garmin_weight")

	rec := models.NewBodyMeasurement("garmin", "2024-03-14", "07:12:00")
	rec.SetNum("weight_lbs", 171.4)
	rec.SetNum("body_fat_pct", 18.2)
	if _, err := db.InsertRecord(run, rec); err != nil {
		t.Fatalf("InsertRecord failed: %v", err)
	}

	row, err := db.FindByKey(rec)
	if err != nil {
		t.Fatalf("FindByKey failed: %v", err)
	}
	if row == nil {
		t.Fatal("expected a row")
	}
	if got := row.Fields["weight_lbs"].Num; got != 171.4 {
		t.Errorf("weight_lbs = %v, want 171.4", got)
	}
	// Columns the record never set stay absent, not zero
	if _, ok := row.Fields["muscle_mass_lbs"]; ok {
		t.Error("expected muscle_mass_lbs to be absent")
	}

	// Same date, different time of day is a different key
	other := models.NewBodyMeasurement("garmin", "2024-03-14", "21:40:00")
	row, err = db.FindByKey(other)
	if err != nil {
		t.Fatalf("FindByKey failed: %v", err)
	}
	if row != nil {
		t.Errorf("expected no row, got %+v", row)
	}

	// Same key, different source is a different row too
	apple := models.NewBodyMeasurement("apple_healthkit", "2024-03-14", "07:12:00")
	row, err = db.FindByKey(apple)
	if err != nil {
		t.Fatalf("FindByKey failed: %v", err)
	}
	if row != nil {
		t.Errorf("expected no row for other source, got %+v", row)
	}
}

func TestDuplicateInsertIsUniqueViolation(t *testing.T) {
	db := openTestDB(t)
	run := startRun(t, db, "garmin_weight")

	rec := models.NewBodyMeasurement("garmin", "2024-03-14", "07:12:00")
	rec.SetNum("weight_lbs", 171.4)
	if _, err := db.InsertRecord(run, rec); err != nil {
		t.Fatalf("InsertRecord failed: %v", err)
	}

	_, err := db.InsertRecord(run, rec)
	if err == nil {
		t.Fatal("expected unique violation")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false", err)
	}
}

func TestFindActivityByNativeID(t *testing.T) {
	db := openTestDB(t)
	run := startRun(t, db, "garmin_api_activities")

	rec := models.NewActivity("garmin", "2024-03-14T06:30:00", "running")
	rec.NativeID = 18273645
	rec.SetNum("distance_miles", 3.12)
	if _, err := db.InsertRecord(run, rec); err != nil {
		t.Fatalf("InsertRecord failed: %v", err)
	}

	row, err := db.FindActivityByNativeID(18273645)
	if err != nil {
		t.Fatalf("FindActivityByNativeID failed: %v", err)
	}
	if row == nil {
		t.Fatal("expected a row")
	}
	if !row.Linked || row.NativeID != 18273645 {
		t.Errorf("row = %+v, want linked with native id", row)
	}

	row, err = db.FindActivityByNativeID(999)
	if err != nil {
		t.Fatalf("FindActivityByNativeID failed: %v", err)
	}
	if row != nil {
		t.Errorf("expected no row, got %+v", row)
	}
}

func TestAttachEnrichmentFillsOnlyNamedColumns(t *testing.T) {
	db := openTestDB(t)
	run := startRun(t, db, "garmin_activities")

	csv := models.NewActivity("garmin", "2024-03-14T06:30:00", "running")
	csv.SetNum("distance_miles", 3.12)
	csv.SetNum("avg_hr", 151)
	rowID, err := db.InsertRecord(run, csv)
	if err != nil {
		t.Fatalf("InsertRecord failed: %v", err)
	}

	api := models.NewActivity("garmin", "2024-03-14T06:30:00", "running")
	api.NativeID = 18273645
	api.SetNum("distance_miles", 3.15)
	api.SetNum("avg_power_watts", 245)
	api.Laps = []models.Lap{
		{Index: 1, Fields: map[string]models.Value{"distance_miles": models.Num(1.0)}},
	}

	apiRun := startRun(t, db, "garmin_api_activities")
	if err := db.AttachEnrichment(apiRun, rowID, api, []string{"avg_power_watts"}); err != nil {
		t.Fatalf("AttachEnrichment failed: %v", err)
	}

	row, err := db.FindActivityByNativeID(18273645)
	if err != nil {
		t.Fatalf("FindActivityByNativeID failed: %v", err)
	}
	if row == nil || row.ID != rowID {
		t.Fatalf("expected the CSV row to be linked, got %+v", row)
	}
	if got := row.Fields["avg_power_watts"].Num; got != 245 {
		t.Errorf("avg_power_watts = %v, want 245", got)
	}
	// The CSV value stands even though the API disagreed
	if got := row.Fields["distance_miles"].Num; got != 3.12 {
		t.Errorf("distance_miles = %v, want 3.12", got)
	}

	laps, err := db.ListLaps(rowID)
	if err != nil {
		t.Fatalf("ListLaps failed: %v", err)
	}
	if len(laps) != 1 {
		t.Errorf("laps = %d, want 1", len(laps))
	}

	got, err := db.GetRun(apiRun.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Enriched != 1 || got.Processed != 1 {
		t.Errorf("counters = %+v, want enriched/processed 1", got)
	}
}

func TestCountersPersistPerOutcome(t *testing.T) {
	db := openTestDB(t)
	run := startRun(t, db, "garmin_weight")

	rec := models.NewBodyMeasurement("garmin", "2024-03-14", "07:12:00")
	rec.SetNum("weight_lbs", 171.4)
	if _, err := db.InsertRecord(run, rec); err != nil {
		t.Fatalf("InsertRecord failed: %v", err)
	}
	if err := db.SkipRecord(run); err != nil {
		t.Fatalf("SkipRecord failed: %v", err)
	}
	entry := models.NewConflictEntry(run.ID, rec.Table, rec.KeyString(),
		map[string]models.Value{"weight_lbs": models.Num(171.4)},
		map[string]models.Value{"weight_lbs": models.Num(168.0)},
		[]string{"weight_lbs"})
	if err := db.LogConflict(run, entry); err != nil {
		t.Fatalf("LogConflict failed: %v", err)
	}

	got, err := db.GetRun(run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Processed != 3 || got.Inserted != 1 || got.Skipped != 1 || got.Conflicted != 1 {
		t.Errorf("counters = %+v", got)
	}
	// The in-memory run tracked the same tallies
	if run.Processed != 3 || run.Inserted != 1 || run.Skipped != 1 || run.Conflicted != 1 {
		t.Errorf("in-memory counters = %+v", run)
	}
}

func TestConflictRoundTripAndResolve(t *testing.T) {
	db := openTestDB(t)
	run := startRun(t, db, "garmin_weight")

	entry := models.NewConflictEntry(run.ID, models.TableBodyMeasurements,
		"source=garmin, measurement_date=2024-03-14, measurement_time=07:12:00",
		map[string]models.Value{"weight_lbs": models.Num(171.4), "notes": models.Text("am")},
		map[string]models.Value{"weight_lbs": models.Num(168.0)},
		[]string{"weight_lbs"})
	if err := db.LogConflict(run, entry); err != nil {
		t.Fatalf("LogConflict failed: %v", err)
	}
	if entry.ID == 0 {
		t.Error("expected entry ID to be set after insert")
	}

	conflicts, err := db.ListConflicts(&run.ID, 10)
	if err != nil {
		t.Fatalf("ListConflicts failed: %v", err)
	}
	if len(conflicts) != 1 {
		t.Fatalf("conflicts = %d, want 1", len(conflicts))
	}
	c := conflicts[0]
	if c.Table != models.TableBodyMeasurements || c.Resolution != models.ResolutionKeptExisting {
		t.Errorf("conflict = %+v", c)
	}
	if c.Existing["weight_lbs"].Num != 171.4 || c.Incoming["weight_lbs"].Num != 168.0 {
		t.Errorf("snapshots = existing %+v incoming %+v", c.Existing, c.Incoming)
	}
	if c.Existing["notes"].Str != "am" {
		t.Errorf("text snapshot = %+v", c.Existing["notes"])
	}
	if len(c.ConflictFields) != 1 || c.ConflictFields[0] != "weight_lbs" {
		t.Errorf("ConflictFields = %v", c.ConflictFields)
	}
	if c.ResolvedAt != nil {
		t.Error("expected unresolved conflict")
	}

	if err := db.ResolveConflict(c.ID, models.ResolutionOverwritten); err != nil {
		t.Fatalf("ResolveConflict failed: %v", err)
	}
	conflicts, _ = db.ListConflicts(nil, 10)
	if conflicts[0].Resolution != models.ResolutionOverwritten || conflicts[0].ResolvedAt == nil {
		t.Errorf("conflict not resolved: %+v", conflicts[0])
	}
}

func TestResolveConflictNotFound(t *testing.T) {
	db := openTestDB(t)

	if err := db.ResolveConflict(404, models.ResolutionManual); err == nil {
		t.Error("expected error for unknown conflict id")
	}
}

func TestListRowsByDateRange(t *testing.T) {
	db := openTestDB(t)
	run := startRun(t, db, "garmin_weight")

	for _, date := range []string{"2024-03-01", "2024-03-15", "2024-03-31", "2024-04-01"} {
		rec := models.NewBodyMeasurement("garmin", date, "07:00:00")
		rec.SetNum("weight_lbs", 170)
		if _, err := db.InsertRecord(run, rec); err != nil {
			t.Fatalf("InsertRecord failed: %v", err)
		}
	}

	rows, err := db.ListRowsByDateRange(models.TableBodyMeasurements,
		"measurement_date", "2024-03-01", "2024-03-31", 10)
	if err != nil {
		t.Fatalf("ListRowsByDateRange failed: %v", err)
	}
	// Both bounds are inclusive
	if len(rows) != 3 {
		t.Errorf("rows = %d, want 3", len(rows))
	}

	_, err = db.ListRowsByDateRange(models.TableBodyMeasurements,
		"weight_lbs", "", "", 10)
	if err == nil {
		t.Error("expected error for a non-date column")
	}
}
