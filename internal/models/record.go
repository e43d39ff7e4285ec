// ABOUTME: Normalized record type shared by all importers.
// ABOUTME: Carries target table, natural key, field values, and enrichment payload.
package models

import (
	"fmt"
	"strings"
)

// Table identifies a target table in the normalized store.
type Table string

const (
	TableActivities       Table = "activities"
	TableBodyMeasurements Table = "body_measurements"
	TableVO2Max           Table = "vo2max_readings"
	TableRestingHR        Table = "resting_heart_rate"
	TableStrengthWorkouts Table = "strength_workouts"
	TableNutritionDaily   Table = "nutrition_daily"
	TableNutritionEntries Table = "nutrition_entries"
)

// ValueKind discriminates normalized field values.
type ValueKind int

const (
	KindNumber ValueKind = iota
	KindText
)

// Value is a single normalized field value. Absent fields are simply
// omitted from a record's Fields map, so Value never models null.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
}

// Num builds a numeric value.
func Num(f float64) Value {
	return Value{Kind: KindNumber, Num: f}
}

// Text builds a text value.
func Text(s string) Value {
	return Value{Kind: KindText, Str: s}
}

// Arg returns the value as a database/sql argument.
func (v Value) Arg() any {
	if v.Kind == KindNumber {
		return v.Num
	}
	return v.Str
}

// Display renders the value for keys and conflict output.
func (v Value) Display() string {
	if v.Kind == KindNumber {
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", v.Num), "0"), ".")
	}
	return v.Str
}

// KeyField is one component of a natural key. Order matters: the tuple
// is compared and displayed in declaration order.
type KeyField struct {
	Column string
	Value  Value
}

// Lap is an enrichment sub-record attached to an activity.
type Lap struct {
	Index  int
	Fields map[string]Value
}

// Record is a normalized record emitted by an importer. The source column
// participates in every natural key and is kept separate from Key so the
// engine can report it uniformly.
type Record struct {
	Table  Table
	Source string
	Key    []KeyField
	Fields map[string]Value

	// NativeID is the source-native activity id (Garmin's activityId).
	// Zero when the source does not know it; activities only.
	NativeID int64

	// Laps carries per-lap splits from enriched sources; activities only.
	Laps []Lap
}

// SetNum records a numeric field value.
func (r *Record) SetNum(column string, f float64) {
	r.Fields[column] = Num(f)
}

// SetText records a text field value after trimming.
func (r *Record) SetText(column, s string) {
	r.Fields[column] = Text(strings.TrimSpace(s))
}

// SetNumPtr records a numeric field only when present.
func (r *Record) SetNumPtr(column string, f *float64) {
	if f != nil {
		r.SetNum(column, *f)
	}
}

// SetTextPtr records a text field only when present and non-empty.
func (r *Record) SetTextPtr(column string, s *string) {
	if s != nil && strings.TrimSpace(*s) != "" {
		r.SetText(column, *s)
	}
}

// KeyString serializes the natural key for display and conflict storage.
func (r *Record) KeyString() string {
	parts := make([]string, 0, len(r.Key)+1)
	parts = append(parts, "source="+r.Source)
	for _, k := range r.Key {
		parts = append(parts, k.Column+"="+k.Value.Display())
	}
	return strings.Join(parts, ", ")
}

func newRecord(table Table, source string, key ...KeyField) *Record {
	return &Record{
		Table:  table,
		Source: source,
		Key:    key,
		Fields: make(map[string]Value),
	}
}

// NewActivity builds an activity record keyed by (source, start_time,
// activity_type). A source-native id, when known, is set on NativeID and
// takes precedence during resolution.
func NewActivity(source, startTime, activityType string) *Record {
	return newRecord(TableActivities, source,
		KeyField{"start_time", Text(startTime)},
		KeyField{"activity_type", Text(activityType)},
	)
}

// NewBodyMeasurement builds a body measurement keyed by
// (source, measurement_date, measurement_time).
func NewBodyMeasurement(source, date, timeOfDay string) *Record {
	return newRecord(TableBodyMeasurements, source,
		KeyField{"measurement_date", Text(date)},
		KeyField{"measurement_time", Text(timeOfDay)},
	)
}

// NewVO2Max builds a VO2max reading keyed by
// (source, measurement_date, activity_type).
func NewVO2Max(source, date, activityType string) *Record {
	return newRecord(TableVO2Max, source,
		KeyField{"measurement_date", Text(date)},
		KeyField{"activity_type", Text(activityType)},
	)
}

// NewRestingHR builds a resting heart rate reading keyed by
// (source, measurement_date). One reading per day per source.
func NewRestingHR(source, date string) *Record {
	return newRecord(TableRestingHR, source,
		KeyField{"measurement_date", Text(date)},
	)
}

// NewStrengthWorkout builds a strength workout keyed by
// (source, workout_date, exercise, workout_time).
func NewStrengthWorkout(source, date, exercise, timeOfDay string) *Record {
	return newRecord(TableStrengthWorkouts, source,
		KeyField{"workout_date", Text(date)},
		KeyField{"exercise", Text(exercise)},
		KeyField{"workout_time", Text(timeOfDay)},
	)
}

// NewNutritionDay builds a daily nutrition summary keyed by (source, date).
func NewNutritionDay(source, date string) *Record {
	return newRecord(TableNutritionDaily, source,
		KeyField{"date", Text(date)},
	)
}

// NewNutritionEntry builds an individual food entry keyed by
// (source, date, time, food_name).
func NewNutritionEntry(source, date, timeOfDay, foodName string) *Record {
	return newRecord(TableNutritionEntries, source,
		KeyField{"date", Text(date)},
		KeyField{"time", Text(timeOfDay)},
		KeyField{"food_name", Text(foodName)},
	)
}
