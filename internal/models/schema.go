// ABOUTME: Declarative per-table schemas for the reconciliation engine.
// ABOUTME: Lists key columns, insertable columns, and per-field comparison rules.
package models

// Rule is a field comparison rule. The zero value requires exact equality;
// Within(eps) allows an absolute numeric difference up to and including eps.
type Rule struct {
	Numeric bool
	Epsilon float64
}

// Exact requires equality (text after trimming, numbers bit-for-bit).
var Exact = Rule{}

// Within builds a numeric tolerance rule. The boundary is inclusive.
func Within(eps float64) Rule {
	return Rule{Numeric: true, Epsilon: eps}
}

// TableSchema describes one target table to the engine and the storage
// layer. Columns doubles as the whitelist for dynamically built SQL.
type TableSchema struct {
	Table      Table
	KeyColumns []string
	Columns    []string
	Rules      map[string]Rule
}

var schemas = map[Table]TableSchema{
	TableActivities: {
		Table:      TableActivities,
		KeyColumns: []string{"start_time", "activity_type"},
		Columns: []string{
			"title", "event_type", "location_name", "device_name",
			"duration_seconds", "moving_time_seconds",
			"distance_miles", "calories_total", "calories_active",
			"avg_speed_mph", "max_speed_mph",
			"avg_pace_min_per_mile", "best_pace_min_per_mile",
			"avg_hr", "max_hr",
			"elevation_gain_ft", "elevation_loss_ft",
			"min_elevation_ft", "max_elevation_ft",
			"is_indoor",
			"avg_cadence", "max_cadence",
			"avg_power_watts", "max_power_watts", "normalized_power_watts",
			"avg_stride_length_ft", "avg_vertical_oscillation_in",
			"avg_ground_contact_time_ms", "avg_vertical_ratio",
			"avg_gap_min_per_mile", "training_stress_score",
			"aerobic_te", "anaerobic_te", "training_load",
			"vo2max_value", "steps",
		},
		Rules: map[string]Rule{
			"distance_miles":   Within(0.01),
			"duration_seconds": Within(1.0),
			"calories_total":   Within(1.0),
			"avg_hr":           Within(1),
			"max_hr":           Within(1),
			"vo2max_value":     Within(0.1),
		},
	},
	TableBodyMeasurements: {
		Table:      TableBodyMeasurements,
		KeyColumns: []string{"measurement_date", "measurement_time"},
		Columns: []string{
			"weight_lbs", "weight_change_lbs", "bmi", "body_fat_pct",
			"muscle_mass_lbs", "bone_mass_lbs", "body_water_pct",
			"lean_body_mass_lbs", "visceral_fat_level",
			"basal_metabolic_rate_kcal",
		},
		Rules: map[string]Rule{
			"weight_lbs":      Within(0.1),
			"body_fat_pct":    Within(0.1),
			"muscle_mass_lbs": Within(0.1),
			"bone_mass_lbs":   Within(0.1),
		},
	},
	TableVO2Max: {
		Table:      TableVO2Max,
		KeyColumns: []string{"measurement_date", "activity_type"},
		Columns:    []string{"vo2max_value"},
		Rules: map[string]Rule{
			"vo2max_value": Within(0.1),
		},
	},
	TableRestingHR: {
		Table:      TableRestingHR,
		KeyColumns: []string{"measurement_date"},
		Columns:    []string{"resting_hr", "source_name"},
		Rules: map[string]Rule{
			"resting_hr": Within(1),
		},
	},
	TableStrengthWorkouts: {
		Table:      TableStrengthWorkouts,
		KeyColumns: []string{"workout_date", "exercise", "workout_time"},
		Columns: []string{
			"goal_value", "program_name", "week_number", "day_number",
			"set1", "set2", "set3", "set4", "set5", "total_value",
			"duration_seconds", "calories",
		},
		Rules: map[string]Rule{
			"duration_seconds": Within(1.0),
			"calories":         Within(1.0),
		},
	},
	TableNutritionDaily: {
		Table:      TableNutritionDaily,
		KeyColumns: []string{"date"},
		Columns: []string{
			"expenditure_kcal", "calories_consumed_kcal", "target_calories_kcal",
			"weight_lbs", "trend_weight_lbs",
			"protein_g", "fat_g", "carbs_g", "fiber_g", "alcohol_g",
			"target_protein_g", "target_fat_g", "target_carbs_g", "steps",
		},
		Rules: map[string]Rule{
			"weight_lbs":             Within(0.1),
			"trend_weight_lbs":       Within(0.1),
			"calories_consumed_kcal": Within(1.0),
			"expenditure_kcal":       Within(1.0),
		},
	},
	TableNutritionEntries: {
		Table:      TableNutritionEntries,
		KeyColumns: []string{"date", "time", "food_name"},
		Columns: []string{
			"serving_size", "serving_qty", "serving_weight_g",
			"calories_kcal", "protein_g", "fat_g", "carbs_g", "fiber_g",
		},
		Rules: map[string]Rule{
			"calories_kcal": Within(1.0),
		},
	},
}

// SchemaFor returns the schema for a table. Panics on unknown tables:
// every table is declared above and records only come from constructors.
func SchemaFor(t Table) TableSchema {
	s, ok := schemas[t]
	if !ok {
		panic("unknown table: " + string(t))
	}
	return s
}

// IsValidTable checks a table name from external input.
func IsValidTable(name string) bool {
	_, ok := schemas[Table(name)]
	return ok
}

// AllTables returns every target table, in a stable order.
func AllTables() []Table {
	return []Table{
		TableActivities, TableBodyMeasurements, TableVO2Max,
		TableRestingHR, TableStrengthWorkouts,
		TableNutritionDaily, TableNutritionEntries,
	}
}

// RuleFor returns the comparison rule for a field, defaulting to Exact.
func (s TableSchema) RuleFor(column string) Rule {
	if r, ok := s.Rules[column]; ok {
		return r
	}
	return Exact
}

// HasColumn reports whether column is a declared value column.
func (s TableSchema) HasColumn(column string) bool {
	for _, c := range s.Columns {
		if c == column {
			return true
		}
	}
	return false
}
