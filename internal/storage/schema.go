// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: One uniqueness constraint per table matching its natural key.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS import_runs (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		origin TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		status TEXT NOT NULL DEFAULT 'running',
		error_message TEXT,
		records_processed INTEGER NOT NULL DEFAULT 0,
		records_inserted INTEGER NOT NULL DEFAULT 0,
		records_skipped INTEGER NOT NULL DEFAULT 0,
		records_conflicted INTEGER NOT NULL DEFAULT 0,
		records_enriched INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS import_conflicts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		table_name TEXT NOT NULL,
		record_key TEXT NOT NULL,
		existing_value TEXT NOT NULL,
		new_value TEXT NOT NULL,
		conflict_fields TEXT NOT NULL,
		resolution TEXT NOT NULL DEFAULT 'kept_existing',
		resolved_at DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (run_id) REFERENCES import_runs(id)
	);

	CREATE TABLE IF NOT EXISTS activities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		source TEXT NOT NULL,
		native_id INTEGER UNIQUE,
		link_status TEXT NOT NULL DEFAULT 'unlinked',
		start_time TEXT NOT NULL,
		activity_type TEXT NOT NULL,
		title TEXT,
		event_type TEXT,
		location_name TEXT,
		device_name TEXT,
		duration_seconds REAL,
		moving_time_seconds REAL,
		distance_miles REAL,
		calories_total REAL,
		calories_active REAL,
		avg_speed_mph REAL,
		max_speed_mph REAL,
		avg_pace_min_per_mile REAL,
		best_pace_min_per_mile REAL,
		avg_hr REAL,
		max_hr REAL,
		elevation_gain_ft REAL,
		elevation_loss_ft REAL,
		min_elevation_ft REAL,
		max_elevation_ft REAL,
		is_indoor REAL,
		avg_cadence REAL,
		max_cadence REAL,
		avg_power_watts REAL,
		max_power_watts REAL,
		normalized_power_watts REAL,
		avg_stride_length_ft REAL,
		avg_vertical_oscillation_in REAL,
		avg_ground_contact_time_ms REAL,
		avg_vertical_ratio REAL,
		avg_gap_min_per_mile REAL,
		training_stress_score REAL,
		aerobic_te REAL,
		anaerobic_te REAL,
		training_load REAL,
		vo2max_value REAL,
		steps REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (run_id) REFERENCES import_runs(id),
		UNIQUE (source, start_time, activity_type)
	);

	CREATE TABLE IF NOT EXISTS activity_laps (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		activity_id INTEGER NOT NULL,
		lap_index INTEGER NOT NULL,
		start_time TEXT,
		distance_miles REAL,
		duration_seconds REAL,
		moving_duration_seconds REAL,
		avg_speed_mph REAL,
		max_speed_mph REAL,
		avg_pace_min_per_mile REAL,
		avg_hr REAL,
		max_hr REAL,
		avg_cadence REAL,
		max_cadence REAL,
		avg_power_watts REAL,
		max_power_watts REAL,
		normalized_power_watts REAL,
		calories REAL,
		elevation_gain_ft REAL,
		elevation_loss_ft REAL,
		avg_stride_length_ft REAL,
		avg_vertical_oscillation_in REAL,
		avg_ground_contact_time_ms REAL,
		avg_vertical_ratio REAL,
		FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE,
		UNIQUE (activity_id, lap_index)
	);

	CREATE TABLE IF NOT EXISTS body_measurements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		source TEXT NOT NULL,
		measurement_date TEXT NOT NULL,
		measurement_time TEXT NOT NULL,
		weight_lbs REAL,
		weight_change_lbs REAL,
		bmi REAL,
		body_fat_pct REAL,
		muscle_mass_lbs REAL,
		bone_mass_lbs REAL,
		body_water_pct REAL,
		lean_body_mass_lbs REAL,
		visceral_fat_level REAL,
		basal_metabolic_rate_kcal REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (run_id) REFERENCES import_runs(id),
		UNIQUE (source, measurement_date, measurement_time)
	);

	CREATE TABLE IF NOT EXISTS vo2max_readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		source TEXT NOT NULL,
		measurement_date TEXT NOT NULL,
		activity_type TEXT NOT NULL,
		vo2max_value REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (run_id) REFERENCES import_runs(id),
		UNIQUE (source, measurement_date, activity_type)
	);

	CREATE TABLE IF NOT EXISTS resting_heart_rate (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		source TEXT NOT NULL,
		measurement_date TEXT NOT NULL,
		resting_hr REAL,
		source_name TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (run_id) REFERENCES import_runs(id),
		UNIQUE (source, measurement_date)
	);

	CREATE TABLE IF NOT EXISTS strength_workouts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		source TEXT NOT NULL,
		workout_date TEXT NOT NULL,
		exercise TEXT NOT NULL,
		workout_time TEXT NOT NULL,
		goal_value REAL,
		program_name TEXT,
		week_number REAL,
		day_number REAL,
		set1 REAL,
		set2 REAL,
		set3 REAL,
		set4 REAL,
		set5 REAL,
		total_value REAL,
		duration_seconds REAL,
		calories REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (run_id) REFERENCES import_runs(id),
		UNIQUE (source, workout_date, exercise, workout_time)
	);

	CREATE TABLE IF NOT EXISTS nutrition_daily (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		source TEXT NOT NULL,
		date TEXT NOT NULL,
		expenditure_kcal REAL,
		calories_consumed_kcal REAL,
		target_calories_kcal REAL,
		weight_lbs REAL,
		trend_weight_lbs REAL,
		protein_g REAL,
		fat_g REAL,
		carbs_g REAL,
		fiber_g REAL,
		alcohol_g REAL,
		target_protein_g REAL,
		target_fat_g REAL,
		target_carbs_g REAL,
		steps REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (run_id) REFERENCES import_runs(id),
		UNIQUE (source, date)
	);

	CREATE TABLE IF NOT EXISTS nutrition_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		source TEXT NOT NULL,
		date TEXT NOT NULL,
		time TEXT NOT NULL,
		food_name TEXT NOT NULL,
		serving_size TEXT,
		serving_qty REAL,
		serving_weight_g REAL,
		calories_kcal REAL,
		protein_g REAL,
		fat_g REAL,
		carbs_g REAL,
		fiber_g REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (run_id) REFERENCES import_runs(id),
		UNIQUE (source, date, time, food_name)
	);

	CREATE INDEX IF NOT EXISTS idx_conflicts_run ON import_conflicts(run_id);
	CREATE INDEX IF NOT EXISTS idx_activities_start ON activities(start_time DESC);
	CREATE INDEX IF NOT EXISTS idx_laps_activity ON activity_laps(activity_id);
	CREATE INDEX IF NOT EXISTS idx_body_date ON body_measurements(measurement_date DESC);
	CREATE INDEX IF NOT EXISTS idx_vo2max_date ON vo2max_readings(measurement_date DESC);
	CREATE INDEX IF NOT EXISTS idx_rhr_date ON resting_heart_rate(measurement_date DESC);
	CREATE INDEX IF NOT EXISTS idx_strength_date ON strength_workouts(workout_date DESC);
	CREATE INDEX IF NOT EXISTS idx_nutrition_date ON nutrition_daily(date DESC);
	CREATE INDEX IF NOT EXISTS idx_entries_date ON nutrition_entries(date DESC);
	`

	_, err := d.db.Exec(schema)
	return err
}
