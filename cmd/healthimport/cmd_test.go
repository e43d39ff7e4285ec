// ABOUTME: Tests for CLI helper functions.
// ABOUTME: Covers resolveRange, naturalDateColumn, and store skipping.
package main

import (
	"testing"
	"time"

	"github.com/harperreed/healthimport/internal/models"
)

func TestResolveRange(t *testing.T) {
	tests := []struct {
		name      string
		from, to  string
		wantErr   bool
		wantStart string
		wantEnd   string
	}{
		{
			name:      "explicit range",
			from:      "2024-01-01",
			to:        "2024-01-31",
			wantStart: "2024-01-01",
			wantEnd:   "2024-01-31",
		},
		{
			name:      "from only extends to today",
			from:      "2024-03-01",
			wantStart: "2024-03-01",
			wantEnd:   time.Now().Format("2006-01-02"),
		},
		{
			name:      "to only gets a 30 day window",
			to:        "2024-06-30",
			wantStart: "2024-05-31",
			wantEnd:   "2024-06-30",
		},
		{
			name:    "invalid from",
			from:    "January 1",
			wantErr: true,
		},
		{
			name:    "invalid to",
			to:      "2024-13-99",
			wantErr: true,
		},
		{
			name:    "from after to",
			from:    "2024-02-01",
			to:      "2024-01-01",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := resolveRange(tt.from, tt.to)

			if tt.wantErr {
				if err == nil {
					t.Errorf("resolveRange(%q, %q) expected error, got nil", tt.from, tt.to)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveRange(%q, %q) unexpected error: %v", tt.from, tt.to, err)
			}

			if got := start.Format("2006-01-02"); got != tt.wantStart {
				t.Errorf("start = %s, want %s", got, tt.wantStart)
			}
			if got := end.Format("2006-01-02"); got != tt.wantEnd {
				t.Errorf("end = %s, want %s", got, tt.wantEnd)
			}
		})
	}
}

func TestResolveRangeDefaultsToTrailingWindow(t *testing.T) {
	start, end, err := resolveRange("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := end.AddDate(0, 0, -30).Format("2006-01-02")
	if got := start.Format("2006-01-02"); got != want {
		t.Errorf("start = %s, want %s", got, want)
	}
}

func TestNaturalDateColumn(t *testing.T) {
	tests := []struct {
		table models.Table
		want  string
	}{
		{models.TableActivities, "start_time"},
		{models.TableBodyMeasurements, "measurement_date"},
		{models.TableVO2Max, "measurement_date"},
		{models.TableRestingHR, "measurement_date"},
		{models.TableStrengthWorkouts, "workout_date"},
		{models.TableNutritionDaily, "date"},
		{models.TableNutritionEntries, "date"},
	}

	for _, tt := range tests {
		if got := naturalDateColumn(tt.table); got != tt.want {
			t.Errorf("naturalDateColumn(%s) = %s, want %s", tt.table, got, tt.want)
		}
	}
}

func TestSkipsStore(t *testing.T) {
	if !skipsStore(configSetTokenCmd) {
		t.Error("config subcommands should not open the database")
	}
	if !skipsStore(configCmd) {
		t.Error("config should not open the database")
	}
	if skipsStore(importCmd) {
		t.Error("import needs the database")
	}
	if skipsStore(garminActivitiesCmd) {
		t.Error("garmin subcommands need the database")
	}
}
