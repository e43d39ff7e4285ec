// ABOUTME: Just 6 Weeks strength training CSV importer.
// ABOUTME: Semicolon-delimited; plank sets are MM:SS times, everything else reps.
package importers

import (
	"fmt"
	"os"
	"strings"

	"github.com/harperreed/healthimport/internal/models"
	"github.com/harperreed/healthimport/internal/transforms"
)

type sixWeek struct {
	f *os.File
	r *dictReader
}

func newSixWeek(f *os.File) Importer {
	return &sixWeek{f: f}
}

func (s *sixWeek) Source() string { return "six_week" }
func (s *sixWeek) Close() error   { return s.f.Close() }

func (s *sixWeek) Next() (*models.Record, error) {
	if s.r == nil {
		r, err := newDictReader(s.f, ';')
		if err != nil {
			return nil, fmt.Errorf("read workout header: %w", err)
		}
		s.r = r
	}

	for {
		row, err := s.r.next()
		if err != nil {
			return nil, err
		}

		date, timeOfDay, ok := transforms.SplitDateTime(row.get("Date"))
		if !ok {
			continue
		}
		exercise := row.get("Workout")
		if exercise == "" {
			continue
		}

		// Plank sets are durations; everything else counts reps.
		isTime := strings.EqualFold(exercise, "plank")

		rec := models.NewStrengthWorkout("six_week", date, exercise, timeOfDay)
		setNumber(rec, "goal_value", row.get("Goal"))
		rec.SetTextPtr("program_name", ptr(row.get("Period")))
		setNumber(rec, "week_number", row.get("Week"))
		setNumber(rec, "day_number", row.get("Day"))
		setSetValue(rec, "set1", row.get("Set 1"), isTime)
		setSetValue(rec, "set2", row.get("Set 2"), isTime)
		setSetValue(rec, "set3", row.get("Set 3"), isTime)
		setSetValue(rec, "set4", row.get("Set 4"), isTime)
		setSetValue(rec, "set5", row.get("Set 5"), isTime)
		setSetValue(rec, "total_value", row.get("Sum of Sets"), isTime)
		setDuration(rec, "duration_seconds", row.get("Time"))
		setNumber(rec, "calories", row.get("Kcal"))
		return rec, nil
	}
}

// setSetValue records a set as reps, or as seconds when the value is a
// time (contains a colon, or the exercise is time-based).
func setSetValue(rec *models.Record, column, raw string, isTime bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	if isTime || strings.Contains(raw, ":") {
		if secs, ok := transforms.ParseDuration(raw); ok {
			rec.SetNum(column, secs)
		}
		return
	}
	setNumber(rec, column, raw)
}
