// ABOUTME: Garmin Connect activities CSV importer.
// ABOUTME: Bulk export rows carry no native id; enrichment comes later via the API.
package importers

import (
	"fmt"
	"os"
	"strings"

	"github.com/harperreed/healthimport/internal/models"
	"github.com/harperreed/healthimport/internal/transforms"
)

type garminActivities struct {
	f *os.File
	r *dictReader
}

func newGarminActivities(f *os.File) Importer {
	return &garminActivities{f: f}
}

func (g *garminActivities) Source() string { return "garmin_activities" }
func (g *garminActivities) Close() error   { return g.f.Close() }

func (g *garminActivities) Next() (*models.Record, error) {
	if g.r == nil {
		r, err := newDictReader(g.f, ',')
		if err != nil {
			return nil, fmt.Errorf("read activities header: %w", err)
		}
		g.r = r
	}

	for {
		row, err := g.r.next()
		if err != nil {
			return nil, err
		}

		startTime, ok := transforms.ParseDateTime(row.get("Date"))
		if !ok {
			continue
		}
		activityType := row.get("Activity Type")

		// Record source is "garmin" regardless of path (CSV or API) so
		// the API enrichment pass can match rows created here by key.
		rec := models.NewActivity("garmin", startTime, activityType)
		rec.SetTextPtr("title", ptr(row.get("Title")))
		setNumber(rec, "distance_miles", row.get("Distance"))
		setNumber(rec, "calories_total", row.get("Calories"))
		setDuration(rec, "duration_seconds", row.get("Time"))
		setDuration(rec, "moving_time_seconds", row.get("Moving Time"))
		setNumber(rec, "avg_hr", row.get("Avg HR"))
		setNumber(rec, "max_hr", row.get("Max HR"))
		setPace(rec, "avg_pace_min_per_mile", row.get("Avg Pace"))
		setPace(rec, "best_pace_min_per_mile", row.get("Best Pace"))
		setNumber(rec, "elevation_gain_ft", row.get("Total Ascent"))
		setNumber(rec, "elevation_loss_ft", row.get("Total Descent"))
		setNumber(rec, "min_elevation_ft", row.get("Min Elevation"))
		setNumber(rec, "max_elevation_ft", row.get("Max Elevation"))
		if strings.Contains(activityType, "Treadmill") {
			rec.SetNum("is_indoor", 1)
		} else {
			rec.SetNum("is_indoor", 0)
		}

		// Running dynamics, present only on watch-recorded runs.
		setNumber(rec, "avg_cadence", row.get("Avg Cadence"))
		setNumber(rec, "max_cadence", row.get("Max Cadence"))
		if m, ok := transforms.ParseNumber(row.get("Avg Stride Length")); ok {
			rec.SetNum("avg_stride_length_ft", transforms.MetersToFeet(m))
		}
		setNumber(rec, "avg_vertical_ratio", row.get("Avg Vertical Ratio"))
		if cm, ok := transforms.ParseNumber(row.get("Avg Vertical Oscillation")); ok {
			rec.SetNum("avg_vertical_oscillation_in", transforms.CmToInches(cm))
		}
		setNumber(rec, "avg_ground_contact_time_ms", row.get("Avg Ground Contact Time"))
		setPace(rec, "avg_gap_min_per_mile", row.get("Avg GAP"))
		setNumber(rec, "training_stress_score", row.get("Training Stress Score®"))
		setNumber(rec, "normalized_power_watts", row.get("Normalized Power® (NP®)"))
		setNumber(rec, "avg_power_watts", row.get("Avg Power"))
		setNumber(rec, "max_power_watts", row.get("Max Power"))

		// Garmin extras.
		setNumber(rec, "aerobic_te", row.get("Aerobic TE"))
		setNumber(rec, "anaerobic_te", row.get("Anaerobic TE"))
		setNumber(rec, "steps", row.get("Steps"))

		return rec, nil
	}
}

func setNumber(rec *models.Record, column, raw string) {
	if f, ok := transforms.ParseNumber(raw); ok {
		rec.SetNum(column, f)
	}
}

func setDuration(rec *models.Record, column, raw string) {
	if f, ok := transforms.ParseDuration(raw); ok {
		rec.SetNum(column, f)
	}
}

func setPace(rec *models.Record, column, raw string) {
	if f, ok := transforms.ParsePace(raw); ok {
		rec.SetNum(column, f)
	}
}

func ptr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
