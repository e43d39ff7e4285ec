// ABOUTME: MacroFactor nutrition CSV importer.
// ABOUTME: Detects per-food entry exports vs daily summary exports by header shape.
package importers

import (
	"fmt"
	"os"

	"github.com/harperreed/healthimport/internal/models"
	"github.com/harperreed/healthimport/internal/transforms"
)

// Header aliases MacroFactor has used across export versions.
var (
	foodNameAliases = []string{"food name", "food", "name", "item", "description"}
	timeAliases     = []string{"time", "logged time", "meal time"}
)

type macroFactor struct {
	f     *os.File
	r     *dictReader
	daily bool
}

func newMacroFactor(f *os.File) Importer {
	return &macroFactor{f: f}
}

func (m *macroFactor) Source() string { return "macrofactor" }
func (m *macroFactor) Close() error   { return m.f.Close() }

func (m *macroFactor) Next() (*models.Record, error) {
	if m.r == nil {
		r, err := newDictReader(m.f, ',')
		if err != nil {
			return nil, fmt.Errorf("read nutrition header: %w", err)
		}
		m.r = r
		// Exports without a food column are daily summaries.
		m.daily = !r.has(foodNameAliases...)
	}

	for {
		row, err := m.r.next()
		if err != nil {
			return nil, err
		}

		date, ok := transforms.ParseDate(row.get("date"))
		if !ok {
			continue
		}

		if m.daily {
			return m.dailyRecord(date, row), nil
		}
		rec, ok := m.entryRecord(date, row)
		if !ok {
			continue
		}
		return rec, nil
	}
}

func (m *macroFactor) entryRecord(date string, row row) (*models.Record, bool) {
	foodName := row.get(foodNameAliases...)
	if foodName == "" {
		return nil, false
	}
	timeOfDay := parseFlexibleTime(row.get(timeAliases...))

	rec := models.NewNutritionEntry("macrofactor", date, timeOfDay, foodName)
	rec.SetTextPtr("serving_size", ptr(row.get("serving size", "serving", "portion")))
	setNumber(rec, "serving_qty", row.get("serving qty", "quantity", "servings", "amount"))
	setNumber(rec, "serving_weight_g", row.get("serving weight (g)", "weight (g)", "weight", "grams"))
	setNumber(rec, "calories_kcal", row.get("calories (kcal)", "calories", "energy", "kcal"))
	setNumber(rec, "protein_g", row.get("protein (g)", "protein"))
	setNumber(rec, "fat_g", row.get("fat (g)", "fat"))
	setNumber(rec, "carbs_g", row.get("carbs (g)", "carbs", "carbohydrates"))
	setNumber(rec, "fiber_g", row.get("fiber (g)", "fiber", "fibre"))
	return rec, true
}

func (m *macroFactor) dailyRecord(date string, row row) *models.Record {
	rec := models.NewNutritionDay("macrofactor", date)
	setNumber(rec, "expenditure_kcal", row.get("expenditure (kcal)", "expenditure"))
	setNumber(rec, "calories_consumed_kcal", row.get("calories (kcal)", "calories"))
	setNumber(rec, "target_calories_kcal", row.get("target calories (kcal)", "target calories"))
	setNumber(rec, "weight_lbs", row.get("weight (lbs)", "weight"))
	setNumber(rec, "trend_weight_lbs", row.get("trend weight (lbs)", "trend weight"))
	setNumber(rec, "protein_g", row.get("protein (g)", "protein"))
	setNumber(rec, "fat_g", row.get("fat (g)", "fat"))
	setNumber(rec, "carbs_g", row.get("carbs (g)", "carbs"))
	setNumber(rec, "fiber_g", row.get("fiber (g)", "fiber"))
	setNumber(rec, "alcohol_g", row.get("alcohol (g)", "alcohol"))
	setNumber(rec, "target_protein_g", row.get("target protein (g)", "target protein"))
	setNumber(rec, "target_fat_g", row.get("target fat (g)", "target fat"))
	setNumber(rec, "target_carbs_g", row.get("target carbs (g)", "target carbs"))
	setNumber(rec, "steps", row.get("steps"))
	return rec
}

// parseFlexibleTime accepts 24-hour or 12-hour time strings.
func parseFlexibleTime(s string) string {
	if s == "" {
		return ""
	}
	if t, ok := transforms.ParseTime12h(s); ok {
		return t
	}
	if len(s) == 5 { // HH:MM
		return s + ":00"
	}
	return s
}
