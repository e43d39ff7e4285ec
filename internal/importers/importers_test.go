// ABOUTME: Tests for the source file importers against realistic export fixtures.
package importers

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/healthimport/internal/models"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func drain(t *testing.T, imp Importer) []*models.Record {
	t.Helper()
	defer imp.Close()
	var recs []*models.Record
	for {
		rec, err := imp.Next()
		if errors.Is(err, io.EOF) {
			return recs
		}
		require.NoError(t, err)
		recs = append(recs, rec)
	}
}

func TestOpenUnknownSource(t *testing.T) {
	_, err := Open("fitbit", "whatever.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source")
}

func TestGarminActivities(t *testing.T) {
	path := writeFixture(t, "activities.csv", `Activity Type,Date,Title,Distance,Calories,Time,Moving Time,Avg HR,Max HR,Avg Pace,Best Pace,Total Ascent,Total Descent,Avg Cadence,Avg Stride Length,Avg Power,Steps,Aerobic TE
Running,2025-03-10 06:31:00,Morning Run,4.01,412,0:35:05,0:34:50,148,172,8:45,7:52,213,"1,024",168,1.05,245,"7,242",3.5
Treadmill Running,2025-03-12 06:15:00,,3.00,280,0:28:00,--,--,--,9:20,--,--,--,--,--,--,--,--
`)
	imp, err := Open("garmin_activities", path)
	require.NoError(t, err)
	recs := drain(t, imp)
	require.Len(t, recs, 2)

	run := recs[0]
	assert.Equal(t, models.TableActivities, run.Table)
	assert.Equal(t, "garmin", run.Source)
	assert.Equal(t, "2025-03-10T06:31:00", run.Key[0].Value.Str)
	assert.Equal(t, "Running", run.Key[1].Value.Str)
	assert.InDelta(t, 4.01, run.Fields["distance_miles"].Num, 0.001)
	assert.InDelta(t, 2105, run.Fields["duration_seconds"].Num, 0.001)
	assert.InDelta(t, 8.75, run.Fields["avg_pace_min_per_mile"].Num, 0.001)
	assert.InDelta(t, 1024, run.Fields["elevation_loss_ft"].Num, 0.001)
	assert.InDelta(t, 7242, run.Fields["steps"].Num, 0.001)
	// Stride length converts meters to feet.
	assert.InDelta(t, 3.4449, run.Fields["avg_stride_length_ft"].Num, 0.001)
	assert.InDelta(t, 0, run.Fields["is_indoor"].Num, 0.001)

	treadmill := recs[1]
	assert.InDelta(t, 1, treadmill.Fields["is_indoor"].Num, 0.001)
	_, hasHR := treadmill.Fields["avg_hr"]
	assert.False(t, hasHR, "-- fields stay absent")
}

func TestGarminWeight(t *testing.T) {
	path := writeFixture(t, "weight.csv", `Time,Weight,Change,BMI,Body Fat,Skeletal Muscle Mass,Bone Mass,Body Water
" Nov 25, 2025",
9:25 AM,157.4 lbs,--,24.1,18.2 %,121.5 lbs,7.1 lbs,55.0 %
" Nov 24, 2025",
7:02 AM,158.0 lbs,0.6 lbs,24.2,--,--,--,--
`)
	imp, err := Open("garmin_weight", path)
	require.NoError(t, err)
	recs := drain(t, imp)
	require.Len(t, recs, 2)

	first := recs[0]
	assert.Equal(t, models.TableBodyMeasurements, first.Table)
	assert.Equal(t, "2025-11-25", first.Key[0].Value.Str)
	assert.Equal(t, "09:25:00", first.Key[1].Value.Str)
	assert.InDelta(t, 157.4, first.Fields["weight_lbs"].Num, 0.001)
	assert.InDelta(t, 18.2, first.Fields["body_fat_pct"].Num, 0.001)
	assert.InDelta(t, 121.5, first.Fields["muscle_mass_lbs"].Num, 0.001)
	_, hasChange := first.Fields["weight_change_lbs"]
	assert.False(t, hasChange)

	second := recs[1]
	assert.Equal(t, "2025-11-24", second.Key[0].Value.Str)
	assert.InDelta(t, 0.6, second.Fields["weight_change_lbs"].Num, 0.001)
}

func TestGarminVO2Max(t *testing.T) {
	path := writeFixture(t, "vo2max.csv", `VO2 Max
Date,Activity Type,VO2 Max
Nov 20, 2025,Running,52.0
"Nov 18, 2025",Cycling,48.5
2025-11-15,Running,51.2
bad date,Running,50
`)
	imp, err := Open("garmin_vo2max", path)
	require.NoError(t, err)
	recs := drain(t, imp)
	require.Len(t, recs, 3)

	assert.Equal(t, models.TableVO2Max, recs[0].Table)
	assert.Equal(t, "2025-11-20", recs[0].Key[0].Value.Str)
	assert.Equal(t, "Running", recs[0].Key[1].Value.Str)
	assert.InDelta(t, 52.0, recs[0].Fields["vo2max_value"].Num, 0.001)

	// Quoted month-name date
	assert.Equal(t, "2025-11-18", recs[1].Key[0].Value.Str)
	assert.Equal(t, "Cycling", recs[1].Key[1].Value.Str)
	assert.InDelta(t, 48.5, recs[1].Fields["vo2max_value"].Num, 0.001)

	// ISO date, no comma to rejoin
	assert.Equal(t, "2025-11-15", recs[2].Key[0].Value.Str)
	assert.InDelta(t, 51.2, recs[2].Fields["vo2max_value"].Num, 0.001)
}

func TestSixWeek(t *testing.T) {
	path := writeFixture(t, "workouts.csv", `Date;Workout;Goal;Period;Week;Day;Time;Set 1;Set 2;Set 3;Set 4;Set 5;Sum of Sets;Kcal
1/24/2024 8:16 PM;Push-ups;100;Beginner;2;3;0:14:30;20;18;16;14;12;80;45
1/25/2024 7:30 AM;Plank;;Beginner;2;4;0:10:00;1:00;0:50;0:45;;;2:35;30
`)
	imp, err := Open("six_week", path)
	require.NoError(t, err)
	recs := drain(t, imp)
	require.Len(t, recs, 2)

	pushups := recs[0]
	assert.Equal(t, models.TableStrengthWorkouts, pushups.Table)
	assert.Equal(t, "2024-01-24", pushups.Key[0].Value.Str)
	assert.Equal(t, "Push-ups", pushups.Key[1].Value.Str)
	assert.Equal(t, "20:16:00", pushups.Key[2].Value.Str)
	assert.InDelta(t, 20, pushups.Fields["set1"].Num, 0.001)
	assert.InDelta(t, 80, pushups.Fields["total_value"].Num, 0.001)
	assert.InDelta(t, 870, pushups.Fields["duration_seconds"].Num, 0.001)

	// Plank sets are times, stored as seconds.
	plank := recs[1]
	assert.InDelta(t, 60, plank.Fields["set1"].Num, 0.001)
	assert.InDelta(t, 50, plank.Fields["set2"].Num, 0.001)
	assert.InDelta(t, 155, plank.Fields["total_value"].Num, 0.001)
	_, hasSet4 := plank.Fields["set4"]
	assert.False(t, hasSet4)
}

func TestMacroFactorEntries(t *testing.T) {
	path := writeFixture(t, "food.csv", `Date,Time,Food Name,Serving Size,Serving Qty,Calories (kcal),Protein (g),Fat (g),Carbs (g),Fiber (g)
2025-01-15,08:30,Oatmeal,1 cup,1,150,5,3,27,4
2025-01-15,12:45,Chicken Breast,6 oz,1,280,52,6,0,0
2025-01-15,,,,,,,,,
`)
	imp, err := Open("macrofactor", path)
	require.NoError(t, err)
	recs := drain(t, imp)
	require.Len(t, recs, 2, "rows without a food name are dropped")

	oats := recs[0]
	assert.Equal(t, models.TableNutritionEntries, oats.Table)
	assert.Equal(t, "2025-01-15", oats.Key[0].Value.Str)
	assert.Equal(t, "08:30:00", oats.Key[1].Value.Str)
	assert.Equal(t, "Oatmeal", oats.Key[2].Value.Str)
	assert.InDelta(t, 150, oats.Fields["calories_kcal"].Num, 0.001)
	assert.Equal(t, "1 cup", oats.Fields["serving_size"].Str)
}

func TestMacroFactorDailySummary(t *testing.T) {
	path := writeFixture(t, "daily.csv", `Date,Calories (kcal),Expenditure (kcal),Protein (g),Fat (g),Carbs (g),Trend Weight (lbs),Steps
2025-01-15,2150,2600,160,70,220,157.8,9500
`)
	imp, err := Open("macrofactor", path)
	require.NoError(t, err)
	recs := drain(t, imp)
	require.Len(t, recs, 1)

	day := recs[0]
	assert.Equal(t, models.TableNutritionDaily, day.Table)
	assert.Equal(t, "2025-01-15", day.Key[0].Value.Str)
	assert.InDelta(t, 2150, day.Fields["calories_consumed_kcal"].Num, 0.001)
	assert.InDelta(t, 2600, day.Fields["expenditure_kcal"].Num, 0.001)
	assert.InDelta(t, 157.8, day.Fields["trend_weight_lbs"].Num, 0.001)
}

func TestAppleHealthRestingHR(t *testing.T) {
	path := writeFixture(t, "export.xml", `<?xml version="1.0" encoding="UTF-8"?>
<HealthData locale="en_US">
 <Record type="HKQuantityTypeIdentifierStepCount" value="100" startDate="2025-11-24 08:00:00 -0800" endDate="2025-11-24 08:10:00 -0800" sourceName="iPhone"/>
 <Record type="HKQuantityTypeIdentifierRestingHeartRate" value="48" unit="count/min" startDate="2025-11-24 08:00:00 -0800" endDate="2025-11-24 08:00:00 -0800" sourceName="Apple Watch">
  <MetadataEntry key="HKMetadataKeyHeartRateMotionContext" value="0"/>
 </Record>
 <Record type="HKQuantityTypeIdentifierRestingHeartRate" value="51.6" unit="count/min" startDate="2025-11-25 08:00:00 -0800" endDate="2025-11-25 08:00:00 -0800" sourceName="Apple Watch"/>
</HealthData>
`)
	imp, err := Open("apple_healthkit", path)
	require.NoError(t, err)
	recs := drain(t, imp)
	require.Len(t, recs, 2, "only resting HR records survive the filter")

	first := recs[0]
	assert.Equal(t, models.TableRestingHR, first.Table)
	assert.Equal(t, "apple_healthkit", first.Source)
	assert.Equal(t, "2025-11-24", first.Key[0].Value.Str)
	assert.InDelta(t, 48, first.Fields["resting_hr"].Num, 0.001)
	assert.Equal(t, "Apple Watch", first.Fields["source_name"].Str)

	// Fractional readings truncate to whole bpm.
	assert.InDelta(t, 51, recs[1].Fields["resting_hr"].Num, 0.001)
}
