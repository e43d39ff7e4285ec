// ABOUTME: Tests for the Garmin Connect client and record sources.
// ABOUTME: Runs against a local httptest server returning canned API payloads.
package garmin

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/healthimport/internal/models"
)

const activityListBody = `[
  {
    "activityId": 18273645,
    "activityName": "Morning Run",
    "startTimeLocal": "2025-03-10 06:31:00",
    "activityType": {"typeKey": "running"},
    "eventType": {"typeKey": "uncategorized"},
    "distance": 6453.0,
    "duration": 2105.4,
    "movingDuration": 2090.0,
    "averageSpeed": 3.066,
    "maxSpeed": 4.1,
    "calories": 412.0,
    "averageHR": 148.0,
    "maxHR": 172.0,
    "elevationGain": 65.0,
    "avgPower": 245.0,
    "avgStrideLength": 105.0,
    "avgVerticalOscillation": 82.0,
    "aerobicTrainingEffect": 3.5,
    "activityTrainingLoad": 98.2,
    "vO2MaxValue": 52.0,
    "steps": 7242.0
  }
]`

const splitsBody = `{
  "lapDTOs": [
    {"lapIndex": 1, "startTimeGMT": "2025-03-10T12:31:00.0", "distance": 1609.34, "duration": 521.3, "averageSpeed": 3.08, "averageHR": 145.0},
    {"lapIndex": 2, "startTimeGMT": "2025-03-10T12:39:41.0", "distance": 1609.34, "duration": 518.9, "averageSpeed": 3.10, "averageHR": 151.0}
  ]
}`

const weighInsBody = `{
  "dailyWeightSummaries": [
    {"summaryDate": "2025-11-25", "latestWeight": {"weight": 71400.0, "bmi": 24.1, "bodyFat": 18.2, "muscleMass": 55100.0, "boneMass": 3200.0, "bodyWater": 55.0}},
    {"summaryDate": "2025-11-24"}
  ]
}`

const trainingStatusBody = `{
  "mostRecentVO2Max": {
    "generic": {"calendarDate": "2025-11-20", "vo2MaxPreciseValue": 52.0},
    "cycling": {"calendarDate": "2025-11-18", "vo2MaxPreciseValue": 48.5}
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts = append(opts, WithBaseURL(srv.URL))
	return NewClient("test-token", opts...)
}

func drainSource(t *testing.T, src interface {
	Next() (*models.Record, error)
}) []*models.Record {
	t.Helper()
	var recs []*models.Record
	for {
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			return recs
		}
		require.NoError(t, err)
		recs = append(recs, rec)
	}
}

func TestActivityRecords(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		switch {
		case r.URL.Path == "/activitylist-service/activities/search/activities":
			_, _ = w.Write([]byte(activityListBody))
		case r.URL.Path == "/activity-service/activity/18273645/splits":
			_, _ = w.Write([]byte(splitsBody))
		default:
			http.NotFound(w, r)
		}
	})

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	recs := drainSource(t, client.ActivityRecords(context.Background(), start, end))
	require.Len(t, recs, 1)
	assert.Equal(t, "Bearer test-token", gotAuth)

	rec := recs[0]
	assert.Equal(t, models.TableActivities, rec.Table)
	assert.Equal(t, "garmin", rec.Source)
	assert.Equal(t, int64(18273645), rec.NativeID)
	assert.Equal(t, "2025-03-10T06:31:00", rec.Key[0].Value.Str)
	assert.Equal(t, "running", rec.Key[1].Value.Str)
	// 6453 m is 4.01 miles.
	assert.InDelta(t, 4.0097, rec.Fields["distance_miles"].Num, 0.001)
	// 3.066 m/s is roughly 8:45/mile.
	assert.InDelta(t, 8.748, rec.Fields["avg_pace_min_per_mile"].Num, 0.01)
	// 65 m elevation gain in feet.
	assert.InDelta(t, 213.25, rec.Fields["elevation_gain_ft"].Num, 0.01)
	// Stride 105 cm to feet, oscillation 82 mm to inches.
	assert.InDelta(t, 3.4449, rec.Fields["avg_stride_length_ft"].Num, 0.001)
	assert.InDelta(t, 3.2283, rec.Fields["avg_vertical_oscillation_in"].Num, 0.001)
	assert.InDelta(t, 98.2, rec.Fields["training_load"].Num, 0.001)

	require.Len(t, rec.Laps, 2)
	assert.Equal(t, 1, rec.Laps[0].Index)
	assert.InDelta(t, 1.0, rec.Laps[0].Fields["distance_miles"].Num, 0.001)
	assert.InDelta(t, 145, rec.Laps[0].Fields["avg_hr"].Num, 0.001)
}

func TestWeightRecords(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(weighInsBody))
	})

	start := time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 11, 26, 0, 0, 0, 0, time.UTC)
	recs := drainSource(t, client.WeightRecords(context.Background(), start, end))
	require.Len(t, recs, 1, "summaries without a weigh-in are dropped")

	rec := recs[0]
	assert.Equal(t, models.TableBodyMeasurements, rec.Table)
	assert.Equal(t, "2025-11-25", rec.Key[0].Value.Str)
	assert.Equal(t, "", rec.Key[1].Value.Str, "daily summaries have no time of day")
	// 71400 g is 157.4 lbs.
	assert.InDelta(t, 157.41, rec.Fields["weight_lbs"].Num, 0.01)
	assert.InDelta(t, 121.47, rec.Fields["muscle_mass_lbs"].Num, 0.01)
	assert.InDelta(t, 18.2, rec.Fields["body_fat_pct"].Num, 0.001)
}

func TestVO2MaxRecords(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(trainingStatusBody))
	})

	start := time.Date(2025, 11, 18, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)
	recs := drainSource(t, client.VO2MaxRecords(context.Background(), start, end))
	// Every day returns the same snapshot; dedup leaves one per type.
	require.Len(t, recs, 2)

	assert.Equal(t, "2025-11-20", recs[0].Key[0].Value.Str)
	assert.Equal(t, "running", recs[0].Key[1].Value.Str)
	assert.InDelta(t, 52.0, recs[0].Fields["vo2max_value"].Num, 0.001)
	assert.Equal(t, "cycling", recs[1].Key[1].Value.Str)
}

func TestUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Activities(context.Background(), time.Now().AddDate(0, 0, -7), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unauthorized")
}

func TestResponseCache(t *testing.T) {
	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	hits := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(weighInsBody))
	}, WithCache(cache))

	ctx := context.Background()
	start := time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 11, 26, 0, 0, 0, 0, time.UTC)

	_, err = client.WeighIns(ctx, start, end)
	require.NoError(t, err)
	_, err = client.WeighIns(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, 1, hits, "second fetch is served from the cache")
}
