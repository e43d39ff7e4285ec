// ABOUTME: Record sources backed by the Garmin Connect API.
// ABOUTME: Convert metric API payloads into normalized imperial records.
package garmin

import (
	"context"
	"io"
	"time"

	"github.com/harperreed/healthimport/internal/models"
	"github.com/harperreed/healthimport/internal/transforms"
)

// ActivitySource yields one record per activity in a date range, each
// carrying the Garmin activity id and per-lap splits.
type ActivitySource struct {
	client     *Client
	ctx        context.Context
	start, end time.Time
	fetched    bool
	queue      []activityDTO
}

// ActivityRecords creates an activity source for a date range.
func (c *Client) ActivityRecords(ctx context.Context, start, end time.Time) *ActivitySource {
	return &ActivitySource{client: c, ctx: ctx, start: start, end: end}
}

func (s *ActivitySource) Source() string { return "garmin_api_activities" }

func (s *ActivitySource) Next() (*models.Record, error) {
	if !s.fetched {
		activities, err := s.client.Activities(s.ctx, s.start, s.end)
		if err != nil {
			return nil, err
		}
		s.queue = activities
		s.fetched = true
	}
	if len(s.queue) == 0 {
		return nil, io.EOF
	}

	dto := s.queue[0]
	s.queue = s.queue[1:]
	rec := convertActivity(dto)

	// Splits are best-effort: an activity without laps is still worth
	// importing.
	if splits, err := s.client.ActivitySplits(s.ctx, dto.ActivityID); err == nil {
		for _, lap := range splits.LapDTOs {
			rec.Laps = append(rec.Laps, convertLap(lap))
		}
	}
	return rec, nil
}

func convertActivity(dto activityDTO) *models.Record {
	startTime, _ := transforms.ParseDateTime(dto.StartTimeLocal)
	rec := models.NewActivity("garmin", startTime, dto.ActivityType.TypeKey)
	rec.NativeID = dto.ActivityID

	rec.SetTextPtr("title", strPtr(dto.ActivityName))
	rec.SetTextPtr("event_type", strPtr(dto.EventType.TypeKey))
	rec.SetTextPtr("location_name", dto.LocationName)

	if dto.Distance != nil {
		rec.SetNum("distance_miles", transforms.MetersToMiles(*dto.Distance))
	}
	rec.SetNumPtr("duration_seconds", dto.Duration)
	rec.SetNumPtr("moving_time_seconds", dto.MovingDuration)
	rec.SetNumPtr("calories_total", dto.Calories)
	rec.SetNumPtr("avg_hr", dto.AverageHR)
	rec.SetNumPtr("max_hr", dto.MaxHR)

	if v := dto.AverageSpeed; v != nil && *v > 0 {
		rec.SetNum("avg_speed_mph", transforms.MpsToMph(*v))
		if pace, ok := transforms.MpsToPaceMinPerMile(*v); ok {
			rec.SetNum("avg_pace_min_per_mile", pace)
		}
	}
	if v := dto.MaxSpeed; v != nil && *v > 0 {
		rec.SetNum("max_speed_mph", transforms.MpsToMph(*v))
	}

	setFeet(rec, "elevation_gain_ft", dto.ElevationGain)
	setFeet(rec, "elevation_loss_ft", dto.ElevationLoss)
	setFeet(rec, "min_elevation_ft", dto.MinElevation)
	setFeet(rec, "max_elevation_ft", dto.MaxElevation)

	rec.SetNumPtr("avg_cadence", dto.AverageRunningCadence)
	rec.SetNumPtr("max_cadence", dto.MaxRunningCadence)
	rec.SetNumPtr("avg_power_watts", dto.AvgPower)
	rec.SetNumPtr("max_power_watts", dto.MaxPower)
	rec.SetNumPtr("normalized_power_watts", dto.NormPower)
	if v := dto.AvgStrideLength; v != nil && *v > 0 {
		// API reports stride length in centimeters.
		rec.SetNum("avg_stride_length_ft", transforms.MetersToFeet(*v/100))
	}
	if v := dto.AvgVerticalOscillation; v != nil && *v > 0 {
		// Millimeters in the API payload.
		rec.SetNum("avg_vertical_oscillation_in", transforms.CmToInches(*v/10))
	}
	rec.SetNumPtr("avg_ground_contact_time_ms", dto.AvgGroundContactTime)
	rec.SetNumPtr("avg_vertical_ratio", dto.AvgVerticalRatio)

	rec.SetNumPtr("aerobic_te", dto.AerobicTrainingEffect)
	rec.SetNumPtr("anaerobic_te", dto.AnaerobicTrainingEffect)
	rec.SetNumPtr("training_load", dto.ActivityTrainingLoad)
	rec.SetNumPtr("vo2max_value", dto.VO2MaxValue)
	rec.SetNumPtr("steps", dto.Steps)
	return rec
}

func convertLap(dto lapDTO) models.Lap {
	fields := make(map[string]models.Value)
	setLap := func(col string, v *float64) {
		if v != nil {
			fields[col] = models.Num(*v)
		}
	}

	if dto.StartTimeGMT != "" {
		fields["start_time"] = models.Text(dto.StartTimeGMT)
	}
	if dto.Distance != nil {
		fields["distance_miles"] = models.Num(transforms.MetersToMiles(*dto.Distance))
	}
	setLap("duration_seconds", dto.Duration)
	setLap("moving_duration_seconds", dto.MovingDuration)
	if v := dto.AverageSpeed; v != nil && *v > 0 {
		fields["avg_speed_mph"] = models.Num(transforms.MpsToMph(*v))
		if pace, ok := transforms.MpsToPaceMinPerMile(*v); ok {
			fields["avg_pace_min_per_mile"] = models.Num(pace)
		}
	}
	if v := dto.MaxSpeed; v != nil && *v > 0 {
		fields["max_speed_mph"] = models.Num(transforms.MpsToMph(*v))
	}
	setLap("avg_hr", dto.AverageHR)
	setLap("max_hr", dto.MaxHR)
	setLap("avg_cadence", dto.AverageRunCadence)
	setLap("max_cadence", dto.MaxRunCadence)
	setLap("avg_power_watts", dto.AveragePower)
	setLap("max_power_watts", dto.MaxPower)
	setLap("normalized_power_watts", dto.NormalizedPower)
	setLap("calories", dto.Calories)
	if v := dto.ElevationGain; v != nil {
		fields["elevation_gain_ft"] = models.Num(transforms.MetersToFeet(*v))
	}
	if v := dto.ElevationLoss; v != nil {
		fields["elevation_loss_ft"] = models.Num(transforms.MetersToFeet(*v))
	}
	if v := dto.StrideLength; v != nil && *v > 0 {
		fields["avg_stride_length_ft"] = models.Num(transforms.MetersToFeet(*v / 100))
	}
	if v := dto.VerticalOscillation; v != nil && *v > 0 {
		fields["avg_vertical_oscillation_in"] = models.Num(transforms.CmToInches(*v))
	}
	setLap("avg_ground_contact_time_ms", dto.GroundContactTime)
	setLap("avg_vertical_ratio", dto.VerticalRatio)

	return models.Lap{Index: dto.LapIndex, Fields: fields}
}

// WeightSource yields one body measurement per daily weigh-in summary.
type WeightSource struct {
	client     *Client
	ctx        context.Context
	start, end time.Time
	fetched    bool
	queue      []*models.Record
}

// WeightRecords creates a weigh-in source for a date range.
func (c *Client) WeightRecords(ctx context.Context, start, end time.Time) *WeightSource {
	return &WeightSource{client: c, ctx: ctx, start: start, end: end}
}

func (s *WeightSource) Source() string { return "garmin_api_weight" }

func (s *WeightSource) Next() (*models.Record, error) {
	if !s.fetched {
		resp, err := s.client.WeighIns(s.ctx, s.start, s.end)
		if err != nil {
			return nil, err
		}
		for _, summary := range resp.DailyWeightSummaries {
			latest := summary.LatestWeight
			if latest == nil || latest.Weight == nil {
				continue
			}
			// Daily summaries carry no time of day.
			rec := models.NewBodyMeasurement("garmin", summary.SummaryDate, "")
			rec.SetNum("weight_lbs", transforms.GramsToLbs(*latest.Weight))
			rec.SetNumPtr("bmi", latest.BMI)
			rec.SetNumPtr("body_fat_pct", latest.BodyFat)
			if latest.MuscleMass != nil {
				rec.SetNum("muscle_mass_lbs", transforms.GramsToLbs(*latest.MuscleMass))
			}
			if latest.BoneMass != nil {
				rec.SetNum("bone_mass_lbs", transforms.GramsToLbs(*latest.BoneMass))
			}
			rec.SetNumPtr("body_water_pct", latest.BodyWater)
			rec.SetNumPtr("visceral_fat_level", latest.VisceralFat)
			s.queue = append(s.queue, rec)
		}
		s.fetched = true
	}
	if len(s.queue) == 0 {
		return nil, io.EOF
	}
	rec := s.queue[0]
	s.queue = s.queue[1:]
	return rec, nil
}

// VO2MaxSource walks a date range day by day through the training status
// endpoint, collecting running and cycling readings.
type VO2MaxSource struct {
	client          *Client
	ctx             context.Context
	day, start, end time.Time
	seen            map[string]bool
	queue           []*models.Record
}

// VO2MaxRecords creates a VO2max source walking from end back to start.
func (c *Client) VO2MaxRecords(ctx context.Context, start, end time.Time) *VO2MaxSource {
	return &VO2MaxSource{client: c, ctx: ctx, day: end, start: start, end: end, seen: make(map[string]bool)}
}

func (s *VO2MaxSource) Source() string { return "garmin_api_vo2max" }

func (s *VO2MaxSource) Next() (*models.Record, error) {
	for {
		if len(s.queue) > 0 {
			rec := s.queue[0]
			s.queue = s.queue[1:]
			return rec, nil
		}
		if s.day.Before(s.start) {
			return nil, io.EOF
		}

		// Individual bad days are skipped, same as a gap in the data.
		status, err := s.client.TrainingStatus(s.ctx, s.day)
		s.day = s.day.AddDate(0, 0, -1)
		if err != nil || status.MostRecentVO2Max == nil {
			continue
		}
		s.collect(status.MostRecentVO2Max.Generic, "running")
		s.collect(status.MostRecentVO2Max.Cycling, "cycling")
	}
}

func (s *VO2MaxSource) collect(entry *vo2maxEntryDTO, activityType string) {
	if entry == nil || entry.VO2MaxPreciseValue == nil || entry.CalendarDate == "" {
		return
	}
	key := entry.CalendarDate + "_" + activityType
	if s.seen[key] {
		return
	}
	if entry.CalendarDate < s.start.Format("2006-01-02") || entry.CalendarDate > s.end.Format("2006-01-02") {
		return
	}
	s.seen[key] = true

	rec := models.NewVO2Max("garmin", entry.CalendarDate, activityType)
	rec.SetNum("vo2max_value", *entry.VO2MaxPreciseValue)
	s.queue = append(s.queue, rec)
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func setFeet(rec *models.Record, column string, meters *float64) {
	if meters != nil {
		rec.SetNum(column, transforms.MetersToFeet(*meters))
	}
}
