// ABOUTME: Garmin Connect API client for activities, weigh-ins, and VO2max.
// ABOUTME: Authenticated with a bearer token; responses cached to cut repeat fetches.
package garmin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://connectapi.garmin.com"

// Client talks to the Garmin Connect REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	cache      *Cache
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithCache attaches a response cache.
func WithCache(cache *Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient creates a client authenticated with a bearer token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// activityDTO mirrors the activity list payload. Metric units throughout:
// meters, m/s, cm for stride, mm for vertical oscillation.
type activityDTO struct {
	ActivityID     int64   `json:"activityId"`
	ActivityName   string  `json:"activityName"`
	StartTimeLocal string  `json:"startTimeLocal"`
	LocationName   *string `json:"locationName"`
	ActivityType   struct {
		TypeKey string `json:"typeKey"`
	} `json:"activityType"`
	EventType struct {
		TypeKey string `json:"typeKey"`
	} `json:"eventType"`
	Distance                *float64 `json:"distance"`
	Duration                *float64 `json:"duration"`
	MovingDuration          *float64 `json:"movingDuration"`
	AverageSpeed            *float64 `json:"averageSpeed"`
	MaxSpeed                *float64 `json:"maxSpeed"`
	Calories                *float64 `json:"calories"`
	AverageHR               *float64 `json:"averageHR"`
	MaxHR                   *float64 `json:"maxHR"`
	ElevationGain           *float64 `json:"elevationGain"`
	ElevationLoss           *float64 `json:"elevationLoss"`
	MinElevation            *float64 `json:"minElevation"`
	MaxElevation            *float64 `json:"maxElevation"`
	AverageRunningCadence   *float64 `json:"averageRunningCadenceInStepsPerMinute"`
	MaxRunningCadence       *float64 `json:"maxRunningCadenceInStepsPerMinute"`
	AvgPower                *float64 `json:"avgPower"`
	MaxPower                *float64 `json:"maxPower"`
	NormPower               *float64 `json:"normPower"`
	AvgStrideLength         *float64 `json:"avgStrideLength"`
	AvgVerticalOscillation  *float64 `json:"avgVerticalOscillation"`
	AvgGroundContactTime    *float64 `json:"avgGroundContactTime"`
	AvgVerticalRatio        *float64 `json:"avgVerticalRatio"`
	AerobicTrainingEffect   *float64 `json:"aerobicTrainingEffect"`
	AnaerobicTrainingEffect *float64 `json:"anaerobicTrainingEffect"`
	ActivityTrainingLoad    *float64 `json:"activityTrainingLoad"`
	VO2MaxValue             *float64 `json:"vO2MaxValue"`
	Steps                   *float64 `json:"steps"`
}

type lapDTO struct {
	LapIndex           int      `json:"lapIndex"`
	StartTimeGMT       string   `json:"startTimeGMT"`
	Distance           *float64 `json:"distance"`
	Duration           *float64 `json:"duration"`
	MovingDuration     *float64 `json:"movingDuration"`
	AverageSpeed       *float64 `json:"averageSpeed"`
	MaxSpeed           *float64 `json:"maxSpeed"`
	AverageHR          *float64 `json:"averageHR"`
	MaxHR              *float64 `json:"maxHR"`
	AverageRunCadence  *float64 `json:"averageRunCadence"`
	MaxRunCadence      *float64 `json:"maxRunCadence"`
	AveragePower       *float64 `json:"averagePower"`
	MaxPower           *float64 `json:"maxPower"`
	NormalizedPower    *float64 `json:"normalizedPower"`
	Calories           *float64 `json:"calories"`
	ElevationGain      *float64 `json:"elevationGain"`
	ElevationLoss      *float64 `json:"elevationLoss"`
	StrideLength       *float64 `json:"strideLength"`
	VerticalOscillation *float64 `json:"verticalOscillation"`
	GroundContactTime  *float64 `json:"groundContactTime"`
	VerticalRatio      *float64 `json:"verticalRatio"`
}

type splitsDTO struct {
	LapDTOs []lapDTO `json:"lapDTOs"`
}

type weighInsDTO struct {
	DailyWeightSummaries []struct {
		SummaryDate  string `json:"summaryDate"`
		LatestWeight *struct {
			Weight      *float64 `json:"weight"` // grams
			BMI         *float64 `json:"bmi"`
			BodyFat     *float64 `json:"bodyFat"`
			MuscleMass  *float64 `json:"muscleMass"` // grams
			BoneMass    *float64 `json:"boneMass"`   // grams
			BodyWater   *float64 `json:"bodyWater"`
			VisceralFat *float64 `json:"visceralFat"`
		} `json:"latestWeight"`
	} `json:"dailyWeightSummaries"`
}

type vo2maxEntryDTO struct {
	CalendarDate       string   `json:"calendarDate"`
	VO2MaxPreciseValue *float64 `json:"vo2MaxPreciseValue"`
}

type trainingStatusDTO struct {
	MostRecentVO2Max *struct {
		Generic *vo2maxEntryDTO `json:"generic"`
		Cycling *vo2maxEntryDTO `json:"cycling"`
	} `json:"mostRecentVO2Max"`
}

// Activities fetches the activity list for a date range (inclusive).
func (c *Client) Activities(ctx context.Context, start, end time.Time) ([]activityDTO, error) {
	path := fmt.Sprintf("/activitylist-service/activities/search/activities?startDate=%s&endDate=%s",
		url.QueryEscape(start.Format("2006-01-02")), url.QueryEscape(end.Format("2006-01-02")))
	var out []activityDTO
	if err := c.get(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("fetch activities: %w", err)
	}
	return out, nil
}

// ActivitySplits fetches the per-lap splits for one activity.
func (c *Client) ActivitySplits(ctx context.Context, activityID int64) (*splitsDTO, error) {
	path := fmt.Sprintf("/activity-service/activity/%d/splits", activityID)
	var out splitsDTO
	if err := c.get(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("fetch splits for %d: %w", activityID, err)
	}
	return &out, nil
}

// WeighIns fetches daily weigh-in summaries for a date range.
func (c *Client) WeighIns(ctx context.Context, start, end time.Time) (*weighInsDTO, error) {
	path := fmt.Sprintf("/weight-service/weight/range/%s/%s?includeAll=true",
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	var out weighInsDTO
	if err := c.get(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("fetch weigh-ins: %w", err)
	}
	return &out, nil
}

// TrainingStatus fetches the training status snapshot for one day, which
// carries the most recent running and cycling VO2max readings.
func (c *Client) TrainingStatus(ctx context.Context, day time.Time) (*trainingStatusDTO, error) {
	path := "/metrics-service/metrics/trainingstatus/aggregated/" + day.Format("2006-01-02")
	var out trainingStatusDTO
	if err := c.get(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("fetch training status: %w", err)
	}
	return &out, nil
}

// get performs a cached, authenticated GET and decodes the JSON body.
func (c *Client) get(ctx context.Context, path string, out any) error {
	if c.cache != nil {
		if body, ok := c.cache.Get(path); ok {
			return json.Unmarshal(body, out)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("unauthorized: token expired or invalid")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if c.cache != nil {
		c.cache.Set(path, body)
	}
	return json.Unmarshal(body, out)
}
