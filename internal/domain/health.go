package domain

import (
	"fmt"
	"time"
)

// SleepSummary describes the night that ended on a record's date.
// TotalDuration is deep+REM+light; awake time is excluded.
type SleepSummary struct {
	TotalDuration time.Duration `json:"total_duration" swaggertype:"integer"`
	DeepSleep     time.Duration `json:"deep_sleep" swaggertype:"integer"`
	REMSleep      time.Duration `json:"rem_sleep" swaggertype:"integer"`
	LightSleep    time.Duration `json:"light_sleep" swaggertype:"integer"`
	AwakeTime     time.Duration `json:"awake_time" swaggertype:"integer"`
	Bedtime       *time.Time    `json:"bedtime,omitempty"`
	WakeTime      *time.Time    `json:"wake_time,omitempty"`
}

// Hours returns the total sleep in hours.
func (s *SleepSummary) Hours() float64 {
	if s == nil {
		return 0
	}
	return s.TotalDuration.Hours()
}

// WorkoutSummary is built once from a source sample and never mutated.
type WorkoutSummary struct {
	Type     string        `json:"type"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Duration time.Duration `json:"duration" swaggertype:"integer"`
	Energy   float64       `json:"energy_kcal"`
	Distance float64       `json:"distance_km"`
}

// ActivitySummary holds the day's activity totals in canonical units.
type ActivitySummary struct {
	Steps           float64          `json:"steps" example:"8421"`
	ActiveEnergy    float64          `json:"active_energy_kcal" example:"512.4"`
	TotalEnergy     float64          `json:"total_energy_kcal" example:"2230.9"`
	Distance        float64          `json:"distance_km" example:"6.3"`
	ExerciseMinutes float64          `json:"exercise_minutes" example:"34"`
	StandHours      float64          `json:"stand_hours" example:"10"`
	Workouts        []WorkoutSummary `json:"workouts"`
}

// HeartSummary holds heart metrics for a day. HRV is nil when not measured.
type HeartSummary struct {
	RestingHR float64  `json:"resting_hr" example:"58"`
	AvgHR     float64  `json:"avg_hr" example:"72.4"`
	MinHR     float64  `json:"min_hr" example:"51"`
	MaxHR     float64  `json:"max_hr" example:"148"`
	HRV       *float64 `json:"hrv,omitempty" example:"46.2"`
}

// DailyHealthRecord is the aggregate for one calendar day. It is a value owned by the caller.
type DailyHealthRecord struct {
	Date     time.Time       `json:"date"`
	Sleep    *SleepSummary   `json:"sleep,omitempty"`
	Activity ActivitySummary `json:"activity"`
	Heart    HeartSummary    `json:"heart"`
}

// DailyValue is one point of a uniform series. Value 0 means no measurement
// for kinds whose SeriesKind.ZeroIsMissing is set.
type DailyValue struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// SeriesKind selects the per-day scalar a historical series tracks.
type SeriesKind string

const (
	SeriesSteps           SeriesKind = "steps"
	SeriesActiveEnergy    SeriesKind = "active_energy"
	SeriesBasalEnergy     SeriesKind = "basal_energy"
	SeriesDistance        SeriesKind = "distance"
	SeriesExerciseMinutes SeriesKind = "exercise_minutes"
	SeriesStandHours      SeriesKind = "stand_hours"
	SeriesSleepHours      SeriesKind = "sleep_hours"
	SeriesRestingHR       SeriesKind = "resting_hr"
	SeriesAvgHR           SeriesKind = "avg_hr"
	SeriesHRV             SeriesKind = "hrv"
	SeriesVO2Max          SeriesKind = "vo2_max"
	SeriesBodyMass        SeriesKind = "body_mass"
	SeriesBodyFat         SeriesKind = "body_fat"
	SeriesLeanBodyMass    SeriesKind = "lean_body_mass"
)

var seriesMetrics = map[SeriesKind]MetricKind{
	SeriesSteps:           KindStepCount,
	SeriesActiveEnergy:    KindActiveEnergy,
	SeriesBasalEnergy:     KindBasalEnergy,
	SeriesDistance:        KindDistance,
	SeriesExerciseMinutes: KindExerciseMinutes,
	SeriesStandHours:      KindStandTime,
	SeriesRestingHR:       KindRestingHeartRate,
	SeriesAvgHR:           KindHeartRate,
	SeriesHRV:             KindHRV,
	SeriesVO2Max:          KindVO2Max,
	SeriesBodyMass:        KindBodyMass,
	SeriesBodyFat:         KindBodyFatPercent,
	SeriesLeanBodyMass:    KindLeanBodyMass,
}

// ParseSeriesKind validates s.
func ParseSeriesKind(s string) (SeriesKind, error) {
	k := SeriesKind(s)
	if k == SeriesSleepHours {
		return k, nil
	}
	if _, ok := seriesMetrics[k]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown series kind %q", ErrInvalidInput, s)
}

// Metric returns the source metric behind the series. Sleep hours has none
// since it is derived from several stage kinds.
func (k SeriesKind) Metric() (MetricKind, bool) {
	m, ok := seriesMetrics[k]
	return m, ok
}

// ZeroIsMissing reports whether a 0 in this series is the no-measurement sentinel.
// Exercise minutes and stand hours can genuinely be zero.
func (k SeriesKind) ZeroIsMissing() bool {
	switch k {
	case SeriesExerciseMinutes, SeriesStandHours:
		return false
	}
	return true
}

// DayFailure records a day whose whole fan-out failed.
type DayFailure struct {
	Date  time.Time `json:"date"`
	Error string    `json:"error"`
	Err   error     `json:"-"`
}

// Series is an ascending-by-date run of daily values with one entry per day.
type Series struct {
	Kind     SeriesKind   `json:"kind"`
	Unit     Unit         `json:"unit"`
	Values   []DailyValue `json:"values"`
	Average  float64      `json:"average"`
	Trend    Trend        `json:"trend"`
	Failures []DayFailure `json:"failures,omitempty"`
}

// TrendDirection is the movement of recent values against older ones.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// Trend compares the recent part of a series against its older part.
type Trend struct {
	Direction TrendDirection `json:"direction"`
	Delta     float64        `json:"delta"`
	RecentAvg float64        `json:"recent_avg"`
	OlderAvg  float64        `json:"older_avg"`
	Improving bool           `json:"improving"`
}

// WeeklyAggregate summarises a range of consecutive days ending today.
type WeeklyAggregate struct {
	From                 time.Time                   `json:"from"`
	To                   time.Time                   `json:"to"`
	Days                 int                         `json:"days"`
	DaysWithData         int                         `json:"days_with_data"`
	Records              []DailyHealthRecord         `json:"records"`
	Series               map[SeriesKind][]DailyValue `json:"series"`
	AvgSteps             float64                     `json:"avg_steps"`
	AvgSleepHours        float64                     `json:"avg_sleep_hours"`
	AvgRestingHR         float64                     `json:"avg_resting_hr"`
	AvgHRV               float64                     `json:"avg_hrv"`
	AvgActiveEnergy      float64                     `json:"avg_active_energy"`
	TotalExerciseMinutes float64                     `json:"total_exercise_minutes"`
	TotalWorkouts        int                         `json:"total_workouts"`
	Trends               map[SeriesKind]Trend        `json:"trends"`
	Failures             []DayFailure                `json:"failures,omitempty"`
}
