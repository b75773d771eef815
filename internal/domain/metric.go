package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MetricKind identifies a quantity or category type read from the health data source.
type MetricKind string

const (
	KindStepCount        MetricKind = "step_count"
	KindActiveEnergy     MetricKind = "active_energy"
	KindBasalEnergy      MetricKind = "basal_energy"
	KindDistance         MetricKind = "distance"
	KindExerciseMinutes  MetricKind = "exercise_minutes"
	KindStandTime        MetricKind = "stand_time"
	KindHeartRate        MetricKind = "heart_rate"
	KindRestingHeartRate MetricKind = "resting_heart_rate"
	KindHRV              MetricKind = "hrv"
	KindSleepDeep        MetricKind = "sleep_deep"
	KindSleepREM         MetricKind = "sleep_rem"
	KindSleepLight       MetricKind = "sleep_light"
	KindSleepAwake       MetricKind = "sleep_awake"
	KindSleepInBed       MetricKind = "sleep_in_bed"
	KindVO2Max           MetricKind = "vo2_max"
	KindBodyFatPercent   MetricKind = "body_fat_percent"
	KindLeanBodyMass     MetricKind = "lean_body_mass"
	KindBodyMass         MetricKind = "body_mass"
	KindWorkout          MetricKind = "workout"
)

var allMetricKinds = []MetricKind{
	KindStepCount, KindActiveEnergy, KindBasalEnergy, KindDistance,
	KindExerciseMinutes, KindStandTime, KindHeartRate, KindRestingHeartRate,
	KindHRV, KindSleepDeep, KindSleepREM, KindSleepLight, KindSleepAwake,
	KindSleepInBed, KindVO2Max, KindBodyFatPercent, KindLeanBodyMass,
	KindBodyMass, KindWorkout,
}

// AllMetricKinds returns every supported metric kind.
func AllMetricKinds() []MetricKind {
	out := make([]MetricKind, len(allMetricKinds))
	copy(out, allMetricKinds)
	return out
}

// SleepStageKinds returns the sleep analysis kinds in stage order.
func SleepStageKinds() []MetricKind {
	return []MetricKind{KindSleepDeep, KindSleepREM, KindSleepLight, KindSleepAwake, KindSleepInBed}
}

// IsSleepStage reports whether k is one of the sleep analysis kinds.
func (k MetricKind) IsSleepStage() bool {
	switch k {
	case KindSleepDeep, KindSleepREM, KindSleepLight, KindSleepAwake, KindSleepInBed:
		return true
	}
	return false
}

// ParseMetricKind validates s against the closed set of kinds.
func ParseMetricKind(s string) (MetricKind, error) {
	for _, k := range allMetricKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown metric kind %q", ErrInvalidInput, s)
}

// Unit is a canonical or source unit of measure.
type Unit string

const (
	UnitCount    Unit = "count"
	UnitKcal     Unit = "kcal"
	UnitKJ       Unit = "kJ"
	UnitKm       Unit = "km"
	UnitMeter    Unit = "m"
	UnitMile     Unit = "mi"
	UnitMinute   Unit = "min"
	UnitSecond   Unit = "s"
	UnitHour     Unit = "hr"
	UnitBPM      Unit = "count/min"
	UnitMs       Unit = "ms"
	UnitVO2      Unit = "mL/kg/min"
	UnitPercent  Unit = "%"
	UnitFraction Unit = "fraction"
	UnitKg       Unit = "kg"
	UnitGram     Unit = "g"
	UnitPound    Unit = "lb"
)

// unitFactors maps a source unit to (canonical unit, multiplier).
var unitFactors = map[Unit]struct {
	to     Unit
	factor float64
}{
	UnitKJ:       {UnitKcal, 1 / 4.184},
	UnitMeter:    {UnitKm, 0.001},
	UnitMile:     {UnitKm, 1.609344},
	UnitSecond:   {UnitMinute, 1.0 / 60},
	UnitFraction: {UnitPercent, 100},
	UnitGram:     {UnitKg, 0.001},
	UnitPound:    {UnitKg, 0.45359237},
}

// ConvertUnit converts value from one unit into another.
// An empty source unit is taken to already be in the target unit.
func ConvertUnit(value float64, from, to Unit) (float64, error) {
	if from == "" || from == to {
		return value, nil
	}
	if f, ok := unitFactors[from]; ok {
		if f.to == to {
			return value * f.factor, nil
		}
		// second hop, e.g. s -> min -> hr
		if v, err := ConvertUnit(value*f.factor, f.to, to); err == nil {
			return v, nil
		}
	}
	switch {
	case from == UnitMinute && to == UnitHour:
		return value / 60, nil
	case from == UnitHour && to == UnitMinute:
		return value * 60, nil
	}
	return 0, fmt.Errorf("%w: cannot convert %s to %s", ErrInvalidInput, from, to)
}

// AggregationOp is how raw samples reduce to a value for a window.
type AggregationOp string

const (
	OpSum        AggregationOp = "sum"
	OpMostRecent AggregationOp = "most_recent"
	OpStatistics AggregationOp = "statistics"
)

// TimeWindow is a half-open interval [Start, End).
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeWindow returns ErrInvalidWindow unless start < end.
func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	if !start.Before(end) {
		return TimeWindow{}, ErrInvalidWindow
	}
	return TimeWindow{Start: start, End: end}, nil
}

// Contains reports whether t falls inside the window.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// StartOfDay returns local midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DayWindow is [midnight, next midnight) of date's calendar day.
// AddDate keeps DST days correct (23h or 25h long).
func DayWindow(date time.Time, loc *time.Location) TimeWindow {
	start := StartOfDay(date, loc)
	return TimeWindow{Start: start, End: start.AddDate(0, 0, 1)}
}

// SleepLookback is how far before midnight the sleep window opens.
const SleepLookback = 12 * time.Hour

// SleepWindow captures the night that ends on date: [midnight-12h, midnight+12h).
func SleepWindow(date time.Time, loc *time.Location) TimeWindow {
	start := StartOfDay(date, loc)
	return TimeWindow{Start: start.Add(-SleepLookback), End: start.Add(SleepLookback)}
}

// HealthSample is one raw sample as stored by the health data source.
type HealthSample struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Kind            MetricKind `gorm:"type:varchar(32);not null;index:idx_health_samples_kind_start" json:"kind"`
	StartAt         time.Time  `gorm:"not null;index:idx_health_samples_kind_start" json:"start_at"`
	EndAt           time.Time  `gorm:"not null" json:"end_at"`
	Value           float64    `gorm:"not null;default:0" json:"value"`
	Unit            Unit       `gorm:"type:varchar(16)" json:"unit,omitempty"`
	WorkoutType     string     `gorm:"type:varchar(64)" json:"workout_type,omitempty"`
	WorkoutEnergy   float64    `json:"workout_energy,omitempty"`
	WorkoutDistance float64    `json:"workout_distance,omitempty"`
	SourceName      string     `gorm:"type:varchar(128)" json:"source_name,omitempty"`
	ExternalID      *string    `gorm:"type:varchar(255);uniqueIndex:idx_health_samples_external,where:external_id IS NOT NULL" json:"external_id,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (HealthSample) TableName() string {
	return "health_samples"
}

// Duration is the sample's interval length.
func (s HealthSample) Duration() time.Duration {
	return s.EndAt.Sub(s.StartAt)
}

// CreateSampleRequest is one sample in an ingestion batch.
type CreateSampleRequest struct {
	Kind            MetricKind `json:"kind" validate:"required,metric_kind"`
	StartAt         time.Time  `json:"start_at" validate:"required"`
	EndAt           time.Time  `json:"end_at" validate:"required,gtefield=StartAt"`
	Value           float64    `json:"value" validate:"gte=0"`
	Unit            Unit       `json:"unit,omitempty" validate:"omitempty,max=16"`
	WorkoutType     string     `json:"workout_type,omitempty" validate:"omitempty,max=64"`
	WorkoutEnergy   float64    `json:"workout_energy,omitempty" validate:"gte=0"`
	WorkoutDistance float64    `json:"workout_distance,omitempty" validate:"gte=0"`
	SourceName      string     `json:"source_name,omitempty" validate:"omitempty,max=128"`
	ExternalID      *string    `json:"external_id,omitempty" validate:"omitempty,max=255"`
}

// IngestSamplesRequest is the body of POST /v1/samples.
type IngestSamplesRequest struct {
	Samples []CreateSampleRequest `json:"samples" validate:"required,min=1,max=5000,dive"`
}

// IngestSamplesResponse reports how many samples were written.
type IngestSamplesResponse struct {
	Received int `json:"received"`
	Inserted int `json:"inserted"`
}
