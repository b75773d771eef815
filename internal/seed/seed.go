// Package seed generates synthetic health samples for local development.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/blaisecz/health-insights/internal/domain"
	"github.com/blaisecz/health-insights/internal/healthdata"
	"github.com/blaisecz/health-insights/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultDays is how many days back Run seeds when Options.Days is zero.
	DefaultDays = 40
	sourceName  = "seed"
)

// Options controls what Generate produces.
type Options struct {
	Days     int
	Location *time.Location
	// Now defaults to time.Now.
	Now  time.Time
	Rand *rand.Rand
}

func (o Options) withDefaults() Options {
	if o.Days <= 0 {
		o.Days = DefaultDays
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return o
}

// Run seeds the store with synthetic samples. Every sample carries a
// deterministic external_id, so running it again only fills in missing days.
func Run(ctx context.Context, repo repository.SampleRepository, opts Options) (int64, error) {
	samples := Generate(opts)
	inserted, err := repo.CreateBatch(ctx, samples)
	if err != nil {
		return 0, fmt.Errorf("failed to store seed samples: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Int("generated", len(samples)).
		Int64("inserted", inserted).
		Msg("seed completed")
	return inserted, nil
}

// Generate returns samples for each of the last opts.Days days, today included.
func Generate(opts Options) []domain.HealthSample {
	opts = opts.withDefaults()
	today := domain.StartOfDay(opts.Now, opts.Location)

	var samples []domain.HealthSample
	for i := 0; i < opts.Days; i++ {
		g := dayGenerator{
			day: today.AddDate(0, 0, -i),
			rng: opts.Rand,
		}
		samples = append(samples, g.generate()...)
	}
	return samples
}

type dayGenerator struct {
	day     time.Time
	rng     *rand.Rand
	samples []domain.HealthSample
	seq     int
}

func (g *dayGenerator) add(kind domain.MetricKind, start, end time.Time, value float64) *domain.HealthSample {
	unit, _ := healthdata.UnitAndOp(kind)
	if kind.IsSleepStage() || kind == domain.KindWorkout {
		unit = ""
	}
	g.seq++
	externalID := fmt.Sprintf("%s-%s-%s-%d", sourceName, g.day.Format(time.DateOnly), kind, g.seq)
	g.samples = append(g.samples, domain.HealthSample{
		ID:         uuid.New(),
		Kind:       kind,
		StartAt:    start.UTC(),
		EndAt:      end.UTC(),
		Value:      value,
		Unit:       unit,
		SourceName: sourceName,
		ExternalID: &externalID,
	})
	return &g.samples[len(g.samples)-1]
}

func (g *dayGenerator) between(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func (g *dayGenerator) generate() []domain.HealthSample {
	g.sleep()

	var steps float64
	for hour := 8; hour < 20; hour++ {
		start := g.day.Add(time.Duration(hour) * time.Hour)
		end := start.Add(time.Hour)
		s := float64(200 + g.rng.Intn(1200))
		steps += s
		g.add(domain.KindStepCount, start, end, s)
		g.add(domain.KindActiveEnergy, start, end, g.between(15, 60))
		g.add(domain.KindHeartRate, start, start.Add(time.Minute), g.between(60, 110))
	}

	dayEnd := g.day.AddDate(0, 0, 1).Add(-time.Minute)
	g.add(domain.KindDistance, g.day.Add(8*time.Hour), g.day.Add(20*time.Hour), steps*0.00075)
	g.add(domain.KindBasalEnergy, g.day, dayEnd, g.between(1550, 1800))
	g.add(domain.KindStandTime, g.day.Add(8*time.Hour), g.day.Add(20*time.Hour), float64(7+g.rng.Intn(6)))
	g.add(domain.KindRestingHeartRate, g.day.Add(7*time.Hour), g.day.Add(7*time.Hour+time.Minute), g.between(52, 64))
	g.add(domain.KindHRV, g.day.Add(6*time.Hour), g.day.Add(6*time.Hour+time.Minute), g.between(30, 70))

	if g.rng.Float32() < 0.6 {
		start := g.day.Add(time.Duration(17+g.rng.Intn(2)) * time.Hour)
		minutes := 20 + g.rng.Intn(50)
		end := start.Add(time.Duration(minutes) * time.Minute)
		w := g.add(domain.KindWorkout, start, end, 0)
		w.WorkoutType = []string{"running", "cycling", "strength", "walking"}[g.rng.Intn(4)]
		w.WorkoutEnergy = float64(minutes) * g.between(6, 11)
		w.WorkoutDistance = float64(minutes) * 0.15
		g.add(domain.KindExerciseMinutes, start, end, float64(minutes))
	}

	if g.day.Weekday() == time.Monday {
		morning := g.day.Add(7 * time.Hour)
		g.add(domain.KindBodyMass, morning, morning, g.between(72, 76))
		g.add(domain.KindBodyFatPercent, morning, morning, g.between(17, 20))
		g.add(domain.KindVO2Max, morning, morning, g.between(42, 46))
	}

	return g.samples
}

// sleep generates the night ending on the generator's day: in bed from
// around 22:30 the evening before, cycling through light, deep and REM.
func (g *dayGenerator) sleep() {
	bedtime := g.day.Add(-90*time.Minute + time.Duration(g.rng.Intn(60))*time.Minute)
	cursor := bedtime.Add(time.Duration(5+g.rng.Intn(15)) * time.Minute)
	wake := bedtime.Add(time.Duration(390+g.rng.Intn(150)) * time.Minute)

	stages := []struct {
		kind    domain.MetricKind
		minutes [2]int
	}{
		{domain.KindSleepLight, [2]int{25, 50}},
		{domain.KindSleepDeep, [2]int{15, 40}},
		{domain.KindSleepLight, [2]int{10, 25}},
		{domain.KindSleepREM, [2]int{10, 30}},
	}
	for cursor.Before(wake) {
		for _, stage := range stages {
			d := time.Duration(stage.minutes[0]+g.rng.Intn(stage.minutes[1]-stage.minutes[0])) * time.Minute
			end := cursor.Add(d)
			if end.After(wake) {
				end = wake
			}
			if !end.After(cursor) {
				break
			}
			g.add(stage.kind, cursor, end, 0)
			cursor = end
		}
		if cursor.Before(wake) && g.rng.Float32() < 0.3 {
			end := cursor.Add(time.Duration(2+g.rng.Intn(8)) * time.Minute)
			if end.After(wake) {
				end = wake
			}
			g.add(domain.KindSleepAwake, cursor, end, 0)
			cursor = end
		}
	}
	g.add(domain.KindSleepInBed, bedtime, wake, 0)
}
