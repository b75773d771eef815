package service

import (
	"math"

	"github.com/blaisecz/health-insights/internal/domain"
	"github.com/blaisecz/health-insights/internal/stats"
)

// TrendRule is the per-metric threshold a recent/older delta must exceed.
type TrendRule struct {
	Threshold     float64
	LowerIsBetter bool
}

// TrendConfig holds the hand-tuned trend windows and thresholds.
type TrendConfig struct {
	// RecentDays is taken from the end of the series.
	RecentDays int
	// OlderDays is taken from the start of the series.
	OlderDays int
	Rules     map[domain.SeriesKind]TrendRule
}

// DefaultTrendConfig compares the last 3 days against the first 4.
func DefaultTrendConfig() TrendConfig {
	return TrendConfig{
		RecentDays: 3,
		OlderDays:  4,
		Rules: map[domain.SeriesKind]TrendRule{
			domain.SeriesSteps:           {Threshold: 500},
			domain.SeriesActiveEnergy:    {Threshold: 50},
			domain.SeriesBasalEnergy:     {Threshold: 50},
			domain.SeriesDistance:        {Threshold: 0.5},
			domain.SeriesExerciseMinutes: {Threshold: 5},
			domain.SeriesStandHours:      {Threshold: 1},
			domain.SeriesSleepHours:      {Threshold: 0.5},
			domain.SeriesRestingHR:       {Threshold: 2, LowerIsBetter: true},
			domain.SeriesAvgHR:           {Threshold: 3, LowerIsBetter: true},
			domain.SeriesHRV:             {Threshold: 5},
			domain.SeriesVO2Max:          {Threshold: 1},
			domain.SeriesBodyMass:        {Threshold: 0.5, LowerIsBetter: true},
			domain.SeriesBodyFat:         {Threshold: 0.5, LowerIsBetter: true},
			domain.SeriesLeanBodyMass:    {Threshold: 0.5},
		},
	}
}

// trendWindows returns how many values form the older and recent windows for a
// series of length n. The older window is the first values and the recent one
// the last, so for n above RecentDays+OlderDays the days in between are ignored.
// A shorter series is split proportionally with nothing left out: the recent
// window is round(n*RecentDays/(RecentDays+OlderDays)), at least 1, and the
// older window is the remainder, e.g. 3 older and 2 recent for n=5.
func (c TrendConfig) trendWindows(n int) (older, recent int) {
	full := c.RecentDays + c.OlderDays
	if full <= 0 || n < 2 {
		return 0, 0
	}
	if n >= full {
		return c.OlderDays, c.RecentDays
	}
	recent = int(math.Round(float64(n) * float64(c.RecentDays) / float64(full)))
	if recent < 1 {
		recent = 1
	}
	older = n - recent
	return older, recent
}

// ComputeTrend compares the recent window of values against the older one.
// Sentinel zeros are excluded per kind; a window without measurements yields stable.
func ComputeTrend(kind domain.SeriesKind, values []domain.DailyValue, cfg TrendConfig) domain.Trend {
	trend := domain.Trend{Direction: domain.TrendStable}

	older, recent := cfg.trendWindows(len(values))
	if older < 1 || recent < 1 {
		return trend
	}

	zeroIsMissing := kind.ZeroIsMissing()
	olderVals := stats.Measured(rawValues(values[:older]), zeroIsMissing)
	recentVals := stats.Measured(rawValues(values[len(values)-recent:]), zeroIsMissing)
	if len(olderVals) == 0 || len(recentVals) == 0 {
		return trend
	}

	trend.OlderAvg = stats.Round2(stats.Mean(olderVals, false))
	trend.RecentAvg = stats.Round2(stats.Mean(recentVals, false))
	delta := stats.Mean(recentVals, false) - stats.Mean(olderVals, false)
	trend.Delta = stats.Round2(delta)

	rule := cfg.Rules[kind]
	switch {
	case delta > rule.Threshold:
		trend.Direction = domain.TrendIncreasing
		trend.Improving = !rule.LowerIsBetter
	case delta < -rule.Threshold:
		trend.Direction = domain.TrendDecreasing
		trend.Improving = rule.LowerIsBetter
	}
	return trend
}

func rawValues(values []domain.DailyValue) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v.Value
	}
	return out
}
