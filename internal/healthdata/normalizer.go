package healthdata

import "github.com/blaisecz/health-insights/internal/domain"

type unitOp struct {
	unit domain.Unit
	op   domain.AggregationOp
}

var canonical = map[domain.MetricKind]unitOp{
	domain.KindStepCount:        {domain.UnitCount, domain.OpSum},
	domain.KindActiveEnergy:     {domain.UnitKcal, domain.OpSum},
	domain.KindBasalEnergy:      {domain.UnitKcal, domain.OpSum},
	domain.KindDistance:         {domain.UnitKm, domain.OpSum},
	domain.KindExerciseMinutes:  {domain.UnitMinute, domain.OpSum},
	domain.KindStandTime:        {domain.UnitHour, domain.OpSum},
	domain.KindHeartRate:        {domain.UnitBPM, domain.OpStatistics},
	domain.KindRestingHeartRate: {domain.UnitBPM, domain.OpMostRecent},
	domain.KindHRV:              {domain.UnitMs, domain.OpStatistics},
	domain.KindSleepDeep:        {domain.UnitHour, domain.OpSum},
	domain.KindSleepREM:         {domain.UnitHour, domain.OpSum},
	domain.KindSleepLight:       {domain.UnitHour, domain.OpSum},
	domain.KindSleepAwake:       {domain.UnitHour, domain.OpSum},
	domain.KindSleepInBed:       {domain.UnitHour, domain.OpSum},
	domain.KindVO2Max:           {domain.UnitVO2, domain.OpMostRecent},
	domain.KindBodyFatPercent:   {domain.UnitPercent, domain.OpMostRecent},
	domain.KindLeanBodyMass:     {domain.UnitKg, domain.OpMostRecent},
	domain.KindBodyMass:         {domain.UnitKg, domain.OpMostRecent},
	domain.KindWorkout:          {domain.UnitMinute, domain.OpSum},
}

// UnitAndOp returns the canonical unit and aggregation operator for kind.
// Kinds outside the closed set fall back to a plain count sum.
func UnitAndOp(kind domain.MetricKind) (domain.Unit, domain.AggregationOp) {
	if c, ok := canonical[kind]; ok {
		return c.unit, c.op
	}
	return domain.UnitCount, domain.OpSum
}
