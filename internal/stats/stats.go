// Package stats holds the descriptive statistics shared by the query and series layers.
package stats

import "math"

// Descriptive holds basic statistical measures for a set of samples.
type Descriptive struct {
	Count int     `json:"count" example:"96"`
	Avg   float64 `json:"avg" example:"72.4"`
	Std   float64 `json:"std" example:"8.1"`
	Min   float64 `json:"min" example:"51"`
	Max   float64 `json:"max" example:"148"`
}

// Describe calculates descriptive statistics for a slice of values.
// Results are not rounded; use Round2 for presentation.
func Describe(values []float64) Descriptive {
	if len(values) == 0 {
		return Descriptive{}
	}

	sum := 0.0
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values {
		sum += v
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	avg := sum / float64(len(values))

	sumSquares := 0.0
	for _, v := range values {
		diff := v - avg
		sumSquares += diff * diff
	}
	std := 0.0
	if len(values) > 1 {
		std = math.Sqrt(sumSquares / float64(len(values)-1))
	}

	return Descriptive{
		Count: len(values),
		Avg:   avg,
		Std:   std,
		Min:   minVal,
		Max:   maxVal,
	}
}

// Measured drops the 0 sentinel when zeroIsMissing is set.
func Measured(values []float64, zeroIsMissing bool) []float64 {
	if !zeroIsMissing {
		return values
	}
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v != 0 {
			out = append(out, v)
		}
	}
	return out
}

// Mean averages the measured values. A series with no measurements averages to 0.
func Mean(values []float64, zeroIsMissing bool) float64 {
	measured := Measured(values, zeroIsMissing)
	if len(measured) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range measured {
		sum += v
	}
	return sum / float64(len(measured))
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
