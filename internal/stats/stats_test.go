package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	d := Describe([]float64{60, 70, 80})
	assert.Equal(t, 3, d.Count)
	assert.InDelta(t, 70, d.Avg, 1e-9)
	assert.InDelta(t, 10, d.Std, 1e-9)
	assert.Equal(t, 60.0, d.Min)
	assert.Equal(t, 80.0, d.Max)
}

func TestDescribe_Empty(t *testing.T) {
	assert.Equal(t, Descriptive{}, Describe(nil))
}

func TestDescribe_SingleValueHasNoSpread(t *testing.T) {
	d := Describe([]float64{42})
	assert.Equal(t, 0.0, d.Std)
	assert.Equal(t, 42.0, d.Avg)
}

func TestMean_ExcludesSentinelZeros(t *testing.T) {
	values := []float64{8000, 0, 10000, 0, 9000}

	assert.InDelta(t, 9000, Mean(values, true), 1e-9)
	assert.InDelta(t, 5400, Mean(values, false), 1e-9)
}

func TestMean_AllMissing(t *testing.T) {
	assert.Equal(t, 0.0, Mean([]float64{0, 0, 0}, true))
	assert.Equal(t, 0.0, Mean(nil, true))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 7.46, Round2(7.456))
	assert.Equal(t, -1.23, Round2(-1.234))
}
