package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthStatus(t *testing.T) {
	tests := []struct {
		name     string
		ndvi     float64
		expected string
	}{
		{"dense canopy", 0.85, StatusExcellent},
		{"excellent boundary", 0.7, StatusExcellent},
		{"good", 0.6, StatusGood},
		{"good boundary", 0.5, StatusGood},
		{"fair", 0.35, StatusFair},
		{"fair boundary", 0.3, StatusFair},
		{"poor", 0.2, StatusPoor},
		{"poor boundary", 0.1, StatusPoor},
		{"bare soil", 0.05, StatusCritical},
		{"water", -0.4, StatusCritical},
		{"lower bound", -1, StatusCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HealthStatus(tt.ndvi))
		})
	}
}

// Status must be monotonically non-decreasing in NDVI under the ordering
// critical < poor < fair < good < excellent.
func TestHealthStatus_Monotonic(t *testing.T) {
	rank := map[string]int{
		StatusCritical:  0,
		StatusPoor:      1,
		StatusFair:      2,
		StatusGood:      3,
		StatusExcellent: 4,
	}

	prev := -1
	for ndvi := -1.0; ndvi <= 1.0; ndvi += 0.01 {
		r, ok := rank[HealthStatus(ndvi)]
		assert.True(t, ok, "unknown status for ndvi=%f", ndvi)
		assert.GreaterOrEqual(t, r, prev, "status rank decreased at ndvi=%f", ndvi)
		prev = r
	}
}

func TestHealthScore(t *testing.T) {
	tests := []struct {
		name     string
		ndvi     float64
		expected float64
	}{
		{"lower bound", -1, 0},
		{"zero", 0, 50},
		{"upper bound", 1, 100},
		{"healthy", 0.6, 80},
		{"rounded to two decimals", 0.333, 66.65},
		{"below range clamps", -1.5, 0},
		{"above range clamps", 1.5, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, HealthScore(tt.ndvi), 1e-9)
		})
	}
}

func TestHealthScore_Deterministic(t *testing.T) {
	for ndvi := -1.0; ndvi <= 1.0; ndvi += 0.05 {
		assert.Equal(t, HealthScore(ndvi), HealthScore(ndvi))
		assert.Equal(t, VegetationScore(ndvi), VegetationScore(ndvi))
	}
}

func TestVegetationScore(t *testing.T) {
	tests := []struct {
		name     string
		ndvi     float64
		expected float64
	}{
		{"floor of useful range", -0.2, 0},
		{"water clamps to zero", -0.8, 0},
		{"upper bound", 1, 100},
		{"healthy", 0.4, 50},
		{"single decimal rounding", 0.5, 58.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, VegetationScore(tt.ndvi), 1e-9)
		})
	}
}

// The two formulas intentionally disagree; pin the divergence so neither
// call path silently adopts the other's normalization.
func TestScoreFormulasDiverge(t *testing.T) {
	assert.Equal(t, 50.0, HealthScore(0))
	assert.InDelta(t, 16.7, VegetationScore(0), 1e-9)
}

func TestTrendSlope(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"empty", nil, 0},
		{"single value", []float64{0.5}, 0},
		{"flat", []float64{0.5, 0.5, 0.5}, 0},
		{"linear increase", []float64{0.1, 0.2, 0.3, 0.4}, 0.1},
		{"linear decrease", []float64{0.4, 0.3, 0.2, 0.1}, -0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, TrendSlope(tt.values), 1e-9)
		})
	}
}

func TestClassifyTrend(t *testing.T) {
	assert.Equal(t, TrendImproving, ClassifyTrend(0.01))
	assert.Equal(t, TrendDeclining, ClassifyTrend(-0.01))
	assert.Equal(t, TrendStable, ClassifyTrend(0.001))
	assert.Equal(t, TrendStable, ClassifyTrend(-0.001))
	assert.Equal(t, TrendStable, ClassifyTrend(0))
}
