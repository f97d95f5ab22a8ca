package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frozenClock(t *testing.T, at time.Time) {
	t.Helper()
	SetClock(clockwork.NewFakeClockAt(at))
	t.Cleanup(func() { SetClock(nil) })
}

func TestAssessFireRisk_NoFires(t *testing.T) {
	a := AssessFireRisk(nil, 10, 7)

	assert.Equal(t, RiskLow, a.RiskLevel)
	assert.Equal(t, 0, a.RiskScore)
	assert.Equal(t, 0, a.TotalFires)
	assert.Nil(t, a.ClosestFire)
	assert.Empty(t, a.Fires)
	assert.Equal(t, 10.0, a.BufferKm)
	assert.Equal(t, 7, a.AnalysisPeriodDays)
}

// Three fires in a 10km buffer: 2km/conf 90/1 day old, 8km/conf 60/10 days
// old, 4km/conf 85/2 days old. Weighted counts: 3·5 + 2·15 + 2·10 + 2·20 =
// 105, clamped to 100 → high.
func TestAssessFireRisk_Scenario(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	frozenClock(t, now)

	fires := []FireDetection{
		{DistanceKm: 2, Confidence: 90, AcquiredAt: now.Add(-24 * time.Hour)},
		{DistanceKm: 8, Confidence: 60, AcquiredAt: now.Add(-10 * 24 * time.Hour)},
		{DistanceKm: 4, Confidence: 85, AcquiredAt: now.Add(-2 * 24 * time.Hour)},
	}

	a := AssessFireRisk(fires, 10, 7)

	assert.Equal(t, 3, a.TotalFires)
	assert.Equal(t, 2, a.FiresWithin5Km)
	assert.Equal(t, 3, a.FiresWithin10Km)
	assert.Equal(t, 100, a.RiskScore)
	assert.Equal(t, RiskHigh, a.RiskLevel)
	require.NotNil(t, a.ClosestFire)
	assert.Equal(t, 2.0, a.ClosestDistanceKm)
	assert.Equal(t, 90.0, a.ClosestFire.Confidence)
}

func TestAssessFireRisk_Levels(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	frozenClock(t, now)

	old := now.Add(-10 * 24 * time.Hour)

	t.Run("single distant stale fire is low", func(t *testing.T) {
		fires := []FireDetection{{DistanceKm: 9, Confidence: 40, AcquiredAt: old}}
		a := AssessFireRisk(fires, 10, 7)
		assert.Equal(t, 5, a.RiskScore)
		assert.Equal(t, RiskLow, a.RiskLevel)
	})

	t.Run("close high-confidence fire is medium", func(t *testing.T) {
		fires := []FireDetection{{DistanceKm: 3, Confidence: 90, AcquiredAt: old}}
		a := AssessFireRisk(fires, 10, 7)
		assert.Equal(t, 30, a.RiskScore)
		assert.Equal(t, RiskLow, a.RiskLevel)

		fires = append(fires, FireDetection{DistanceKm: 4, Confidence: 85, AcquiredAt: old})
		a = AssessFireRisk(fires, 10, 7)
		assert.Equal(t, 60, a.RiskScore)
		assert.Equal(t, RiskMedium, a.RiskLevel)
	})

	t.Run("recent close fires are high", func(t *testing.T) {
		recent := now.Add(-12 * time.Hour)
		fires := []FireDetection{
			{DistanceKm: 1, Confidence: 95, AcquiredAt: recent},
			{DistanceKm: 2, Confidence: 90, AcquiredAt: recent},
		}
		a := AssessFireRisk(fires, 10, 7)
		assert.Equal(t, 100, a.RiskScore)
		assert.Equal(t, RiskHigh, a.RiskLevel)
	})
}

// Score must never decrease when any weighted count grows, and stays in
// [0,100].
func TestAssessFireRisk_Monotonic(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	frozenClock(t, now)

	base := []FireDetection{
		{DistanceKm: 8, Confidence: 50, AcquiredAt: now.Add(-6 * 24 * time.Hour)},
	}
	prev := AssessFireRisk(base, 10, 7).RiskScore

	additions := []FireDetection{
		{DistanceKm: 9, Confidence: 50, AcquiredAt: now.Add(-6 * 24 * time.Hour)}, // total only
		{DistanceKm: 3, Confidence: 50, AcquiredAt: now.Add(-6 * 24 * time.Hour)}, // +close
		{DistanceKm: 9, Confidence: 95, AcquiredAt: now.Add(-6 * 24 * time.Hour)}, // +high confidence
		{DistanceKm: 9, Confidence: 50, AcquiredAt: now.Add(-24 * time.Hour)},     // +recent
		{DistanceKm: 1, Confidence: 99, AcquiredAt: now.Add(-time.Hour)},          // all of the above
	}

	fires := base
	for _, add := range additions {
		fires = append(fires, add)
		score := AssessFireRisk(fires, 10, 7).RiskScore
		assert.GreaterOrEqual(t, score, prev)
		assert.LessOrEqual(t, score, 100)
		assert.GreaterOrEqual(t, score, 0)
		prev = score
	}
}

func TestAssessFireRisk_ReportsAtMostTenFires(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	frozenClock(t, now)

	fires := make([]FireDetection, 15)
	for i := range fires {
		fires[i] = FireDetection{DistanceKm: float64(i), Confidence: 50, AcquiredAt: now}
	}

	a := AssessFireRisk(fires, 20, 7)
	assert.Equal(t, 15, a.TotalFires)
	assert.Len(t, a.Fires, 10)
	assert.Equal(t, 100, a.RiskScore)
}

func TestWithinRadius(t *testing.T) {
	center := Point{Lat: 40, Lon: -100}

	fires := []FireDetection{
		{Point: Point{Lat: 40.02, Lon: -100}},   // ~2.2km north
		{Point: Point{Lat: 40.5, Lon: -100}},    // ~55km north, outside
		{Point: Point{Lat: 40, Lon: -100.012}},  // ~1km west
	}

	kept := WithinRadius(center, fires, 10)
	require.Len(t, kept, 2)
	// Sorted nearest first, distances annotated.
	assert.Less(t, kept[0].DistanceKm, kept[1].DistanceKm)
	assert.InDelta(t, 1.0, kept[0].DistanceKm, 0.1)
	assert.InDelta(t, 2.2, kept[1].DistanceKm, 0.1)
}
