package domain

import (
	"math"
	"time"
)

// Crop health status categories, ordered worst to best.
const (
	StatusCritical  = "critical"
	StatusPoor      = "poor"
	StatusFair      = "fair"
	StatusGood      = "good"
	StatusExcellent = "excellent"
)

// NDVI trend labels.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// trendSlopeEpsilon is the dead band around zero slope; a 16-day MODIS
// cadence makes anything inside it indistinguishable from sensor noise.
const trendSlopeEpsilon = 0.001

// NDVISample is one dated vegetation-index measurement for a field.
type NDVISample struct {
	Date      time.Time `json:"date"`
	NDVI      float64   `json:"ndvi"`
	Satellite string    `json:"satellite"`
	Product   string    `json:"product"`
	Quality   int       `json:"quality"`
}

// HealthStatus maps an NDVI value to its status category. Thresholds are
// inclusive lower bounds evaluated top-down.
func HealthStatus(ndvi float64) string {
	switch {
	case ndvi >= 0.7:
		return StatusExcellent
	case ndvi >= 0.5:
		return StatusGood
	case ndvi >= 0.3:
		return StatusFair
	case ndvi >= 0.1:
		return StatusPoor
	default:
		return StatusCritical
	}
}

// HealthScore normalizes NDVI from [-1,1] onto [0,100], rounded to two
// decimals. This is the auto-fill formula for health records stored without
// an explicit score. The satellite-ingestion path uses VegetationScore
// instead; see the package doc for why the two are kept separate.
func HealthScore(ndvi float64) float64 {
	return roundTo(clamp01((ndvi+1)/2)*100, 2)
}

// VegetationScore normalizes NDVI onto [0,100] treating -0.2 as the floor of
// the useful range, rounded to one decimal. Used by satellite ingestion.
func VegetationScore(ndvi float64) float64 {
	return roundTo(clamp01((ndvi+0.2)/1.2)*100, 1)
}

// TrendSlope computes the ordinary-least-squares slope of values indexed
// 0..n-1. Fewer than two values, or a degenerate x spread, yield 0.
func TrendSlope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	xMean := float64(n-1) / 2
	var yMean float64
	for _, v := range values {
		yMean += v
	}
	yMean /= float64(n)

	var num, den float64
	for i, v := range values {
		dx := float64(i) - xMean
		num += dx * (v - yMean)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// ClassifyTrend labels a slope as improving, declining, or stable.
func ClassifyTrend(slope float64) string {
	switch {
	case slope > trendSlopeEpsilon:
		return TrendImproving
	case slope < -trendSlopeEpsilon:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func roundTo(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}
