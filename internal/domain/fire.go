package domain

import (
	"sort"
	"time"
)

// Fire risk levels.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Risk scoring weights and thresholds. The weighted-count model is crude but
// monotone in every input, which is the property alerting depends on.
const (
	riskWeightTotal          = 5
	riskWeightClose          = 15
	riskWeightHighConfidence = 10
	riskWeightRecent         = 20

	closeFireKm            = 5
	highConfidenceFloor    = 80
	recentFireWindow       = 3 * 24 * time.Hour
	riskScoreHighThreshold = 70
	riskScoreMedThreshold  = 40

	maxReportedFires = 10
)

// FireDetection is one satellite thermal-anomaly detection.
type FireDetection struct {
	Point
	AcquiredAt time.Time `json:"acquired_at"`
	Brightness float64   `json:"brightness"`
	Confidence float64   `json:"confidence"`
	FRP        float64   `json:"frp"` // fire radiative power, MW
	DistanceKm float64   `json:"distance_km"`
}

// RiskAssessment summarizes fire activity around a field.
type RiskAssessment struct {
	RiskLevel          string          `json:"risk_level"`
	RiskScore          int             `json:"risk_score"`
	TotalFires         int             `json:"total_fires"`
	FiresWithin5Km     int             `json:"fires_within_5km"`
	FiresWithin10Km    int             `json:"fires_within_10km"`
	ClosestFire        *FireDetection  `json:"closest_fire,omitempty"`
	ClosestDistanceKm  float64         `json:"closest_distance_km,omitempty"`
	AnalysisPeriodDays int             `json:"analysis_period_days"`
	BufferKm           float64         `json:"buffer_km"`
	Fires              []FireDetection `json:"fires"`
}

// WithinRadius keeps detections inside radiusKm of center, annotating each
// with its distance and returning them nearest first.
func WithinRadius(center Point, fires []FireDetection, radiusKm float64) []FireDetection {
	kept := make([]FireDetection, 0, len(fires))
	for _, f := range fires {
		d := roundTo(DistanceKm(center, f.Point), 2)
		if d <= radiusKm {
			f.DistanceKm = d
			kept = append(kept, f)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].DistanceKm < kept[j].DistanceKm })
	return kept
}

// AssessFireRisk scores fire risk from detections already filtered to the
// buffer radius and annotated with distances. Zero detections mean zero
// score and level low with no closest fire.
func AssessFireRisk(fires []FireDetection, bufferKm float64, periodDays int) RiskAssessment {
	a := RiskAssessment{
		RiskLevel:          RiskLow,
		TotalFires:         len(fires),
		AnalysisPeriodDays: periodDays,
		BufferKm:           bufferKm,
	}
	if len(fires) == 0 {
		a.Fires = []FireDetection{}
		return a
	}

	cutoff := clock.Now().Add(-recentFireWindow)
	var close5, close10, highConf, recent int
	closest := fires[0]
	for _, f := range fires {
		if f.DistanceKm <= closeFireKm {
			close5++
		}
		if f.DistanceKm <= 2*closeFireKm {
			close10++
		}
		if f.Confidence >= highConfidenceFloor {
			highConf++
		}
		if !f.AcquiredAt.IsZero() && !f.AcquiredAt.Before(cutoff) {
			recent++
		}
		if f.DistanceKm < closest.DistanceKm {
			closest = f
		}
	}

	score := len(fires)*riskWeightTotal +
		close5*riskWeightClose +
		highConf*riskWeightHighConfidence +
		recent*riskWeightRecent
	if score > 100 {
		score = 100
	}

	a.RiskScore = score
	switch {
	case score >= riskScoreHighThreshold:
		a.RiskLevel = RiskHigh
	case score >= riskScoreMedThreshold:
		a.RiskLevel = RiskMedium
	}

	a.FiresWithin5Km = close5
	a.FiresWithin10Km = close10
	a.ClosestFire = &closest
	a.ClosestDistanceKm = closest.DistanceKm

	reported := fires
	if len(reported) > maxReportedFires {
		reported = reported[:maxReportedFires]
	}
	a.Fires = reported
	return a
}
