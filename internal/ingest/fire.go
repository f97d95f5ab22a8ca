package ingest

import (
	"context"
	"fmt"

	"github.com/agrisat/field-monitor/internal/domain"
)

// Fire check defaults. Scheduled monitoring widens the buffer to catch fires
// approaching from outside the default perimeter.
const (
	DefaultFireBufferKm = 10.0
	DefaultFireDays     = 7
)

// FireResult summarizes one field's fire check.
type FireResult struct {
	FieldID       string                `json:"field_id"`
	Status        string                `json:"status"`
	Assessment    domain.RiskAssessment `json:"assessment"`
	AlertCreated  bool                  `json:"alert_created"`
	AlertID       string                `json:"alert_id,omitempty"`
	AlertSeverity string                `json:"alert_severity,omitempty"`
}

// CheckFire fetches fire detections around the field's centroid, assesses
// risk, and raises a deduplicated alert when fires are present and alerting
// is enabled.
func (s *Service) CheckFire(ctx context.Context, fieldID string, bufferKm float64, days int) (*FireResult, error) {
	if bufferKm <= 0 {
		bufferKm = DefaultFireBufferKm
	}
	if days <= 0 {
		days = DefaultFireDays
	}

	field, centroid, err := s.fieldCentroid(ctx, fieldID)
	if err != nil {
		return nil, err
	}

	var fires []domain.FireDetection
	err = s.retry.Do(ctx, s.logger, "firms.near", func(ctx context.Context) error {
		var ferr error
		fires, ferr = s.fires.FiresNearPoint(ctx, centroid, bufferKm, days, "")
		return ferr
	})
	if err != nil {
		s.metrics.IngestFailures.WithLabelValues("fire").Inc()
		return nil, fmt.Errorf("fetch fires for field %s: %w", field.ID, err)
	}

	assessment := domain.AssessFireRisk(fires, bufferKm, days)
	res := &FireResult{FieldID: field.ID, Status: StatusSuccess, Assessment: assessment}

	if assessment.TotalFires > 0 && s.alertingEnabled {
		alert, created, err := s.createFireAlert(ctx, field, assessment)
		if err != nil {
			return nil, err
		}
		if created {
			res.AlertCreated = true
			res.AlertID = alert.ID
			res.AlertSeverity = alert.Severity
		}
	}

	s.logger.Info("fire check complete",
		"field_id", field.ID, "buffer_km", bufferKm,
		"total_fires", assessment.TotalFires,
		"risk_level", assessment.RiskLevel, "risk_score", assessment.RiskScore,
		"alert_created", res.AlertCreated)
	return res, nil
}
