package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/agrisat/field-monitor/internal/domain"
	"github.com/agrisat/field-monitor/internal/store"
)

// AlertTypeFire is the alert type raised by fire checks.
const AlertTypeFire = "fire"

// fireAlertCooldown suppresses repeat fire alerts for a field while an
// unresolved one this recent exists.
const fireAlertCooldown = 6 * time.Hour

// AlertNotification is the payload dispatched when an alert is created.
type AlertNotification struct {
	AlertID  string `json:"alert_id"`
	FieldID  string `json:"field_id"`
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Title    string `json:"title"`
}

// fireSeverity maps a risk assessment to an alert severity. The level check
// runs before the score check at each tier, matching the alerting contract.
func fireSeverity(level string, score int) string {
	if level == domain.RiskHigh || score >= 70 {
		return "high"
	}
	if level == domain.RiskMedium || score >= 40 {
		return "medium"
	}
	return "low"
}

// fireAlertTitle uses the urgent form when the closest fire is within 5km.
func fireAlertTitle(fieldName string, a domain.RiskAssessment) string {
	if a.ClosestDistanceKm > 0 && a.ClosestDistanceKm <= 5 {
		return fmt.Sprintf("🔥 URGENT: Fire detected within %.1fkm of %s", a.ClosestDistanceKm, fieldName)
	}
	return fmt.Sprintf("🔥 Fire Alert: %d fire(s) detected near %s", a.TotalFires, fieldName)
}

func fireAlertMessage(a domain.RiskAssessment) string {
	parts := []string{
		fmt.Sprintf("Fire risk level: %s", strings.ToUpper(a.RiskLevel)),
		fmt.Sprintf("Risk score: %d/100", a.RiskScore),
		fmt.Sprintf("Total fires detected: %d", a.TotalFires),
	}
	if a.ClosestDistanceKm > 0 {
		parts = append(parts, fmt.Sprintf("Closest fire: %.1fkm away", a.ClosestDistanceKm))
	}
	if a.FiresWithin5Km > 0 {
		parts = append(parts, fmt.Sprintf("Fires within 5km: %d", a.FiresWithin5Km))
	}
	return strings.Join(parts, "\n")
}

// createFireAlert raises a fire alert for the field unless an unresolved one
// exists inside the cooldown window. Returns the alert and whether it was
// newly created.
func (s *Service) createFireAlert(ctx context.Context, field *store.Field, a domain.RiskAssessment) (*store.Alert, bool, error) {
	cutoff := domain.Now().Add(-s.fireCooldown)
	existing, err := s.alerts.RecentUnresolved(ctx, field.ID, AlertTypeFire, cutoff)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		s.metrics.AlertsSuppressed.WithLabelValues(AlertTypeFire).Inc()
		s.logger.Info("recent fire alert exists, suppressing",
			"field_id", field.ID, "existing_alert_id", existing.ID)
		return existing, false, nil
	}

	metadata, err := json.Marshal(map[string]any{
		"risk_assessment": a,
		"buffer_km":       a.BufferKm,
		"days_checked":    a.AnalysisPeriodDays,
		"created_by_task": true,
	})
	if err != nil {
		return nil, false, fmt.Errorf("marshal alert metadata: %w", err)
	}

	alert := &store.Alert{
		FieldID:  field.ID,
		Type:     AlertTypeFire,
		Severity: fireSeverity(a.RiskLevel, a.RiskScore),
		Title:    fireAlertTitle(field.Name, a),
		Message:  fireAlertMessage(a),
		Metadata: string(metadata),
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		return nil, false, err
	}
	s.metrics.AlertsCreated.WithLabelValues(AlertTypeFire, alert.Severity).Inc()
	s.logger.Info("fire alert created",
		"alert_id", alert.ID, "field_id", field.ID, "severity", alert.Severity)

	s.dispatchNotification(ctx, alert)
	return alert, true, nil
}

// dispatchNotification is fire-and-forget: delivery failures are logged and
// never fail the task that created the alert.
func (s *Service) dispatchNotification(ctx context.Context, alert *store.Alert) {
	if s.notifier == nil {
		return
	}
	n := AlertNotification{
		AlertID:  alert.ID,
		FieldID:  alert.FieldID,
		Type:     alert.Type,
		Severity: alert.Severity,
		Title:    alert.Title,
	}
	if err := s.notifier.NotifyAlert(ctx, n); err != nil {
		s.logger.Warn("alert notification failed", "alert_id", alert.ID, "error", err)
	}
}
