package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agrisat/field-monitor/internal/domain"
	"gorm.io/gorm"
)

// AlertRepository reads and writes alerts.
type AlertRepository struct {
	db *gorm.DB
}

// NewAlertRepository creates an alert repository.
func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create persists a new alert.
func (r *AlertRepository) Create(ctx context.Context, alert *Alert) error {
	if err := r.db.WithContext(ctx).Create(alert).Error; err != nil {
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

// AlertByID fetches one alert, returning domain.ErrAlertNotFound when it does
// not exist.
func (r *AlertRepository) AlertByID(ctx context.Context, id string) (*Alert, error) {
	var a Alert
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("alert %s: %w", id, domain.ErrAlertNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch alert %s: %w", id, err)
	}
	return &a, nil
}

// ListByField returns the field's alerts, newest first.
func (r *AlertRepository) ListByField(ctx context.Context, fieldID string) ([]Alert, error) {
	var alerts []Alert
	err := r.db.WithContext(ctx).
		Where("field_id = ?", fieldID).
		Order("created_at DESC").
		Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, nil
}

// RecentUnresolved returns the newest unresolved alert of one type for a
// field created on or after the cutoff, or nil when there is none.
func (r *AlertRepository) RecentUnresolved(ctx context.Context, fieldID, alertType string, cutoff time.Time) (*Alert, error) {
	var a Alert
	err := r.db.WithContext(ctx).
		Where("field_id = ? AND type = ? AND resolved = ? AND created_at >= ?",
			fieldID, alertType, false, cutoff).
		Order("created_at DESC").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find unresolved alert: %w", err)
	}
	return &a, nil
}

// Resolve marks an alert resolved, stamping the resolution time and resolver.
func (r *AlertRepository) Resolve(ctx context.Context, id, resolvedBy string) (*Alert, error) {
	a, err := r.AlertByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := domain.Now()
	a.Resolved = true
	a.ResolvedAt = &now
	a.ResolvedBy = resolvedBy
	if err := r.db.WithContext(ctx).Save(a).Error; err != nil {
		return nil, fmt.Errorf("resolve alert %s: %w", id, err)
	}
	return a, nil
}

// Reopen clears an alert's resolution, making it active again.
func (r *AlertRepository) Reopen(ctx context.Context, id string) (*Alert, error) {
	a, err := r.AlertByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Resolved = false
	a.ResolvedAt = nil
	a.ResolvedBy = ""
	if err := r.db.WithContext(ctx).Save(a).Error; err != nil {
		return nil, fmt.Errorf("reopen alert %s: %w", id, err)
	}
	return a, nil
}

// DeleteResolvedBefore removes resolved alerts of one type older than the
// cutoff, returning how many were removed.
func (r *AlertRepository) DeleteResolvedBefore(ctx context.Context, alertType string, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("type = ? AND resolved = ? AND created_at < ?", alertType, true, cutoff).
		Delete(&Alert{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete resolved alerts: %w", res.Error)
	}
	return res.RowsAffected, nil
}
