// Package ingest runs the data-ingestion tasks: fetching weather, vegetation,
// and fire data for fields, persisting normalized measurements, computing
// scores and trends, and raising deduplicated alerts.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/agrisat/field-monitor/internal/domain"
	"github.com/agrisat/field-monitor/internal/observability"
	"github.com/agrisat/field-monitor/internal/store"
)

// Task result statuses.
const (
	StatusSuccess = "success"
	StatusSkipped = "skipped"
)

// WeatherProvider fetches daily weather observations for a location.
type WeatherProvider interface {
	DailyObservations(ctx context.Context, loc domain.Point, start, end time.Time) ([]domain.WeatherObservation, error)
}

// FireProvider fetches fire detections around a location.
type FireProvider interface {
	FiresNearPoint(ctx context.Context, center domain.Point, radiusKm float64, daysBack int, source string) ([]domain.FireDetection, error)
}

// VegetationProvider fetches NDVI series and imagery scene listings.
type VegetationProvider interface {
	NDVISeries(ctx context.Context, loc domain.Point, start, end time.Time) ([]domain.NDVISample, error)
	SearchLandsatScenes(ctx context.Context, bbox domain.BoundingBox, start, end time.Time) ([]domain.SatelliteScene, error)
}

// Notifier dispatches alert notifications. Dispatch failures are logged by
// the caller, never escalated.
type Notifier interface {
	NotifyAlert(ctx context.Context, n AlertNotification) error
}

// Deps wires the service's collaborators.
type Deps struct {
	Fields       *store.FieldRepository
	Measurements *store.MeasurementRepository
	Alerts       *store.AlertRepository
	Weather      WeatherProvider
	Fires        FireProvider
	Vegetation   VegetationProvider
	Notifier     Notifier
	Logger       *slog.Logger
	Metrics      *observability.Metrics
}

// Options tunes task behavior. Zero values fall back to defaults.
type Options struct {
	Retry           Policy
	FireCooldown    time.Duration
	AlertingEnabled bool
}

// Service runs ingestion tasks against the store and providers.
type Service struct {
	fields       *store.FieldRepository
	measurements *store.MeasurementRepository
	alerts       *store.AlertRepository
	weather      WeatherProvider
	fires        FireProvider
	vegetation   VegetationProvider
	notifier     Notifier
	logger       *slog.Logger
	metrics      *observability.Metrics

	retry           Policy
	fireCooldown    time.Duration
	alertingEnabled bool
}

// NewService creates an ingestion service.
func NewService(deps Deps, opts Options) *Service {
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = DefaultPolicy
	}
	if opts.FireCooldown == 0 {
		opts.FireCooldown = fireAlertCooldown
	}
	return &Service{
		fields:          deps.Fields,
		measurements:    deps.Measurements,
		alerts:          deps.Alerts,
		weather:         deps.Weather,
		fires:           deps.Fires,
		vegetation:      deps.Vegetation,
		notifier:        deps.Notifier,
		logger:          deps.Logger,
		metrics:         deps.Metrics,
		retry:           opts.Retry,
		fireCooldown:    opts.FireCooldown,
		alertingEnabled: opts.AlertingEnabled,
	}
}

// fieldCentroid loads a field and returns its boundary centroid. Fields
// without a boundary are terminal for the current run.
func (s *Service) fieldCentroid(ctx context.Context, fieldID string) (*store.Field, domain.Point, error) {
	field, err := s.fields.FieldByID(ctx, fieldID)
	if err != nil {
		return nil, domain.Point{}, err
	}
	if len(field.Boundary) == 0 {
		return nil, domain.Point{}, fmt.Errorf("field %s: %w", field.ID, domain.ErrMissingBoundary)
	}
	return field, field.Boundary.Centroid(), nil
}
