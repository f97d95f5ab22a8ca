package ingest

import (
	"context"
	"time"

	"github.com/agrisat/field-monitor/internal/domain"
)

// Retention windows for the cleanup task.
type Retention struct {
	ResolvedAlerts  time.Duration
	Weather         time.Duration
	SatelliteImages time.Duration
}

// DefaultRetention keeps resolved fire alerts 90 days, weather a year, and
// satellite imagery six months.
var DefaultRetention = Retention{
	ResolvedAlerts:  90 * 24 * time.Hour,
	Weather:         365 * 24 * time.Hour,
	SatelliteImages: 180 * 24 * time.Hour,
}

// CleanupResult counts rows removed by one cleanup pass.
type CleanupResult struct {
	AlertsDeleted  int64 `json:"alerts_deleted"`
	WeatherDeleted int64 `json:"weather_deleted"`
	ImagesDeleted  int64 `json:"images_deleted"`
}

// Cleanup removes resolved fire alerts and measurement rows older than their
// retention windows.
func (s *Service) Cleanup(ctx context.Context, ret Retention) (*CleanupResult, error) {
	now := domain.Now()
	res := &CleanupResult{}

	var err error
	res.AlertsDeleted, err = s.alerts.DeleteResolvedBefore(ctx, AlertTypeFire, now.Add(-ret.ResolvedAlerts))
	if err != nil {
		return nil, err
	}
	res.WeatherDeleted, err = s.measurements.DeleteWeatherBefore(ctx, now.Add(-ret.Weather))
	if err != nil {
		return nil, err
	}
	res.ImagesDeleted, err = s.measurements.DeleteSatelliteImagesBefore(ctx, now.Add(-ret.SatelliteImages))
	if err != nil {
		return nil, err
	}

	s.logger.Info("cleanup complete",
		"alerts_deleted", res.AlertsDeleted,
		"weather_deleted", res.WeatherDeleted,
		"images_deleted", res.ImagesDeleted)
	return res, nil
}
