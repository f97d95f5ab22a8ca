package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/agrisat/field-monitor/internal/domain"
	"github.com/agrisat/field-monitor/internal/store"
)

// WeatherSource labels rows ingested from NASA POWER.
const WeatherSource = "nasa_power"

// DefaultWeatherDays is how far back a weather ingestion reaches when the
// caller does not say.
const DefaultWeatherDays = 7

// WeatherResult summarizes one field's weather ingestion.
type WeatherResult struct {
	FieldID string `json:"field_id"`
	Status  string `json:"status"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
	Total   int    `json:"total"`
}

// IngestWeather fetches the trailing days of weather for one field and
// upserts a row per day. When the field already has weather newer than a day
// old and force is false, the whole run is skipped.
func (s *Service) IngestWeather(ctx context.Context, fieldID string, days int, force bool) (*WeatherResult, error) {
	if days <= 0 {
		days = DefaultWeatherDays
	}

	field, centroid, err := s.fieldCentroid(ctx, fieldID)
	if err != nil {
		return nil, err
	}

	now := domain.Now()
	if !force {
		fresh, err := s.measurements.WeatherExistsSince(ctx, field.ID, now.Add(-24*time.Hour))
		if err != nil {
			return nil, err
		}
		if fresh {
			s.logger.Debug("weather already fresh, skipping", "field_id", field.ID)
			return &WeatherResult{FieldID: field.ID, Status: StatusSkipped}, nil
		}
	}

	start := now.AddDate(0, 0, -days)
	var obs []domain.WeatherObservation
	err = s.retry.Do(ctx, s.logger, "power.daily", func(ctx context.Context) error {
		var ferr error
		obs, ferr = s.weather.DailyObservations(ctx, centroid, start, now)
		return ferr
	})
	if err != nil {
		s.metrics.IngestFailures.WithLabelValues("weather").Inc()
		return nil, fmt.Errorf("fetch weather for field %s: %w", field.ID, err)
	}

	res := &WeatherResult{FieldID: field.ID, Status: StatusSuccess, Total: len(obs)}
	for _, o := range obs {
		rec := &store.WeatherData{
			FieldID:        field.ID,
			WeatherDate:    o.Date,
			DataSource:     WeatherSource,
			TemperatureMin: o.TemperatureMin,
			TemperatureMax: o.TemperatureMax,
			TemperatureAvg: o.TemperatureAvg,
			Humidity:       o.Humidity,
			Precipitation:  o.Precipitation,
			WindSpeed:      o.WindSpeed,
			SolarRadiation: o.SolarRadiation,
		}
		created, err := s.measurements.UpsertWeather(ctx, rec)
		if err != nil {
			s.metrics.IngestFailures.WithLabelValues("weather").Inc()
			return nil, err
		}
		if created {
			res.Created++
			s.metrics.RecordsUpserted.WithLabelValues("weather", "created").Inc()
		} else {
			res.Updated++
			s.metrics.RecordsUpserted.WithLabelValues("weather", "updated").Inc()
		}
	}

	s.logger.Info("weather ingested",
		"field_id", field.ID, "days", days,
		"created", res.Created, "updated", res.Updated)
	return res, nil
}
