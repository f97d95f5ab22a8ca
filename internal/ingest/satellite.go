package ingest

import (
	"context"
	"fmt"

	"github.com/agrisat/field-monitor/internal/domain"
	"github.com/agrisat/field-monitor/internal/store"
)

// SceneSource labels imagery rows ingested from the Landsat granule search.
const SceneSource = "landsat8"

// DefaultSatelliteDays is how far back a satellite ingestion reaches when the
// caller does not say. MODIS vegetation composites are 16-day, so anything
// shorter risks an empty series.
const DefaultSatelliteDays = 30

// TrendWindowDays is how much NDVI history trend processing considers.
const TrendWindowDays = 60

// SatelliteResult summarizes one field's NDVI and scene ingestion.
type SatelliteResult struct {
	FieldID       string `json:"field_id"`
	Status        string `json:"status"`
	NDVICreated   int    `json:"ndvi_created"`
	NDVIUpdated   int    `json:"ndvi_updated"`
	ScenesCreated int    `json:"scenes_created"`
	ScenesUpdated int    `json:"scenes_updated"`
}

// TrendResult summarizes NDVI trend processing for one field.
type TrendResult struct {
	FieldID string  `json:"field_id"`
	Records int     `json:"records"`
	Average float64 `json:"average_ndvi"`
	Slope   float64 `json:"slope"`
	Trend   string  `json:"trend"`
}

// IngestSatellite fetches the field's NDVI series for the trailing days and
// upserts a crop-health row per sample, then records Landsat scenes covering
// the field's extent. Scene search failures degrade to NDVI-only ingestion.
func (s *Service) IngestSatellite(ctx context.Context, fieldID string, days int) (*SatelliteResult, error) {
	if days <= 0 {
		days = DefaultSatelliteDays
	}

	field, centroid, err := s.fieldCentroid(ctx, fieldID)
	if err != nil {
		return nil, err
	}

	now := domain.Now()
	start := now.AddDate(0, 0, -days)

	var samples []domain.NDVISample
	err = s.retry.Do(ctx, s.logger, "modis.ndvi", func(ctx context.Context) error {
		var ferr error
		samples, ferr = s.vegetation.NDVISeries(ctx, centroid, start, now)
		return ferr
	})
	if err != nil {
		s.metrics.IngestFailures.WithLabelValues("satellite").Inc()
		return nil, fmt.Errorf("fetch NDVI for field %s: %w", field.ID, err)
	}

	res := &SatelliteResult{FieldID: field.ID, Status: StatusSuccess}
	for _, sample := range samples {
		rec := &store.CropHealth{
			FieldID:     field.ID,
			MeasuredAt:  sample.Date,
			DataSource:  sample.Satellite,
			NDVI:        sample.NDVI,
			HealthScore: domain.VegetationScore(sample.NDVI),
			Status:      domain.HealthStatus(sample.NDVI),
			Quality:     sample.Quality,
		}
		created, err := s.measurements.UpsertCropHealth(ctx, rec)
		if err != nil {
			s.metrics.IngestFailures.WithLabelValues("satellite").Inc()
			return nil, err
		}
		if created {
			res.NDVICreated++
			s.metrics.RecordsUpserted.WithLabelValues("health", "created").Inc()
		} else {
			res.NDVIUpdated++
			s.metrics.RecordsUpserted.WithLabelValues("health", "updated").Inc()
		}
	}

	scenes, err := s.vegetation.SearchLandsatScenes(ctx, field.Boundary.Extent(), start, now)
	if err != nil {
		s.logger.Warn("scene search failed, keeping NDVI results", "field_id", field.ID, "error", err)
	}
	for _, scene := range scenes {
		rec := &store.SatelliteImage{
			FieldID:         field.ID,
			CapturedAt:      scene.UpdatedAt,
			SatelliteSource: SceneSource,
			SceneID:         scene.ID,
			Title:           scene.Title,
			BrowseURL:       scene.BrowseURL,
			CloudCoverage:   scene.CloudCoverage,
		}
		created, err := s.measurements.UpsertSatelliteImage(ctx, rec)
		if err != nil {
			s.metrics.IngestFailures.WithLabelValues("satellite").Inc()
			return nil, err
		}
		if created {
			res.ScenesCreated++
			s.metrics.RecordsUpserted.WithLabelValues("image", "created").Inc()
		} else {
			res.ScenesUpdated++
			s.metrics.RecordsUpserted.WithLabelValues("image", "updated").Inc()
		}
	}

	s.logger.Info("satellite data ingested",
		"field_id", field.ID, "days", days,
		"ndvi_created", res.NDVICreated, "ndvi_updated", res.NDVIUpdated,
		"scenes_created", res.ScenesCreated, "scenes_updated", res.ScenesUpdated)
	return res, nil
}

// ProcessTrend computes the field's NDVI trend over the trailing trend window
// and stamps the label on the newest row. Fewer than two records read as
// stable.
func (s *Service) ProcessTrend(ctx context.Context, fieldID string) (*TrendResult, error) {
	field, err := s.fields.FieldByID(ctx, fieldID)
	if err != nil {
		return nil, err
	}

	cutoff := domain.Now().AddDate(0, 0, -TrendWindowDays)
	rows, err := s.measurements.CropHealthSince(ctx, field.ID, cutoff)
	if err != nil {
		return nil, err
	}

	res := &TrendResult{FieldID: field.ID, Records: len(rows), Trend: domain.TrendStable}
	if len(rows) == 0 {
		return res, nil
	}

	values := make([]float64, len(rows))
	var sum float64
	for i, r := range rows {
		values[i] = r.NDVI
		sum += r.NDVI
	}
	res.Average = sum / float64(len(values))
	res.Slope = domain.TrendSlope(values)
	res.Trend = domain.ClassifyTrend(res.Slope)

	latest := rows[len(rows)-1]
	if err := s.measurements.SetCropHealthTrend(ctx, latest.ID, res.Trend); err != nil {
		return nil, err
	}

	s.logger.Info("NDVI trend processed",
		"field_id", field.ID, "records", res.Records,
		"avg", res.Average, "slope", res.Slope, "trend", res.Trend)
	return res, nil
}
