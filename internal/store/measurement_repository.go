package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// MeasurementRepository writes measurement rows under their composite
// uniqueness keys and reads them back for analysis.
type MeasurementRepository struct {
	db *gorm.DB
}

// NewMeasurementRepository creates a measurement repository.
func NewMeasurementRepository(db *gorm.DB) *MeasurementRepository {
	return &MeasurementRepository{db: db}
}

// UpsertWeather writes one weather row keyed (field, date, source). An
// existing row has its measurement columns replaced. Returns whether a new
// row was created.
func (r *MeasurementRepository) UpsertWeather(ctx context.Context, rec *WeatherData) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing WeatherData
		err := tx.Where("field_id = ? AND weather_date = ? AND data_source = ?",
			rec.FieldID, rec.WeatherDate, rec.DataSource).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created = true
			return tx.Create(rec).Error
		}
		if err != nil {
			return err
		}

		existing.TemperatureMin = rec.TemperatureMin
		existing.TemperatureMax = rec.TemperatureMax
		existing.TemperatureAvg = rec.TemperatureAvg
		existing.Humidity = rec.Humidity
		existing.Precipitation = rec.Precipitation
		existing.WindSpeed = rec.WindSpeed
		existing.SolarRadiation = rec.SolarRadiation
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		*rec = existing
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("upsert weather: %w", err)
	}
	return created, nil
}

// UpsertCropHealth writes one NDVI row keyed (field, measured_at, source).
func (r *MeasurementRepository) UpsertCropHealth(ctx context.Context, rec *CropHealth) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing CropHealth
		err := tx.Where("field_id = ? AND measured_at = ? AND data_source = ?",
			rec.FieldID, rec.MeasuredAt, rec.DataSource).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created = true
			return tx.Create(rec).Error
		}
		if err != nil {
			return err
		}

		existing.NDVI = rec.NDVI
		existing.HealthScore = rec.HealthScore
		existing.Status = rec.Status
		existing.Quality = rec.Quality
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		*rec = existing
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("upsert crop health: %w", err)
	}
	return created, nil
}

// UpsertSoilMoisture writes one soil-moisture row keyed (field, measured_at,
// source).
func (r *MeasurementRepository) UpsertSoilMoisture(ctx context.Context, rec *SoilMoisture) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing SoilMoisture
		err := tx.Where("field_id = ? AND measured_at = ? AND data_source = ?",
			rec.FieldID, rec.MeasuredAt, rec.DataSource).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created = true
			return tx.Create(rec).Error
		}
		if err != nil {
			return err
		}

		existing.SurfaceMoisture = rec.SurfaceMoisture
		existing.RootZoneMoisture = rec.RootZoneMoisture
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		*rec = existing
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("upsert soil moisture: %w", err)
	}
	return created, nil
}

// UpsertSatelliteImage writes one scene row keyed (field, captured_at,
// satellite source).
func (r *MeasurementRepository) UpsertSatelliteImage(ctx context.Context, rec *SatelliteImage) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing SatelliteImage
		err := tx.Where("field_id = ? AND captured_at = ? AND satellite_source = ?",
			rec.FieldID, rec.CapturedAt, rec.SatelliteSource).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created = true
			return tx.Create(rec).Error
		}
		if err != nil {
			return err
		}

		existing.SceneID = rec.SceneID
		existing.Title = rec.Title
		existing.BrowseURL = rec.BrowseURL
		existing.CloudCoverage = rec.CloudCoverage
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		*rec = existing
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("upsert satellite image: %w", err)
	}
	return created, nil
}

// WeatherExistsSince reports whether the field already has weather rows on or
// after the cutoff.
func (r *MeasurementRepository) WeatherExistsSince(ctx context.Context, fieldID string, cutoff time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&WeatherData{}).
		Where("field_id = ? AND weather_date >= ?", fieldID, cutoff).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count recent weather: %w", err)
	}
	return count > 0, nil
}

// CropHealthSince returns the field's NDVI rows measured on or after the
// cutoff, oldest first.
func (r *MeasurementRepository) CropHealthSince(ctx context.Context, fieldID string, cutoff time.Time) ([]CropHealth, error) {
	var rows []CropHealth
	err := r.db.WithContext(ctx).
		Where("field_id = ? AND measured_at >= ?", fieldID, cutoff).
		Order("measured_at").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list crop health: %w", err)
	}
	return rows, nil
}

// SetCropHealthTrend stamps the trend label on one NDVI row.
func (r *MeasurementRepository) SetCropHealthTrend(ctx context.Context, id, trend string) error {
	err := r.db.WithContext(ctx).Model(&CropHealth{}).
		Where("id = ?", id).
		Update("trend", trend).Error
	if err != nil {
		return fmt.Errorf("set trend: %w", err)
	}
	return nil
}

// DeleteWeatherBefore removes weather rows older than the cutoff, returning
// how many were removed.
func (r *MeasurementRepository) DeleteWeatherBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("weather_date < ?", cutoff).Delete(&WeatherData{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete old weather: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteSatelliteImagesBefore removes scene rows older than the cutoff,
// returning how many were removed.
func (r *MeasurementRepository) DeleteSatelliteImagesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("captured_at < ?", cutoff).Delete(&SatelliteImage{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete old satellite images: %w", res.Error)
	}
	return res.RowsAffected, nil
}
