package store

import (
	"context"
	"testing"
	"time"

	"github.com/agrisat/field-monitor/internal/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func createTestField(t *testing.T, db *gorm.DB) *Field {
	t.Helper()
	f := &Field{
		Name:     "north quarter",
		OwnerID:  "7b8a4c1e-0000-0000-0000-000000000001",
		CropType: "winter wheat",
		Active:   true,
		Boundary: domain.Polygon{
			{Lat: 40.0, Lon: -100.0},
			{Lat: 40.1, Lon: -100.0},
			{Lat: 40.1, Lon: -99.9},
			{Lat: 40.0, Lon: -99.9},
		},
	}
	require.NoError(t, NewFieldRepository(db).CreateField(context.Background(), f))
	require.NotEmpty(t, f.ID)
	return f
}

func fptr(v float64) *float64 { return &v }

func TestFieldByID_RoundTripsBoundary(t *testing.T) {
	db := newTestDB(t)
	f := createTestField(t, db)

	got, err := NewFieldRepository(db).FieldByID(context.Background(), f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.Name, got.Name)
	require.Len(t, got.Boundary, 4)
	assert.Equal(t, 40.1, got.Boundary[1].Lat)
}

func TestFieldByID_NotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := NewFieldRepository(db).FieldByID(context.Background(), "b34cf21a-0000-0000-0000-00000000dead")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFieldNotFound)
}

func TestActiveFields_FiltersInactiveAndOwner(t *testing.T) {
	db := newTestDB(t)
	repo := NewFieldRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateField(ctx, &Field{Name: "a", OwnerID: "owner-1", Active: true}))
	require.NoError(t, repo.CreateField(ctx, &Field{Name: "b", OwnerID: "owner-2", Active: true}))
	require.NoError(t, repo.CreateField(ctx, &Field{Name: "c", OwnerID: "owner-1", Active: false}))

	all, err := repo.ActiveFields(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	owned, err := repo.ActiveFields(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "a", owned[0].Name)
}

func TestUpsertWeather_SecondWriteUpdatesInPlace(t *testing.T) {
	db := newTestDB(t)
	f := createTestField(t, db)
	repo := NewMeasurementRepository(db)
	ctx := context.Background()
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	first := &WeatherData{
		FieldID:        f.ID,
		WeatherDate:    day,
		DataSource:     "nasa_power",
		TemperatureMax: fptr(31.0),
		Precipitation:  fptr(0.0),
	}
	created, err := repo.UpsertWeather(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)

	// Same (field, date, source) with new values: updated, not duplicated,
	// and the later write wins.
	second := &WeatherData{
		FieldID:        f.ID,
		WeatherDate:    day,
		DataSource:     "nasa_power",
		TemperatureMax: fptr(33.5),
	}
	created, err = repo.UpsertWeather(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&WeatherData{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var stored WeatherData
	require.NoError(t, db.First(&stored, "id = ?", first.ID).Error)
	require.NotNil(t, stored.TemperatureMax)
	assert.Equal(t, 33.5, *stored.TemperatureMax)
	assert.Nil(t, stored.Precipitation)

	// A different source on the same day is its own row.
	other := &WeatherData{FieldID: f.ID, WeatherDate: day, DataSource: "station"}
	created, err = repo.UpsertWeather(ctx, other)
	require.NoError(t, err)
	assert.True(t, created)
}

func TestUpsertCropHealth_Idempotent(t *testing.T) {
	db := newTestDB(t)
	f := createTestField(t, db)
	repo := NewMeasurementRepository(db)
	ctx := context.Background()
	day := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)

	rec := &CropHealth{
		FieldID:     f.ID,
		MeasuredAt:  day,
		DataSource:  "MODIS_Terra",
		NDVI:        0.65,
		HealthScore: domain.VegetationScore(0.65),
		Status:      domain.HealthStatus(0.65),
	}
	created, err := repo.UpsertCropHealth(ctx, rec)
	require.NoError(t, err)
	assert.True(t, created)

	again := &CropHealth{
		FieldID:    f.ID,
		MeasuredAt: day,
		DataSource: "MODIS_Terra",
		NDVI:       0.67,
		Status:     domain.HealthStatus(0.67),
	}
	created, err = repo.UpsertCropHealth(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	require.NoError(t, db.Model(&CropHealth{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCropHealthSince_OrderedAscending(t *testing.T) {
	db := newTestDB(t)
	f := createTestField(t, db)
	repo := NewMeasurementRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, ndvi := range []float64{0.42, 0.51, 0.48} {
		rec := &CropHealth{
			FieldID:    f.ID,
			MeasuredAt: base.AddDate(0, 0, 16*(2-i)), // insert newest first
			DataSource: "MODIS_Terra",
			NDVI:       ndvi,
		}
		_, err := repo.UpsertCropHealth(ctx, rec)
		require.NoError(t, err)
	}

	rows, err := repo.CropHealthSince(ctx, f.ID, base)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.True(t, rows[0].MeasuredAt.Before(rows[1].MeasuredAt))
	assert.True(t, rows[1].MeasuredAt.Before(rows[2].MeasuredAt))

	// Cutoff excludes the oldest row.
	rows, err = repo.CropHealthSince(ctx, f.ID, base.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestSetCropHealthTrend(t *testing.T) {
	db := newTestDB(t)
	f := createTestField(t, db)
	repo := NewMeasurementRepository(db)
	ctx := context.Background()

	rec := &CropHealth{
		FieldID:    f.ID,
		MeasuredAt: time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC),
		DataSource: "MODIS_Terra",
		NDVI:       0.6,
	}
	_, err := repo.UpsertCropHealth(ctx, rec)
	require.NoError(t, err)

	require.NoError(t, repo.SetCropHealthTrend(ctx, rec.ID, domain.TrendImproving))

	var stored CropHealth
	require.NoError(t, db.First(&stored, "id = ?", rec.ID).Error)
	assert.Equal(t, domain.TrendImproving, stored.Trend)
}

func TestUpsertSatelliteImage(t *testing.T) {
	db := newTestDB(t)
	f := createTestField(t, db)
	repo := NewMeasurementRepository(db)
	ctx := context.Background()
	captured := time.Date(2024, 6, 13, 10, 0, 0, 0, time.UTC)

	rec := &SatelliteImage{
		FieldID:         f.ID,
		CapturedAt:      captured,
		SatelliteSource: "landsat8",
		SceneID:         "G1-LPCLOUD",
		Title:           "LC08_L2SP_029032_20240612",
		CloudCoverage:   fptr(12.5),
	}
	created, err := repo.UpsertSatelliteImage(ctx, rec)
	require.NoError(t, err)
	assert.True(t, created)

	rec2 := &SatelliteImage{
		FieldID:         f.ID,
		CapturedAt:      captured,
		SatelliteSource: "landsat8",
		SceneID:         "G1-LPCLOUD",
		Title:           "LC08_L2SP_029032_20240612",
		BrowseURL:       "https://data.example/browse.jpg",
	}
	created, err = repo.UpsertSatelliteImage(ctx, rec2)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, rec.ID, rec2.ID)
}

func TestUpsertSoilMoisture(t *testing.T) {
	db := newTestDB(t)
	f := createTestField(t, db)
	repo := NewMeasurementRepository(db)
	ctx := context.Background()
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	rec := &SoilMoisture{FieldID: f.ID, MeasuredAt: day, DataSource: "smap", SurfaceMoisture: fptr(23.1)}
	created, err := repo.UpsertSoilMoisture(ctx, rec)
	require.NoError(t, err)
	assert.True(t, created)

	rec2 := &SoilMoisture{FieldID: f.ID, MeasuredAt: day, DataSource: "smap", SurfaceMoisture: fptr(25.8)}
	created, err = repo.UpsertSoilMoisture(ctx, rec2)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestWeatherExistsSince(t *testing.T) {
	db := newTestDB(t)
	f := createTestField(t, db)
	repo := NewMeasurementRepository(db)
	ctx := context.Background()
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	_, err := repo.UpsertWeather(ctx, &WeatherData{FieldID: f.ID, WeatherDate: day, DataSource: "nasa_power"})
	require.NoError(t, err)

	ok, err := repo.WeatherExistsSince(ctx, f.ID, day.AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.WeatherExistsSince(ctx, f.ID, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteWeatherBefore(t *testing.T) {
	db := newTestDB(t)
	f := createTestField(t, db)
	repo := NewMeasurementRepository(db)
	ctx := context.Background()

	for _, day := range []time.Time{
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	} {
		_, err := repo.UpsertWeather(ctx, &WeatherData{FieldID: f.ID, WeatherDate: day, DataSource: "nasa_power"})
		require.NoError(t, err)
	}

	n, err := repo.DeleteWeatherBefore(ctx, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestAlertResolveAndReopen(t *testing.T) {
	db := newTestDB(t)
	f := createTestField(t, db)
	repo := NewAlertRepository(db)
	ctx := context.Background()

	a := &Alert{FieldID: f.ID, Type: "fire_risk", Severity: "high", Title: "fire nearby"}
	require.NoError(t, repo.Create(ctx, a))
	assert.False(t, a.Resolved)
	assert.Nil(t, a.ResolvedAt)

	resolved, err := repo.Resolve(ctx, a.ID, "operator@example.com")
	require.NoError(t, err)
	assert.True(t, resolved.Resolved)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, "operator@example.com", resolved.ResolvedBy)

	reopened, err := repo.Reopen(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, reopened.Resolved)
	assert.Nil(t, reopened.ResolvedAt)
	assert.Empty(t, reopened.ResolvedBy)

	var stored Alert
	require.NoError(t, db.First(&stored, "id = ?", a.ID).Error)
	assert.False(t, stored.Resolved)
	assert.Nil(t, stored.ResolvedAt)
}

func TestAlertByID_NotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := NewAlertRepository(db).AlertByID(context.Background(), "b34cf21a-0000-0000-0000-00000000dead")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAlertNotFound)
}

func TestRecentUnresolved(t *testing.T) {
	db := newTestDB(t)
	f := createTestField(t, db)
	repo := NewAlertRepository(db)
	ctx := context.Background()

	a := &Alert{FieldID: f.ID, Type: "fire_risk", Severity: "medium", Title: "fires detected"}
	require.NoError(t, repo.Create(ctx, a))

	found, err := repo.RecentUnresolved(ctx, f.ID, "fire_risk", a.CreatedAt.Add(-time.Hour))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, a.ID, found.ID)

	// Outside the window, wrong type, or resolved: no match.
	found, err = repo.RecentUnresolved(ctx, f.ID, "fire_risk", a.CreatedAt.Add(time.Hour))
	require.NoError(t, err)
	assert.Nil(t, found)

	found, err = repo.RecentUnresolved(ctx, f.ID, "frost_risk", a.CreatedAt.Add(-time.Hour))
	require.NoError(t, err)
	assert.Nil(t, found)

	_, err = repo.Resolve(ctx, a.ID, "op")
	require.NoError(t, err)
	found, err = repo.RecentUnresolved(ctx, f.ID, "fire_risk", a.CreatedAt.Add(-time.Hour))
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestDeleteResolvedBefore(t *testing.T) {
	db := newTestDB(t)
	f := createTestField(t, db)
	repo := NewAlertRepository(db)
	ctx := context.Background()

	old := &Alert{FieldID: f.ID, Type: "fire_risk", Severity: "low", Title: "old"}
	require.NoError(t, repo.Create(ctx, old))
	_, err := repo.Resolve(ctx, old.ID, "op")
	require.NoError(t, err)
	// Age the row past the cutoff.
	require.NoError(t, db.Model(&Alert{}).Where("id = ?", old.ID).
		Update("created_at", time.Now().UTC().AddDate(0, -6, 0)).Error)

	fresh := &Alert{FieldID: f.ID, Type: "fire_risk", Severity: "low", Title: "fresh"}
	require.NoError(t, repo.Create(ctx, fresh))

	unresolvedOld := &Alert{FieldID: f.ID, Type: "fire_risk", Severity: "low", Title: "unresolved"}
	require.NoError(t, repo.Create(ctx, unresolvedOld))
	require.NoError(t, db.Model(&Alert{}).Where("id = ?", unresolvedOld.ID).
		Update("created_at", time.Now().UTC().AddDate(0, -6, 0)).Error)

	n, err := repo.DeleteResolvedBefore(ctx, "fire_risk", time.Now().UTC().AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	remaining, err := repo.ListByField(ctx, f.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}
