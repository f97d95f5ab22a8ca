package store

import (
	"time"

	"github.com/agrisat/field-monitor/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Farm groups fields under one operation.
type Farm struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name     string `gorm:"not null;size:255" json:"name"`
	Location string `gorm:"size:255" json:"location"`
}

func (Farm) TableName() string { return "farms" }

func (f *Farm) BeforeCreate(*gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// Field is one monitored agricultural field. The boundary polygon is stored
// as JSON text; fields without one cannot be ingested.
type Field struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FarmID  *string `gorm:"type:uuid;index" json:"farm_id,omitempty"`
	OwnerID string  `gorm:"type:uuid;index" json:"owner_id"`

	Name         string         `gorm:"not null;size:255" json:"name"`
	CropType     string         `gorm:"size:100" json:"crop_type"`
	GrowthStage  string         `gorm:"size:100" json:"growth_stage"`
	AreaHectares float64        `gorm:"type:decimal(10,2)" json:"area_hectares"`
	PlantingDate *time.Time     `json:"planting_date,omitempty"`
	Boundary     domain.Polygon `gorm:"serializer:json;type:text" json:"boundary,omitempty"`
	Active       bool           `gorm:"not null;default:true;index" json:"active"`
}

func (Field) TableName() string { return "fields" }

func (f *Field) BeforeCreate(*gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// CropHealth is one dated NDVI measurement with its derived status and score.
// A field has at most one row per (measured_at, data_source).
type CropHealth struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FieldID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_crop_health_measurement,priority:1" json:"field_id"`
	MeasuredAt time.Time `gorm:"not null;uniqueIndex:idx_crop_health_measurement,priority:2" json:"measured_at"`
	DataSource string    `gorm:"not null;size:50;uniqueIndex:idx_crop_health_measurement,priority:3" json:"data_source"`

	NDVI        float64 `gorm:"not null" json:"ndvi"`
	HealthScore float64 `gorm:"type:decimal(5,2)" json:"health_score"`
	Status      string  `gorm:"size:20" json:"status"`
	Trend       string  `gorm:"size:20" json:"trend,omitempty"`
	Quality     int     `json:"quality,omitempty"`
}

func (CropHealth) TableName() string { return "crop_health" }

func (h *CropHealth) BeforeCreate(*gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}

// WeatherData is one day of weather for a field from one provider. Optional
// columns are nil when the provider had no data for that day.
type WeatherData struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FieldID     string    `gorm:"type:uuid;not null;uniqueIndex:idx_weather_measurement,priority:1" json:"field_id"`
	WeatherDate time.Time `gorm:"not null;uniqueIndex:idx_weather_measurement,priority:2" json:"weather_date"`
	DataSource  string    `gorm:"not null;size:50;uniqueIndex:idx_weather_measurement,priority:3" json:"data_source"`

	TemperatureMin *float64 `gorm:"type:decimal(5,2)" json:"temperature_min,omitempty"`
	TemperatureMax *float64 `gorm:"type:decimal(5,2)" json:"temperature_max,omitempty"`
	TemperatureAvg *float64 `gorm:"type:decimal(5,2)" json:"temperature_avg,omitempty"`
	Humidity       *float64 `gorm:"type:decimal(5,2)" json:"humidity,omitempty"`
	Precipitation  *float64 `gorm:"type:decimal(6,2)" json:"precipitation,omitempty"`
	WindSpeed      *float64 `gorm:"type:decimal(5,2)" json:"wind_speed,omitempty"`
	SolarRadiation *float64 `gorm:"type:decimal(6,2)" json:"solar_radiation,omitempty"`
}

func (WeatherData) TableName() string { return "weather_data" }

func (w *WeatherData) BeforeCreate(*gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// SoilMoisture is one dated soil-moisture reading for a field.
type SoilMoisture struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FieldID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_soil_measurement,priority:1" json:"field_id"`
	MeasuredAt time.Time `gorm:"not null;uniqueIndex:idx_soil_measurement,priority:2" json:"measured_at"`
	DataSource string    `gorm:"not null;size:50;uniqueIndex:idx_soil_measurement,priority:3" json:"data_source"`

	SurfaceMoisture  *float64 `gorm:"type:decimal(5,2)" json:"surface_moisture,omitempty"`
	RootZoneMoisture *float64 `gorm:"type:decimal(5,2)" json:"root_zone_moisture,omitempty"`
}

func (SoilMoisture) TableName() string { return "soil_moisture" }

func (s *SoilMoisture) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// SatelliteImage is one imagery scene covering a field's extent.
type SatelliteImage struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FieldID         string    `gorm:"type:uuid;not null;uniqueIndex:idx_satellite_scene,priority:1" json:"field_id"`
	CapturedAt      time.Time `gorm:"not null;uniqueIndex:idx_satellite_scene,priority:2" json:"captured_at"`
	SatelliteSource string    `gorm:"not null;size:50;uniqueIndex:idx_satellite_scene,priority:3" json:"satellite_source"`

	SceneID       string   `gorm:"size:255" json:"scene_id"`
	Title         string   `gorm:"size:255" json:"title"`
	BrowseURL     string   `gorm:"size:512" json:"browse_url,omitempty"`
	CloudCoverage *float64 `gorm:"type:decimal(5,2)" json:"cloud_coverage,omitempty"`
}

func (SatelliteImage) TableName() string { return "satellite_images" }

func (s *SatelliteImage) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Alert is a raised condition for a field. ResolvedAt is set exactly when
// Resolved is true.
type Alert struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FieldID  string `gorm:"type:uuid;not null;index:idx_alerts_field_type,priority:1" json:"field_id"`
	Type     string `gorm:"not null;size:50;index:idx_alerts_field_type,priority:2" json:"type"`
	Severity string `gorm:"not null;size:20" json:"severity"`

	Title    string `gorm:"not null;size:255" json:"title"`
	Message  string `gorm:"type:text" json:"message"`
	Metadata string `gorm:"type:text" json:"metadata,omitempty"`

	Resolved   bool       `gorm:"not null;default:false;index" json:"resolved"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy string     `gorm:"size:255" json:"resolved_by,omitempty"`
}

func (Alert) TableName() string { return "alerts" }

func (a *Alert) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
