package domain

import "time"

// WeatherObservation is one day of agro-meteorology for a location.
// Optional fields are nil when the provider reported its no-data sentinel.
type WeatherObservation struct {
	Date           time.Time `json:"date"`
	TemperatureMin *float64  `json:"temperature_min,omitempty"`
	TemperatureMax *float64  `json:"temperature_max,omitempty"`
	TemperatureAvg *float64  `json:"temperature_avg,omitempty"`
	Humidity       *float64  `json:"humidity,omitempty"`       // %
	Precipitation  *float64  `json:"precipitation,omitempty"`  // mm/day
	WindSpeed      *float64  `json:"wind_speed,omitempty"`     // m/s
	SolarRadiation *float64  `json:"solar_radiation,omitempty"` // MJ/m²/day
}

// SatelliteScene is one imagery granule found for a field's extent.
type SatelliteScene struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	UpdatedAt     time.Time `json:"updated_at"`
	BrowseURL     string    `json:"browse_url,omitempty"`
	CloudCoverage *float64  `json:"cloud_coverage,omitempty"` // %
}
