package domain

import "time"

// Observation is a current-conditions reading for one place.
type Observation struct {
	City          string    `json:"city"`
	CountryCode   string    `json:"country_code"`
	Latitude      float64   `json:"lat"`
	Longitude     float64   `json:"lon"`
	TemperatureC  float64   `json:"temperature_c"`
	FeelsLikeC    float64   `json:"feels_like_c"`
	HumidityPct   float64   `json:"humidity_pct"`
	WindSpeedMS   float64   `json:"wind_speed_ms"`
	WindDirection string    `json:"wind_direction"`
	PressureMB    float64   `json:"pressure_mb"`
	Description   string    `json:"description"`
	ObservedAt    time.Time `json:"observed_at"`
	// PrecipNextHourMM sums the minutely forecast when it was requested.
	PrecipNextHourMM float64 `json:"precip_next_hour_mm"`
}
