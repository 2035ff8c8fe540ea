package weather

import (
	"time"
)

// ConditionUnknown is used when a vendor does not describe the conditions.
const ConditionUnknown = "unknown"

// Record is the normalized weather reading every provider produces.
// All fields are populated on a successful fetch; zero values are valid readings.
type Record struct {
	Location         string    `json:"location"`
	ObservedAt       time.Time `json:"observedAt"`
	TemperatureC     float64   `json:"temperatureC"`
	HumidityPct      float64   `json:"humidityPercent"` // 0-100 expected, not clamped
	PressureHpa      float64   `json:"pressureHpa"`
	Condition        string    `json:"condition"`
	WindSpeedKph     float64   `json:"windSpeedKph"`
	WindDirectionDeg float64   `json:"windDirectionDeg"`
}
