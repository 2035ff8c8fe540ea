package weather

import (
	"context"
	"time"
)

// Provider abstracts a weather data source (e.g. OpenWeatherMap, WeatherAPI).
//
// A nil date asks for current conditions. Providers without historical support
// may ignore the date and return current conditions. Implementations are
// read-only after construction and safe for concurrent use.
type Provider interface {
	Fetch(ctx context.Context, location string, date *time.Time) (Record, error)
}

// Lookup resolves provider names to providers.
type Lookup interface {
	Resolve(name string) (Provider, bool)
	Names() []string
}
