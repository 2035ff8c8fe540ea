package providers

import (
	"net/http"

	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/logger"
	"github.com/i474232898/weather-lookup/internal/weather"
)

type constructor func(apiKey string, opts ...Option) (weather.Provider, error)

var known = map[string]constructor{
	OpenWeatherName: func(apiKey string, opts ...Option) (weather.Provider, error) {
		return NewOpenWeatherProvider(apiKey, opts...)
	},
	WeatherAPIName: func(apiKey string, opts ...Option) (weather.Provider, error) {
		return NewWeatherAPIProvider(apiKey, opts...)
	},
}

// Names returns the provider names this build knows how to construct.
func Names() []string {
	return []string{OpenWeatherName, WeatherAPIName}
}

// IsKnown reports whether name is a supported vendor.
func IsKnown(name string) bool {
	_, ok := known[name]
	return ok
}

// BuildRegistry constructs every known provider configured in settings.
// apiKey resolves a provider's key. Unknown names are skipped with a warning;
// a known provider without a key, or an empty result, fails the build.
func BuildRegistry(settings *config.Settings, apiKey func(name string) string, client *http.Client) (*weather.Registry, error) {
	log := logger.GetLogger()
	registry := weather.NewRegistry()

	for _, name := range settings.ProviderNames() {
		newProvider, ok := known[name]
		if !ok {
			log.Warnw("Provider in config is not implemented", "provider", name)
			continue
		}

		key := apiKey(name)
		p, err := newProvider(key,
			WithBaseURL(settings.Providers[name].BaseURL),
			WithHTTPClient(client),
		)
		if err != nil {
			return nil, weather.NewAppError(weather.ErrMissingAPIKey, err, "set %s or providers.%s.api_key", config.APIKeyEnv(name), name)
		}

		registry.Register(name, p)
		log.Infow("Provider registered", "provider", name, "api_key", logger.MaskSensitiveString(key, 2, 2))
	}

	if registry.Len() == 0 {
		return nil, weather.NewAppError(weather.ErrMissingAPIKey, nil, "no valid providers configured")
	}

	return registry, nil
}
