package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-lookup/internal/logger"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// OpenWeatherName is the registry name of the OpenWeatherMap provider.
const OpenWeatherName = "openweather"

const (
	openWeatherBaseURL = "https://api.openweathermap.org"
	openWeatherPath    = "/data/2.5/weather"

	// metersPerSecondToKph converts OpenWeather's metric wind speed.
	metersPerSecondToKph = 3.6
)

// OpenWeatherProvider implements weather.Provider for OpenWeatherMap.
// It only serves current conditions; a requested date is ignored.
//
// Construct it with NewOpenWeatherProvider; the zero value is not usable.
type OpenWeatherProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

var _ weather.Provider = (*OpenWeatherProvider)(nil)

// NewOpenWeatherProvider creates the provider. An empty apiKey fails with
// weather.ErrInvalidAPIKey.
func NewOpenWeatherProvider(apiKey string, opts ...Option) (*OpenWeatherProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, weather.NewProviderError(OpenWeatherName, weather.ErrInvalidAPIKey, nil, "")
	}

	o := applyOptions(openWeatherBaseURL, opts)
	return &OpenWeatherProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(o.baseURL, "/"),
		client:  o.client,
		circuit: newCircuitBreaker(OpenWeatherName),
	}, nil
}

type openWeatherPayload struct {
	Name string          `json:"name"`
	Dt   json.RawMessage `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
		Pressure float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, location string, date *time.Time) (weather.Record, error) {
	if strings.TrimSpace(location) == "" {
		return weather.Record{}, weather.NewProviderError(OpenWeatherName, weather.ErrInvalidLocation, nil, "%q", location)
	}
	if date != nil {
		logger.GetLogger().Debugw("OpenWeather serves current conditions only; ignoring date",
			"date", date.Format(weather.DateLayout))
	}

	req, err := newGetRequest(p.requestURL(location))
	if err != nil {
		return weather.Record{}, weather.NewProviderError(OpenWeatherName, weather.ErrRequest, err, "")
	}

	resp, err := doRequest(ctx, p.client, p.circuit, req)
	if err != nil {
		return weather.Record{}, weather.NewProviderError(OpenWeatherName, weather.ErrRequest, err, "")
	}
	defer resp.Body.Close()

	var payload openWeatherPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Record{}, weather.NewProviderError(OpenWeatherName, weather.ErrRequest, err, "decode response")
	}

	return payload.toRecord(location), nil
}

func (p *OpenWeatherProvider) requestURL(location string) string {
	values := url.Values{}
	values.Set("q", location)
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")
	values.Set("lang", "en")
	return fmt.Sprintf("%s%s?%s", p.baseURL, openWeatherPath, values.Encode())
}

func (w openWeatherPayload) toRecord(query string) weather.Record {
	name := w.Name
	if name == "" {
		name = query
	}

	cond := weather.ConditionUnknown
	if len(w.Weather) > 0 && w.Weather[0].Description != "" {
		cond = w.Weather[0].Description
	}

	return weather.Record{
		Location:         name,
		ObservedAt:       parseEpoch(w.Dt),
		TemperatureC:     w.Main.Temp,
		HumidityPct:      w.Main.Humidity,
		PressureHpa:      w.Main.Pressure,
		Condition:        cond,
		WindSpeedKph:     w.Wind.Speed * metersPerSecondToKph,
		WindDirectionDeg: w.Wind.Deg,
	}
}

// parseEpoch reads a unix timestamp, falling back to now when it is missing
// or not a number.
func parseEpoch(raw json.RawMessage) time.Time {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil && secs > 0 {
		return time.Unix(secs, 0).UTC()
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil && secs > 0 {
		return time.Unix(int64(secs), 0).UTC()
	}
	return time.Now().UTC()
}
