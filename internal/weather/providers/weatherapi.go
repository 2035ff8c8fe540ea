package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// WeatherAPIName is the registry name of the WeatherAPI.com provider.
const WeatherAPIName = "weatherapi"

const (
	weatherAPIBaseURL     = "https://api.weatherapi.com"
	weatherAPICurrentPath = "/v1/current.json"
	weatherAPIHistoryPath = "/v1/history.json"

	// weatherAPITimeLayout is the vendor's local "YYYY-MM-DD HH:MM" format.
	weatherAPITimeLayout = "2006-01-02 15:04"
)

// WeatherAPIProvider implements weather.Provider for WeatherAPI.com.
// Without a date it queries current conditions; with a date it queries the
// history endpoint, whose response shape differs.
//
// The returned record's Location is always the caller's location string.
//
// Construct it with NewWeatherAPIProvider; the zero value is not usable.
type WeatherAPIProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

var _ weather.Provider = (*WeatherAPIProvider)(nil)

// NewWeatherAPIProvider creates the provider. An empty apiKey fails with
// weather.ErrInvalidAPIKey.
func NewWeatherAPIProvider(apiKey string, opts ...Option) (*WeatherAPIProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, weather.NewProviderError(WeatherAPIName, weather.ErrInvalidAPIKey, nil, "")
	}

	o := applyOptions(weatherAPIBaseURL, opts)
	return &WeatherAPIProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(o.baseURL, "/"),
		client:  o.client,
		circuit: newCircuitBreaker(WeatherAPIName),
	}, nil
}

type weatherAPICondition struct {
	Text string `json:"text"`
}

type weatherAPICurrentPayload struct {
	Current struct {
		LastUpdated string              `json:"last_updated"`
		TempC       float64             `json:"temp_c"`
		Humidity    float64             `json:"humidity"`
		PressureMb  float64             `json:"pressure_mb"`
		WindKph     float64             `json:"wind_kph"`
		WindDegree  float64             `json:"wind_degree"`
		Condition   weatherAPICondition `json:"condition"`
	} `json:"current"`
}

type weatherAPIHistoryPayload struct {
	Forecast struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				AvgTempC    float64             `json:"avgtemp_c"`
				AvgHumidity float64             `json:"avghumidity"`
				MaxWindKph  float64             `json:"maxwind_kph"`
				Condition   weatherAPICondition `json:"condition"`
			} `json:"day"`
			Hour []struct {
				Time       string  `json:"time"`
				PressureMb float64 `json:"pressure_mb"`
				WindDegree float64 `json:"wind_degree"`
			} `json:"hour"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, location string, date *time.Time) (weather.Record, error) {
	if strings.TrimSpace(location) == "" {
		return weather.Record{}, weather.NewProviderError(WeatherAPIName, weather.ErrInvalidLocation, nil, "%q", location)
	}

	req, err := newGetRequest(p.requestURL(location, date))
	if err != nil {
		return weather.Record{}, weather.NewProviderError(WeatherAPIName, weather.ErrRequest, err, "")
	}

	resp, err := doRequest(ctx, p.client, p.circuit, req)
	if err != nil {
		return weather.Record{}, weather.NewProviderError(WeatherAPIName, weather.ErrRequest, err, "")
	}
	defer resp.Body.Close()

	var rec weather.Record
	if date == nil {
		var payload weatherAPICurrentPayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return weather.Record{}, weather.NewProviderError(WeatherAPIName, weather.ErrParse, err, "current conditions")
		}
		rec, err = payload.toRecord()
	} else {
		var payload weatherAPIHistoryPayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return weather.Record{}, weather.NewProviderError(WeatherAPIName, weather.ErrParse, err, "history")
		}
		rec, err = payload.toRecord()
	}
	if err != nil {
		return weather.Record{}, err
	}

	rec.Location = location
	return rec, nil
}

func (p *WeatherAPIProvider) requestURL(location string, date *time.Time) string {
	values := url.Values{}
	values.Set("key", p.apiKey)
	// WeatherAPI uses "q" for location; it accepts "city,country" or "lat,lon".
	values.Set("q", location)

	path := weatherAPICurrentPath
	if date != nil {
		path = weatherAPIHistoryPath
		values.Set("dt", date.Format(weather.DateLayout))
	} else {
		values.Set("aqi", "no")
	}

	return fmt.Sprintf("%s%s?%s", p.baseURL, path, values.Encode())
}

func (w weatherAPICurrentPayload) toRecord() (weather.Record, error) {
	observed, err := parseWeatherAPITime(weatherAPITimeLayout, w.Current.LastUpdated)
	if err != nil {
		return weather.Record{}, err
	}

	return weather.Record{
		ObservedAt:       observed,
		TemperatureC:     w.Current.TempC,
		HumidityPct:      w.Current.Humidity,
		PressureHpa:      w.Current.PressureMb,
		Condition:        conditionText(w.Current.Condition.Text),
		WindSpeedKph:     w.Current.WindKph,
		WindDirectionDeg: w.Current.WindDegree,
	}, nil
}

// toRecord synthesizes one reading from the first day: aggregates come from
// the day, instantaneous fields from its first hour.
func (w weatherAPIHistoryPayload) toRecord() (weather.Record, error) {
	if len(w.Forecast.ForecastDay) == 0 {
		return weather.Record{}, weather.NewProviderError(WeatherAPIName, weather.ErrParse, nil, "history contains no forecast days")
	}
	day := w.Forecast.ForecastDay[0]

	rec := weather.Record{
		TemperatureC: day.Day.AvgTempC,
		HumidityPct:  day.Day.AvgHumidity,
		Condition:    conditionText(day.Day.Condition.Text),
		WindSpeedKph: day.Day.MaxWindKph,
	}

	var err error
	if len(day.Hour) > 0 {
		hour := day.Hour[0]
		rec.ObservedAt, err = parseWeatherAPITime(weatherAPITimeLayout, hour.Time)
		rec.PressureHpa = hour.PressureMb
		rec.WindDirectionDeg = hour.WindDegree
	} else {
		rec.ObservedAt, err = parseWeatherAPITime(weather.DateLayout, day.Date)
	}
	if err != nil {
		return weather.Record{}, err
	}

	return rec, nil
}

func parseWeatherAPITime(layout, value string) (time.Time, error) {
	ts, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, weather.NewProviderError(WeatherAPIName, weather.ErrParseDateTime, err, "%q", value)
	}
	return ts, nil
}

func conditionText(text string) string {
	if text == "" {
		return weather.ConditionUnknown
	}
	return text
}
