package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-lookup/internal/weather"
)

const weatherAPICurrentSample = `{
	"location": {"name": "London", "country": "United Kingdom"},
	"current": {
		"last_updated": "2025-12-03 14:15",
		"temp_c": 28.2,
		"temp_f": 82.8,
		"humidity": 40,
		"pressure_mb": 1015,
		"wind_kph": 18.0,
		"wind_degree": 200,
		"condition": {"text": "Sunny", "icon": "//cdn.weatherapi.com/weather/64x64/day/113.png"}
	}
}`

const weatherAPIHistorySample = `{
	"location": {"name": "London", "country": "United Kingdom"},
	"forecast": {
		"forecastday": [
			{
				"date": "2025-12-01",
				"day": {
					"avgtemp_c": 7.4,
					"avghumidity": 88,
					"maxwind_kph": 24.5,
					"condition": {"text": "Patchy rain nearby"}
				},
				"hour": [
					{"time": "2025-12-01 00:00", "temp_c": 6.1, "pressure_mb": 1009, "wind_degree": 245, "wind_kph": 12.2},
					{"time": "2025-12-01 01:00", "temp_c": 6.0, "pressure_mb": 1010, "wind_degree": 250, "wind_kph": 13.0}
				]
			},
			{
				"date": "2025-12-02",
				"day": {"avgtemp_c": 99, "avghumidity": 1, "maxwind_kph": 1, "condition": {"text": "ignored"}},
				"hour": []
			}
		]
	}
}`

type capturedRequest struct {
	path  string
	query url.Values
}

func newWeatherAPIServer(t *testing.T, status int, body string) (*httptest.Server, *capturedRequest, *int32) {
	t.Helper()
	captured := &capturedRequest{}
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		captured.path = r.URL.Path
		captured.query = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, captured, &hits
}

func TestWeatherAPIProvider_FetchCurrent(t *testing.T) {
	server, req, _ := newWeatherAPIServer(t, http.StatusOK, weatherAPICurrentSample)

	p, err := NewWeatherAPIProvider("test-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	rec, err := p.Fetch(context.Background(), "london", nil)
	require.NoError(t, err)

	assert.Equal(t, "/v1/current.json", req.path)
	assert.Equal(t, "test-key", req.query.Get("key"))
	assert.Equal(t, "london", req.query.Get("q"))
	assert.Equal(t, "no", req.query.Get("aqi"))
	assert.Empty(t, req.query.Get("dt"))

	assert.Equal(t, weather.Record{
		Location:         "london",
		ObservedAt:       time.Date(2025, 12, 3, 14, 15, 0, 0, time.UTC),
		TemperatureC:     28.2,
		HumidityPct:      40,
		PressureHpa:      1015,
		Condition:        "Sunny",
		WindSpeedKph:     18.0,
		WindDirectionDeg: 200,
	}, rec)
}

func TestWeatherAPIProvider_FetchHistory(t *testing.T) {
	server, req, _ := newWeatherAPIServer(t, http.StatusOK, weatherAPIHistorySample)

	p, err := NewWeatherAPIProvider("test-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	date := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	rec, err := p.Fetch(context.Background(), "London", &date)
	require.NoError(t, err)

	assert.Equal(t, "/v1/history.json", req.path)
	assert.Equal(t, "2025-12-01", req.query.Get("dt"))
	assert.Equal(t, "London", req.query.Get("q"))

	// Aggregates from the day, instantaneous values from its first hour.
	assert.Equal(t, weather.Record{
		Location:         "London",
		ObservedAt:       time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
		TemperatureC:     7.4,
		HumidityPct:      88,
		PressureHpa:      1009,
		Condition:        "Patchy rain nearby",
		WindSpeedKph:     24.5,
		WindDirectionDeg: 245,
	}, rec)
}

func TestWeatherAPIProvider_HistoryWithoutHours(t *testing.T) {
	body := `{"forecast": {"forecastday": [{"date": "2025-11-30", "day": {"avgtemp_c": 5, "avghumidity": 70, "maxwind_kph": 10, "condition": {"text": ""}}}]}}`
	server, _, _ := newWeatherAPIServer(t, http.StatusOK, body)

	p, err := NewWeatherAPIProvider("test-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	date := time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC)
	rec, err := p.Fetch(context.Background(), "Oslo", &date)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC), rec.ObservedAt)
	assert.Equal(t, weather.ConditionUnknown, rec.Condition)
	assert.Zero(t, rec.PressureHpa)
	assert.Zero(t, rec.WindDirectionDeg)
}

func TestWeatherAPIProvider_FetchErrors(t *testing.T) {
	date := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		status  int
		body    string
		date    *time.Time
		wantErr error
		wantMsg string
	}{
		{
			name:    "non-2xx status",
			status:  http.StatusUnauthorized,
			body:    `{"error": {"code": 2006, "message": "API key is invalid."}}`,
			wantErr: weather.ErrRequest,
			wantMsg: "401",
		},
		{
			name:    "malformed current body",
			status:  http.StatusOK,
			body:    `{"current": [`,
			wantErr: weather.ErrParse,
		},
		{
			name:    "bad last_updated is a hard failure",
			status:  http.StatusOK,
			body:    `{"current": {"last_updated": "03/12/2025 14:15", "temp_c": 1, "condition": {"text": "Sunny"}}}`,
			wantErr: weather.ErrParseDateTime,
			wantMsg: "03/12/2025 14:15",
		},
		{
			name:    "missing current block",
			status:  http.StatusOK,
			body:    `{}`,
			wantErr: weather.ErrParseDateTime,
		},
		{
			name:    "history without forecast days",
			status:  http.StatusOK,
			body:    `{"forecast": {"forecastday": []}}`,
			date:    &date,
			wantErr: weather.ErrParse,
		},
		{
			name:    "history with bad hour time",
			status:  http.StatusOK,
			body:    `{"forecast": {"forecastday": [{"date": "2025-12-01", "hour": [{"time": "midnight"}]}]}}`,
			date:    &date,
			wantErr: weather.ErrParseDateTime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _, _ := newWeatherAPIServer(t, tt.status, tt.body)

			p, err := NewWeatherAPIProvider("test-key", WithBaseURL(server.URL))
			require.NoError(t, err)

			_, err = p.Fetch(context.Background(), "London", tt.date)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestWeatherAPIProvider_EmptyLocation(t *testing.T) {
	server, _, hits := newWeatherAPIServer(t, http.StatusOK, weatherAPICurrentSample)

	p, err := NewWeatherAPIProvider("test-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = p.Fetch(context.Background(), "", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, weather.ErrInvalidLocation)
	assert.Zero(t, atomic.LoadInt32(hits), "no request may reach the vendor")
}

func TestWeatherAPIProvider_ContextCanceled(t *testing.T) {
	server, _, _ := newWeatherAPIServer(t, http.StatusOK, weatherAPICurrentSample)

	p, err := NewWeatherAPIProvider("test-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = p.Fetch(ctx, "London", nil)
	assert.ErrorIs(t, err, weather.ErrRequest)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewWeatherAPIProvider_RequiresKey(t *testing.T) {
	p, err := NewWeatherAPIProvider("")
	require.Error(t, err)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, weather.ErrInvalidAPIKey)
}

// The two vendors treat bad timestamps differently: OpenWeather substitutes
// now, WeatherAPI fails the fetch.
func TestTimestampFailureHandlingDiffers(t *testing.T) {
	owServer := newOpenWeatherServer(t, http.StatusOK, `{"name": "Oslo", "dt": null}`, nil)
	ow, err := NewOpenWeatherProvider("k", WithBaseURL(owServer.URL))
	require.NoError(t, err)

	_, err = ow.Fetch(context.Background(), "Oslo", nil)
	assert.NoError(t, err)

	waServer, _, _ := newWeatherAPIServer(t, http.StatusOK, `{"current": {"last_updated": ""}}`)
	wa, err := NewWeatherAPIProvider("k", WithBaseURL(waServer.URL))
	require.NoError(t, err)

	_, err = wa.Fetch(context.Background(), "Oslo", nil)
	assert.ErrorIs(t, err, weather.ErrParseDateTime)
}
