package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-lookup/internal/weather"
)

const currentBody = `{"current": {"last_updated": "2025-12-03 14:15", "temp_c": 28.2, "humidity": 40, "pressure_mb": 1015, "wind_kph": 18.0, "wind_degree": 200, "condition": {"text": "Sunny"}}}`

type testEnv struct {
	app  *App
	out  *bytes.Buffer
	err  *bytes.Buffer
	path string
}

func newTestEnv(t *testing.T, settings string, env map[string]string) *testEnv {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.toml")
	if settings != "" {
		require.NoError(t, os.WriteFile(path, []byte(settings), 0o600))
	}

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return &testEnv{
		app: &App{
			Out: out,
			Err: errOut,
			LookupEnv: func(key string) (string, bool) {
				v, ok := env[key]
				return v, ok
			},
			HTTPClient: http.DefaultClient,
		},
		out:  out,
		err:  errOut,
		path: path,
	}
}

func (e *testEnv) run(args ...string) int {
	return Execute(context.Background(), e.app, append([]string{"--config-path", e.path}, args...))
}

func newVendor(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGet(t *testing.T) {
	vendor := newVendor(t, currentBody)
	env := newTestEnv(t, `
default_provider = "weatherapi"

[providers.weatherapi]
api_key = "k"
base_url = "`+vendor.URL+`"
`, nil)

	code := env.run("--output", "json", "get", "New", "York")
	require.Equal(t, 0, code, env.err.String())

	var rec weather.Record
	require.NoError(t, json.Unmarshal(env.out.Bytes(), &rec))
	assert.Equal(t, "New York", rec.Location)
	assert.Equal(t, 28.2, rec.TemperatureC)
	assert.Equal(t, "Sunny", rec.Condition)
}

func TestGet_TextOutput(t *testing.T) {
	vendor := newVendor(t, currentBody)
	env := newTestEnv(t, `
[providers.weatherapi]
base_url = "`+vendor.URL+`"
`, map[string]string{"WEATHERAPI_API_KEY": "env-key"})

	code := env.run("get", "London")
	require.Equal(t, 0, code, env.err.String())

	assert.Contains(t, env.out.String(), "London")
	assert.Contains(t, env.out.String(), "28.2 °C")
	assert.Contains(t, env.out.String(), "18.0 km/h from 200°")
}

func TestGet_Errors(t *testing.T) {
	t.Run("unknown provider", func(t *testing.T) {
		env := newTestEnv(t, "", map[string]string{"WEATHERAPI_API_KEY": "k"})

		code := env.run("get", "London", "--provider", "nonexistent")
		assert.Equal(t, 1, code)
		assert.Contains(t, env.err.String(), "nonexistent")
	})

	t.Run("bad date", func(t *testing.T) {
		env := newTestEnv(t, "", map[string]string{"WEATHERAPI_API_KEY": "k"})

		code := env.run("get", "London", "--date", "tomorrow")
		assert.Equal(t, 1, code)
		assert.Contains(t, env.err.String(), "invalid date")
	})

	t.Run("no providers configured", func(t *testing.T) {
		env := newTestEnv(t, "", nil)

		code := env.run("get", "London")
		assert.Equal(t, 1, code)
		assert.Contains(t, env.err.String(), "no valid providers configured")
	})
}

func TestConfigure(t *testing.T) {
	t.Run("sets the default provider", func(t *testing.T) {
		env := newTestEnv(t, `default_provider = "weatherapi"`, map[string]string{"OPENWEATHER_API_KEY": "test_api_key"})

		code := env.run("configure", "openweather")
		require.Equal(t, 0, code, env.err.String())
		assert.Contains(t, env.out.String(), "Default provider saved to "+env.path)

		again := newTestEnv(t, "", nil)
		again.path = env.path
		require.Equal(t, 0, again.run())
		assert.Contains(t, again.out.String(), "Default provider: openweather")

		raw, err := os.ReadFile(env.path)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "test_api_key")
	})

	t.Run("lists providers", func(t *testing.T) {
		env := newTestEnv(t, "", map[string]string{
			"OPENWEATHER_API_KEY": "test_api_key",
			"WEATHERAPI_API_KEY":  "test_api_key",
		})

		require.Equal(t, 0, env.run("configure"))
		assert.Contains(t, env.out.String(), "Available providers:")
		assert.Contains(t, env.out.String(), "openweather")
		assert.Contains(t, env.out.String(), "* weatherapi")
	})

	t.Run("rejects unsupported provider", func(t *testing.T) {
		env := newTestEnv(t, "", map[string]string{"OPENWEATHER_API_KEY": "test_api_key"})

		code := env.run("configure", "not_supported_provider")
		assert.Equal(t, 1, code)
		assert.Contains(t, env.err.String(), "Provider `not_supported_provider` not supported")
	})

	t.Run("rejects known provider without key", func(t *testing.T) {
		env := newTestEnv(t, "", map[string]string{"OPENWEATHER_API_KEY": "test_api_key"})

		code := env.run("configure", "weatherapi")
		assert.Equal(t, 1, code)
		assert.Contains(t, env.err.String(), "WEATHERAPI_API_KEY")
	})
}

func TestProvidersCommand(t *testing.T) {
	env := newTestEnv(t, "", map[string]string{"WEATHERAPI_API_KEY": "k"})

	require.Equal(t, 0, env.run("providers"))
	assert.Equal(t, "Available providers:\n * weatherapi\n", env.out.String())
}

func TestRootPrintsSettings(t *testing.T) {
	env := newTestEnv(t, `default_provider = "openweather"`, nil)

	require.Equal(t, 0, env.run())
	assert.Contains(t, env.out.String(), "Default provider: openweather")
	assert.Contains(t, env.out.String(), "Configured providers: none")
}

func TestUnsupportedOutputFormat(t *testing.T) {
	env := newTestEnv(t, "", nil)

	assert.Equal(t, 1, env.run("--output", "yaml"))
	assert.Contains(t, env.err.String(), "unsupported output format")
}
