package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// DefaultPath is where settings are read from when no path is given.
const DefaultPath = "settings.toml"

// DefaultProvider is used when neither the file nor the environment names one.
const DefaultProvider = "weatherapi"

var validate = validator.New()

// Settings is the persisted CLI configuration.
type Settings struct {
	DefaultProvider string                      `mapstructure:"default_provider" validate:"required"`
	Providers       map[string]ProviderSettings `mapstructure:"providers" validate:"dive"`
}

// ProviderSettings holds per-provider configuration.
type ProviderSettings struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`

	// fromEnv marks entries discovered from an API key variable only.
	// They are never written back to the settings file.
	fromEnv bool
}

// LookupEnvFunc matches os.LookupEnv.
type LookupEnvFunc func(key string) (string, bool)

// APIKeyEnv returns the environment variable that overrides name's API key.
func APIKeyEnv(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_")) + "_API_KEY"
}

// Load reads settings from path. A missing file is not an error. DEFAULT_PROVIDER
// overrides default_provider, and every name in discover that has an API key in
// the environment gets a provider entry even when the file has none.
func Load(path string, lookupEnv LookupEnvFunc, discover ...string) (*Settings, error) {
	if path == "" {
		path = DefaultPath
	}
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.SetDefault("default_provider", DefaultProvider)

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat settings %s: %w", path, err)
	}

	if provider, ok := lookupEnv("DEFAULT_PROVIDER"); ok && provider != "" {
		v.Set("default_provider", provider)
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	settings.DefaultProvider = strings.ToLower(settings.DefaultProvider)
	if settings.Providers == nil {
		settings.Providers = make(map[string]ProviderSettings)
	}

	for _, name := range discover {
		if _, ok := settings.Providers[name]; ok {
			continue
		}
		if key, ok := lookupEnv(APIKeyEnv(name)); ok && key != "" {
			settings.Providers[name] = ProviderSettings{fromEnv: true}
		}
	}

	if err := validate.Struct(settings); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return settings, nil
}

// Save writes the default provider and file-backed provider entries to path
// as TOML, replacing the file.
func Save(settings *Settings, path string) error {
	if err := validate.Struct(settings); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if path == "" {
		path = DefaultPath
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("default_provider", settings.DefaultProvider)
	for _, name := range settings.ProviderNames() {
		ps := settings.Providers[name]
		if ps.fromEnv {
			continue
		}
		v.Set("providers."+name+".api_key", ps.APIKey)
		if ps.BaseURL != "" {
			v.Set("providers."+name+".base_url", ps.BaseURL)
		}
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to save settings %s: %w", path, err)
	}
	return nil
}

// ProviderNames returns the configured provider names in ascending order.
func (s *Settings) ProviderNames() []string {
	names := make([]string, 0, len(s.Providers))
	for name := range s.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// APIKey resolves name's API key: the environment variable wins over the file.
func (s *Settings) APIKey(name string, lookupEnv LookupEnvFunc) string {
	if lookupEnv != nil {
		if key, ok := lookupEnv(APIKeyEnv(name)); ok && key != "" {
			return key
		}
	}
	return s.Providers[name].APIKey
}

// KeyFunc binds APIKey to an environment lookup.
func (s *Settings) KeyFunc(lookupEnv LookupEnvFunc) func(name string) string {
	return func(name string) string {
		return s.APIKey(name, lookupEnv)
	}
}
