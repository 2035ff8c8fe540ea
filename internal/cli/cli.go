// Package cli implements the weather command-line front-end.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/logger"
	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/i474232898/weather-lookup/internal/weather/providers"
)

// App carries the collaborators shared by all commands.
type App struct {
	Out        io.Writer
	Err        io.Writer
	LookupEnv  config.LookupEnvFunc
	HTTPClient *http.Client

	configPath string
	output     string
	settings   *config.Settings
	service    *weather.Service
}

// NewApp returns an App wired to the process environment.
func NewApp() *App {
	return &App{
		Out:        os.Stdout,
		Err:        os.Stderr,
		LookupEnv:  os.LookupEnv,
		HTTPClient: &http.Client{},
	}
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, app *App, args []string) int {
	root := NewRootCmd(app)
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(app.Err, "Error: %v\n", err)
		return 1
	}
	return 0
}

// NewRootCmd builds the command tree.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "weather",
		Short:         "Look up the weather from configurable providers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.loadSettings()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.printSettings()
		},
	}
	root.SetOut(app.Out)
	root.SetErr(app.Err)

	root.PersistentFlags().StringVarP(&app.configPath, "config-path", "c", config.DefaultPath, "settings file")
	root.PersistentFlags().StringVarP(&app.output, "output", "o", "text", "output format: text or json")

	root.AddCommand(
		newGetCmd(app),
		newConfigureCmd(app),
		newProvidersCmd(app),
		newWatchCmd(app),
		newServeCmd(app),
	)
	return root
}

func (a *App) loadSettings() error {
	if a.output != "text" && a.output != "json" {
		return weather.NewAppError(weather.ErrConfig, nil, "unsupported output format %q", a.output)
	}

	settings, err := config.Load(a.configPath, a.LookupEnv, providers.Names()...)
	if err != nil {
		return weather.NewAppError(weather.ErrConfig, err, "")
	}
	logger.GetLogger().Debugw("Settings loaded", "path", a.configPath, "default_provider", settings.DefaultProvider)

	a.settings = settings
	return nil
}

// loadService builds the provider registry on first use.
func (a *App) loadService() (*weather.Service, error) {
	if a.service != nil {
		return a.service, nil
	}

	registry, err := providers.BuildRegistry(a.settings, a.settings.KeyFunc(a.LookupEnv), a.HTTPClient)
	if err != nil {
		return nil, err
	}

	a.service = weather.NewService(registry)
	return a.service, nil
}

func (a *App) printSettings() error {
	fmt.Fprintf(a.Out, "Settings file:    %s\n", a.configPath)
	fmt.Fprintf(a.Out, "Default provider: %s\n", a.settings.DefaultProvider)

	names := a.settings.ProviderNames()
	if len(names) == 0 {
		fmt.Fprintln(a.Out, "Configured providers: none")
		return nil
	}
	fmt.Fprintf(a.Out, "Configured providers: %s\n", strings.Join(names, ", "))
	return nil
}

// providerName picks the flag value over the configured default.
func (a *App) providerName(flag string) string {
	if flag != "" {
		return strings.ToLower(flag)
	}
	return a.settings.DefaultProvider
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
