package cli

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/weather-lookup/internal/api/http"
	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/logger"
	"github.com/i474232898/weather-lookup/internal/scheduler"
	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/i474232898/weather-lookup/internal/weather/providers"
)

const defaultTimeout = 30 * time.Second

func newGetCmd(app *App) *cobra.Command {
	var (
		dateStr  string
		provider string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "get <location>",
		Short: "Fetch the weather for a location",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location := strings.Join(args, " ")

			var date *time.Time
			if dateStr != "" {
				d, err := weather.ParseDate(dateStr)
				if err != nil {
					return err
				}
				date = &d
			}

			service, err := app.loadService()
			if err != nil {
				return err
			}

			ctx, cancel := withTimeout(cmd.Context(), timeout)
			defer cancel()

			rec, err := service.Run(ctx, app.providerName(provider), location, date)
			if err != nil {
				return err
			}
			return render(app.Out, app.output, rec)
		},
	}

	cmd.Flags().StringVar(&dateStr, "date", "", "date for historical data (RFC3339, YYYY-MM-DD HH:MM:SS or YYYY-MM-DD)")
	cmd.Flags().StringVarP(&provider, "provider", "p", "", "provider to use instead of the default")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultTimeout, "request timeout (0 disables)")
	return cmd
}

func newConfigureCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "configure [provider]",
		Short: "Show or set the default provider",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := app.loadService()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				fmt.Fprintf(app.Out, "Default provider: %s\n", app.settings.DefaultProvider)
				return printProviders(app, service.ListProviders())
			}

			name := strings.ToLower(args[0])
			if !service.ProviderExists(name) {
				if providers.IsKnown(name) {
					return weather.NewAppError(weather.ErrInvalidProvider, nil,
						"Provider `%s` is not configured; set %s first", name, config.APIKeyEnv(name))
				}
				return weather.NewAppError(weather.ErrInvalidProvider, nil, "Provider `%s` not supported", args[0])
			}

			app.settings.DefaultProvider = name
			if err := config.Save(app.settings, app.configPath); err != nil {
				return weather.NewAppError(weather.ErrConfig, err, "")
			}
			fmt.Fprintf(app.Out, "Default provider saved to %s\n", app.configPath)
			return nil
		},
	}
}

func newProvidersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List available providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, err := app.loadService()
			if err != nil {
				return err
			}
			return printProviders(app, service.ListProviders())
		},
	}
}

func printProviders(app *App, names []string) error {
	fmt.Fprintln(app.Out, "Available providers:")
	for _, name := range names {
		marker := " "
		if name == app.settings.DefaultProvider {
			marker = "*"
		}
		fmt.Fprintf(app.Out, " %s %s\n", marker, name)
	}
	return nil
}

func newWatchCmd(app *App) *cobra.Command {
	var (
		provider string
		every    time.Duration
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <location>",
		Short: "Fetch the weather for a location periodically until interrupted",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := app.loadService()
			if err != nil {
				return err
			}

			sched := scheduler.New(scheduler.Job{
				Provider: app.providerName(provider),
				Location: strings.Join(args, " "),
				Interval: every,
				Timeout:  timeout,
				OnResult: func(rec weather.Record, err error) {
					if err != nil {
						fmt.Fprintf(app.Err, "Error: %v\n", err)
						return
					}
					if err := render(app.Out, app.output, rec); err != nil {
						fmt.Fprintf(app.Err, "Error: %v\n", err)
					}
				},
			}, service)

			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()

			<-cmd.Context().Done()
			return nil
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "provider to use instead of the default")
	cmd.Flags().DurationVar(&every, "every", scheduler.DefaultInterval, "interval between lookups")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultTimeout, "request timeout (0 disables)")
	return cmd
}

func newServeCmd(app *App) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve weather lookups over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, err := app.loadService()
			if err != nil {
				return err
			}
			log := logger.GetLogger()

			server := httpapi.NewApp(service, app.settings.DefaultProvider)

			errCh := make(chan error, 1)
			go func() {
				log.Infow("HTTP server listening", "port", port)
				errCh <- server.Listen(":" + port)
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("http server stopped: %w", err)
				}
				return nil
			case <-cmd.Context().Done():
			}

			if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
				log.Errorw("Error during shutdown", "error", err)
			}
			return nil
		},
	}

	defaultPort := "8080"
	if app.LookupEnv != nil {
		if v, ok := app.LookupEnv("PORT"); ok && v != "" {
			defaultPort = v
		}
	}
	cmd.Flags().StringVar(&port, "port", defaultPort, "listen port")
	return cmd
}
