package httpapi

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-lookup/internal/weather"
)

var validate = validator.New()

// Service is the part of weather.Service the HTTP API needs.
type Service interface {
	Run(ctx context.Context, providerName, location string, date *time.Time) (weather.Record, error)
	ListProviders() []string
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. defaultProvider
// is used when a request does not name one.
func RegisterRoutes(app *fiber.App, service Service, defaultProvider string) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-lookup",
		})
	})

	v1 := app.Group("/api/v1")

	v1.Get("/providers", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"default":   defaultProvider,
			"providers": service.ListProviders(),
		})
	})

	v1.Get("/weather", func(c *fiber.Ctx) error {
		q, err := parseWeatherQuery(c, defaultProvider)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var date *time.Time
		if q.Date != "" {
			d, err := weather.ParseDate(q.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			date = &d
		}

		rec, err := service.Run(c.UserContext(), q.Provider, q.Location, date)
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}

		return c.JSON(rec)
	})
}

// weatherQuery holds query parameters for the weather endpoint.
type weatherQuery struct {
	Location string `validate:"required"`
	Provider string `validate:"required"`
	Date     string
}

func parseWeatherQuery(c *fiber.Ctx, defaultProvider string) (weatherQuery, error) {
	q := weatherQuery{
		Location: strings.TrimSpace(c.Query("location")),
		Provider: strings.ToLower(c.Query("provider", defaultProvider)),
		Date:     c.Query("date"),
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// statusFor maps a Service error to an HTTP status. A vendor rejecting the
// query itself is the client's fault; any other vendor failure is a 502.
func statusFor(err error) int {
	var statusErr *weather.StatusError
	switch {
	case errors.Is(err, weather.ErrInvalidProvider):
		return fiber.StatusNotFound
	case errors.Is(err, weather.ErrInvalidLocation), errors.Is(err, weather.ErrInvalidDate):
		return fiber.StatusBadRequest
	case errors.As(err, &statusErr) && statusErr.ClientFault():
		return fiber.StatusBadRequest
	case errors.Is(err, weather.ErrRequest), errors.Is(err, weather.ErrParse), errors.Is(err, weather.ErrParseDateTime):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders errors as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}
