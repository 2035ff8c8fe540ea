package weather

import (
	"errors"
	"fmt"
	"net/http"
)

// Provider error kinds.
var (
	ErrInvalidAPIKey   = errors.New("api key is missing or invalid")
	ErrInvalidLocation = errors.New("location is invalid or not found")
	ErrRequest         = errors.New("api request failed")
	ErrParse           = errors.New("failed to parse api response")
	ErrParseDateTime   = errors.New("failed to parse date/time")
)

// Application error kinds.
var (
	ErrInvalidProvider = errors.New("invalid provider name")
	ErrInvalidDate     = errors.New("invalid date")
	ErrProvider        = errors.New("provider failure")
	ErrMissingAPIKey   = errors.New("missing api key")
	ErrConfig          = errors.New("configuration error")
)

// ProviderError is the classified failure of a single provider fetch.
// errors.Is matches both its Kind and its underlying cause.
type ProviderError struct {
	Provider string
	Kind     error
	Msg      string
	Err      error
}

// NewProviderError builds a ProviderError of the given kind.
func NewProviderError(provider string, kind error, err error, format string, args ...any) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Kind:     kind,
		Msg:      fmt.Sprintf(format, args...),
		Err:      err,
	}
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Provider, e.Kind)
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// AppError is returned across the Service boundary. Wrapping a ProviderError
// keeps the provider's kind reachable through errors.Is.
type AppError struct {
	Kind error
	Msg  string
	Err  error
}

// NewAppError builds an AppError of the given kind.
func NewAppError(kind error, err error, format string, args ...any) *AppError {
	return &AppError{
		Kind: kind,
		Msg:  fmt.Sprintf(format, args...),
		Err:  err,
	}
}

func (e *AppError) Error() string {
	msg := e.Kind.Error()
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AppError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// StatusError is a non-2xx response from a vendor API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d: %s", e.StatusCode, e.Body)
}

// ClientFault reports whether the vendor rejected the request itself, such as
// an unknown location. Authentication and rate-limit rejections are not the
// caller's fault.
func (e *StatusError) ClientFault() bool {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return false
	}
	return e.StatusCode >= 400 && e.StatusCode < 500
}
