package weather

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-lookup/internal/logger"
)

// Service resolves providers by name and runs fetches against them.
type Service struct {
	providers Lookup
}

// NewService creates a new Service.
func NewService(providers Lookup) *Service {
	return &Service{
		providers: providers,
	}
}

// Run fetches a record for location from the named provider. A nil date asks
// for current conditions.
func (s *Service) Run(ctx context.Context, providerName, location string, date *time.Time) (Record, error) {
	log := logger.GetLogger().With("request_id", uuid.NewString(), "provider", providerName)

	p, ok := s.providers.Resolve(providerName)
	if !ok {
		log.Debugw("Provider not found")
		return Record{}, NewAppError(ErrInvalidProvider, nil, "provider '%s' not found", providerName)
	}

	log.Debugw("Fetching weather", "location", location, "historical", date != nil)
	start := time.Now()

	rec, err := p.Fetch(ctx, location, date)
	if err != nil {
		log.Debugw("Fetch failed", "error", err, "elapsed", time.Since(start))
		var perr *ProviderError
		if errors.As(err, &perr) {
			return Record{}, NewAppError(ErrProvider, perr, "")
		}
		return Record{}, NewAppError(ErrProvider, NewProviderError(providerName, ErrRequest, err, ""), "")
	}

	log.Debugw("Fetch completed", "elapsed", time.Since(start))
	return rec, nil
}

// ProviderExists reports whether Run would find the named provider.
func (s *Service) ProviderExists(name string) bool {
	_, ok := s.providers.Resolve(name)
	return ok
}

// ListProviders returns the registered provider names.
func (s *Service) ListProviders() []string {
	return s.providers.Names()
}
