package weather

import (
	"context"
	"log/slog"
)

// Service fetches raw payloads from the provider and normalizes them.
// Every failure collapses to Unavailable; errors are logged, never returned.
type Service struct {
	provider Provider
	logger   *slog.Logger
}

// NewService creates a new Service.
func NewService(provider Provider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		provider: provider,
		logger:   logger,
	}
}

// Current returns CurrentConditions for city, or Unavailable.
func (s *Service) Current(ctx context.Context, city string) Result {
	raw, err := s.provider.FetchCurrent(ctx, city)
	if err != nil {
		s.logger.WarnContext(ctx, "current conditions fetch failed",
			"provider", s.provider.Name(), "city", city, "error", err)
		return Unavailable{City: city}
	}

	current, ok := NormalizeCurrent(raw, city)
	if !ok {
		s.logger.WarnContext(ctx, "current conditions payload incomplete",
			"provider", s.provider.Name(), "city", city, "bytes", len(raw))
		return Unavailable{City: city}
	}
	s.logger.DebugContext(ctx, "current conditions normalized",
		"city", city, "location", current.LocationName, "tempC", current.TemperatureC)
	return current
}

// Forecast returns a ForecastDays-day Forecast for city, or Unavailable.
func (s *Service) Forecast(ctx context.Context, city string) Result {
	raw, err := s.provider.FetchForecast(ctx, city, ForecastDays)
	if err != nil {
		s.logger.WarnContext(ctx, "forecast fetch failed",
			"provider", s.provider.Name(), "city", city, "error", err)
		return Unavailable{City: city}
	}

	forecast, ok := NormalizeForecast(raw, city)
	if !ok {
		s.logger.WarnContext(ctx, "forecast payload incomplete",
			"provider", s.provider.Name(), "city", city, "bytes", len(raw))
		return Unavailable{City: city}
	}
	return forecast
}
