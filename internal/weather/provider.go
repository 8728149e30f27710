package weather

import (
	"context"
)

// Provider abstracts the upstream weather HTTP API.
// Implementations return the raw response body of a successful (2xx) call;
// any other outcome is an error.
type Provider interface {
	Name() string
	FetchCurrent(ctx context.Context, city string) ([]byte, error)
	FetchForecast(ctx context.Context, city string, days int) ([]byte, error)
}
