package weather

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	current     []byte
	forecast    []byte
	err         error
	gotCity     string
	gotDays     int
	currentHits int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) FetchCurrent(_ context.Context, city string) ([]byte, error) {
	f.currentHits++
	f.gotCity = city
	return f.current, f.err
}

func (f *fakeProvider) FetchForecast(_ context.Context, city string, days int) ([]byte, error) {
	f.gotCity = city
	f.gotDays = days
	return f.forecast, f.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServiceCurrent(t *testing.T) {
	p := &fakeProvider{current: []byte(moscowCurrent)}
	svc := NewService(p, quietLogger())

	res := svc.Current(context.Background(), "Москва")
	cur, ok := res.(CurrentConditions)
	require.True(t, ok, "got %T", res)
	assert.Equal(t, "Moscow", cur.LocationName)
	assert.Equal(t, "Москва", p.gotCity)
}

func TestServiceCurrentProviderErrorIsUnavailable(t *testing.T) {
	p := &fakeProvider{err: errors.New("boom")}
	svc := NewService(p, quietLogger())

	assert.Equal(t, Unavailable{City: "Atlantis"}, svc.Current(context.Background(), "Atlantis"))
	assert.Equal(t, Unavailable{City: "Atlantis"}, svc.Forecast(context.Background(), "Atlantis"))
}

func TestServiceIncompletePayloadIsUnavailable(t *testing.T) {
	p := &fakeProvider{current: []byte(`{"location": {"name": "X"}}`), forecast: []byte(`{}`)}
	svc := NewService(p, nil)

	assert.Equal(t, Unavailable{City: "X"}, svc.Current(context.Background(), "X"))
	assert.Equal(t, Unavailable{City: "X"}, svc.Forecast(context.Background(), "X"))
}

func TestServiceForecastRequestsFiveDays(t *testing.T) {
	p := &fakeProvider{forecast: forecastPayload(t, "London",
		"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05")}
	svc := NewService(p, quietLogger())

	res := svc.Forecast(context.Background(), "London")
	fc, ok := res.(Forecast)
	require.True(t, ok, "got %T", res)
	assert.Len(t, fc.Days, ForecastDays)
	assert.Equal(t, ForecastDays, p.gotDays)
	assert.Zero(t, p.currentHits)
}
