package providers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/i474232898/weather-chat-bot/internal/weather"
	"github.com/sony/gobreaker"
)

// DefaultWeatherAPIBaseURL is the WeatherAPI.com v1 endpoint root.
const DefaultWeatherAPIBaseURL = "https://api.weatherapi.com/v1/"

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

var _ weather.Provider = (*WeatherAPIProvider)(nil)

func NewWeatherAPIProvider(client *http.Client, baseURL, apiKey string) *WeatherAPIProvider {
	if baseURL == "" {
		baseURL = DefaultWeatherAPIBaseURL
	}
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  client,
		circuit: newBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

// FetchCurrent calls current.json for the city.
func (p *WeatherAPIProvider) FetchCurrent(ctx context.Context, city string) ([]byte, error) {
	return p.get(ctx, "current.json", url.Values{"q": {city}})
}

// FetchForecast calls forecast.json for the city and number of days.
func (p *WeatherAPIProvider) FetchForecast(ctx context.Context, city string, days int) ([]byte, error) {
	return p.get(ctx, "forecast.json", url.Values{
		"q":      {city},
		"days":   {strconv.Itoa(days)},
		"aqi":    {"no"},
		"alerts": {"no"},
	})
}

func (p *WeatherAPIProvider) get(ctx context.Context, endpoint string, values url.Values) ([]byte, error) {
	if p.apiKey == "" {
		return nil, errNoAPIKey
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values.Set("key", p.apiKey)

		u, err := url.JoinPath(p.baseURL, endpoint)
		if err != nil {
			return nil, err
		}
		return http.NewRequestWithContext(ctx, http.MethodGet, u+"?"+values.Encode(), nil)
	}

	return doRequest(ctx, p.client, p.circuit, buildRequest)
}
