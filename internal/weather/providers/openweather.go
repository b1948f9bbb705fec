package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultOpenWeatherURL is the OpenWeatherMap 2.5 API root.
const DefaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5"

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// Option configures an OpenWeatherProvider.
type Option func(*OpenWeatherProvider)

// WithBaseURL points the provider at another API root.
func WithBaseURL(u string) Option {
	return func(p *OpenWeatherProvider) {
		if u != "" {
			p.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithRateLimit caps outbound requests per second. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(p *OpenWeatherProvider) {
		if rps <= 0 {
			return
		}
		if burst < 1 {
			burst = 1
		}
		p.httpCfg.Limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *OpenWeatherProvider) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewOpenWeatherProvider creates a provider. The API key is fixed for the
// lifetime of the provider; an empty key makes every call fail with
// weather.ErrMissingAPIKey without touching the network.
func NewOpenWeatherProvider(client *http.Client, apiKey string, opts ...Option) *OpenWeatherProvider {
	p := &OpenWeatherProvider{
		apiKey:  apiKey,
		baseURL: DefaultOpenWeatherURL,
		httpCfg: HTTPClientConfig{
			Client: client,
		},
		circuit: newCircuitBreaker("openweather"),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FetchCurrent calls GET /weather.
func (p *OpenWeatherProvider) FetchCurrent(ctx context.Context, loc weather.Locator) (weather.RawCurrent, error) {
	var payload weather.RawCurrent
	if err := p.get(ctx, "weather", loc, &payload); err != nil {
		return weather.RawCurrent{}, err
	}
	return payload, nil
}

// FetchForecastFeed calls GET /forecast.
func (p *OpenWeatherProvider) FetchForecastFeed(ctx context.Context, loc weather.Locator) (weather.RawForecast, error) {
	var payload weather.RawForecast
	if err := p.get(ctx, "forecast", loc, &payload); err != nil {
		return weather.RawForecast{}, err
	}
	return payload, nil
}

func (p *OpenWeatherProvider) get(ctx context.Context, endpoint string, loc weather.Locator, out any) error {
	if p.apiKey == "" {
		return weather.ErrMissingAPIKey
	}

	values := url.Values{}
	if loc.IsCoordinates() {
		values.Set("lat", weather.FormatDegrees(loc.Coordinates.Lat))
		values.Set("lon", weather.FormatDegrees(loc.Coordinates.Lon))
	} else {
		values.Set("q", loc.City)
	}
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")

	u := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", weather.ErrTransport, err)
	}

	resp, err := doRequest(ctx, p.httpCfg, p.circuit, req)
	if err != nil {
		fields := []zap.Field{
			zap.String("endpoint", endpoint),
			zap.String("locator", loc.Key()),
			zap.Error(err),
		}
		var se *weather.StatusError
		if errors.As(err, &se) {
			fields = append(fields, zap.Int("status", se.StatusCode), zap.String("body", se.Body))
		}
		p.logger.Debug("openweather request failed", fields...)
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", weather.ErrMalformedResponse, err)
	}
	return nil
}

var _ weather.Provider = (*OpenWeatherProvider)(nil)
