package weather

import (
	"context"
)

// Provider fetches raw payloads from the weather provider. Implementations
// must not retry and must report failures with the sentinels in errors.go.
type Provider interface {
	FetchCurrent(ctx context.Context, loc Locator) (RawCurrent, error)
	FetchForecastFeed(ctx context.Context, loc Locator) (RawForecast, error)
}

// CoordinatesSource yields the viewer's position.
// geolocation.Locator satisfies it.
type CoordinatesSource interface {
	CurrentCoordinates(ctx context.Context) (Coordinates, error)
}
