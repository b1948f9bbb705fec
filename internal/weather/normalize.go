package weather

import (
	"fmt"
	"math"
)

// NormalizeCurrent maps a current-conditions payload into a Snapshot.
// Missing numeric fields or an empty condition array are errors, never zeros.
func NormalizeCurrent(raw RawCurrent) (Snapshot, error) {
	if len(raw.Weather) == 0 {
		return Snapshot{}, fmt.Errorf("%w: empty weather array", ErrMalformedResponse)
	}

	missing := missingFields(raw)
	if len(missing) > 0 {
		return Snapshot{}, fmt.Errorf("%w: missing %v", ErrMalformedResponse, missing)
	}

	cond := raw.Weather[0]
	return Snapshot{
		City:        raw.Name,
		Country:     raw.Sys.Country,
		Temperature: *raw.Main.Temp,
		FeelsLike:   *raw.Main.FeelsLike,
		Description: cond.Description,
		Humidity:    int(math.Round(*raw.Main.Humidity)),
		WindSpeed:   *raw.Wind.Speed,
		Icon:        cond.Icon,
	}, nil
}

func missingFields(raw RawCurrent) []string {
	var out []string
	if raw.Main.Temp == nil {
		out = append(out, "main.temp")
	}
	if raw.Main.FeelsLike == nil {
		out = append(out, "main.feels_like")
	}
	if raw.Main.Humidity == nil {
		out = append(out, "main.humidity")
	}
	if raw.Wind.Speed == nil {
		out = append(out, "wind.speed")
	}
	return out
}
