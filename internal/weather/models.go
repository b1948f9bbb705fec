package weather

import (
	"strconv"
)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Locator identifies what to query the provider for.
// Exactly one of City or Coordinates is used; Coordinates wins when set.
type Locator struct {
	City        string       `json:"city,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// ByCity returns a locator for a free-text city name.
func ByCity(name string) Locator {
	return Locator{City: name}
}

// ByCoordinates returns a locator for a latitude/longitude pair.
func ByCoordinates(lat, lon float64) Locator {
	return Locator{Coordinates: &Coordinates{Lat: lat, Lon: lon}}
}

// IsCoordinates reports whether the locator is a coordinate lookup.
func (l Locator) IsCoordinates() bool {
	return l.Coordinates != nil
}

// Key returns a canonical string for logging.
func (l Locator) Key() string {
	if l.Coordinates != nil {
		return FormatDegrees(l.Coordinates.Lat) + "," + FormatDegrees(l.Coordinates.Lon)
	}
	return l.City
}

// FormatDegrees renders a coordinate in plain decimal degrees.
func FormatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Snapshot is the normalized current-conditions view of one search result.
type Snapshot struct {
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feelsLike"`
	Description string  `json:"description"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
	Icon        string  `json:"icon"`
}

// ForecastDay characterizes one calendar day of the forecast feed.
type ForecastDay struct {
	Date        string  `json:"date"`
	DayName     string  `json:"dayName"`
	TempMax     float64 `json:"tempMax"`
	TempMin     float64 `json:"tempMin"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

// Raw provider payloads. Numeric fields that must be present are pointers so
// absence can be told apart from zero.

// RawCondition is one element of the provider's "weather" array.
type RawCondition struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// RawCurrent is the current-conditions response body.
type RawCurrent struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		Humidity  *float64 `json:"humidity"`
	} `json:"main"`
	Weather []RawCondition `json:"weather"`
	Wind    struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
}

// RawForecastEntry is a single 3-hour step of the forecast feed.
type RawForecastEntry struct {
	Dt    int64  `json:"dt"`
	DtTxt string `json:"dt_txt"`
	Main  struct {
		Temp    float64 `json:"temp"`
		TempMin float64 `json:"temp_min"`
		TempMax float64 `json:"temp_max"`
	} `json:"main"`
	Weather []RawCondition `json:"weather"`
}

// RawForecast is the forecast feed response body.
type RawForecast struct {
	List []RawForecastEntry `json:"list"`
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
}
