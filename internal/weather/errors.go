package weather

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEmptyCity is returned when a city search is issued with blank input.
	ErrEmptyCity = errors.New("city name is empty")
	// ErrMissingAPIKey is returned by a provider that has no credential configured.
	ErrMissingAPIKey = errors.New("openweather api key is not configured")
	// ErrNotFound matches a provider 404.
	ErrNotFound = errors.New("location not found")
	// ErrUnauthorized matches a provider 401.
	ErrUnauthorized = errors.New("credential rejected")
	// ErrTransport matches network errors and any other non-success status.
	ErrTransport = errors.New("transport failure")
	// ErrMalformedResponse is returned when a payload lacks expected fields.
	ErrMalformedResponse = errors.New("malformed provider response")
)

// StatusError is a non-2xx provider response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned status %d", e.StatusCode)
}

// Is lets callers use errors.Is with the provider failure sentinels.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrTransport:
		return e.StatusCode != http.StatusNotFound && e.StatusCode != http.StatusUnauthorized
	}
	return false
}

// Lookup tells ClassifyError which kind of request failed.
type Lookup int

const (
	LookupCurrentByCity Lookup = iota
	LookupCurrentByCoordinates
	LookupForecast
)

// LookupFor returns the current-conditions lookup kind for a locator.
func LookupFor(loc Locator) Lookup {
	if loc.IsCoordinates() {
		return LookupCurrentByCoordinates
	}
	return LookupCurrentByCity
}

// Category is a user-facing error class.
type Category string

const (
	CategoryNone          Category = ""
	CategoryValidation    Category = "validation"
	CategoryConfiguration Category = "configuration"
	CategoryNotFound      Category = "not_found"
	CategoryUnauthorized  Category = "unauthorized"
	CategoryGeneric       Category = "generic_failure"
	CategoryMalformed     Category = "malformed_response"
	CategoryLocation      Category = "geolocation"
)

var categoryMessages = map[Category]string{
	CategoryValidation:    "Please enter a city name",
	CategoryConfiguration: "API key is missing. Please add OPENWEATHER_API_KEY to your .env file",
	CategoryNotFound:      "City not found. Please check the spelling and try again.",
	CategoryUnauthorized:  "Invalid API key. Please check your .env file.",
	CategoryGeneric:       "Failed to fetch weather data. Please try again.",
	CategoryMalformed:     "An unexpected error occurred. Please try again.",
	CategoryLocation:      "An unknown error occurred while getting location.",
}

// Message returns the short sentence shown to the user for the category.
func (c Category) Message() string {
	return categoryMessages[c]
}

// ClassifyError maps a provider status code to a category. 404 is only a
// NotFound for city lookups of current conditions.
func ClassifyError(statusCode int, lookup Lookup) Category {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return CategoryNone
	case statusCode == http.StatusNotFound && lookup == LookupCurrentByCity:
		return CategoryNotFound
	case statusCode == http.StatusUnauthorized:
		return CategoryUnauthorized
	default:
		return CategoryGeneric
	}
}

// Categorize maps any error produced by a search to a category.
func Categorize(err error, lookup Lookup) Category {
	if err == nil {
		return CategoryNone
	}

	var se *StatusError
	switch {
	case errors.Is(err, ErrEmptyCity):
		return CategoryValidation
	case errors.Is(err, ErrMissingAPIKey):
		return CategoryConfiguration
	case errors.As(err, &se):
		return ClassifyError(se.StatusCode, lookup)
	case errors.Is(err, ErrMalformedResponse):
		return CategoryMalformed
	default:
		return CategoryGeneric
	}
}
