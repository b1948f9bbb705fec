// Package geolocation models the viewer-position capability the dashboard
// asks for when the user searches by location.
package geolocation

import (
	"context"
	"strconv"
	"strings"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Code is a failure cause. The positive values follow the browser
// Geolocation API error codes.
type Code int

const (
	CodeUnsupported         Code = -1
	CodeUnknown             Code = 0
	CodePermissionDenied    Code = 1
	CodePositionUnavailable Code = 2
	CodeTimeout             Code = 3
)

// Error is a geolocation failure carrying its cause.
type Error struct {
	Code Code
}

var (
	ErrUnsupported         = &Error{Code: CodeUnsupported}
	ErrUnknown             = &Error{Code: CodeUnknown}
	ErrPermissionDenied    = &Error{Code: CodePermissionDenied}
	ErrPositionUnavailable = &Error{Code: CodePositionUnavailable}
	ErrTimeout             = &Error{Code: CodeTimeout}
)

func (e *Error) Error() string {
	switch e.Code {
	case CodeUnsupported:
		return "geolocation unsupported"
	case CodePermissionDenied:
		return "geolocation permission denied"
	case CodePositionUnavailable:
		return "geolocation position unavailable"
	case CodeTimeout:
		return "geolocation timeout"
	default:
		return "geolocation failed"
	}
}

// Is matches errors by cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// UserMessage is the sentence shown to the user for this cause.
func (e *Error) UserMessage() string {
	switch e.Code {
	case CodeUnsupported:
		return "Geolocation is not supported by your browser"
	case CodePermissionDenied:
		return "Location access denied. Please search manually."
	case CodePositionUnavailable:
		return "Location information is unavailable."
	case CodeTimeout:
		return "Location request timed out."
	default:
		return "An unknown error occurred while getting location."
	}
}

// FromCode returns the error for a browser-reported code.
func FromCode(c Code) *Error {
	switch c {
	case CodeUnsupported, CodePermissionDenied, CodePositionUnavailable, CodeTimeout:
		return &Error{Code: c}
	default:
		return ErrUnknown
	}
}

// ParseCode accepts either the numeric browser code or its constant name
// (e.g. "PERMISSION_DENIED").
func ParseCode(s string) Code {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return FromCode(Code(n)).Code
	}
	switch strings.ToUpper(s) {
	case "PERMISSION_DENIED":
		return CodePermissionDenied
	case "POSITION_UNAVAILABLE":
		return CodePositionUnavailable
	case "TIMEOUT":
		return CodeTimeout
	case "UNSUPPORTED", "NOT_SUPPORTED":
		return CodeUnsupported
	default:
		return CodeUnknown
	}
}

// Locator yields the viewer's coordinates or fails with an *Error.
type Locator interface {
	CurrentCoordinates(ctx context.Context) (weather.Coordinates, error)
}

// Reported replays a position (or failure) the browser already resolved.
type Reported struct {
	Coordinates *weather.Coordinates
	Code        Code
}

func (r Reported) CurrentCoordinates(ctx context.Context) (weather.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return weather.Coordinates{}, ErrTimeout
	}
	if r.Coordinates == nil {
		return weather.Coordinates{}, FromCode(r.Code)
	}
	return *r.Coordinates, nil
}

// Static always answers with configured coordinates.
type Static struct {
	Coordinates *weather.Coordinates
}

func (s Static) CurrentCoordinates(ctx context.Context) (weather.Coordinates, error) {
	if s.Coordinates == nil {
		return weather.Coordinates{}, ErrPositionUnavailable
	}
	return *s.Coordinates, nil
}

var (
	_ Locator = Reported{}
	_ Locator = Static{}
)
