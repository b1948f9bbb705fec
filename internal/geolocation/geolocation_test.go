package geolocation

import (
	"context"
	"errors"
	"testing"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

func TestParseCode(t *testing.T) {
	tests := map[string]Code{
		"1":                    CodePermissionDenied,
		"2":                    CodePositionUnavailable,
		"3":                    CodeTimeout,
		"42":                   CodeUnknown,
		"PERMISSION_DENIED":    CodePermissionDenied,
		"position_unavailable": CodePositionUnavailable,
		"TIMEOUT":              CodeTimeout,
		"unsupported":          CodeUnsupported,
		"":                     CodeUnknown,
	}
	for in, want := range tests {
		if got := ParseCode(in); got != want {
			t.Errorf("ParseCode(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestReported(t *testing.T) {
	ctx := context.Background()

	coords, err := Reported{Coordinates: &weather.Coordinates{Lat: 1, Lon: 2}}.CurrentCoordinates(ctx)
	if err != nil || coords.Lat != 1 || coords.Lon != 2 {
		t.Fatalf("unexpected result %+v, %v", coords, err)
	}

	_, err = Reported{Code: CodePermissionDenied}.CurrentCoordinates(ctx)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	var ge *Error
	if !errors.As(err, &ge) || ge.UserMessage() != "Location access denied. Please search manually." {
		t.Fatalf("unexpected message for %v", err)
	}
}

func TestStatic(t *testing.T) {
	_, err := Static{}.CurrentCoordinates(context.Background())
	if !errors.Is(err, ErrPositionUnavailable) {
		t.Fatalf("expected ErrPositionUnavailable, got %v", err)
	}
}

func TestMessages(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{ErrPermissionDenied, "Location access denied. Please search manually."},
		{ErrPositionUnavailable, "Location information is unavailable."},
		{ErrTimeout, "Location request timed out."},
		{ErrUnknown, "An unknown error occurred while getting location."},
		{ErrUnsupported, "Geolocation is not supported by your browser"},
	}
	for _, tt := range tests {
		if got := tt.err.UserMessage(); got != tt.want {
			t.Errorf("%v: got %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestSessionUsesGeolocationMessage(t *testing.T) {
	s := weather.NewSession(nil, nil, nil)
	st := s.SearchByGeolocation(context.Background(), Reported{Code: CodeTimeout})
	if st.Status != weather.StatusFailed || st.Error != "Location request timed out." {
		t.Fatalf("unexpected state %+v", st)
	}
}
