package weather

import (
	"errors"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
)

// Monday 2024-01-15 10:00 UTC.
var testNow = time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)

func testCalendar(loc *time.Location) Calendar {
	return Calendar{
		Location:   loc,
		Translator: en.New(),
		Now:        func() time.Time { return testNow },
	}
}

func entryAt(t time.Time, temp float64, desc, icon string) RawForecastEntry {
	e := RawForecastEntry{
		Dt:    t.Unix(),
		DtTxt: t.UTC().Format("2006-01-02 15:04:05"),
	}
	e.Main.Temp = temp
	e.Main.TempMin = temp - 10
	e.Main.TempMax = temp + 10
	e.Weather = []RawCondition{{Description: desc, Icon: icon}}
	return e
}

func dayAt(day, hour int) time.Time {
	return time.Date(2024, time.January, day, hour, 0, 0, 0, time.UTC)
}

func TestAggregateKeepsFirstFiveDates(t *testing.T) {
	var feed []RawForecastEntry
	for d := 15; d < 22; d++ {
		for _, h := range []int{0, 12} {
			feed = append(feed, entryAt(dayAt(d, h), float64(d), "clear sky", "01d"))
		}
	}

	agg := NewForecastAggregator(testCalendar(time.UTC))
	days, err := agg.Aggregate(feed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != MaxForecastDays {
		t.Fatalf("expected %d days, got %d", MaxForecastDays, len(days))
	}

	trans := en.New()
	for i, d := range days {
		want := trans.FmtDateShort(dayAt(15+i, 12))
		if d.Date != want {
			t.Errorf("day %d: expected date %q, got %q", i, want, d.Date)
		}
		if d.TempMax != float64(15+i) {
			t.Errorf("day %d: expected tempMax %v, got %v", i, 15+i, d.TempMax)
		}
	}
}

func TestAggregateExtremaUsePointTemperatures(t *testing.T) {
	feed := []RawForecastEntry{
		entryAt(dayAt(16, 9), 18, "a", "01d"),
		entryAt(dayAt(16, 12), 22, "b", "02d"),
		entryAt(dayAt(16, 15), 19, "c", "03d"),
	}
	// Provider min/max deliberately disagree with the point readings.
	feed[0].Main.TempMin = -40
	feed[1].Main.TempMax = 60

	days, err := NewForecastAggregator(testCalendar(time.UTC)).Aggregate(feed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}
	if days[0].TempMax != 22 || days[0].TempMin != 18 {
		t.Errorf("expected max 22 min 18, got max %v min %v", days[0].TempMax, days[0].TempMin)
	}
}

func TestAggregateRepresentativeEntry(t *testing.T) {
	tests := []struct {
		name     string
		feed     []RawForecastEntry
		wantDesc string
		wantIcon string
	}{
		{
			name: "midday entry wins even when not first",
			feed: []RawForecastEntry{
				entryAt(dayAt(17, 9), 10, "mist", "50d"),
				entryAt(dayAt(17, 12), 14, "few clouds", "02d"),
				entryAt(dayAt(17, 15), 12, "rain", "10d"),
			},
			wantDesc: "few clouds",
			wantIcon: "02d",
		},
		{
			name: "first entry without midday",
			feed: []RawForecastEntry{
				entryAt(dayAt(17, 15), 12, "rain", "10d"),
				entryAt(dayAt(17, 18), 11, "snow", "13d"),
				entryAt(dayAt(17, 21), 9, "clear sky", "01n"),
			},
			wantDesc: "rain",
			wantIcon: "10d",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, err := NewForecastAggregator(testCalendar(time.UTC)).Aggregate(tt.feed)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(days) != 1 {
				t.Fatalf("expected 1 day, got %d", len(days))
			}
			if days[0].Description != tt.wantDesc || days[0].Icon != tt.wantIcon {
				t.Errorf("expected %q/%q, got %q/%q", tt.wantDesc, tt.wantIcon, days[0].Description, days[0].Icon)
			}
		})
	}
}

func TestAggregateDayLabels(t *testing.T) {
	feed := []RawForecastEntry{
		entryAt(dayAt(15, 12), 10, "a", "01d"),
		entryAt(dayAt(16, 12), 10, "a", "01d"),
		entryAt(dayAt(17, 12), 10, "a", "01d"),
		entryAt(dayAt(20, 12), 10, "a", "01d"),
	}

	days, err := NewForecastAggregator(testCalendar(time.UTC)).Aggregate(feed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"Today", "Tomorrow", "Wednesday", "Saturday"}
	if len(days) != len(want) {
		t.Fatalf("expected %d days, got %d", len(want), len(days))
	}
	for i, d := range days {
		if d.DayName != want[i] {
			t.Errorf("day %d: expected %q, got %q", i, want[i], d.DayName)
		}
	}
}

func TestAggregateUsesCalendarLocation(t *testing.T) {
	// 15:00 UTC on the 15th is already the 16th at UTC+10.
	plus10 := time.FixedZone("UTC+10", 10*60*60)
	feed := []RawForecastEntry{
		entryAt(dayAt(15, 9), 10, "a", "01d"),
		entryAt(dayAt(15, 15), 20, "b", "02d"),
	}

	days, err := NewForecastAggregator(testCalendar(plus10)).Aggregate(feed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	// testNow is 20:00 on the 15th at UTC+10.
	if days[0].DayName != "Today" || days[1].DayName != "Tomorrow" {
		t.Errorf("unexpected labels %q, %q", days[0].DayName, days[1].DayName)
	}
}

func TestAggregateShortAndEmptyFeeds(t *testing.T) {
	agg := NewForecastAggregator(testCalendar(time.UTC))

	days, err := agg.Aggregate(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days == nil || len(days) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", days)
	}

	feed := []RawForecastEntry{
		entryAt(dayAt(15, 21), 5, "a", "01n"),
		entryAt(dayAt(16, 0), 4, "a", "01n"),
	}
	days, err = agg.Aggregate(feed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
}

func TestAggregatePreservesFeedOrder(t *testing.T) {
	feed := []RawForecastEntry{
		entryAt(dayAt(18, 12), 1, "a", "01d"),
		entryAt(dayAt(16, 12), 2, "b", "01d"),
	}

	days, err := NewForecastAggregator(testCalendar(time.UTC)).Aggregate(feed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days[0].TempMax != 1 || days[1].TempMax != 2 {
		t.Errorf("expected feed order to be kept, got %+v", days)
	}
}

func TestAggregateRepresentativeWithoutCondition(t *testing.T) {
	e := entryAt(dayAt(16, 12), 10, "a", "01d")
	e.Weather = nil

	_, err := NewForecastAggregator(testCalendar(time.UTC)).Aggregate([]RawForecastEntry{e})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}
