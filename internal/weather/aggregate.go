package weather

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
)

// MaxForecastDays caps the number of days kept from a forecast feed.
const MaxForecastDays = 5

const (
	labelToday    = "Today"
	labelTomorrow = "Tomorrow"
	middayMarker  = "12:00:00"
)

// Calendar is the viewer's time zone, locale and clock.
type Calendar struct {
	Location   *time.Location
	Translator locales.Translator
	Now        func() time.Time
}

// DefaultCalendar uses the process time zone, English names and the wall clock.
func DefaultCalendar() Calendar {
	return Calendar{
		Location:   time.Local,
		Translator: en.New(),
		Now:        time.Now,
	}
}

type civilDate struct {
	year  int
	month time.Month
	day   int
}

func civil(t time.Time) civilDate {
	y, m, d := t.Date()
	return civilDate{year: y, month: m, day: d}
}

// ForecastAggregator reduces a 3-hour forecast feed to one record per day.
type ForecastAggregator struct {
	cal Calendar
}

// NewForecastAggregator creates an aggregator. Zero-valued calendar fields
// fall back to DefaultCalendar.
func NewForecastAggregator(cal Calendar) *ForecastAggregator {
	def := DefaultCalendar()
	if cal.Location == nil {
		cal.Location = def.Location
	}
	if cal.Translator == nil {
		cal.Translator = def.Translator
	}
	if cal.Now == nil {
		cal.Now = def.Now
	}
	return &ForecastAggregator{cal: cal}
}

type dayGroup struct {
	date    civilDate
	entries []RawForecastEntry
}

// Aggregate groups entries by local calendar date in first-seen order, keeps
// the first MaxForecastDays dates and summarizes each of them. Feed order is
// trusted; groups are not re-sorted.
func (a *ForecastAggregator) Aggregate(entries []RawForecastEntry) ([]ForecastDay, error) {
	var groups []*dayGroup
	index := make(map[civilDate]*dayGroup)

	for _, e := range entries {
		d := civil(a.entryTime(e))
		g, ok := index[d]
		if !ok {
			g = &dayGroup{date: d}
			index[d] = g
			groups = append(groups, g)
		}
		g.entries = append(g.entries, e)
	}

	if len(groups) > MaxForecastDays {
		groups = groups[:MaxForecastDays]
	}

	now := a.cal.Now().In(a.cal.Location)
	today := civil(now)
	tomorrow := civil(now.AddDate(0, 0, 1))

	days := make([]ForecastDay, 0, len(groups))
	for _, g := range groups {
		rep := representative(g.entries)
		if len(rep.Weather) == 0 {
			return nil, fmt.Errorf("%w: forecast entry %d has no condition", ErrMalformedResponse, rep.Dt)
		}

		tempMax, tempMin := pointExtrema(g.entries)
		repTime := a.entryTime(rep)

		days = append(days, ForecastDay{
			Date:        a.cal.Translator.FmtDateShort(repTime),
			DayName:     a.dayLabel(repTime, today, tomorrow),
			TempMax:     tempMax,
			TempMin:     tempMin,
			Description: rep.Weather[0].Description,
			Icon:        rep.Weather[0].Icon,
		})
	}

	return days, nil
}

func (a *ForecastAggregator) entryTime(e RawForecastEntry) time.Time {
	return time.Unix(e.Dt, 0).In(a.cal.Location)
}

func (a *ForecastAggregator) dayLabel(t time.Time, today, tomorrow civilDate) string {
	switch civil(t) {
	case today:
		return labelToday
	case tomorrow:
		return labelTomorrow
	default:
		return a.cal.Translator.WeekdayWide(t.Weekday())
	}
}

// representative picks the midday entry when present, else the first one.
func representative(group []RawForecastEntry) RawForecastEntry {
	for _, e := range group {
		if strings.Contains(e.DtTxt, middayMarker) {
			return e
		}
	}
	return group[0]
}

// pointExtrema uses the point temperatures only; per-entry temp_min/temp_max
// from the provider are ignored.
func pointExtrema(group []RawForecastEntry) (hi, lo float64) {
	hi, lo = group[0].Main.Temp, group[0].Main.Temp
	for _, e := range group[1:] {
		hi = max(hi, e.Main.Temp)
		lo = min(lo, e.Main.Temp)
	}
	return hi, lo
}
