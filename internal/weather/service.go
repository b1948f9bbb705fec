package weather

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Status is the request lifecycle stage seen by the presentation layer.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// State is what the presentation layer renders.
//
// A successful search passes through an intermediate Success with Loading
// false and an empty Forecast: current conditions are published as soon as
// they arrive, and Forecast is filled in once the forecast call settles.
// Observers and concurrent readers may see that intermediate state.
type State struct {
	Status   Status        `json:"status"`
	Snapshot *Snapshot     `json:"weather"`
	Forecast []ForecastDay `json:"forecast"`
	Loading  bool          `json:"loading"`
	Error    string        `json:"error"`
	Category Category      `json:"errorCategory,omitempty"`
}

func (st State) clone() State {
	out := st
	if st.Snapshot != nil {
		snap := *st.Snapshot
		out.Snapshot = &snap
	}
	out.Forecast = append([]ForecastDay{}, st.Forecast...)
	return out
}

// Session drives one dashboard: a search enters Loading, fetches current
// conditions, then best-effort fetches the forecast.
//
// Every search is tagged with a sequence number. A result is applied only if
// no newer search was issued in the meantime; stale results are dropped.
type Session struct {
	provider   Provider
	aggregator *ForecastAggregator
	logger     *zap.Logger
	observer   func(State)

	mu    sync.Mutex
	seq   uint64
	state State
	last  *Locator
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithObserver registers a callback invoked after every state change.
func WithObserver(fn func(State)) SessionOption {
	return func(s *Session) {
		s.observer = fn
	}
}

// NewSession creates an idle session.
func NewSession(provider Provider, aggregator *ForecastAggregator, logger *zap.Logger, opts ...SessionOption) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if aggregator == nil {
		aggregator = NewForecastAggregator(DefaultCalendar())
	}
	s := &Session{
		provider:   provider,
		aggregator: aggregator,
		logger:     logger,
		state: State{
			Status:   StatusIdle,
			Forecast: []ForecastDay{},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// SearchByCity looks up a city by name. Blank input fails without I/O.
//
// The returned State is the session's state when the call finishes. If a
// newer search superseded this one, that is the newer search's state, which
// may still be Loading.
func (s *Session) SearchByCity(ctx context.Context, name string) State {
	if strings.TrimSpace(name) == "" {
		id := s.issue(nil, false)
		s.fail(id, CategoryValidation, "", ErrEmptyCity)
		return s.State()
	}
	return s.run(ctx, ByCity(name))
}

// SearchByLocation looks up a coordinate pair. Like SearchByCity, a
// superseded call returns the newer search's state.
func (s *Session) SearchByLocation(ctx context.Context, lat, lon float64) State {
	return s.run(ctx, ByCoordinates(lat, lon))
}

// SearchByGeolocation resolves the viewer's position first. A geolocation
// failure fails the session with the source's own message when it has one.
func (s *Session) SearchByGeolocation(ctx context.Context, src CoordinatesSource) State {
	coords, err := src.CurrentCoordinates(ctx)
	if err != nil {
		id := s.issue(nil, false)
		msg := ""
		var um interface{ UserMessage() string }
		if errors.As(err, &um) {
			msg = um.UserMessage()
		}
		s.fail(id, CategoryLocation, msg, err)
		return s.State()
	}
	return s.SearchByLocation(ctx, coords.Lat, coords.Lon)
}

// Refresh repeats the last issued lookup. It is a no-op for a session that
// never searched or whose latest search failed before reaching the provider
// (blank city, geolocation failure).
func (s *Session) Refresh(ctx context.Context) State {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	if last == nil {
		return s.State()
	}
	return s.run(ctx, *last)
}

// LastLocator returns the most recently issued lookup, if any.
func (s *Session) LastLocator() (Locator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Locator{}, false
	}
	return *s.last, true
}

func (s *Session) run(ctx context.Context, loc Locator) State {
	id := s.issue(&loc, true)
	lookup := LookupFor(loc)

	raw, err := s.provider.FetchCurrent(ctx, loc)
	if err != nil {
		s.fail(id, Categorize(err, lookup), "", err)
		return s.State()
	}

	snap, err := NormalizeCurrent(raw)
	if err != nil {
		s.fail(id, CategoryMalformed, "", err)
		return s.State()
	}

	applied := s.apply(id, func(st *State) {
		st.Status = StatusSuccess
		st.Loading = false
		st.Error = ""
		st.Category = CategoryNone
		st.Snapshot = &snap
		st.Forecast = []ForecastDay{}
	})
	if !applied {
		return s.State()
	}

	forecast := s.fetchForecast(ctx, loc)
	s.apply(id, func(st *State) {
		st.Forecast = forecast
	})

	return s.State()
}

// fetchForecast never fails; any error resolves to an empty forecast.
func (s *Session) fetchForecast(ctx context.Context, loc Locator) []ForecastDay {
	raw, err := s.provider.FetchForecastFeed(ctx, loc)
	if err != nil {
		s.logger.Warn("forecast fetch failed",
			zap.String("locator", loc.Key()),
			zap.String("category", string(Categorize(err, LookupForecast))),
			zap.Error(err))
		return []ForecastDay{}
	}

	days, err := s.aggregator.Aggregate(raw.List)
	if err != nil {
		s.logger.Warn("forecast aggregation failed", zap.String("locator", loc.Key()), zap.Error(err))
		return []ForecastDay{}
	}
	return days
}

// issue starts a new request and returns its sequence number. A nil loc
// forgets the previous lookup so Refresh cannot replay it.
func (s *Session) issue(loc *Locator, loading bool) uint64 {
	s.mu.Lock()
	s.seq++
	id := s.seq
	s.last = nil
	if loc != nil {
		l := *loc
		s.last = &l
	}
	if loading {
		s.state.Status = StatusLoading
		s.state.Loading = true
		s.state.Error = ""
		s.state.Category = CategoryNone
	}
	st := s.state.clone()
	s.mu.Unlock()

	if loading {
		s.notify(st)
	}
	return id
}

func (s *Session) fail(id uint64, cat Category, msg string, err error) {
	if msg == "" {
		msg = cat.Message()
	}
	applied := s.apply(id, func(st *State) {
		st.Status = StatusFailed
		st.Loading = false
		st.Error = msg
		st.Category = cat
		st.Snapshot = nil
		st.Forecast = []ForecastDay{}
	})
	if applied {
		s.logger.Info("weather search failed", zap.String("category", string(cat)), zap.Error(err))
	}
}

// apply mutates the state if request id is still the latest one.
func (s *Session) apply(id uint64, fn func(*State)) bool {
	s.mu.Lock()
	if id != s.seq {
		latest := s.seq
		s.mu.Unlock()
		s.logger.Debug("discarding stale weather result", zap.Uint64("request", id), zap.Uint64("latest", latest))
		return false
	}
	fn(&s.state)
	st := s.state.clone()
	s.mu.Unlock()

	s.notify(st)
	return true
}

func (s *Session) notify(st State) {
	if s.observer != nil {
		s.observer(st)
	}
}
