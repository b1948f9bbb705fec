// Package favorites keeps the viewer's ordered list of favorite cities.
package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/i474232898/weather-dashboard/internal/store"
)

// StorageKey is the key the list is persisted under.
const StorageKey = "weatherFavorites"

// List is an ordered, case-sensitive set of city names.
type List struct {
	mu sync.Mutex
	kv store.KV
}

// New creates a List backed by kv.
func New(kv store.KV) *List {
	return &List{kv: kv}
}

// All returns the cities in insertion order. A missing or unreadable entry
// yields an empty list.
func (l *List) All(ctx context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

// Contains reports whether city is a favorite.
func (l *List) Contains(ctx context.Context, city string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cities, err := l.load(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(cities, city), nil
}

// Add appends city unless it is empty or already present.
func (l *List) Add(ctx context.Context, city string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cities, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	if city == "" || slices.Contains(cities, city) {
		return cities, nil
	}
	cities = append(cities, city)
	return cities, l.save(ctx, cities)
}

// Remove deletes city if present.
func (l *List) Remove(ctx context.Context, city string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cities, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	out := slices.DeleteFunc(cities, func(c string) bool { return c == city })
	return out, l.save(ctx, out)
}

// Toggle removes city when present and adds it otherwise.
func (l *List) Toggle(ctx context.Context, city string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cities, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	if slices.Contains(cities, city) {
		cities = slices.DeleteFunc(cities, func(c string) bool { return c == city })
	} else if city != "" {
		cities = append(cities, city)
	} else {
		return cities, nil
	}
	return cities, l.save(ctx, cities)
}

func (l *List) load(ctx context.Context) ([]string, error) {
	raw, err := l.kv.Get(ctx, StorageKey)
	if errors.Is(err, store.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}

	var cities []string
	if err := json.Unmarshal(raw, &cities); err != nil || cities == nil {
		return []string{}, nil
	}
	return cities, nil
}

func (l *List) save(ctx context.Context, cities []string) error {
	raw, err := json.Marshal(cities)
	if err != nil {
		return fmt.Errorf("failed to encode favorites: %w", err)
	}
	if err := l.kv.Set(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("failed to save favorites: %w", err)
	}
	return nil
}
