package weather

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned for an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

// Registry holds the dashboard sessions of connected viewers.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	factory  func() *Session
	logger   *zap.Logger
}

// NewRegistry creates a registry that builds sessions with factory.
func NewRegistry(factory func() *Session, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sessions: make(map[string]*Session),
		factory:  factory,
		logger:   logger,
	}
}

// Create registers a new idle session and returns its id.
func (r *Registry) Create() (string, *Session) {
	id := uuid.NewString()
	s := r.factory()

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	r.logger.Debug("session created", zap.String("session", id))
	return id, s
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete drops a session.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// RefreshAll re-runs the last lookup of every session that has one, one
// session at a time, and returns how many were refreshed.
func (r *Registry) RefreshAll(ctx context.Context) int {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	sessions := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		ids = append(ids, id)
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	refreshed := 0
	for i, s := range sessions {
		if ctx.Err() != nil {
			break
		}
		if _, ok := s.LastLocator(); !ok {
			continue
		}
		st := s.Refresh(ctx)
		refreshed++
		r.logger.Debug("session refreshed", zap.String("session", ids[i]), zap.String("status", string(st.Status)))
	}
	return refreshed
}
