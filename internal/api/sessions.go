package api

import (
	"errors"
	"sync"

	"storefront/browser/internal/service"

	"github.com/google/uuid"
)

var (
	errSessionNotFound = errors.New("session not found")
	errViewNotFound    = errors.New("view not found")
)

// session is one visitor's browsing state: a catalog coordinator and the detail views it
// has open.
type session struct {
	id          uuid.UUID
	coordinator *service.Coordinator

	mu    sync.Mutex
	views map[uuid.UUID]*view
}

// view serializes access to a detail view. Gallery and review state are not safe for
// concurrent use on their own.
type view struct {
	id uuid.UUID

	mu     sync.Mutex
	detail *service.DetailView
}

type sessionRegistry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[uuid.UUID]*session)}
}

func (r *sessionRegistry) add(coordinator *service.Coordinator) *session {
	s := &session{
		id:          uuid.New(),
		coordinator: coordinator,
		views:       make(map[uuid.UUID]*view),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.id] = s
	return s
}

func (r *sessionRegistry) get(rawID string) (*session, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, errSessionNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, errSessionNotFound
	}
	return s, nil
}

// remove drops the session and cancels its in-flight catalog load.
func (r *sessionRegistry) remove(rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return errSessionNotFound
	}

	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return errSessionNotFound
	}
	s.coordinator.Close()
	return nil
}

func (r *sessionRegistry) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		s.coordinator.Close()
		delete(r.sessions, id)
	}
}

func (r *sessionRegistry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (s *session) openView(detail *service.DetailView) *view {
	v := &view{id: uuid.New(), detail: detail}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[v.id] = v
	return v
}

func (s *session) view(rawID string) (*view, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, errViewNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[id]
	if !ok {
		return nil, errViewNotFound
	}
	return v, nil
}

// closeView discards the view together with every review edit made in it.
func (s *session) closeView(rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return errViewNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.views[id]; !ok {
		return errViewNotFound
	}
	delete(s.views, id)
	return nil
}
