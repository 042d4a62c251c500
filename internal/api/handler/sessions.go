package handler

import (
	"sync"

	"github.com/gitdocai/gitdocai/internal/preview"
)

// sessionRegistry maps generation IDs to their preview edit sessions.
// Sessions are created lazily from the stored document and dropped when
// the generation is deleted.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*preview.Session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*preview.Session)}
}

// get returns the session for a generation, creating one seeded with
// the given document if none exists yet.
func (r *sessionRegistry) get(id, document string) *preview.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		s = preview.NewSession(document)
		r.sessions[id] = s
	}
	return s
}

// peek returns the session for a generation without creating one.
func (r *sessionRegistry) peek(id string) (*preview.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// drop removes the session for a generation.
func (r *sessionRegistry) drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}
