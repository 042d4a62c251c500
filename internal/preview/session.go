// Package preview implements the document preview edit session: a
// view/edit state machine over a generated document.
package preview

import (
	"sync"

	apperrors "github.com/gitdocai/gitdocai/pkg/errors"
)

// Session guards one document's edit lifecycle. At most one of viewing
// or editing is active; exports and displays always read CurrentText.
type Session struct {
	mu        sync.Mutex
	generated string
	buffer    string
	editing   bool
}

// NewSession creates a session over a generated document.
func NewSession(document string) *Session {
	return &Session{generated: document}
}

// CurrentText returns the edit buffer while editing, otherwise the
// committed document text.
func (s *Session) CurrentText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing {
		return s.buffer
	}
	return s.generated
}

// Editing reports whether an edit is in progress.
func (s *Session) Editing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

// StartEdit enters editing mode, seeding the buffer from the committed
// text. Calling it while already editing keeps the buffer untouched.
func (s *Session) StartEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing {
		return
	}
	s.buffer = s.generated
	s.editing = true
}

// SetBuffer replaces the edit buffer. It is a no-op outside editing.
func (s *Session) SetBuffer(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.editing {
		return apperrors.ErrValidation("no edit in progress")
	}
	s.buffer = text
	return nil
}

// SaveEdit commits the buffer as the document text and returns to
// viewing. The commit is permanent for this session.
func (s *Session) SaveEdit() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.editing {
		return "", apperrors.ErrValidation("no edit in progress")
	}
	s.generated = s.buffer
	s.buffer = ""
	s.editing = false
	return s.generated, nil
}

// CancelEdit discards the buffer and returns to viewing; the committed
// text is restored byte for byte.
func (s *Session) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer = ""
	s.editing = false
}

// Replace swaps the committed document, dropping any edit in progress.
// Used when a new generation overwrites the previewed document.
func (s *Session) Replace(document string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generated = document
	s.buffer = ""
	s.editing = false
}
