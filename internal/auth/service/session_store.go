// Package service implements the in-memory admin session store.
package service

import (
	"sync"
	"time"

	authDomain "github.com/allisson/ticketbox/internal/auth/domain"
	keyringDomain "github.com/allisson/ticketbox/internal/keyring/domain"
)

// SessionStore keeps admin sessions in process memory. It doubles as the
// SessionRevoker the key service calls on password rotation.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*authDomain.AdminSession
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*authDomain.AdminSession)}
}

// Put registers a session under its token.
func (s *SessionStore) Put(session *authDomain.AdminSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = session
}

// Get returns the live session for a token. Expired sessions are removed and
// reported as absent.
func (s *SessionStore) Get(token string) (*authDomain.AdminSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return nil, false
	}
	if session.Expired(time.Now().UTC()) {
		s.dropLocked(token)
		return nil, false
	}
	return session, true
}

// Revoke removes one session and zeroes its data key.
func (s *SessionStore) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropLocked(token)
}

// RevokeAll removes every session and zeroes every data key. Called by the
// key service when the admin password rotates.
func (s *SessionStore) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token := range s.sessions {
		s.dropLocked(token)
	}
}

// dropLocked removes a session while holding the mutex.
func (s *SessionStore) dropLocked(token string) {
	if session, ok := s.sessions[token]; ok {
		keyringDomain.Zero(session.DataKey)
		delete(s.sessions, token)
	}
}
