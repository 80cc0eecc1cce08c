package memory

import (
	"sync"

	"qcm-challenge/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu      sync.RWMutex
	byID    map[string]*app.Session
	byOwner map[string]string
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		byID:    make(map[string]*app.Session),
		byOwner: make(map[string]string),
	}
}

func (s *SessionStore) Put(session *app.Session) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner := session.User().Name
	var previous *app.Session
	if id, ok := s.byOwner[owner]; ok && id != session.ID() {
		previous = s.byID[id]
	}
	s.byID[session.ID()] = session
	s.byOwner[owner] = session.ID()
	return previous
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.byID[sessionID]
	return session, ok
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.byID[sessionID]
	if !ok {
		return
	}
	delete(s.byID, sessionID)
	owner := session.User().Name
	if s.byOwner[owner] == sessionID {
		delete(s.byOwner, owner)
	}
}
