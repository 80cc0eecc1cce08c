package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"qcm-challenge/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Sessions own a live countdown, so they stay in a local map; Redis only
//     holds a liveness marker and the owner index with a TTL.
//   - The owner index lets an operator see who is currently sitting the quiz
//     (KEYS qcm:owner:*).
type SessionStore struct {
	client    *redis.Client
	ttl       time.Duration
	namespace string

	mu      sync.RWMutex
	byID    map[string]*app.Session
	byOwner map[string]string
}

func NewSessionStore(client *redis.Client, namespace string, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:    client,
		ttl:       ttl,
		namespace: namespace,
		byID:      make(map[string]*app.Session),
		byOwner:   make(map[string]string),
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

	// best-effort liveness markers
	ctx := context.Background()
	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.sessionKey(session.ID()), owner, s.ttl)
	pipe.Set(ctx, s.ownerKey(owner), session.ID(), s.ttl)
	_, _ = pipe.Exec(ctx)
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

	ctx := context.Background()
	_ = s.client.Del(ctx, s.sessionKey(sessionID)).Err()
	owner := session.User().Name
	if s.byOwner[owner] == sessionID {
		delete(s.byOwner, owner)
		_ = s.client.Del(ctx, s.ownerKey(owner)).Err()
	}
}

func (s *SessionStore) sessionKey(sessionID string) string {
	return s.namespace + ":session:" + sessionID
}

func (s *SessionStore) ownerKey(owner string) string {
	return s.namespace + ":owner:" + owner
}
