package cache

import (
	"context"
	"sync"
	"time"

	"legalai-assistant/internal/model"
)

// MemorySessionStore is the single-process fallback for deployments without
// redis, and the store the tests run against.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]model.Session)}
}

func (s *MemorySessionStore) Put(_ context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = *session
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, token string) (*model.Session, bool, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if session.Expired(time.Now()) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, false, nil
	}
	session.Token = token
	return &session, true, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
