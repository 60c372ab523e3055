package usecase

import (
	"fmt"
	"listing-organizer/internal/core/domain"
	"sync"

	"github.com/google/uuid"
)

// wizardSession - одна открытая форма. mu сериализует все операции над state.
type wizardSession struct {
	mu      sync.Mutex
	id      string
	ownerID string
	state   *domain.WizardState
}

type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*wizardSession
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*wizardSession)}
}

func (s *sessionStore) create(ownerID string, state *domain.WizardState) *wizardSession {
	sess := &wizardSession{
		id:      uuid.NewString(),
		ownerID: ownerID,
		state:   state,
	}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	return sess
}

// get возвращает сессию, только если она принадлежит пользователю.
// Чужая сессия неотличима от несуществующей.
func (s *sessionStore) get(ownerID, id string) (*wizardSession, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok || sess.ownerID != ownerID {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return sess, nil
}

func (s *sessionStore) delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *sessionStore) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
