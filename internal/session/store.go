package session

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/inboxsweep/inboxsweep/interfaces"
	ierrors "github.com/inboxsweep/inboxsweep/internal/errors"
	"github.com/inboxsweep/inboxsweep/internal/models"
	"github.com/inboxsweep/inboxsweep/internal/utils"
)

// InMemoryStore keeps sessions in a mutex-guarded map. It exists behind
// interfaces.SessionStore so a persistent store can replace it without
// touching the engine.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: map[string]*models.Session{},
	}
}

var _ interfaces.SessionStore = (*InMemoryStore)(nil)

func (s *InMemoryStore) Create(ctx context.Context, session *models.Session) (string, error) {
	key, err := utils.NewSessionKey()
	if err != nil {
		return "", errors.Wrap(err, "generating session key")
	}

	session.Key = key
	session.CreatedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[key] = session

	return key, nil
}

func (s *InMemoryStore) Get(ctx context.Context, key string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[key]
	if !ok {
		return nil, ierrors.ErrSessionNotFound
	}

	copied := *session
	return &copied, nil
}

func (s *InMemoryStore) Update(ctx context.Context, key string, fn func(*models.Session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[key]
	if !ok {
		return ierrors.ErrSessionNotFound
	}

	fn(session)
	return nil
}

func (s *InMemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, key)
	return nil
}

func (s *InMemoryStore) DeleteExpired(ctx context.Context, olderThan time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, session := range s.sessions {
		if session.CreatedAt.Before(olderThan) {
			delete(s.sessions, key)
			removed++
		}
	}
	return removed
}
