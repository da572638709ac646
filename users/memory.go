package users

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps users in a map. It backs `memory://` and the tests.
type MemoryStore struct {
	mu     sync.RWMutex
	byName map[string]User
	now    func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byName: make(map[string]User),
		now:    time.Now,
	}
}

// FindByUsername returns a copy of the stored user.
func (s *MemoryStore) FindByUsername(_ context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byName[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

// Create stores u under a fresh id unless the username is taken.
func (s *MemoryStore) Create(_ context.Context, nu NewUser) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[nu.Username]; exists {
		return nil, ErrDuplicateUser
	}

	u := User{
		ID:             uuid.NewString(),
		Username:       nu.Username,
		Email:          nu.Email,
		HashedPassword: nu.HashedPassword,
		CreatedAt:      s.now().UTC(),
	}
	s.byName[u.Username] = u
	return &u, nil
}
