// Package usertest provides an in-memory user.Store for tests.
package usertest

import (
	"context"
	"sync"
	"time"

	"gatekeeper/internal/user"

	"github.com/google/uuid"
)

// Store enforces email uniqueness like the real index does. Set Err to make
// every call fail.
type Store struct {
	mu      sync.Mutex
	byID    map[string]user.User
	byEmail map[string]string

	Err   error
	Calls int
}

func NewStore() *Store {
	return &Store{
		byID:    make(map[string]user.User),
		byEmail: make(map[string]string),
	}
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	id, ok := s.byEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	u := s.byID[id]
	return &u, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &u, nil
}

func (s *Store) Create(ctx context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.byEmail[u.Email]; ok {
		return user.ErrDuplicateEmail
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.byID[u.ID] = *u
	s.byEmail[u.Email] = u.ID
	return nil
}

// Delete removes a user, for exercising tokens that outlive their account.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.byID[id]; ok {
		delete(s.byEmail, u.Email)
		delete(s.byID, id)
	}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

var _ user.Store = (*Store)(nil)
