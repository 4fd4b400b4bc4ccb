package memory

import (
	"context"
	"sync"
	"time"

	"ewha-quiz-service/internal/app"
	"ewha-quiz-service/internal/domain"
)

// UserStore is an in-memory implementation of app.UserStore.
type UserStore struct {
	txMu   sync.Mutex
	mu     sync.RWMutex
	nextID int64
	users  map[int64]domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[int64]domain.User)}
}

func (s *UserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email || u.Nickname == user.Nickname {
			return domain.ErrConflict
		}
	}
	s.nextID++
	user.ID = s.nextID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.users[user.ID] = *user
	return nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *UserStore) FindByID(_ context.Context, id int64) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *UserStore) ExistsByEmailOrNickname(_ context.Context, email, nickname string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email || u.Nickname == nickname {
			return true, nil
		}
	}
	return false, nil
}

func (s *UserStore) MarkVerified(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Verified = true
	s.users[userID] = u
	return nil
}

// WithTx serializes transactions and restores the previous state when fn fails.
func (s *UserStore) WithTx(_ context.Context, fn func(tx app.UserStore) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := make(map[int64]domain.User, len(s.users))
	for id, u := range s.users {
		snapshot[id] = u
	}
	nextID := s.nextID
	s.mu.RUnlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.users = snapshot
		s.nextID = nextID
		s.mu.Unlock()
		return err
	}
	return nil
}
