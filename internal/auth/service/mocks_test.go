package service

import (
	"context"
	"errors"
	"sync"
	"time"

	userdomain "github.com/messagely/backend/internal/user/domain"
	userrepo "github.com/messagely/backend/internal/user/repository"
)

type mockUserRepo struct {
	mu                 sync.Mutex
	createFunc         func(ctx context.Context, user userdomain.User) error
	findByUsernameFunc func(ctx context.Context, username string) (userdomain.User, error)
	updateLastLogin    func(ctx context.Context, username string, t time.Time) (time.Time, error)
	allFunc            func(ctx context.Context) ([]userdomain.Summary, error)
	created            []userdomain.User
}

func (m *mockUserRepo) Create(ctx context.Context, user userdomain.User) error {
	m.mu.Lock()
	m.created = append(m.created, user)
	m.mu.Unlock()
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (userdomain.User, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, username string, t time.Time) (time.Time, error) {
	if m.updateLastLogin != nil {
		return m.updateLastLogin(ctx, username, t)
	}
	return t, nil
}

func (m *mockUserRepo) All(ctx context.Context) ([]userdomain.Summary, error) {
	if m.allFunc != nil {
		return m.allFunc(ctx)
	}
	return nil, nil
}

type mockHasher struct {
	hashFunc    func(password string) (string, error)
	compareFunc func(hash, password string) error
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed:" + password, nil
}

func (m *mockHasher) Compare(hash, password string) error {
	if m.compareFunc != nil {
		return m.compareFunc(hash, password)
	}
	if hash == "hashed:"+password {
		return nil
	}
	return errors.New("hash mismatch")
}

type mockIDGenerator struct {
	newIDFunc func() (string, error)
}

func (m *mockIDGenerator) NewID() (string, error) {
	if m.newIDFunc != nil {
		return m.newIDFunc()
	}
	return "id-1", nil
}
