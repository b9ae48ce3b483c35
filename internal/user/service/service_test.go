package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/messagely/backend/internal/common/logger"
	messagedomain "github.com/messagely/backend/internal/message/domain"
	messagerepo "github.com/messagely/backend/internal/message/repository"
	"github.com/messagely/backend/internal/user/domain"
	userrepo "github.com/messagely/backend/internal/user/repository"
)

type mockUserRepo struct {
	createFunc         func(ctx context.Context, user domain.User) error
	findByUsernameFunc func(ctx context.Context, username string) (domain.User, error)
	updateLastLogin    func(ctx context.Context, username string, t time.Time) (time.Time, error)
	allFunc            func(ctx context.Context) ([]domain.Summary, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user domain.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return domain.User{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, username string, t time.Time) (time.Time, error) {
	if m.updateLastLogin != nil {
		return m.updateLastLogin(ctx, username, t)
	}
	return t, nil
}

func (m *mockUserRepo) All(ctx context.Context) ([]domain.Summary, error) {
	if m.allFunc != nil {
		return m.allFunc(ctx)
	}
	return nil, nil
}

type mockMessageRepo struct {
	findFromUserFunc func(ctx context.Context, username string) ([]messagedomain.Sent, error)
	findToUserFunc   func(ctx context.Context, username string) ([]messagedomain.Received, error)
}

func (m *mockMessageRepo) Create(context.Context, messagedomain.Message) error { return nil }

func (m *mockMessageRepo) FindByID(context.Context, string) (messagedomain.Detail, error) {
	return messagedomain.Detail{}, messagerepo.ErrMessageNotFound
}

func (m *mockMessageRepo) FindFromUser(ctx context.Context, username string) ([]messagedomain.Sent, error) {
	if m.findFromUserFunc != nil {
		return m.findFromUserFunc(ctx, username)
	}
	return nil, nil
}

func (m *mockMessageRepo) FindToUser(ctx context.Context, username string) ([]messagedomain.Received, error) {
	if m.findToUserFunc != nil {
		return m.findToUserFunc(ctx, username)
	}
	return nil, nil
}

func (m *mockMessageRepo) MarkRead(_ context.Context, _ string, t time.Time) (time.Time, error) {
	return t, nil
}

func setupUserService(t *testing.T) (*UserService, *mockUserRepo, *mockMessageRepo) {
	t.Helper()

	users := &mockUserRepo{}
	messages := &mockMessageRepo{}
	log, err := logger.New("", "test", "ERROR")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return NewUserService(users, messages, log), users, messages
}

func aliceRow() domain.User {
	return domain.User{
		Username:     "alice",
		PasswordHash: "hashed:secret",
		FirstName:    "Alice",
		LastName:     "Example",
		Phone:        "555-1111",
		JoinedAt:     time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		LastLoginAt:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestUserService_All(t *testing.T) {
	svc, users, _ := setupUserService(t)
	users.allFunc = func(context.Context) ([]domain.Summary, error) {
		return []domain.Summary{
			{Username: "alice", FirstName: "Alice"},
			{Username: "bob", FirstName: "Bob"},
		}, nil
	}

	got, err := svc.All(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 users, got %d", len(got))
	}
	if got[0].Username != "alice" || got[1].Username != "bob" {
		t.Errorf("unexpected listing order: %s, %s", got[0].Username, got[1].Username)
	}
}

func TestUserService_Get(t *testing.T) {
	svc, users, _ := setupUserService(t)
	users.findByUsernameFunc = func(_ context.Context, username string) (domain.User, error) {
		if username != "alice" {
			return domain.User{}, userrepo.ErrUserNotFound
		}
		return aliceRow(), nil
	}

	profile, err := svc.Get(context.Background(), "alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if profile.Username != "alice" || profile.FirstName != "Alice" {
		t.Errorf("unexpected profile: %+v", profile)
	}

	_, err = svc.Get(context.Background(), "ghost")
	if !errors.Is(err, userrepo.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_MessagesFrom(t *testing.T) {
	svc, users, messages := setupUserService(t)
	users.findByUsernameFunc = func(_ context.Context, username string) (domain.User, error) {
		if username != "alice" {
			return domain.User{}, userrepo.ErrUserNotFound
		}
		return aliceRow(), nil
	}
	messages.findFromUserFunc = func(_ context.Context, username string) ([]messagedomain.Sent, error) {
		return []messagedomain.Sent{
			{ID: "msg-1", Body: "hi", ToUser: domain.Summary{Username: "bob"}},
		}, nil
	}

	got, err := svc.MessagesFrom(context.Background(), "alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 1 || got[0].ToUser.Username != "bob" {
		t.Errorf("unexpected messages: %+v", got)
	}
}

func TestUserService_MessagesFrom_UnknownUser(t *testing.T) {
	svc, _, messages := setupUserService(t)
	messages.findFromUserFunc = func(context.Context, string) ([]messagedomain.Sent, error) {
		t.Fatal("message query must not run for an unknown user")
		return nil, nil
	}

	_, err := svc.MessagesFrom(context.Background(), "ghost")
	if !errors.Is(err, userrepo.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_MessagesTo(t *testing.T) {
	svc, users, messages := setupUserService(t)
	users.findByUsernameFunc = func(_ context.Context, _ string) (domain.User, error) {
		return aliceRow(), nil
	}
	messages.findToUserFunc = func(_ context.Context, username string) ([]messagedomain.Received, error) {
		return []messagedomain.Received{
			{ID: "msg-2", Body: "hey", FromUser: domain.Summary{Username: "bob"}},
		}, nil
	}

	got, err := svc.MessagesTo(context.Background(), "alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 1 || got[0].FromUser.Username != "bob" {
		t.Errorf("unexpected messages: %+v", got)
	}
}

func TestUserService_MessagesTo_UnknownUser(t *testing.T) {
	svc, _, _ := setupUserService(t)

	_, err := svc.MessagesTo(context.Background(), "ghost")
	if !errors.Is(err, userrepo.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
