package service

import (
	"context"
	"errors"
	"testing"
	"time"

	commonerrors "github.com/messagely/backend/internal/common/errors"
	userdomain "github.com/messagely/backend/internal/user/domain"
	userrepo "github.com/messagely/backend/internal/user/repository"
)

func storedUser(mocked *mockHasher, password string) userdomain.User {
	hash, _ := mocked.Hash(password)
	return userdomain.User{
		Username:     "alice",
		PasswordHash: hash,
		FirstName:    "Alice",
		LastName:     "Example",
		Phone:        "555-1111",
		JoinedAt:     time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		LastLoginAt:  time.Date(2023, 6, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, repo, hasher, mockClock := setupAuthService(t)
	user := storedUser(hasher, "hunter2hunter2")
	repo.findByUsernameFunc = func(_ context.Context, username string) (userdomain.User, error) {
		if username != "alice" {
			return userdomain.User{}, userrepo.ErrUserNotFound
		}
		return user, nil
	}

	var loginStamp time.Time
	repo.updateLastLogin = func(_ context.Context, _ string, ts time.Time) (time.Time, error) {
		loginStamp = ts
		return ts, nil
	}

	result, err := svc.Login(context.Background(), LoginInput{
		Username: "alice",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if result.AccessToken == "" {
		t.Error("expected access token to be set")
	}
	if !loginStamp.Equal(mockClock.Now()) {
		t.Errorf("expected last login %v, got %v", mockClock.Now(), loginStamp)
	}
	if !result.User.LastLoginAt.Equal(mockClock.Now()) {
		t.Errorf("expected profile last login %v, got %v", mockClock.Now(), result.User.LastLoginAt)
	}
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc, _, _, _ := setupAuthService(t)

	_, err := svc.Login(context.Background(), LoginInput{
		Username: "nobody",
		Password: "password123",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, repo, hasher, _ := setupAuthService(t)
	user := storedUser(hasher, "hunter2hunter2")
	repo.findByUsernameFunc = func(_ context.Context, _ string) (userdomain.User, error) {
		return user, nil
	}

	_, err := svc.Login(context.Background(), LoginInput{
		Username: "alice",
		Password: "wrongpass123",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_ShortPassword(t *testing.T) {
	svc, repo, hasher, _ := setupAuthService(t)
	user := storedUser(hasher, "hunter2")
	repo.findByUsernameFunc = func(_ context.Context, _ string) (userdomain.User, error) {
		return user, nil
	}

	result, err := svc.Login(context.Background(), LoginInput{
		Username: "alice",
		Password: "hunter2",
	})
	if err != nil {
		t.Fatalf("expected short password to log in, got %v", err)
	}
	if result.AccessToken == "" {
		t.Error("expected access token to be set")
	}
}

func TestAuthService_Login_EmptyCredentials(t *testing.T) {
	svc, _, _, _ := setupAuthService(t)

	// Empty input reports the same error as a wrong password.
	for _, input := range []LoginInput{
		{Username: "", Password: "hunter2"},
		{Username: "alice", Password: ""},
	} {
		_, err := svc.Login(context.Background(), input)
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials for %+v, got %v", input, err)
		}
	}
}

func TestAuthService_Login_StorageError(t *testing.T) {
	svc, repo, _, _ := setupAuthService(t)
	repo.findByUsernameFunc = func(_ context.Context, _ string) (userdomain.User, error) {
		return userdomain.User{}, errors.New("connection refused")
	}

	_, err := svc.Login(context.Background(), LoginInput{
		Username: "alice",
		Password: "hunter2hunter2",
	})
	if !errors.Is(err, commonerrors.ErrDatabaseError) {
		t.Fatalf("expected database error, got %v", err)
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	svc, repo, hasher, _ := setupAuthService(t)
	user := storedUser(hasher, "hunter2hunter2")
	repo.findByUsernameFunc = func(_ context.Context, username string) (userdomain.User, error) {
		if username != "alice" {
			return userdomain.User{}, userrepo.ErrUserNotFound
		}
		return user, nil
	}

	cases := []struct {
		name     string
		username string
		password string
		want     bool
	}{
		{"valid pair", "alice", "hunter2hunter2", true},
		{"wrong password", "alice", "not-the-password", false},
		{"unknown user", "bob", "hunter2hunter2", false},
		{"empty username", "", "hunter2hunter2", false},
		{"empty password", "alice", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := svc.Authenticate(context.Background(), tc.username, tc.password)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if ok != tc.want {
				t.Errorf("expected %v, got %v", tc.want, ok)
			}
		})
	}
}
