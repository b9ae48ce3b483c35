package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/messagely/backend/internal/common/clock"
	commonerrors "github.com/messagely/backend/internal/common/errors"
	"github.com/messagely/backend/internal/common/logger"
	"github.com/messagely/backend/internal/message/domain"
	messagerepo "github.com/messagely/backend/internal/message/repository"
	userdomain "github.com/messagely/backend/internal/user/domain"
)

type mockMessageRepo struct {
	createFunc       func(ctx context.Context, message domain.Message) error
	findByIDFunc     func(ctx context.Context, id string) (domain.Detail, error)
	findFromUserFunc func(ctx context.Context, username string) ([]domain.Sent, error)
	findToUserFunc   func(ctx context.Context, username string) ([]domain.Received, error)
	markReadFunc     func(ctx context.Context, id string, t time.Time) (time.Time, error)
	created          []domain.Message
}

func (m *mockMessageRepo) Create(ctx context.Context, message domain.Message) error {
	m.created = append(m.created, message)
	if m.createFunc != nil {
		return m.createFunc(ctx, message)
	}
	return nil
}

func (m *mockMessageRepo) FindByID(ctx context.Context, id string) (domain.Detail, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return domain.Detail{}, messagerepo.ErrMessageNotFound
}

func (m *mockMessageRepo) FindFromUser(ctx context.Context, username string) ([]domain.Sent, error) {
	if m.findFromUserFunc != nil {
		return m.findFromUserFunc(ctx, username)
	}
	return nil, nil
}

func (m *mockMessageRepo) FindToUser(ctx context.Context, username string) ([]domain.Received, error) {
	if m.findToUserFunc != nil {
		return m.findToUserFunc(ctx, username)
	}
	return nil, nil
}

func (m *mockMessageRepo) MarkRead(ctx context.Context, id string, t time.Time) (time.Time, error) {
	if m.markReadFunc != nil {
		return m.markReadFunc(ctx, id, t)
	}
	return t, nil
}

type mockIDGenerator struct {
	newIDFunc func() (string, error)
}

func (m *mockIDGenerator) NewID() (string, error) {
	if m.newIDFunc != nil {
		return m.newIDFunc()
	}
	return "msg-1", nil
}

func setupMessageService(t *testing.T) (*MessageService, *mockMessageRepo, *clock.MockClock) {
	t.Helper()

	repo := &mockMessageRepo{}
	mockClock := clock.NewMockClock(time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC))
	log, err := logger.New("", "test", "ERROR")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	svc := NewMessageService(repo, &mockIDGenerator{}, mockClock, log)
	return svc, repo, mockClock
}

func detailFixture(to string) domain.Detail {
	return domain.Detail{
		ID:     "msg-1",
		Body:   "hello there",
		SentAt: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
		FromUser: userdomain.Summary{
			Username:  "alice",
			FirstName: "Alice",
			LastName:  "Example",
		},
		ToUser: userdomain.Summary{
			Username:  to,
			FirstName: "Bob",
			LastName:  "Example",
		},
	}
}

func TestMessageService_Send_Success(t *testing.T) {
	svc, repo, mockClock := setupMessageService(t)

	msg, err := svc.Send(context.Background(), "alice", "bob", "  hello there  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if msg.ID != "msg-1" {
		t.Errorf("expected id msg-1, got %s", msg.ID)
	}
	if msg.Body != "hello there" {
		t.Errorf("expected trimmed body, got %q", msg.Body)
	}
	if !msg.SentAt.Equal(mockClock.Now()) {
		t.Errorf("expected sent_at %v, got %v", mockClock.Now(), msg.SentAt)
	}
	if msg.ReadAt != nil {
		t.Error("new message must be unread")
	}

	if len(repo.created) != 1 {
		t.Fatalf("expected 1 stored message, got %d", len(repo.created))
	}
	stored := repo.created[0]
	if stored.FromUsername != "alice" || stored.ToUsername != "bob" {
		t.Errorf("unexpected participants: %s -> %s", stored.FromUsername, stored.ToUsername)
	}
}

func TestMessageService_Send_BodyValidation(t *testing.T) {
	svc, _, _ := setupMessageService(t)

	cases := []struct {
		name string
		body string
		want error
	}{
		{"empty", "", ErrEmptyBody},
		{"whitespace only", "   \n\t ", ErrEmptyBody},
		{"too long", strings.Repeat("x", 4001), ErrBodyTooLong},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Send(context.Background(), "alice", "bob", tc.body)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestMessageService_Send_UnknownRecipient(t *testing.T) {
	svc, repo, _ := setupMessageService(t)
	repo.createFunc = func(_ context.Context, _ domain.Message) error {
		return messagerepo.ErrUnknownUser
	}

	_, err := svc.Send(context.Background(), "alice", "ghost", "hello")
	if !errors.Is(err, messagerepo.ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}
}

func TestMessageService_Get_AccessControl(t *testing.T) {
	svc, repo, _ := setupMessageService(t)
	repo.findByIDFunc = func(_ context.Context, _ string) (domain.Detail, error) {
		return detailFixture("bob"), nil
	}

	for _, requester := range []string{"alice", "bob"} {
		if _, err := svc.Get(context.Background(), "msg-1", requester); err != nil {
			t.Errorf("expected %s to read the message, got %v", requester, err)
		}
	}

	_, err := svc.Get(context.Background(), "msg-1", "mallory")
	if !errors.Is(err, commonerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestMessageService_Get_NotFound(t *testing.T) {
	svc, _, _ := setupMessageService(t)

	_, err := svc.Get(context.Background(), "missing", "alice")
	if !errors.Is(err, messagerepo.ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound, got %v", err)
	}
}

func TestMessageService_MarkRead_Success(t *testing.T) {
	svc, repo, mockClock := setupMessageService(t)
	repo.findByIDFunc = func(_ context.Context, _ string) (domain.Detail, error) {
		return detailFixture("bob"), nil
	}

	detail, err := svc.MarkRead(context.Background(), "msg-1", "bob")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if detail.ReadAt == nil {
		t.Fatal("expected read_at to be set")
	}
	if !detail.ReadAt.Equal(mockClock.Now()) {
		t.Errorf("expected read_at %v, got %v", mockClock.Now(), *detail.ReadAt)
	}
}

func TestMessageService_MarkRead_OnlyRecipient(t *testing.T) {
	svc, repo, _ := setupMessageService(t)
	repo.findByIDFunc = func(_ context.Context, _ string) (domain.Detail, error) {
		return detailFixture("bob"), nil
	}

	for _, requester := range []string{"alice", "mallory"} {
		_, err := svc.MarkRead(context.Background(), "msg-1", requester)
		if !errors.Is(err, commonerrors.ErrForbidden) {
			t.Errorf("expected ErrForbidden for %s, got %v", requester, err)
		}
	}
}

func TestMessageService_MarkRead_AlreadyRead(t *testing.T) {
	svc, repo, _ := setupMessageService(t)
	readAt := time.Date(2024, 3, 14, 18, 0, 0, 0, time.UTC)
	repo.findByIDFunc = func(_ context.Context, _ string) (domain.Detail, error) {
		d := detailFixture("bob")
		d.ReadAt = &readAt
		return d, nil
	}
	repo.markReadFunc = func(_ context.Context, _ string, _ time.Time) (time.Time, error) {
		t.Fatal("update must not run for an already-read message")
		return time.Time{}, nil
	}

	detail, err := svc.MarkRead(context.Background(), "msg-1", "bob")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if detail.ReadAt == nil || !detail.ReadAt.Equal(readAt) {
		t.Errorf("expected original read_at %v, got %v", readAt, detail.ReadAt)
	}
}

func TestMessageService_MarkRead_ConcurrentReader(t *testing.T) {
	svc, repo, _ := setupMessageService(t)
	raceReadAt := time.Date(2024, 3, 15, 9, 29, 0, 0, time.UTC)
	calls := 0
	repo.findByIDFunc = func(_ context.Context, _ string) (domain.Detail, error) {
		calls++
		d := detailFixture("bob")
		if calls > 1 {
			d.ReadAt = &raceReadAt
		}
		return d, nil
	}
	repo.markReadFunc = func(_ context.Context, _ string, _ time.Time) (time.Time, error) {
		return time.Time{}, messagerepo.ErrMessageNotFound
	}

	detail, err := svc.MarkRead(context.Background(), "msg-1", "bob")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if detail.ReadAt == nil || !detail.ReadAt.Equal(raceReadAt) {
		t.Errorf("expected read_at from the concurrent update, got %v", detail.ReadAt)
	}
}
