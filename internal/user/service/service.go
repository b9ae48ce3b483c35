package service

import (
	"context"

	"github.com/messagely/backend/internal/common/logger"
	messagedomain "github.com/messagely/backend/internal/message/domain"
	messagerepo "github.com/messagely/backend/internal/message/repository"
	"github.com/messagely/backend/internal/user/domain"
	userrepo "github.com/messagely/backend/internal/user/repository"
)

// UserService serves the read side of the user surface: listings, profiles
// and the per-user message views.
type UserService struct {
	repo     userrepo.Repository
	messages messagerepo.Repository
	log      *logger.Logger
}

func NewUserService(repo userrepo.Repository, messages messagerepo.Repository, log *logger.Logger) *UserService {
	return &UserService{
		repo:     repo,
		messages: messages,
		log:      log,
	}
}

func (s *UserService) All(ctx context.Context) ([]domain.Summary, error) {
	users, err := s.repo.All(ctx)
	if err != nil {
		s.log.Errorf("list users failed: %v", err)
		return nil, err
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, username string) (domain.Profile, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return domain.Profile{}, err
	}
	return user.Profile(), nil
}

// MessagesFrom returns the messages the user has sent, each carrying the
// recipient's public profile. The user must exist; an unknown username is a
// typed not-found failure rather than an empty list.
func (s *UserService) MessagesFrom(ctx context.Context, username string) ([]messagedomain.Sent, error) {
	if _, err := s.repo.FindByUsername(ctx, username); err != nil {
		return nil, err
	}

	messages, err := s.messages.FindFromUser(ctx, username)
	if err != nil {
		s.log.Errorf("messages from user failed username=%s: %v", username, err)
		return nil, err
	}
	return messages, nil
}

func (s *UserService) MessagesTo(ctx context.Context, username string) ([]messagedomain.Received, error) {
	if _, err := s.repo.FindByUsername(ctx, username); err != nil {
		return nil, err
	}

	messages, err := s.messages.FindToUser(ctx, username)
	if err != nil {
		s.log.Errorf("messages to user failed username=%s: %v", username, err)
		return nil, err
	}
	return messages, nil
}
