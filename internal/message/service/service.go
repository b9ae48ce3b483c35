package service

import (
	"context"
	"errors"
	"strings"

	"github.com/messagely/backend/internal/common/clock"
	"github.com/messagely/backend/internal/common/constants"
	commoncrypto "github.com/messagely/backend/internal/common/crypto"
	commonerrors "github.com/messagely/backend/internal/common/errors"
	"github.com/messagely/backend/internal/common/logger"
	"github.com/messagely/backend/internal/message/domain"
	messagerepo "github.com/messagely/backend/internal/message/repository"
	"github.com/messagely/backend/internal/observability/metrics"
)

var (
	ErrEmptyBody = commonerrors.NewDomainError(
		"EMPTY_MESSAGE_BODY",
		commonerrors.CategoryValidation,
		400,
		"message body is empty",
	)

	ErrBodyTooLong = commonerrors.NewDomainError(
		"MESSAGE_BODY_TOO_LONG",
		commonerrors.CategoryValidation,
		400,
		"message body exceeds the maximum length",
	)
)

type MessageService struct {
	repo        messagerepo.Repository
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	log         *logger.Logger
}

func NewMessageService(
	repo messagerepo.Repository,
	idGenerator commoncrypto.IDGenerator,
	clk clock.Clock,
	log *logger.Logger,
) *MessageService {
	return &MessageService{
		repo:        repo,
		idGenerator: idGenerator,
		clock:       clk,
		log:         log,
	}
}

// Send stores a new message from the authenticated sender. Referential
// integrity is delegated to the messages table's foreign keys; an unknown
// recipient surfaces as a 400 rather than an opaque storage fault.
func (s *MessageService) Send(ctx context.Context, from, to, body string) (domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return domain.Message{}, ErrEmptyBody
	}
	if len(body) > constants.MaxMessageLength {
		return domain.Message{}, ErrBodyTooLong
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return domain.Message{}, commonerrors.ErrInternalError.WithCause(err)
	}

	message := domain.Message{
		ID:           id,
		FromUsername: from,
		ToUsername:   to,
		Body:         body,
		SentAt:       s.clock.Now(),
	}

	if err := s.repo.Create(ctx, message); err != nil {
		if errors.Is(err, messagerepo.ErrUnknownUser) {
			s.log.WithFields(ctx, logger.Fields{
				"from":   from,
				"to":     to,
				"action": "send_unknown_recipient",
			}).Warn("send failed: unknown recipient")
			return domain.Message{}, err
		}
		s.log.WithFields(ctx, logger.Fields{
			"from":   from,
			"action": "send_create_failed",
		}).Errorf("send failed: %v", err)
		return domain.Message{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	metrics.MessagesSent.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"message_id": message.ID,
		"from":       from,
		"to":         to,
		"action":     "send_success",
	}).Info("message sent")

	return message, nil
}

// Get returns a message only to its sender or recipient.
func (s *MessageService) Get(ctx context.Context, id, requester string) (domain.Detail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Detail{}, err
	}

	if requester != detail.FromUser.Username && requester != detail.ToUser.Username {
		return domain.Detail{}, commonerrors.ErrForbidden
	}

	return detail, nil
}

// MarkRead sets read_at once; only the recipient may do it. Re-marking an
// already-read message succeeds and returns the original timestamp.
func (s *MessageService) MarkRead(ctx context.Context, id, requester string) (domain.Detail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Detail{}, err
	}

	if requester != detail.ToUser.Username {
		return domain.Detail{}, commonerrors.ErrForbidden
	}

	if detail.ReadAt != nil {
		return detail, nil
	}

	readAt, err := s.repo.MarkRead(ctx, id, s.clock.Now())
	if err != nil {
		// A concurrent reader may have set read_at between the lookup and
		// the guarded update; resolve to the stored value.
		if errors.Is(err, messagerepo.ErrMessageNotFound) {
			return s.repo.FindByID(ctx, id)
		}
		s.log.WithFields(ctx, logger.Fields{
			"message_id": id,
			"action":     "mark_read_failed",
		}).Errorf("mark read failed: %v", err)
		return domain.Detail{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	metrics.MessagesRead.Inc()
	detail.ReadAt = &readAt
	return detail, nil
}
