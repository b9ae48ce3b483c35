package service

import (
	"context"
	"errors"

	"github.com/messagely/backend/internal/common/clock"
	commoncrypto "github.com/messagely/backend/internal/common/crypto"
	commonerrors "github.com/messagely/backend/internal/common/errors"
	"github.com/messagely/backend/internal/common/logger"
	"github.com/messagely/backend/internal/observability/metrics"
	userdomain "github.com/messagely/backend/internal/user/domain"
	userrepo "github.com/messagely/backend/internal/user/repository"
)

type AuthService struct {
	repo   userrepo.Repository
	hasher commoncrypto.PasswordHasher
	issuer *TokenIssuer
	clock  clock.Clock
	log    *logger.Logger
}

func NewAuthService(
	repo userrepo.Repository,
	hasher commoncrypto.PasswordHasher,
	issuer *TokenIssuer,
	clk clock.Clock,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		issuer: issuer,
		clock:  clk,
		log:    log,
	}
}

type RegisterInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	AccessToken string
	User        userdomain.Profile
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "register_attempt",
	}).Info("register attempt")

	if err := validateCredentials(input.Username, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		return AuthResult{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		return AuthResult{}, commonerrors.ErrInternalError.WithCause(err)
	}

	now := s.clock.Now()
	user := userdomain.User{
		Username:     input.Username,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		JoinedAt:     now,
		LastLoginAt:  now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userrepo.ErrUsernameAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_username_exists",
			}).Warn("register failed: already exists")
			return AuthResult{}, ErrUsernameTaken
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_create_failed",
		}).Errorf("register failed: %v", err)
		return AuthResult{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	accessToken, _, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_token_issue_failed",
		}).Errorf("register failed: token issue error: %v", err)
		return AuthResult{}, commonerrors.ErrInternalError.WithCause(err)
	}

	metrics.UsersRegistered.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"action":   "register_success",
	}).Info("register success")

	return AuthResult{
		AccessToken: accessToken,
		User:        user.Profile(),
	}, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	if err := validateCredentials(input.Username, input.Password); err != nil {
		// Login never reveals which rule failed; any malformed credential
		// could not belong to a registered user anyway.
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		return AuthResult{}, ErrInvalidCredentials
	}

	ok, err := s.Authenticate(ctx, input.Username, input.Password)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return AuthResult{}, err
	}
	if !ok {
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		return AuthResult{}, ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, input.Username)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return AuthResult{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	lastLogin, err := s.repo.UpdateLastLogin(ctx, input.Username, s.clock.Now())
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_timestamp_failed",
		}).Errorf("login failed: update last login: %v", err)
		return AuthResult{}, commonerrors.ErrDatabaseError.WithCause(err)
	}
	user.LastLoginAt = lastLogin

	accessToken, _, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return AuthResult{}, commonerrors.ErrInternalError.WithCause(err)
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"action":   "login_success",
	}).Info("login success")

	return AuthResult{
		AccessToken: accessToken,
		User:        user.Profile(),
	}, nil
}

// Authenticate reports whether the username/password pair is valid. Unknown
// username and wrong password are indistinguishable in the result; the
// distinction is kept to DEBUG logs only.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"action": "authenticate_unknown_user",
			}).Debug("authenticate failed: unknown user")
			return false, nil
		}
		return false, commonerrors.ErrDatabaseError.WithCause(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "authenticate_password_mismatch",
		}).Debug("authenticate failed: password mismatch")
		return false, nil
	}

	return true, nil
}
