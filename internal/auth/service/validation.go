package service

import (
	"github.com/messagely/backend/internal/common/constants"
)

// validateCredentials requires non-empty credentials. The only other
// constraint is bcrypt's 72-byte input limit; anything past it would be
// silently truncated by the hasher.
func validateCredentials(username, password string) error {
	if username == "" {
		return ErrValidationUsernameRequired
	}

	if password == "" {
		return ErrValidationPasswordRequired
	}

	if len(password) > constants.PasswordMaxLength {
		return ErrValidationPasswordLength
	}

	return nil
}
