package service

import (
	commonerrors "github.com/messagely/backend/internal/common/errors"
)

var (
	ErrInvalidCredentials = commonerrors.NewDomainError(
		"INVALID_CREDENTIALS",
		commonerrors.CategoryUnauthorized,
		401,
		"invalid username or password",
	)

	ErrUsernameTaken = commonerrors.NewDomainError(
		"USERNAME_TAKEN",
		commonerrors.CategoryConflict,
		409,
		"username already taken",
	)

	ErrValidationUsernameRequired = commonerrors.NewDomainError(
		"VALIDATION_USERNAME_REQUIRED",
		commonerrors.CategoryValidation,
		400,
		"username is required",
	)

	ErrValidationPasswordRequired = commonerrors.NewDomainError(
		"VALIDATION_PASSWORD_REQUIRED",
		commonerrors.CategoryValidation,
		400,
		"password is required",
	)

	ErrValidationPasswordLength = commonerrors.NewDomainError(
		"VALIDATION_PASSWORD_LENGTH",
		commonerrors.CategoryValidation,
		400,
		"password exceeds the maximum length",
	)
)
