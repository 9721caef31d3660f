package domain

import "errors"

// Auth and session errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("email not verified")
	ErrCodeInvalid        = errors.New("verification code is not valid")
	ErrMissingToken       = errors.New("missing token")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrInvalidToken       = errors.New("invalid token")
	ErrRefreshInvalid     = errors.New("refresh token invalid or expired")
	ErrResetInvalid       = errors.New("reset token invalid or expired")
)

// Resource errors
var (
	ErrDeviceNotFound = errors.New("device not found")
	ErrSerialTaken    = errors.New("serial number already bound to another user")
	ErrEmailTaken     = errors.New("email already registered")
	ErrNotFound       = errors.New("not found")
)
