package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrTokenExpired       = errors.New("token has expired")
	ErrTokenMalformed     = errors.New("token is malformed")
	ErrEmptyBatch         = errors.New("batch contains no medicines")
	ErrBatchTooLarge      = errors.New("batch exceeds maximum allowed size")
)
