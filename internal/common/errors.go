// Package common defines shared constants, sentinel errors and small helpers
// used across the tasktrack server. Callers should use errors.Is to match the
// error values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Auth errors: bad signature, malformed payload or expiry all map here.
	ErrInvalidToken = errors.New("invalid token")
)
