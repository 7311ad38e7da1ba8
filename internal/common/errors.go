// Package common defines sentinel errors and constants shared by the server
// and client layers of toodo. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// ErrorForbidden is returned when a row exists but belongs to someone
	// else.
	ErrorForbidden = errors.New("forbidden")

	// Token errors. ErrInvalidToken covers signature and parse failures,
	// ErrTokenExpired and ErrWrongTokenType narrow it down for logging.
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrWrongTokenType = errors.New("wrong token type")
)
