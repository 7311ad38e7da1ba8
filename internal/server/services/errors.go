package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies service failures. Transports map a Kind onto their own
// status codes; Status carries the HTTP hint.
type Kind string

const (
	KindBadRequest         Kind = "bad_request"
	KindConflict           Kind = "conflict"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindUnauthorized       Kind = "unauthorized"
	KindForbidden          Kind = "forbidden"
	KindNotFound           Kind = "not_found"
	KindInternal           Kind = "internal"
)

// Error is the error type returned by services. Message and Details are
// safe to show to clients; Reason and Cause are for logs only.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Details []string
	Reason  string
	Cause   error
}

// Sentinels for errors.Is; matching compares Kind only.
var (
	ErrBadRequest         = &Error{Kind: KindBadRequest}
	ErrConflict           = &Error{Kind: KindConflict}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrUnauthorized       = &Error{Kind: KindUnauthorized}
	ErrForbidden          = &Error{Kind: KindForbidden}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrInternal           = &Error{Kind: KindInternal}
)

const (
	MsgEmailTaken         = "user with this email already exists"
	MsgInvalidCredentials = "invalid email or password"
	MsgInvalidRefresh     = "invalid refresh token"
	MsgInvalidAccess      = "invalid access token"
	MsgInternal           = "internal server error"
	MsgTodoNotFound       = "Todo not found"
	MsgTodoForbidden      = "You are not authorized to delete this todo"
	MsgTodoNotOwned       = "You are not authorized to modify this todo"
)

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Details) > 0 {
		fmt.Fprintf(&b, " %v", e.Details)
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, " (reason: %s)", e.Reason)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// StatusFor returns the HTTP status hint of a Kind.
func StatusFor(k Kind) int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindInvalidCredentials, KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func newError(k Kind, msg string) *Error {
	return &Error{Kind: k, Message: msg, Status: StatusFor(k)}
}

func BadRequest(details ...string) *Error {
	e := newError(KindBadRequest, "invalid request")
	e.Details = details
	return e
}

func Conflict(msg string) *Error { return newError(KindConflict, msg) }

func InvalidCredentials() *Error { return newError(KindInvalidCredentials, MsgInvalidCredentials) }

func Unauthorized(msg, reason string, cause error) *Error {
	e := newError(KindUnauthorized, msg)
	e.Reason = reason
	e.Cause = cause
	return e
}

func Forbidden(msg string) *Error { return newError(KindForbidden, msg) }

func NotFound(msg string) *Error { return newError(KindNotFound, msg) }

// Internal hides cause behind a generic message.
func Internal(cause error) *Error {
	e := newError(KindInternal, MsgInternal)
	e.Cause = cause
	return e
}

// AsError converts any error into *Error; unknown errors become Internal.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
