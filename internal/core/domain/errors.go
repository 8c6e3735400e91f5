package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure for the transport layer.
type ErrorKind string

const (
	KindConflict     ErrorKind = "conflict"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindInvalid      ErrorKind = "invalid"
)

// Error is a classified failure with a stable, client-safe message.
type Error struct {
	Kind    ErrorKind
	Message string
	// Status is set on forbidden errors caused by a non-active account.
	Status UserStatus
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches another *Error of the same kind. A target without a message
// matches every error of its kind, so the Err* kind values below can be used
// with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// Kind values for errors.Is checks.
var (
	ErrConflict     = &Error{Kind: KindConflict}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrInvalid      = &Error{Kind: KindInvalid}
)

// Store-level outcomes.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = Conflict("email already registered")
	ErrPhoneTaken   = Conflict("phone number already registered")
)

// ErrInvalidToken is returned by the token codec for every verification
// failure. The concrete reason is wrapped for logging only.
var ErrInvalidToken = errors.New("invalid token")

// Credential and token messages. They are part of the public contract.
const (
	MsgInvalidCredentials = "invalid email or password"
	MsgInvalidToken       = "invalid authentication credentials"
	MsgInvalidRefresh     = "invalid refresh token"
	MsgInvalidTokenType   = "invalid token type"
	MsgInvalidPayload     = "invalid token payload"
	MsgUserNotFound       = "user not found"
)

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func Invalid(msg string) *Error {
	return &Error{Kind: KindInvalid, Message: msg}
}

// AccountNotActive builds the forbidden error for a non-active account.
func AccountNotActive(status UserStatus) *Error {
	return &Error{
		Kind:    KindForbidden,
		Message: fmt.Sprintf("account is %s", status),
		Status:  status,
	}
}

// KindOf returns the kind of a classified error, or "" for anything else.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
