package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application failure into a stable category that
// transport layers can map onto status codes without string matching.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindConflict           Kind = "conflict"
	KindNotFound           Kind = "not_found"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindUnauthorized       Kind = "unauthorized"
	KindInvalidToken       Kind = "invalid_token"
	KindExpiredToken       Kind = "expired_token"
	KindTokenReuse         Kind = "token_reuse_detected"
	KindInternal           Kind = "internal"
)

// Error carries a Kind alongside a human-readable message and an
// optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches two *Error values by Kind so callers can compare against
// the package-level sentinels with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error { return New(KindValidation, message) }
func Conflict(message string) *Error   { return New(KindConflict, message) }
func NotFound(message string) *Error   { return New(KindNotFound, message) }

func InvalidCredentials() *Error {
	return New(KindInvalidCredentials, "invalid credentials")
}

func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }
func InvalidToken(message string) *Error { return New(KindInvalidToken, message) }
func ExpiredToken() *Error               { return New(KindExpiredToken, "token expired") }

func TokenReuse() *Error {
	return New(KindTokenReuse, "refresh token is stale or already used")
}

func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

// KindOf extracts the Kind from err, or KindInternal when err is not
// an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error kind onto the status code the HTTP layer
// should answer with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidCredentials, KindUnauthorized, KindInvalidToken, KindExpiredToken, KindTokenReuse:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
