package serrors

import (
	"errors"
	"fmt"
)

// Kind buckets an error for the HTTP boundary. Exactly one kind applies to
// any error produced below the presentation layer.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindConflict
	KindInvalidIdentity
)

// Base is a coded application error. Code is stable and machine-readable,
// Message is safe to surface to API callers verbatim.
type Base struct {
	Code    string
	Message string
	Kind    Kind
}

func (e *Base) Error() string {
	return e.Message
}

func NewError(code, message string, kind Kind) *Base {
	return &Base{Code: code, Message: message, Kind: kind}
}

func Validation(code, message string) *Base {
	return NewError(code, message, KindValidation)
}

func NotFound(code, message string) *Base {
	return NewError(code, message, KindNotFound)
}

func Unauthorized(code, message string) *Base {
	return NewError(code, message, KindUnauthorized)
}

func Forbidden(code, message string) *Base {
	return NewError(code, message, KindForbidden)
}

func Conflict(code, message string) *Base {
	return NewError(code, message, KindConflict)
}

var (
	// ErrInvalidIdentity signals a missing or malformed tenant/user claim.
	// Identity resolution is fail-closed: callers must treat this as fatal
	// for the request, never substitute a default tenant.
	ErrInvalidIdentity = NewError("INVALID_IDENTITY", "invalid or missing identity", KindInvalidIdentity)

	ErrUnauthorized = Unauthorized("UNAUTHORIZED", "authentication required")
	ErrForbidden    = Forbidden("FORBIDDEN", "operation not permitted")
	ErrAdminOnly    = Forbidden("ADMIN_ONLY", "only administrators may perform this action")
)

// WithMessage returns a copy of err carrying a caller-facing message.
func (e *Base) WithMessage(format string, args ...any) *Base {
	return &Base{Code: e.Code, Message: fmt.Sprintf(format, args...), Kind: e.Kind}
}

// KindOf walks the error chain and returns the kind of the first coded error.
func KindOf(err error) Kind {
	var base *Base
	if errors.As(err, &base) {
		return base.Kind
	}
	return KindUnknown
}

// MessageOf returns the caller-safe message of the first coded error in the
// chain, or empty when the error is not coded.
func MessageOf(err error) string {
	var base *Base
	if errors.As(err, &base) {
		return base.Message
	}
	return ""
}

// CodeOf returns the stable code of the first coded error in the chain.
func CodeOf(err error) string {
	var base *Base
	if errors.As(err, &base) {
		return base.Code
	}
	return ""
}
