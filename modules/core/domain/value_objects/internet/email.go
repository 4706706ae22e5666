package internet

import (
	"net/mail"
	"strings"

	"github.com/fieldops/sopdesk/pkg/serrors"
)

var ErrInvalidEmail = serrors.Validation("INVALID_EMAIL", "email address is not valid")

// Email is a validated, lower-cased address. Uniqueness comparisons are
// case-insensitive throughout the system, so the canonical form is lower.
type Email struct {
	value string
}

func NewEmail(v string) (Email, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return Email{}, ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: v}, nil
}

func (e Email) Value() string {
	return e.value
}

func (e Email) IsZero() bool {
	return e.value == ""
}
