package password

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/fieldops/sopdesk/pkg/configuration"
	"github.com/fieldops/sopdesk/pkg/serrors"
)

var ErrWeakPassword = serrors.Validation(
	"WEAK_PASSWORD",
	"password does not meet the configured policy",
)

// Validate reports whether candidate satisfies the configured policy:
// minimum length plus the enabled digit/upper/lower/symbol requirements.
func Validate(candidate string, opts *configuration.PasswordOptions) bool {
	if len(candidate) < opts.MinLength {
		return false
	}

	var hasDigit, hasUpper, hasLower, hasSymbol bool
	for _, r := range candidate {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}

	if opts.RequireDigit && !hasDigit {
		return false
	}
	if opts.RequireUpper && !hasUpper {
		return false
	}
	if opts.RequireLower && !hasLower {
		return false
	}
	if opts.RequireSymbol && !hasSymbol {
		return false
	}
	return true
}

// Hash derives the stored credential from a plaintext password.
func Hash(plain string, opts *configuration.PasswordOptions) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), opts.BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare reports whether plain matches the stored hash.
func Compare(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
