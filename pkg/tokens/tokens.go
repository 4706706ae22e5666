// Package tokens issues and validates the two signed credentials the API
// trusts: access tokens for authenticated sessions and invitation tokens
// binding {email, role, organisation} until the invite is accepted.
package tokens

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fieldops/sopdesk/pkg/serrors"
)

var ErrInvalidToken = serrors.Unauthorized("INVALID_TOKEN", "token is invalid or expired")

// AccessClaims is carried by bearer tokens on every authenticated request.
// OrganisationID is the claim the tenant predicate is derived from.
type AccessClaims struct {
	UserID         uuid.UUID `json:"uid"`
	OrganisationID uuid.UUID `json:"oid"`
	Role           string    `json:"role"`
	Forename       string    `json:"forename"`
	Surname        string    `json:"surname"`
	jwt.RegisteredClaims
}

// InvitationClaims is embedded in invite links. Accepting the invitation
// re-validates signature, issuer, audience and expiry before any trust.
type InvitationClaims struct {
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	OrganisationID uuid.UUID `json:"oid"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret        []byte
	issuer        string
	audience      string
	accessTTL     time.Duration
	invitationTTL time.Duration
}

func NewIssuer(secret, issuer, audience string, accessTTL, invitationTTL time.Duration) *Issuer {
	return &Issuer{
		secret:        []byte(secret),
		issuer:        issuer,
		audience:      audience,
		accessTTL:     accessTTL,
		invitationTTL: invitationTTL,
	}
}

func (i *Issuer) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    i.issuer,
		Audience:  jwt.ClaimStrings{i.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (i *Issuer) IssueAccess(userID, organisationID uuid.UUID, email, role, forename, surname string) (string, error) {
	claims := &AccessClaims{
		UserID:           userID,
		OrganisationID:   organisationID,
		Role:             role,
		Forename:         forename,
		Surname:          surname,
		RegisteredClaims: i.registered(email, i.accessTTL),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign access token")
	}
	return signed, nil
}

func (i *Issuer) IssueInvitation(email, role string, organisationID uuid.UUID) (string, error) {
	claims := &InvitationClaims{
		Email:            email,
		Role:             role,
		OrganisationID:   organisationID,
		RegisteredClaims: i.registered(email, i.invitationTTL),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign invitation token")
	}
	return signed, nil
}

func (i *Issuer) parse(raw string, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("invalid signing method")
		}
		return i.secret, nil
	},
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return errors.Wrap(ErrInvalidToken, err.Error())
	}
	if !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}

func (i *Issuer) ValidateAccess(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := i.parse(raw, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (i *Issuer) ValidateInvitation(raw string) (*InvitationClaims, error) {
	claims := &InvitationClaims{}
	if err := i.parse(raw, claims); err != nil {
		return nil, err
	}
	return claims, nil
}
