package invitation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fieldops/sopdesk/modules/core/domain/aggregates/user"
	"github.com/fieldops/sopdesk/modules/core/domain/value_objects/internet"
	"github.com/fieldops/sopdesk/pkg/serrors"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRevoked  Status = "revoked"
)

var (
	ErrAlreadyAccepted = serrors.Validation("INVITATION_ACCEPTED", "Invitation has already been accepted")
	ErrNotPending      = serrors.Validation("INVITATION_NOT_PENDING", "invitation is no longer open")
	ErrExpired         = serrors.Validation("INVITATION_EXPIRED", "invitation has expired")
)

type Invitation struct {
	id             uuid.UUID
	email          internet.Email
	role           user.Role
	organisationID uuid.UUID
	token          string
	status         Status
	expiresAt      time.Time
	createdAt      time.Time
}

type Option func(*Invitation)

func WithID(id uuid.UUID) Option {
	return func(i *Invitation) {
		i.id = id
	}
}

func WithStatus(status Status) Option {
	return func(i *Invitation) {
		i.status = status
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(i *Invitation) {
		i.createdAt = createdAt
	}
}

func New(email internet.Email, role user.Role, organisationID uuid.UUID, token string, expiresAt time.Time, opts ...Option) *Invitation {
	inv := &Invitation{
		id:             uuid.New(),
		email:          email,
		role:           role,
		organisationID: organisationID,
		token:          token,
		status:         StatusPending,
		expiresAt:      expiresAt,
		createdAt:      time.Now(),
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

func (i *Invitation) ID() uuid.UUID {
	return i.id
}

func (i *Invitation) Email() internet.Email {
	return i.email
}

func (i *Invitation) Role() user.Role {
	return i.role
}

func (i *Invitation) OrganisationID() uuid.UUID {
	return i.organisationID
}

func (i *Invitation) Token() string {
	return i.token
}

func (i *Invitation) Status() Status {
	return i.status
}

func (i *Invitation) ExpiresAt() time.Time {
	return i.expiresAt
}

func (i *Invitation) CreatedAt() time.Time {
	return i.createdAt
}

// IsExpired checks the row's own expiry, independent of the token's.
func (i *Invitation) IsExpired(now time.Time) bool {
	return now.After(i.expiresAt)
}

// Accept transitions Pending -> Accepted exactly once.
func (i *Invitation) Accept(now time.Time) error {
	switch i.status {
	case StatusAccepted:
		return ErrAlreadyAccepted
	case StatusRevoked:
		return ErrNotPending
	}
	if i.IsExpired(now) {
		return ErrExpired
	}
	i.status = StatusAccepted
	return nil
}

// Revoke transitions Pending -> Revoked.
func (i *Invitation) Revoke() error {
	if i.status != StatusPending {
		return ErrNotPending
	}
	i.status = StatusRevoked
	return nil
}

type Repository interface {
	Create(ctx context.Context, inv *Invitation) error
	Update(ctx context.Context, inv *Invitation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Invitation, error)
	GetAll(ctx context.Context) ([]*Invitation, error)
	// GetByTokenGlobal resolves an invitation before the invited user has
	// any identity. BYPASS: pre-authentication registration lookup.
	GetByTokenGlobal(ctx context.Context, token string) (*Invitation, error)
}
