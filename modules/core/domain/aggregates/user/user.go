package user

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fieldops/sopdesk/modules/core/domain/value_objects/internet"
)

type User struct {
	id             uuid.UUID
	forename       string
	surname        string
	email          internet.Email
	passwordHash   string
	organisationID uuid.UUID
	role           Role
	createdAt      time.Time
	updatedAt      time.Time
}

type Option func(*User)

func WithID(id uuid.UUID) Option {
	return func(u *User) {
		u.id = id
	}
}

func WithPasswordHash(hash string) Option {
	return func(u *User) {
		u.passwordHash = hash
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(u *User) {
		u.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(u *User) {
		u.updatedAt = updatedAt
	}
}

func New(forename, surname string, email internet.Email, organisationID uuid.UUID, role Role, opts ...Option) *User {
	u := &User{
		id:             uuid.New(),
		forename:       forename,
		surname:        surname,
		email:          email,
		organisationID: organisationID,
		role:           role,
		createdAt:      time.Now(),
		updatedAt:      time.Now(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *User) ID() uuid.UUID {
	return u.id
}

func (u *User) Forename() string {
	return u.forename
}

func (u *User) Surname() string {
	return u.surname
}

func (u *User) FullName() string {
	return u.forename + " " + u.surname
}

func (u *User) Email() internet.Email {
	return u.email
}

func (u *User) PasswordHash() string {
	return u.passwordHash
}

func (u *User) OrganisationID() uuid.UUID {
	return u.organisationID
}

func (u *User) Role() Role {
	return u.role
}

func (u *User) CreatedAt() time.Time {
	return u.createdAt
}

func (u *User) UpdatedAt() time.Time {
	return u.updatedAt
}

func (u *User) Rename(forename, surname string) {
	u.forename = forename
	u.surname = surname
	u.updatedAt = time.Now()
}

func (u *User) SetRole(role Role) {
	u.role = role
	u.updatedAt = time.Now()
}

func (u *User) SetPasswordHash(hash string) {
	u.passwordHash = hash
	u.updatedAt = time.Now()
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetAll(ctx context.Context) ([]*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	// Delete removes the user row only; the service owns the cascade
	// (favourites, authored version FK nulling) inside one transaction.
	Delete(ctx context.Context, id uuid.UUID) error

	// GetByEmailGlobal resolves a user before any tenant is known.
	// BYPASS: login runs pre-authentication; audited in DESIGN.md.
	GetByEmailGlobal(ctx context.Context, email string) (*User, error)
	// EmailExistsGlobal checks email uniqueness across the whole system,
	// not one tenant. BYPASS: invite acceptance and signup.
	EmailExistsGlobal(ctx context.Context, email string) (bool, error)
}
