package department

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Department struct {
	id             uuid.UUID
	name           string
	organisationID uuid.UUID
	createdAt      time.Time
}

type Option func(*Department)

func WithID(id uuid.UUID) Option {
	return func(d *Department) {
		d.id = id
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(d *Department) {
		d.createdAt = createdAt
	}
}

func New(name string, organisationID uuid.UUID, opts ...Option) *Department {
	d := &Department{
		id:             uuid.New(),
		name:           name,
		organisationID: organisationID,
		createdAt:      time.Now(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Department) ID() uuid.UUID {
	return d.id
}

func (d *Department) Name() string {
	return d.name
}

func (d *Department) OrganisationID() uuid.UUID {
	return d.organisationID
}

func (d *Department) CreatedAt() time.Time {
	return d.createdAt
}

func (d *Department) Rename(name string) {
	d.name = name
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Department, error)
	GetAll(ctx context.Context) ([]*Department, error)
	Create(ctx context.Context, d *Department) error
	Update(ctx context.Context, d *Department) error
	Delete(ctx context.Context, id uuid.UUID) error
}
