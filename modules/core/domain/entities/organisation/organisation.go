package organisation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Organisation is the tenant: the unit of data isolation. Every
// tenant-scoped row carries its id.
type Organisation struct {
	id        uuid.UUID
	name      string
	createdAt time.Time
}

type Option func(*Organisation)

func WithID(id uuid.UUID) Option {
	return func(o *Organisation) {
		o.id = id
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(o *Organisation) {
		o.createdAt = createdAt
	}
}

func New(name string, opts ...Option) *Organisation {
	o := &Organisation{
		id:        uuid.New(),
		name:      name,
		createdAt: time.Now(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Organisation) ID() uuid.UUID {
	return o.id
}

func (o *Organisation) Name() string {
	return o.name
}

func (o *Organisation) CreatedAt() time.Time {
	return o.createdAt
}

type Repository interface {
	// Create inserts the organisation. Runs before any tenant exists, so it
	// is exempt from the tenant predicate by nature.
	Create(ctx context.Context, org *Organisation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Organisation, error)
	// ExistsByName checks name uniqueness case-insensitively across all
	// tenants. BYPASS: pre-authentication signup lookup.
	ExistsByName(ctx context.Context, name string) (bool, error)
}
