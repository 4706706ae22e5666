// Package ppe models personal protective equipment reference data. PPE rows
// are tenant-agnostic: they carry no organisation id and are shared across
// all tenants, so the tenant predicate deliberately does not apply.
package ppe

import (
	"context"

	"github.com/google/uuid"
)

type Ppe struct {
	id   uuid.UUID
	name string
	icon string
}

type Option func(*Ppe)

func WithID(id uuid.UUID) Option {
	return func(p *Ppe) {
		p.id = id
	}
}

func New(name, icon string, opts ...Option) *Ppe {
	p := &Ppe{
		id:   uuid.New(),
		name: name,
		icon: icon,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Ppe) ID() uuid.UUID {
	return p.id
}

func (p *Ppe) Name() string {
	return p.name
}

func (p *Ppe) Icon() string {
	return p.icon
}

type Repository interface {
	GetAll(ctx context.Context) ([]*Ppe, error)
	ExistAll(ctx context.Context, ids []uuid.UUID) (bool, error)
}
