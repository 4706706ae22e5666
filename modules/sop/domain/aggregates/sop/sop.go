package sop

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Sop is the tenant-scoped aggregate root. It owns an ordered sequence of
// versions; version numbers start at 1 and are never renumbered.
type Sop struct {
	id             uuid.UUID
	organisationID uuid.UUID
	departmentID   *uuid.UUID
	reference      string
	isAiGenerated  bool
	createdAt      time.Time
	versions       []*Version
}

type Option func(*Sop)

func WithID(id uuid.UUID) Option {
	return func(s *Sop) {
		s.id = id
	}
}

func WithDepartmentID(departmentID *uuid.UUID) Option {
	return func(s *Sop) {
		s.departmentID = departmentID
	}
}

func WithAiGenerated(v bool) Option {
	return func(s *Sop) {
		s.isAiGenerated = v
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(s *Sop) {
		s.createdAt = createdAt
	}
}

func WithVersions(versions []*Version) Option {
	return func(s *Sop) {
		s.versions = versions
	}
}

func New(reference string, organisationID uuid.UUID, opts ...Option) *Sop {
	s := &Sop{
		id:             uuid.New(),
		organisationID: organisationID,
		reference:      reference,
		createdAt:      time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sop) ID() uuid.UUID {
	return s.id
}

func (s *Sop) OrganisationID() uuid.UUID {
	return s.organisationID
}

func (s *Sop) DepartmentID() *uuid.UUID {
	return s.departmentID
}

func (s *Sop) Reference() string {
	return s.reference
}

func (s *Sop) IsAiGenerated() bool {
	return s.isAiGenerated
}

func (s *Sop) CreatedAt() time.Time {
	return s.createdAt
}

// Versions are ordered ascending by version number.
func (s *Sop) Versions() []*Version {
	return s.versions
}

// LatestVersion returns the version with the highest number, nil when the
// aggregate was loaded without versions.
func (s *Sop) LatestVersion() *Version {
	if len(s.versions) == 0 {
		return nil
	}
	return s.versions[len(s.versions)-1]
}

func (s *Sop) Version(id uuid.UUID) *Version {
	for _, v := range s.versions {
		if v.ID() == id {
			return v
		}
	}
	return nil
}

func (s *Sop) AddVersion(v *Version) {
	s.versions = append(s.versions, v)
}

type FindParams struct {
	DepartmentID *uuid.UUID
	Search       string
	Limit        int
	Offset       int
}

type Repository interface {
	// GetByID hydrates the full aggregate: versions, steps, hazards and
	// step PPE links.
	GetByID(ctx context.Context, id uuid.UUID) (*Sop, error)
	GetAll(ctx context.Context, params *FindParams) ([]*Sop, error)
	ReferenceExists(ctx context.Context, reference string) (bool, error)
	Create(ctx context.Context, s *Sop) error
	Update(ctx context.Context, s *Sop) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreateVersion(ctx context.Context, v *Version) error
	// UpdateVersion persists the version row and reconciles its child
	// collections against storage by id: unknown rows are inserted, missing
	// rows deleted, surviving rows updated in place.
	UpdateVersion(ctx context.Context, v *Version) error
	UpdateVersionStatus(ctx context.Context, v *Version) error

	// ClearUserReferences nulls author/approver columns on every version the
	// user touched, preserving the rows. Part of the user deletion cascade.
	ClearUserReferences(ctx context.Context, userID uuid.UUID) error
}
