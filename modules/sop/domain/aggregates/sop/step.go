package sop

import (
	"time"

	"github.com/google/uuid"
)

// Step is one ordered instruction within a version. Position is an ordering
// key, not necessarily contiguous.
type Step struct {
	id             uuid.UUID
	versionID      uuid.UUID
	organisationID uuid.UUID
	position       int
	title          string
	text           string
	imageRef       string
	ppeIDs         []uuid.UUID
	createdAt      time.Time
}

type StepOption func(*Step)

func WithStepID(id uuid.UUID) StepOption {
	return func(s *Step) {
		s.id = id
	}
}

func WithStepCreatedAt(createdAt time.Time) StepOption {
	return func(s *Step) {
		s.createdAt = createdAt
	}
}

func NewStep(versionID, organisationID uuid.UUID, position int, title, text, imageRef string, ppeIDs []uuid.UUID, opts ...StepOption) *Step {
	s := &Step{
		id:             uuid.New(),
		versionID:      versionID,
		organisationID: organisationID,
		position:       position,
		title:          title,
		text:           text,
		imageRef:       imageRef,
		ppeIDs:         ppeIDs,
		createdAt:      time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Step) ID() uuid.UUID {
	return s.id
}

func (s *Step) VersionID() uuid.UUID {
	return s.versionID
}

func (s *Step) OrganisationID() uuid.UUID {
	return s.organisationID
}

func (s *Step) Position() int {
	return s.position
}

func (s *Step) Title() string {
	return s.title
}

func (s *Step) Text() string {
	return s.text
}

func (s *Step) ImageRef() string {
	return s.imageRef
}

func (s *Step) PpeIDs() []uuid.UUID {
	return s.ppeIDs
}

func (s *Step) CreatedAt() time.Time {
	return s.createdAt
}

// CopyTo duplicates the step under another version with a fresh id. PPE
// links follow; they carry no identity of their own.
func (s *Step) CopyTo(versionID uuid.UUID) *Step {
	ppeIDs := make([]uuid.UUID, len(s.ppeIDs))
	copy(ppeIDs, s.ppeIDs)
	return NewStep(versionID, s.organisationID, s.position, s.title, s.text, s.imageRef, ppeIDs)
}
