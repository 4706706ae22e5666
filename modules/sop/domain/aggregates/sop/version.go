package sop

import (
	"time"

	"github.com/google/uuid"

	"github.com/fieldops/sopdesk/pkg/serrors"
)

type Status string

const (
	StatusDraft    Status = "draft"
	StatusInReview Status = "in_review"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var (
	ErrNotEditable     = serrors.Validation("VERSION_NOT_EDITABLE", "only draft or rejected versions can be edited")
	ErrNotDraft        = serrors.Validation("VERSION_NOT_DRAFT", "only a draft version can be submitted for review")
	ErrNotInReview     = serrors.Validation("VERSION_NOT_IN_REVIEW", "version is not awaiting review")
	ErrNotApproved     = serrors.Validation("VERSION_NOT_APPROVED", "only an approved version can start a new version")
	ErrInvalidStatus   = serrors.Validation("INVALID_STATUS", "unknown version status")
	ErrInvalidRisk     = serrors.Validation("INVALID_RISK_LEVEL", "risk level must be low, medium or high")
)

func NewStatus(v string) (Status, error) {
	s := Status(v)
	switch s {
	case StatusDraft, StatusInReview, StatusApproved, StatusRejected:
		return s, nil
	}
	return "", ErrInvalidStatus
}

// Version is one authored revision of an SOP and the unit that carries
// workflow status. Approved versions are immutable; editing one means
// creating the next version.
type Version struct {
	id             uuid.UUID
	sopID          uuid.UUID
	organisationID uuid.UUID
	version        int
	title          string
	description    string
	status         Status
	authorID       *uuid.UUID
	approverID     *uuid.UUID
	createdAt      time.Time
	requestedAt    *time.Time
	approvedAt     *time.Time
	steps          []*Step
	hazards        []*Hazard
}

type VersionOption func(*Version)

func WithVersionID(id uuid.UUID) VersionOption {
	return func(v *Version) {
		v.id = id
	}
}

func WithStatus(status Status) VersionOption {
	return func(v *Version) {
		v.status = status
	}
}

func WithApproverID(approverID *uuid.UUID) VersionOption {
	return func(v *Version) {
		v.approverID = approverID
	}
}

func WithVersionCreatedAt(createdAt time.Time) VersionOption {
	return func(v *Version) {
		v.createdAt = createdAt
	}
}

func WithRequestedAt(t *time.Time) VersionOption {
	return func(v *Version) {
		v.requestedAt = t
	}
}

func WithApprovedAt(t *time.Time) VersionOption {
	return func(v *Version) {
		v.approvedAt = t
	}
}

func WithSteps(steps []*Step) VersionOption {
	return func(v *Version) {
		v.steps = steps
	}
}

func WithHazards(hazards []*Hazard) VersionOption {
	return func(v *Version) {
		v.hazards = hazards
	}
}

func NewVersion(sopID, organisationID uuid.UUID, number int, title, description string, authorID *uuid.UUID, opts ...VersionOption) *Version {
	v := &Version{
		id:             uuid.New(),
		sopID:          sopID,
		organisationID: organisationID,
		version:        number,
		title:          title,
		description:    description,
		status:         StatusDraft,
		authorID:       authorID,
		createdAt:      time.Now(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Version) ID() uuid.UUID {
	return v.id
}

func (v *Version) SopID() uuid.UUID {
	return v.sopID
}

func (v *Version) OrganisationID() uuid.UUID {
	return v.organisationID
}

func (v *Version) Number() int {
	return v.version
}

func (v *Version) Title() string {
	return v.title
}

func (v *Version) Description() string {
	return v.description
}

func (v *Version) Status() Status {
	return v.status
}

func (v *Version) AuthorID() *uuid.UUID {
	return v.authorID
}

func (v *Version) ApproverID() *uuid.UUID {
	return v.approverID
}

func (v *Version) CreatedAt() time.Time {
	return v.createdAt
}

func (v *Version) RequestedAt() *time.Time {
	return v.requestedAt
}

func (v *Version) ApprovedAt() *time.Time {
	return v.approvedAt
}

func (v *Version) Steps() []*Step {
	return v.steps
}

func (v *Version) Hazards() []*Hazard {
	return v.hazards
}

// Editable reports whether the version may be updated in place.
func (v *Version) Editable() bool {
	return v.status == StatusDraft || v.status == StatusRejected
}

// SetContent replaces title, description and child collections. Only legal
// on an editable version.
func (v *Version) SetContent(title, description string, steps []*Step, hazards []*Hazard) error {
	if !v.Editable() {
		return ErrNotEditable
	}
	v.title = title
	v.description = description
	v.steps = steps
	v.hazards = hazards
	return nil
}

// Submit transitions Draft -> InReview. A rejected version must be edited
// (returning it to an editable state it keeps) and resubmitted.
func (v *Version) Submit(now time.Time) error {
	if v.status != StatusDraft && v.status != StatusRejected {
		return ErrNotDraft
	}
	v.status = StatusInReview
	v.requestedAt = &now
	return nil
}

// Approve transitions InReview -> Approved, stamping the approver.
func (v *Version) Approve(approverID uuid.UUID, now time.Time) error {
	if v.status != StatusInReview {
		return ErrNotInReview
	}
	v.status = StatusApproved
	v.approverID = &approverID
	v.approvedAt = &now
	return nil
}

// Reject transitions InReview -> Rejected.
func (v *Version) Reject() error {
	if v.status != StatusInReview {
		return ErrNotInReview
	}
	v.status = StatusRejected
	return nil
}

// NextVersion copies an approved version forward as version n+1 in Draft.
// Child rows get fresh identities; nothing is re-linked.
func (v *Version) NextVersion(authorID uuid.UUID) (*Version, error) {
	if v.status != StatusApproved {
		return nil, ErrNotApproved
	}
	next := NewVersion(v.sopID, v.organisationID, v.version+1, v.title, v.description, &authorID)
	steps := make([]*Step, 0, len(v.steps))
	for _, s := range v.steps {
		steps = append(steps, s.CopyTo(next.ID()))
	}
	hazards := make([]*Hazard, 0, len(v.hazards))
	for _, h := range v.hazards {
		hazards = append(hazards, h.CopyTo(next.ID()))
	}
	next.steps = steps
	next.hazards = hazards
	return next, nil
}
