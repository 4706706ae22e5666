package sop

import (
	"time"

	"github.com/google/uuid"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

func NewRiskLevel(v string) (RiskLevel, error) {
	r := RiskLevel(v)
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return r, nil
	}
	return "", ErrInvalidRisk
}

type Hazard struct {
	id             uuid.UUID
	versionID      uuid.UUID
	organisationID uuid.UUID
	name           string
	controlMeasure string
	riskLevel      RiskLevel
	createdAt      time.Time
}

type HazardOption func(*Hazard)

func WithHazardID(id uuid.UUID) HazardOption {
	return func(h *Hazard) {
		h.id = id
	}
}

func WithHazardCreatedAt(createdAt time.Time) HazardOption {
	return func(h *Hazard) {
		h.createdAt = createdAt
	}
}

func NewHazard(versionID, organisationID uuid.UUID, name, controlMeasure string, riskLevel RiskLevel, opts ...HazardOption) *Hazard {
	h := &Hazard{
		id:             uuid.New(),
		versionID:      versionID,
		organisationID: organisationID,
		name:           name,
		controlMeasure: controlMeasure,
		riskLevel:      riskLevel,
		createdAt:      time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hazard) ID() uuid.UUID {
	return h.id
}

func (h *Hazard) VersionID() uuid.UUID {
	return h.versionID
}

func (h *Hazard) OrganisationID() uuid.UUID {
	return h.organisationID
}

func (h *Hazard) Name() string {
	return h.name
}

func (h *Hazard) ControlMeasure() string {
	return h.controlMeasure
}

func (h *Hazard) RiskLevel() RiskLevel {
	return h.riskLevel
}

func (h *Hazard) CreatedAt() time.Time {
	return h.createdAt
}

func (h *Hazard) CopyTo(versionID uuid.UUID) *Hazard {
	return NewHazard(versionID, h.organisationID, h.name, h.controlMeasure, h.riskLevel)
}
