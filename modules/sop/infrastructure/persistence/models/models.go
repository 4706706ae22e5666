package models

import (
	"database/sql"
	"time"
)

type Sop struct {
	ID             string
	OrganisationID string
	DepartmentID   sql.NullString
	Reference      string
	IsAiGenerated  bool
	CreatedAt      time.Time
}

type SopVersion struct {
	ID             string
	SopID          string
	OrganisationID string
	Version        int
	Title          string
	Description    string
	Status         string
	AuthorID       sql.NullString
	ApproverID     sql.NullString
	CreatedAt      time.Time
	RequestedAt    sql.NullTime
	ApprovedAt     sql.NullTime
}

type SopStep struct {
	ID             string
	VersionID      string
	OrganisationID string
	Position       int
	Title          string
	Text           string
	ImageRef       sql.NullString
	CreatedAt      time.Time
}

type SopHazard struct {
	ID             string
	VersionID      string
	OrganisationID string
	Name           string
	ControlMeasure string
	RiskLevel      string
	CreatedAt      time.Time
}

type Ppe struct {
	ID   string
	Name string
	Icon string
}
