package models

import (
	"database/sql"
	"time"
)

type Organisation struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

type User struct {
	ID             string
	Forename       string
	Surname        string
	Email          string
	Password       string
	OrganisationID string
	Role           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Invitation struct {
	ID             string
	Email          string
	Role           string
	OrganisationID string
	Token          string
	Status         string
	ExpiresAt      time.Time
	CreatedAt      time.Time
}

type Department struct {
	ID             string
	Name           string
	OrganisationID string
	CreatedAt      time.Time
}

type Setting struct {
	Key            string
	Value          string
	OrganisationID sql.NullString
}
