package user

import "github.com/google/uuid"

type CreatedEvent struct {
	Result *User
}

type DeletedEvent struct {
	UserID         uuid.UUID
	OrganisationID uuid.UUID
}
