package favourite

import (
	"context"

	"github.com/google/uuid"
)

// Favourite links a user to an SOP they bookmarked, unique per (user, sop).
type Favourite struct {
	UserID         uuid.UUID
	SopID          uuid.UUID
	OrganisationID uuid.UUID
}

type Repository interface {
	Add(ctx context.Context, f *Favourite) error
	Remove(ctx context.Context, userID, sopID uuid.UUID) error
	SopIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	// RemoveAllForUser is part of the user deletion cascade.
	RemoveAllForUser(ctx context.Context, userID uuid.UUID) error
	// RemoveAllForSop keeps the join table consistent when an SOP goes away.
	RemoveAllForSop(ctx context.Context, sopID uuid.UUID) error
}
