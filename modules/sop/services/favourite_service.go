package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/fieldops/sopdesk/modules/sop/domain/aggregates/sop"
	"github.com/fieldops/sopdesk/modules/sop/domain/entities/favourite"
	"github.com/fieldops/sopdesk/pkg/composables"
)

type FavouriteService struct {
	favourites favourite.Repository
	sops       sop.Repository
}

func NewFavouriteService(favourites favourite.Repository, sops sop.Repository) *FavouriteService {
	return &FavouriteService{favourites: favourites, sops: sops}
}

// Add bookmarks an sop for the caller. The tenant-filtered lookup doubles as
// the ownership check.
func (s *FavouriteService) Add(ctx context.Context, sopID uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	userID, err := composables.UseUserID(ctx)
	if err != nil {
		return err
	}
	return composables.InTx(ctx, func(txCtx context.Context) error {
		if _, err := s.sops.GetByID(txCtx, sopID); err != nil {
			return err
		}
		return s.favourites.Add(txCtx, &favourite.Favourite{
			UserID:         userID,
			SopID:          sopID,
			OrganisationID: tenantID,
		})
	})
}

func (s *FavouriteService) Remove(ctx context.Context, sopID uuid.UUID) error {
	userID, err := composables.UseUserID(ctx)
	if err != nil {
		return err
	}
	return composables.InTx(ctx, func(txCtx context.Context) error {
		return s.favourites.Remove(txCtx, userID, sopID)
	})
}

func (s *FavouriteService) List(ctx context.Context) ([]uuid.UUID, error) {
	userID, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	return s.favourites.SopIDsForUser(ctx, userID)
}
