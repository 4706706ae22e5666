package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/fieldops/sopdesk/modules/sop/domain/entities/favourite"
	"github.com/fieldops/sopdesk/pkg/composables"
)

const (
	insertFavouriteQuery = `
		INSERT INTO sop_user_favourites (user_id, sop_id, organisation_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, sop_id) DO NOTHING`

	deleteFavouriteQuery = `
		DELETE FROM sop_user_favourites
		WHERE user_id = $1 AND sop_id = $2 AND organisation_id = $3`

	selectFavouriteSopIDsQuery = `
		SELECT sop_id FROM sop_user_favourites
		WHERE user_id = $1 AND organisation_id = $2`

	deleteFavouritesByUserQuery = `
		DELETE FROM sop_user_favourites
		WHERE user_id = $1 AND organisation_id = $2`

	deleteFavouritesBySopQuery = `
		DELETE FROM sop_user_favourites
		WHERE sop_id = $1 AND organisation_id = $2`
)

type PgFavouriteRepository struct{}

func NewFavouriteRepository() favourite.Repository {
	return &PgFavouriteRepository{}
}

func (r *PgFavouriteRepository) Add(ctx context.Context, f *favourite.Favourite) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(
		ctx,
		insertFavouriteQuery,
		f.UserID.String(),
		f.SopID.String(),
		f.OrganisationID.String(),
	); err != nil {
		return errors.Wrap(classifyError(err), "failed to add favourite")
	}
	return nil
}

func (r *PgFavouriteRepository) Remove(ctx context.Context, userID, sopID uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, deleteFavouriteQuery, userID.String(), sopID.String(), tenantID.String()); err != nil {
		return errors.Wrap(err, "failed to remove favourite")
	}
	return nil
}

func (r *PgFavouriteRepository) SopIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, selectFavouriteSopIDsQuery, userID.String(), tenantID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to query favourites")
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, errors.Wrap(err, "failed to scan favourite row")
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse sop id")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PgFavouriteRepository) RemoveAllForUser(ctx context.Context, userID uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, deleteFavouritesByUserQuery, userID.String(), tenantID.String()); err != nil {
		return errors.Wrap(err, "failed to remove user favourites")
	}
	return nil
}

func (r *PgFavouriteRepository) RemoveAllForSop(ctx context.Context, sopID uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, deleteFavouritesBySopQuery, sopID.String(), tenantID.String()); err != nil {
		return errors.Wrap(err, "failed to remove sop favourites")
	}
	return nil
}
