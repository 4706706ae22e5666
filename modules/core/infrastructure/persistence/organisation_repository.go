package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fieldops/sopdesk/modules/core/domain/entities/organisation"
	"github.com/fieldops/sopdesk/modules/core/infrastructure/persistence/models"
	"github.com/fieldops/sopdesk/pkg/composables"
	"github.com/fieldops/sopdesk/pkg/repo"
	"github.com/fieldops/sopdesk/pkg/serrors"
)

var ErrOrganisationNotFound = serrors.NotFound("ORGANISATION_NOT_FOUND", "organisation not found")

const (
	selectOrganisationQuery = `
		SELECT
			id,
			name,
			created_at
		FROM organisations`

	insertOrganisationQuery = `
		INSERT INTO organisations (
			id,
			name,
			created_at
		) VALUES ($1, $2, $3)`

	existsOrganisationByNameQuery = `
		SELECT EXISTS (
			SELECT 1 FROM organisations WHERE lower(name) = lower($1)
		)`
)

type PgOrganisationRepository struct{}

func NewOrganisationRepository() organisation.Repository {
	return &PgOrganisationRepository{}
}

func (r *PgOrganisationRepository) Create(ctx context.Context, org *organisation.Organisation) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(
		ctx,
		insertOrganisationQuery,
		org.ID().String(),
		org.Name(),
		org.CreatedAt(),
	); err != nil {
		return errors.Wrap(classifyError(err), "failed to create organisation")
	}
	return nil
}

func (r *PgOrganisationRepository) GetByID(ctx context.Context, id uuid.UUID) (*organisation.Organisation, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	q := repo.Join(selectOrganisationQuery, repo.JoinWhere("id = $1"))
	var row models.Organisation
	if err := tx.QueryRow(ctx, q, id.String()).Scan(
		&row.ID,
		&row.Name,
		&row.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrganisationNotFound
		}
		return nil, errors.Wrap(err, "failed to query organisation")
	}
	return toDomainOrganisation(&row)
}

// BYPASS: pre-authentication signup duplicate check spans all tenants.
func (r *PgOrganisationRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := tx.QueryRow(ctx, existsOrganisationByNameQuery, name).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "failed to check organisation name")
	}
	return exists, nil
}
