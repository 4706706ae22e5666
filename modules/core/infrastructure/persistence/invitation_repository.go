package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fieldops/sopdesk/modules/core/domain/entities/invitation"
	"github.com/fieldops/sopdesk/modules/core/infrastructure/persistence/models"
	"github.com/fieldops/sopdesk/pkg/composables"
	"github.com/fieldops/sopdesk/pkg/repo"
	"github.com/fieldops/sopdesk/pkg/serrors"
)

var ErrInvitationNotFound = serrors.NotFound("INVITATION_NOT_FOUND", "invitation not found")

const (
	selectInvitationQuery = `
		SELECT
			id,
			email,
			role,
			organisation_id,
			token,
			status,
			expires_at,
			created_at
		FROM invitations`

	insertInvitationQuery = `
		INSERT INTO invitations (
			id,
			email,
			role,
			organisation_id,
			token,
			status,
			expires_at,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	updateInvitationQuery = `
		UPDATE invitations
		SET status = $1
		WHERE id = $2 AND organisation_id = $3`
)

type PgInvitationRepository struct{}

func NewInvitationRepository() invitation.Repository {
	return &PgInvitationRepository{}
}

func (r *PgInvitationRepository) scanOne(row pgx.Row) (*invitation.Invitation, error) {
	var m models.Invitation
	if err := row.Scan(
		&m.ID,
		&m.Email,
		&m.Role,
		&m.OrganisationID,
		&m.Token,
		&m.Status,
		&m.ExpiresAt,
		&m.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvitationNotFound
		}
		return nil, errors.Wrap(err, "failed to scan invitation")
	}
	return toDomainInvitation(&m)
}

func (r *PgInvitationRepository) Create(ctx context.Context, inv *invitation.Invitation) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(
		ctx,
		insertInvitationQuery,
		inv.ID().String(),
		inv.Email().Value(),
		string(inv.Role()),
		inv.OrganisationID().String(),
		inv.Token(),
		string(inv.Status()),
		inv.ExpiresAt(),
		inv.CreatedAt(),
	); err != nil {
		return errors.Wrap(classifyError(err), "failed to create invitation")
	}
	return nil
}

func (r *PgInvitationRepository) Update(ctx context.Context, inv *invitation.Invitation) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	// Scoped to the invitation's own organisation rather than the ambient
	// tenant: acceptance happens before the invited user belongs to one.
	tag, err := tx.Exec(
		ctx,
		updateInvitationQuery,
		string(inv.Status()),
		inv.ID().String(),
		inv.OrganisationID().String(),
	)
	if err != nil {
		return errors.Wrap(classifyError(err), "failed to update invitation")
	}
	if tag.RowsAffected() == 0 {
		return ErrInvitationNotFound
	}
	return nil
}

func (r *PgInvitationRepository) GetByID(ctx context.Context, id uuid.UUID) (*invitation.Invitation, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	q := repo.Join(selectInvitationQuery, repo.JoinWhere("id = $1", "organisation_id = $2"))
	return r.scanOne(tx.QueryRow(ctx, q, id.String(), tenantID.String()))
}

func (r *PgInvitationRepository) GetAll(ctx context.Context) ([]*invitation.Invitation, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	q := repo.Join(selectInvitationQuery, repo.JoinWhere("organisation_id = $1"), "ORDER BY created_at DESC")
	rows, err := tx.Query(ctx, q, tenantID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to query invitations")
	}
	defer rows.Close()

	invitations := make([]*invitation.Invitation, 0)
	for rows.Next() {
		var m models.Invitation
		if err := rows.Scan(
			&m.ID,
			&m.Email,
			&m.Role,
			&m.OrganisationID,
			&m.Token,
			&m.Status,
			&m.ExpiresAt,
			&m.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan invitation row")
		}
		inv, err := toDomainInvitation(&m)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

// BYPASS: the invited user has no identity yet; the single-use token is the
// only credential.
func (r *PgInvitationRepository) GetByTokenGlobal(ctx context.Context, token string) (*invitation.Invitation, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	q := repo.Join(selectInvitationQuery, repo.JoinWhere("token = $1"))
	return r.scanOne(tx.QueryRow(ctx, q, token))
}
