package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fieldops/sopdesk/modules/core/domain/aggregates/user"
	"github.com/fieldops/sopdesk/modules/core/infrastructure/persistence/models"
	"github.com/fieldops/sopdesk/pkg/composables"
	"github.com/fieldops/sopdesk/pkg/repo"
	"github.com/fieldops/sopdesk/pkg/serrors"
)

var ErrUserNotFound = serrors.NotFound("USER_NOT_FOUND", "user not found")

const (
	selectUserQuery = `
		SELECT
			id,
			forename,
			surname,
			email,
			password,
			organisation_id,
			role,
			created_at,
			updated_at
		FROM users`

	insertUserQuery = `
		INSERT INTO users (
			id,
			forename,
			surname,
			email,
			password,
			organisation_id,
			role,
			created_at,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	updateUserQuery = `
		UPDATE users
		SET forename = $1, surname = $2, password = $3, role = $4, updated_at = $5
		WHERE id = $6 AND organisation_id = $7`

	deleteUserQuery = `DELETE FROM users WHERE id = $1 AND organisation_id = $2`

	existsUserByEmailQuery = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`
)

type PgUserRepository struct{}

func NewUserRepository() user.Repository {
	return &PgUserRepository{}
}

func (r *PgUserRepository) queryUsers(ctx context.Context, query string, args ...any) ([]*user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query users")
	}
	defer rows.Close()

	users := make([]*user.User, 0)
	for rows.Next() {
		var row models.User
		if err := rows.Scan(
			&row.ID,
			&row.Forename,
			&row.Surname,
			&row.Email,
			&row.Password,
			&row.OrganisationID,
			&row.Role,
			&row.CreatedAt,
			&row.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan user row")
		}
		u, err := toDomainUser(&row)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	q := repo.Join(selectUserQuery, repo.JoinWhere("id = $1", "organisation_id = $2"))
	users, err := r.queryUsers(ctx, q, id.String(), tenantID.String())
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return users[0], nil
}

func (r *PgUserRepository) GetAll(ctx context.Context) ([]*user.User, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	q := repo.Join(selectUserQuery, repo.JoinWhere("organisation_id = $1"), "ORDER BY surname, forename")
	return r.queryUsers(ctx, q, tenantID.String())
}

func (r *PgUserRepository) Create(ctx context.Context, u *user.User) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(
		ctx,
		insertUserQuery,
		u.ID().String(),
		u.Forename(),
		u.Surname(),
		u.Email().Value(),
		u.PasswordHash(),
		u.OrganisationID().String(),
		string(u.Role()),
		u.CreatedAt(),
		u.UpdatedAt(),
	); err != nil {
		return errors.Wrap(classifyError(err), "failed to create user")
	}
	return nil
}

func (r *PgUserRepository) Update(ctx context.Context, u *user.User) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(
		ctx,
		updateUserQuery,
		u.Forename(),
		u.Surname(),
		u.PasswordHash(),
		string(u.Role()),
		u.UpdatedAt(),
		u.ID().String(),
		tenantID.String(),
	)
	if err != nil {
		return errors.Wrap(classifyError(err), "failed to update user")
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PgUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, deleteUserQuery, id.String(), tenantID.String())
	if err != nil {
		return errors.Wrap(classifyError(err), "failed to delete user")
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// BYPASS: login runs before any tenant is known; email is globally unique.
func (r *PgUserRepository) GetByEmailGlobal(ctx context.Context, email string) (*user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	q := repo.Join(selectUserQuery, repo.JoinWhere("email = $1"))
	var row models.User
	if err := tx.QueryRow(ctx, q, email).Scan(
		&row.ID,
		&row.Forename,
		&row.Surname,
		&row.Email,
		&row.Password,
		&row.OrganisationID,
		&row.Role,
		&row.CreatedAt,
		&row.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, "failed to query user by email")
	}
	return toDomainUser(&row)
}

// BYPASS: email uniqueness is system-wide, checked during signup and invite
// acceptance before the new user has an identity.
func (r *PgUserRepository) EmailExistsGlobal(ctx context.Context, email string) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := tx.QueryRow(ctx, existsUserByEmailQuery, email).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "failed to check user email")
	}
	return exists, nil
}
