package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/fieldops/sopdesk/modules/core/domain/entities/department"
	"github.com/fieldops/sopdesk/modules/core/infrastructure/persistence/models"
	"github.com/fieldops/sopdesk/pkg/composables"
	"github.com/fieldops/sopdesk/pkg/repo"
	"github.com/fieldops/sopdesk/pkg/serrors"
)

var ErrDepartmentNotFound = serrors.NotFound("DEPARTMENT_NOT_FOUND", "department not found")

const (
	selectDepartmentQuery = `
		SELECT
			id,
			name,
			organisation_id,
			created_at
		FROM departments`

	insertDepartmentQuery = `
		INSERT INTO departments (
			id,
			name,
			organisation_id,
			created_at
		) VALUES ($1, $2, $3, $4)`

	updateDepartmentQuery = `
		UPDATE departments
		SET name = $1
		WHERE id = $2 AND organisation_id = $3`

	deleteDepartmentQuery = `DELETE FROM departments WHERE id = $1 AND organisation_id = $2`
)

type PgDepartmentRepository struct{}

func NewDepartmentRepository() department.Repository {
	return &PgDepartmentRepository{}
}

func (r *PgDepartmentRepository) queryDepartments(ctx context.Context, query string, args ...any) ([]*department.Department, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query departments")
	}
	defer rows.Close()

	departments := make([]*department.Department, 0)
	for rows.Next() {
		var row models.Department
		if err := rows.Scan(
			&row.ID,
			&row.Name,
			&row.OrganisationID,
			&row.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan department row")
		}
		d, err := toDomainDepartment(&row)
		if err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

func (r *PgDepartmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*department.Department, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	q := repo.Join(selectDepartmentQuery, repo.JoinWhere("id = $1", "organisation_id = $2"))
	departments, err := r.queryDepartments(ctx, q, id.String(), tenantID.String())
	if err != nil {
		return nil, err
	}
	if len(departments) == 0 {
		return nil, ErrDepartmentNotFound
	}
	return departments[0], nil
}

func (r *PgDepartmentRepository) GetAll(ctx context.Context) ([]*department.Department, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	q := repo.Join(selectDepartmentQuery, repo.JoinWhere("organisation_id = $1"), "ORDER BY name")
	return r.queryDepartments(ctx, q, tenantID.String())
}

func (r *PgDepartmentRepository) Create(ctx context.Context, d *department.Department) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(
		ctx,
		insertDepartmentQuery,
		d.ID().String(),
		d.Name(),
		tenantID.String(),
		d.CreatedAt(),
	); err != nil {
		return errors.Wrap(classifyError(err), "failed to create department")
	}
	return nil
}

func (r *PgDepartmentRepository) Update(ctx context.Context, d *department.Department) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, updateDepartmentQuery, d.Name(), d.ID().String(), tenantID.String())
	if err != nil {
		return errors.Wrap(classifyError(err), "failed to update department")
	}
	if tag.RowsAffected() == 0 {
		return ErrDepartmentNotFound
	}
	return nil
}

func (r *PgDepartmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, deleteDepartmentQuery, id.String(), tenantID.String())
	if err != nil {
		return errors.Wrap(classifyError(err), "failed to delete department")
	}
	if tag.RowsAffected() == 0 {
		return ErrDepartmentNotFound
	}
	return nil
}
