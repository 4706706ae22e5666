package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fieldops/sopdesk/modules/sop/domain/aggregates/sop"
	"github.com/fieldops/sopdesk/modules/sop/infrastructure/persistence/models"
	"github.com/fieldops/sopdesk/pkg/composables"
	"github.com/fieldops/sopdesk/pkg/reconcile"
	"github.com/fieldops/sopdesk/pkg/repo"
	"github.com/fieldops/sopdesk/pkg/serrors"
)

var (
	ErrSopNotFound     = serrors.NotFound("SOP_NOT_FOUND", "sop not found")
	ErrVersionNotFound = serrors.NotFound("VERSION_NOT_FOUND", "sop version not found")
)

const (
	selectSopQuery = `
		SELECT
			id,
			organisation_id,
			department_id,
			reference,
			is_ai_generated,
			created_at
		FROM sops`

	selectVersionQuery = `
		SELECT
			id,
			sop_id,
			organisation_id,
			version,
			title,
			description,
			status,
			author_id,
			approver_id,
			created_at,
			requested_at,
			approved_at
		FROM sop_versions`

	selectStepQuery = `
		SELECT
			id,
			sop_version_id,
			organisation_id,
			position,
			title,
			text,
			image_ref,
			created_at
		FROM sop_steps`

	selectHazardQuery = `
		SELECT
			id,
			sop_version_id,
			organisation_id,
			name,
			control_measure,
			risk_level,
			created_at
		FROM sop_hazards`

	selectStepPpeQuery = `
		SELECT sop_step_id, ppe_id
		FROM sop_step_ppe
		WHERE sop_step_id = ANY($1) AND organisation_id = $2`

	existsSopReferenceQuery = `
		SELECT EXISTS (
			SELECT 1 FROM sops WHERE lower(reference) = lower($1) AND organisation_id = $2
		)`

	deleteSopQuery       = `DELETE FROM sops WHERE id = $1 AND organisation_id = $2`
	deleteStepQuery      = `DELETE FROM sop_steps WHERE id = $1 AND organisation_id = $2`
	deleteHazardQuery    = `DELETE FROM sop_hazards WHERE id = $1 AND organisation_id = $2`
	deleteStepPpeQuery   = `DELETE FROM sop_step_ppe WHERE sop_step_id = $1 AND ppe_id = $2 AND organisation_id = $3`
	deleteStepLinksQuery = `DELETE FROM sop_step_ppe WHERE sop_step_id = $1 AND organisation_id = $2`

	clearAuthorQuery   = `UPDATE sop_versions SET author_id = NULL WHERE author_id = $1 AND organisation_id = $2`
	clearApproverQuery = `UPDATE sop_versions SET approver_id = NULL WHERE approver_id = $1 AND organisation_id = $2`
)

type PgSopRepository struct{}

func NewSopRepository() sop.Repository {
	return &PgSopRepository{}
}

func (r *PgSopRepository) GetByID(ctx context.Context, id uuid.UUID) (*sop.Sop, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	q := repo.Join(selectSopQuery, repo.JoinWhere("id = $1", "organisation_id = $2"))
	var row models.Sop
	if err := tx.QueryRow(ctx, q, id.String(), tenantID.String()).Scan(
		&row.ID,
		&row.OrganisationID,
		&row.DepartmentID,
		&row.Reference,
		&row.IsAiGenerated,
		&row.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSopNotFound
		}
		return nil, errors.Wrap(err, "failed to query sop")
	}

	versions, err := r.hydrateVersions(ctx, tx, id, tenantID, true)
	if err != nil {
		return nil, err
	}
	return toDomainSop(&row, versions)
}

func (r *PgSopRepository) GetAll(ctx context.Context, params *sop.FindParams) ([]*sop.Sop, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = &sop.FindParams{}
	}

	conditions := []string{"organisation_id = $1"}
	args := []any{tenantID.String()}
	if params.DepartmentID != nil {
		args = append(args, params.DepartmentID.String())
		conditions = append(conditions, fmt.Sprintf("department_id = $%d", len(args)))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		conditions = append(conditions, fmt.Sprintf("reference ILIKE $%d", len(args)))
	}

	q := repo.Join(
		selectSopQuery,
		repo.JoinWhere(conditions...),
		"ORDER BY created_at DESC",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	rows, err := tx.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query sops")
	}
	defer rows.Close()

	sops := make([]*sop.Sop, 0)
	for rows.Next() {
		var row models.Sop
		if err := rows.Scan(
			&row.ID,
			&row.OrganisationID,
			&row.DepartmentID,
			&row.Reference,
			&row.IsAiGenerated,
			&row.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan sop row")
		}
		sopID, err := uuid.Parse(row.ID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse sop id")
		}
		// Listing hydrates version rows only; steps and hazards load on
		// GetByID.
		versions, err := r.hydrateVersions(ctx, tx, sopID, tenantID, false)
		if err != nil {
			return nil, err
		}
		s, err := toDomainSop(&row, versions)
		if err != nil {
			return nil, err
		}
		sops = append(sops, s)
	}
	return sops, rows.Err()
}

func (r *PgSopRepository) hydrateVersions(ctx context.Context, tx repo.Tx, sopID, tenantID uuid.UUID, withChildren bool) ([]*sop.Version, error) {
	q := repo.Join(selectVersionQuery, repo.JoinWhere("sop_id = $1", "organisation_id = $2"), "ORDER BY version")
	rows, err := tx.Query(ctx, q, sopID.String(), tenantID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to query sop versions")
	}
	defer rows.Close()

	versionRows := make([]*models.SopVersion, 0)
	for rows.Next() {
		var row models.SopVersion
		if err := rows.Scan(
			&row.ID,
			&row.SopID,
			&row.OrganisationID,
			&row.Version,
			&row.Title,
			&row.Description,
			&row.Status,
			&row.AuthorID,
			&row.ApproverID,
			&row.CreatedAt,
			&row.RequestedAt,
			&row.ApprovedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan version row")
		}
		versionRows = append(versionRows, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	versions := make([]*sop.Version, 0, len(versionRows))
	for _, row := range versionRows {
		var steps []*sop.Step
		var hazards []*sop.Hazard
		if withChildren {
			versionID, err := uuid.Parse(row.ID)
			if err != nil {
				return nil, errors.Wrap(err, "failed to parse version id")
			}
			steps, err = r.loadSteps(ctx, tx, versionID, tenantID)
			if err != nil {
				return nil, err
			}
			hazards, err = r.loadHazards(ctx, tx, versionID, tenantID)
			if err != nil {
				return nil, err
			}
		}
		v, err := toDomainVersion(row, steps, hazards)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, nil
}

func (r *PgSopRepository) loadSteps(ctx context.Context, tx repo.Tx, versionID, tenantID uuid.UUID) ([]*sop.Step, error) {
	q := repo.Join(selectStepQuery, repo.JoinWhere("sop_version_id = $1", "organisation_id = $2"), "ORDER BY position")
	rows, err := tx.Query(ctx, q, versionID.String(), tenantID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to query sop steps")
	}
	defer rows.Close()

	stepRows := make([]*models.SopStep, 0)
	stepIDs := make([]string, 0)
	for rows.Next() {
		var row models.SopStep
		if err := rows.Scan(
			&row.ID,
			&row.VersionID,
			&row.OrganisationID,
			&row.Position,
			&row.Title,
			&row.Text,
			&row.ImageRef,
			&row.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan step row")
		}
		stepRows = append(stepRows, &row)
		stepIDs = append(stepIDs, row.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	links, err := r.loadStepPpe(ctx, tx, stepIDs, tenantID)
	if err != nil {
		return nil, err
	}

	steps := make([]*sop.Step, 0, len(stepRows))
	for _, row := range stepRows {
		s, err := toDomainStep(row, links[row.ID])
		if err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, nil
}

func (r *PgSopRepository) loadStepPpe(ctx context.Context, tx repo.Tx, stepIDs []string, tenantID uuid.UUID) (map[string][]uuid.UUID, error) {
	links := make(map[string][]uuid.UUID, len(stepIDs))
	if len(stepIDs) == 0 {
		return links, nil
	}
	rows, err := tx.Query(ctx, selectStepPpeQuery, stepIDs, tenantID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to query step ppe links")
	}
	defer rows.Close()

	for rows.Next() {
		var stepID, ppeID string
		if err := rows.Scan(&stepID, &ppeID); err != nil {
			return nil, errors.Wrap(err, "failed to scan step ppe link")
		}
		id, err := uuid.Parse(ppeID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse ppe id")
		}
		links[stepID] = append(links[stepID], id)
	}
	return links, rows.Err()
}

func (r *PgSopRepository) loadHazards(ctx context.Context, tx repo.Tx, versionID, tenantID uuid.UUID) ([]*sop.Hazard, error) {
	q := repo.Join(selectHazardQuery, repo.JoinWhere("sop_version_id = $1", "organisation_id = $2"), "ORDER BY created_at")
	rows, err := tx.Query(ctx, q, versionID.String(), tenantID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to query sop hazards")
	}
	defer rows.Close()

	hazards := make([]*sop.Hazard, 0)
	for rows.Next() {
		var row models.SopHazard
		if err := rows.Scan(
			&row.ID,
			&row.VersionID,
			&row.OrganisationID,
			&row.Name,
			&row.ControlMeasure,
			&row.RiskLevel,
			&row.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan hazard row")
		}
		h, err := toDomainHazard(&row)
		if err != nil {
			return nil, err
		}
		hazards = append(hazards, h)
	}
	return hazards, rows.Err()
}

func (r *PgSopRepository) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return false, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := tx.QueryRow(ctx, existsSopReferenceQuery, reference, tenantID.String()).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "failed to check sop reference")
	}
	return exists, nil
}

func (r *PgSopRepository) Create(ctx context.Context, s *sop.Sop) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	q := repo.Insert("sops", []string{"id", "organisation_id", "department_id", "reference", "is_ai_generated", "created_at"})
	if _, err := tx.Exec(
		ctx,
		q,
		s.ID().String(),
		s.OrganisationID().String(),
		nullUUIDString(s.DepartmentID()),
		s.Reference(),
		s.IsAiGenerated(),
		s.CreatedAt(),
	); err != nil {
		return errors.Wrap(classifyError(err), "failed to create sop")
	}
	for _, v := range s.Versions() {
		if err := r.CreateVersion(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

func (r *PgSopRepository) Update(ctx context.Context, s *sop.Sop) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	q := repo.Update("sops", []string{"department_id", "reference"}, "id = $3 AND organisation_id = $4")
	tag, err := tx.Exec(ctx, q, nullUUIDString(s.DepartmentID()), s.Reference(), s.ID().String(), tenantID.String())
	if err != nil {
		return errors.Wrap(classifyError(err), "failed to update sop")
	}
	if tag.RowsAffected() == 0 {
		return ErrSopNotFound
	}
	return nil
}

func (r *PgSopRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, deleteSopQuery, id.String(), tenantID.String())
	if err != nil {
		return errors.Wrap(classifyError(err), "failed to delete sop")
	}
	if tag.RowsAffected() == 0 {
		return ErrSopNotFound
	}
	return nil
}

func (r *PgSopRepository) CreateVersion(ctx context.Context, v *sop.Version) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	q := repo.Insert("sop_versions", []string{
		"id", "sop_id", "organisation_id", "version", "title", "description",
		"status", "author_id", "approver_id", "created_at", "requested_at", "approved_at",
	})
	if _, err := tx.Exec(
		ctx,
		q,
		v.ID().String(),
		v.SopID().String(),
		v.OrganisationID().String(),
		v.Number(),
		v.Title(),
		v.Description(),
		string(v.Status()),
		nullUUIDString(v.AuthorID()),
		nullUUIDString(v.ApproverID()),
		v.CreatedAt(),
		nullTime(v.RequestedAt()),
		nullTime(v.ApprovedAt()),
	); err != nil {
		return errors.Wrap(classifyError(err), "failed to create sop version")
	}
	for _, s := range v.Steps() {
		if err := r.insertStep(ctx, s); err != nil {
			return err
		}
	}
	for _, h := range v.Hazards() {
		if err := r.insertHazard(ctx, h); err != nil {
			return err
		}
	}
	return nil
}

// UpdateVersion writes the version row and reconciles steps, hazards and
// step-PPE links against storage. Submitting the stored state unchanged
// produces zero inserts and zero deletes.
func (r *PgSopRepository) UpdateVersion(ctx context.Context, v *sop.Version) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	q := repo.Update("sop_versions", []string{"title", "description", "status"}, "id = $4 AND organisation_id = $5")
	tag, err := tx.Exec(ctx, q, v.Title(), v.Description(), string(v.Status()), v.ID().String(), tenantID.String())
	if err != nil {
		return errors.Wrap(classifyError(err), "failed to update sop version")
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionNotFound
	}

	if err := r.reconcileSteps(ctx, tx, v, tenantID); err != nil {
		return err
	}
	return r.reconcileHazards(ctx, tx, v, tenantID)
}

func (r *PgSopRepository) reconcileSteps(ctx context.Context, tx repo.Tx, v *sop.Version, tenantID uuid.UUID) error {
	stored, err := r.loadSteps(ctx, tx, v.ID(), tenantID)
	if err != nil {
		return err
	}
	diff, err := reconcile.Diff(
		stored,
		v.Steps(),
		func(s *sop.Step) uuid.UUID { return s.ID() },
		func(s *sop.Step) (uuid.UUID, bool) { return s.ID(), true },
	)
	if err != nil {
		return err
	}

	for _, s := range diff.ToDelete {
		if _, err := tx.Exec(ctx, deleteStepLinksQuery, s.ID().String(), tenantID.String()); err != nil {
			return errors.Wrap(err, "failed to delete step ppe links")
		}
		if _, err := tx.Exec(ctx, deleteStepQuery, s.ID().String(), tenantID.String()); err != nil {
			return errors.Wrap(classifyError(err), "failed to delete sop step")
		}
	}
	for _, s := range diff.ToInsert {
		if err := r.insertStep(ctx, s); err != nil {
			return err
		}
	}
	for _, pair := range diff.ToUpdate {
		s := pair.Submitted
		q := repo.Update("sop_steps", []string{"position", "title", "text", "image_ref"}, "id = $5 AND organisation_id = $6")
		if _, err := tx.Exec(ctx, q, s.Position(), s.Title(), s.Text(), nullString(s.ImageRef()), s.ID().String(), tenantID.String()); err != nil {
			return errors.Wrap(classifyError(err), "failed to update sop step")
		}
		if err := r.reconcileStepPpe(ctx, tx, s, pair.Stored.PpeIDs(), tenantID); err != nil {
			return err
		}
	}
	return nil
}

func (r *PgSopRepository) reconcileStepPpe(ctx context.Context, tx repo.Tx, s *sop.Step, stored []uuid.UUID, tenantID uuid.UUID) error {
	diff, err := reconcile.Diff(
		stored,
		s.PpeIDs(),
		func(id uuid.UUID) uuid.UUID { return id },
		func(id uuid.UUID) (uuid.UUID, bool) { return id, true },
	)
	if err != nil {
		return err
	}
	for _, ppeID := range diff.ToDelete {
		if _, err := tx.Exec(ctx, deleteStepPpeQuery, s.ID().String(), ppeID.String(), tenantID.String()); err != nil {
			return errors.Wrap(err, "failed to delete step ppe link")
		}
	}
	if len(diff.ToInsert) > 0 {
		rows := make([][]any, 0, len(diff.ToInsert))
		for _, ppeID := range diff.ToInsert {
			rows = append(rows, []any{s.ID().String(), ppeID.String(), s.OrganisationID().String()})
		}
		q, args := repo.BatchInsertQueryN("INSERT INTO sop_step_ppe (sop_step_id, ppe_id, organisation_id) VALUES", rows)
		if _, err := tx.Exec(ctx, q, args...); err != nil {
			return errors.Wrap(classifyError(err), "failed to insert step ppe links")
		}
	}
	return nil
}

func (r *PgSopRepository) reconcileHazards(ctx context.Context, tx repo.Tx, v *sop.Version, tenantID uuid.UUID) error {
	stored, err := r.loadHazards(ctx, tx, v.ID(), tenantID)
	if err != nil {
		return err
	}
	diff, err := reconcile.Diff(
		stored,
		v.Hazards(),
		func(h *sop.Hazard) uuid.UUID { return h.ID() },
		func(h *sop.Hazard) (uuid.UUID, bool) { return h.ID(), true },
	)
	if err != nil {
		return err
	}

	for _, h := range diff.ToDelete {
		if _, err := tx.Exec(ctx, deleteHazardQuery, h.ID().String(), tenantID.String()); err != nil {
			return errors.Wrap(classifyError(err), "failed to delete sop hazard")
		}
	}
	for _, h := range diff.ToInsert {
		if err := r.insertHazard(ctx, h); err != nil {
			return err
		}
	}
	for _, pair := range diff.ToUpdate {
		h := pair.Submitted
		q := repo.Update("sop_hazards", []string{"name", "control_measure", "risk_level"}, "id = $4 AND organisation_id = $5")
		if _, err := tx.Exec(ctx, q, h.Name(), h.ControlMeasure(), string(h.RiskLevel()), h.ID().String(), tenantID.String()); err != nil {
			return errors.Wrap(classifyError(err), "failed to update sop hazard")
		}
	}
	return nil
}

func (r *PgSopRepository) UpdateVersionStatus(ctx context.Context, v *sop.Version) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	q := repo.Update(
		"sop_versions",
		[]string{"status", "approver_id", "requested_at", "approved_at"},
		"id = $5 AND organisation_id = $6",
	)
	tag, err := tx.Exec(
		ctx,
		q,
		string(v.Status()),
		nullUUIDString(v.ApproverID()),
		nullTime(v.RequestedAt()),
		nullTime(v.ApprovedAt()),
		v.ID().String(),
		tenantID.String(),
	)
	if err != nil {
		return errors.Wrap(classifyError(err), "failed to update version status")
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionNotFound
	}
	return nil
}

func (r *PgSopRepository) ClearUserReferences(ctx context.Context, userID uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, clearAuthorQuery, userID.String(), tenantID.String()); err != nil {
		return errors.Wrap(err, "failed to clear version authors")
	}
	if _, err := tx.Exec(ctx, clearApproverQuery, userID.String(), tenantID.String()); err != nil {
		return errors.Wrap(err, "failed to clear version approvers")
	}
	return nil
}

func (r *PgSopRepository) insertStep(ctx context.Context, s *sop.Step) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	q := repo.Insert("sop_steps", []string{
		"id", "sop_version_id", "organisation_id", "position", "title", "text", "image_ref", "created_at",
	})
	if _, err := tx.Exec(
		ctx,
		q,
		s.ID().String(),
		s.VersionID().String(),
		s.OrganisationID().String(),
		s.Position(),
		s.Title(),
		s.Text(),
		nullString(s.ImageRef()),
		s.CreatedAt(),
	); err != nil {
		return errors.Wrap(classifyError(err), "failed to create sop step")
	}
	if len(s.PpeIDs()) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(s.PpeIDs()))
	for _, ppeID := range s.PpeIDs() {
		rows = append(rows, []any{s.ID().String(), ppeID.String(), s.OrganisationID().String()})
	}
	q, args := repo.BatchInsertQueryN("INSERT INTO sop_step_ppe (sop_step_id, ppe_id, organisation_id) VALUES", rows)
	if _, err := tx.Exec(ctx, q, args...); err != nil {
		return errors.Wrap(classifyError(err), "failed to insert step ppe links")
	}
	return nil
}

func (r *PgSopRepository) insertHazard(ctx context.Context, h *sop.Hazard) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	q := repo.Insert("sop_hazards", []string{
		"id", "sop_version_id", "organisation_id", "name", "control_measure", "risk_level", "created_at",
	})
	if _, err := tx.Exec(
		ctx,
		q,
		h.ID().String(),
		h.VersionID().String(),
		h.OrganisationID().String(),
		h.Name(),
		h.ControlMeasure(),
		string(h.RiskLevel()),
		h.CreatedAt(),
	); err != nil {
		return errors.Wrap(classifyError(err), "failed to create sop hazard")
	}
	return nil
}
