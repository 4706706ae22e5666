package persistence

import (
	"database/sql"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/fieldops/sopdesk/modules/sop/domain/aggregates/sop"
	"github.com/fieldops/sopdesk/modules/sop/domain/entities/ppe"
	"github.com/fieldops/sopdesk/modules/sop/infrastructure/persistence/models"
)

func parseNullUUID(v sql.NullString) (*uuid.UUID, error) {
	if !v.Valid {
		return nil, nil
	}
	id, err := uuid.Parse(v.String)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse stored uuid")
	}
	return &id, nil
}

func nullUUIDString(v *uuid.UUID) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: v.String(), Valid: true}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func toDomainSop(row *models.Sop, versions []*sop.Version) (*sop.Sop, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse sop id")
	}
	orgID, err := uuid.Parse(row.OrganisationID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse sop organisation id")
	}
	departmentID, err := parseNullUUID(row.DepartmentID)
	if err != nil {
		return nil, err
	}
	return sop.New(
		row.Reference,
		orgID,
		sop.WithID(id),
		sop.WithDepartmentID(departmentID),
		sop.WithAiGenerated(row.IsAiGenerated),
		sop.WithCreatedAt(row.CreatedAt),
		sop.WithVersions(versions),
	), nil
}

func toDomainVersion(row *models.SopVersion, steps []*sop.Step, hazards []*sop.Hazard) (*sop.Version, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse version id")
	}
	sopID, err := uuid.Parse(row.SopID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse version sop id")
	}
	orgID, err := uuid.Parse(row.OrganisationID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse version organisation id")
	}
	status, err := sop.NewStatus(row.Status)
	if err != nil {
		return nil, errors.Wrapf(err, "stored status %q is invalid", row.Status)
	}
	authorID, err := parseNullUUID(row.AuthorID)
	if err != nil {
		return nil, err
	}
	approverID, err := parseNullUUID(row.ApproverID)
	if err != nil {
		return nil, err
	}
	return sop.NewVersion(
		sopID,
		orgID,
		row.Version,
		row.Title,
		row.Description,
		authorID,
		sop.WithVersionID(id),
		sop.WithStatus(status),
		sop.WithApproverID(approverID),
		sop.WithVersionCreatedAt(row.CreatedAt),
		sop.WithRequestedAt(timePtr(row.RequestedAt)),
		sop.WithApprovedAt(timePtr(row.ApprovedAt)),
		sop.WithSteps(steps),
		sop.WithHazards(hazards),
	), nil
}

func toDomainStep(row *models.SopStep, ppeIDs []uuid.UUID) (*sop.Step, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse step id")
	}
	versionID, err := uuid.Parse(row.VersionID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse step version id")
	}
	orgID, err := uuid.Parse(row.OrganisationID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse step organisation id")
	}
	return sop.NewStep(
		versionID,
		orgID,
		row.Position,
		row.Title,
		row.Text,
		row.ImageRef.String,
		ppeIDs,
		sop.WithStepID(id),
		sop.WithStepCreatedAt(row.CreatedAt),
	), nil
}

func toDomainHazard(row *models.SopHazard) (*sop.Hazard, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse hazard id")
	}
	versionID, err := uuid.Parse(row.VersionID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse hazard version id")
	}
	orgID, err := uuid.Parse(row.OrganisationID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse hazard organisation id")
	}
	risk, err := sop.NewRiskLevel(row.RiskLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "stored risk level %q is invalid", row.RiskLevel)
	}
	return sop.NewHazard(
		versionID,
		orgID,
		row.Name,
		row.ControlMeasure,
		risk,
		sop.WithHazardID(id),
		sop.WithHazardCreatedAt(row.CreatedAt),
	), nil
}

func toDomainPpe(row *models.Ppe) (*ppe.Ppe, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse ppe id")
	}
	return ppe.New(row.Name, row.Icon, ppe.WithID(id)), nil
}

func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}
