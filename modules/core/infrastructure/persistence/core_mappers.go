package persistence

import (
	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/fieldops/sopdesk/modules/core/domain/aggregates/user"
	"github.com/fieldops/sopdesk/modules/core/domain/entities/department"
	"github.com/fieldops/sopdesk/modules/core/domain/entities/invitation"
	"github.com/fieldops/sopdesk/modules/core/domain/entities/organisation"
	"github.com/fieldops/sopdesk/modules/core/domain/value_objects/internet"
	"github.com/fieldops/sopdesk/modules/core/infrastructure/persistence/models"
)

func toDomainOrganisation(row *models.Organisation) (*organisation.Organisation, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse organisation id")
	}
	return organisation.New(
		row.Name,
		organisation.WithID(id),
		organisation.WithCreatedAt(row.CreatedAt),
	), nil
}

func toDomainUser(row *models.User) (*user.User, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse user id")
	}
	orgID, err := uuid.Parse(row.OrganisationID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse user organisation id")
	}
	email, err := internet.NewEmail(row.Email)
	if err != nil {
		return nil, errors.Wrapf(err, "stored email %q is invalid", row.Email)
	}
	role, err := user.NewRole(row.Role)
	if err != nil {
		return nil, errors.Wrapf(err, "stored role %q is invalid", row.Role)
	}
	return user.New(
		row.Forename,
		row.Surname,
		email,
		orgID,
		role,
		user.WithID(id),
		user.WithPasswordHash(row.Password),
		user.WithCreatedAt(row.CreatedAt),
		user.WithUpdatedAt(row.UpdatedAt),
	), nil
}

func toDomainInvitation(row *models.Invitation) (*invitation.Invitation, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse invitation id")
	}
	orgID, err := uuid.Parse(row.OrganisationID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse invitation organisation id")
	}
	email, err := internet.NewEmail(row.Email)
	if err != nil {
		return nil, errors.Wrapf(err, "stored email %q is invalid", row.Email)
	}
	role, err := user.NewRole(row.Role)
	if err != nil {
		return nil, errors.Wrapf(err, "stored role %q is invalid", row.Role)
	}
	return invitation.New(
		email,
		role,
		orgID,
		row.Token,
		row.ExpiresAt,
		invitation.WithID(id),
		invitation.WithStatus(invitation.Status(row.Status)),
		invitation.WithCreatedAt(row.CreatedAt),
	), nil
}

func toDomainDepartment(row *models.Department) (*department.Department, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse department id")
	}
	orgID, err := uuid.Parse(row.OrganisationID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse department organisation id")
	}
	return department.New(
		row.Name,
		orgID,
		department.WithID(id),
		department.WithCreatedAt(row.CreatedAt),
	), nil
}
