package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/fieldops/sopdesk/modules/core/domain/aggregates/user"
	"github.com/fieldops/sopdesk/pkg/composables"
	"github.com/fieldops/sopdesk/pkg/eventbus"
	"github.com/fieldops/sopdesk/pkg/serrors"
)

var ErrSelfDeletion = serrors.Validation("SELF_DELETION", "you cannot delete your own account")

// DeletionCascade removes or detaches rows owned by other modules that
// reference a user. Registered by those modules and run inside the deletion
// transaction.
type DeletionCascade func(ctx context.Context, userID uuid.UUID) error

type UserService struct {
	repo      user.Repository
	publisher eventbus.EventBus
	cascades  []DeletionCascade
}

func NewUserService(repo user.Repository, publisher eventbus.EventBus) *UserService {
	return &UserService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *UserService) RegisterDeletionCascade(fn DeletionCascade) {
	s.cascades = append(s.cascades, fn)
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetAll(ctx context.Context) ([]*user.User, error) {
	return s.repo.GetAll(ctx)
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, forename, surname, rawRole string) (*user.User, error) {
	if err := composables.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	role, err := user.NewRole(rawRole)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*user.User, error) {
		u, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		// Ownership re-check before mutating an entity fetched by id.
		if u.OrganisationID() != tenantID {
			return nil, serrors.ErrForbidden
		}
		u.Rename(forename, surname)
		u.SetRole(role)
		if err := s.repo.Update(txCtx, u); err != nil {
			return nil, err
		}
		return u, nil
	})
}

// Delete removes a user and everything referencing them in one transaction.
// Callers cannot delete themselves: a tenant must always keep the admin who
// issued the request.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := composables.RequireAdmin(ctx); err != nil {
		return err
	}
	callerID, err := composables.UseUserID(ctx)
	if err != nil {
		return err
	}
	if callerID == id {
		return ErrSelfDeletion
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		u, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if u.OrganisationID() != tenantID {
			return serrors.ErrForbidden
		}
		for _, cascade := range s.cascades {
			if err := cascade(txCtx, id); err != nil {
				return err
			}
		}
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}

	s.publisher.Publish(user.DeletedEvent{UserID: id, OrganisationID: tenantID})
	return nil
}
