package composables

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/fieldops/sopdesk/pkg/constants"
	"github.com/fieldops/sopdesk/pkg/serrors"
)

// Identity resolution is fail-closed everywhere: when the tenant or user
// cannot be determined the accessors return serrors.ErrInvalidIdentity and
// callers must abort. There is no sentinel tenant and no default.

func WithTenantID(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, constants.TenantIDKey, tenantID)
}

// UseTenantID returns the organisation id resolved for the current request.
func UseTenantID(ctx context.Context) (uuid.UUID, error) {
	v := ctx.Value(constants.TenantIDKey)
	if v == nil {
		return uuid.Nil, errors.Wrap(serrors.ErrInvalidIdentity, "no tenant in context")
	}
	id, ok := v.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, errors.Wrap(serrors.ErrInvalidIdentity, "malformed tenant in context")
	}
	return id, nil
}

func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, constants.UserIDKey, userID)
}

// UseUserID returns the authenticated user's id.
func UseUserID(ctx context.Context) (uuid.UUID, error) {
	v := ctx.Value(constants.UserIDKey)
	if v == nil {
		return uuid.Nil, errors.Wrap(serrors.ErrInvalidIdentity, "no user in context")
	}
	id, ok := v.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, errors.Wrap(serrors.ErrInvalidIdentity, "malformed user in context")
	}
	return id, nil
}

func WithUserRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, constants.RoleKey, role)
}

func UseUserRole(ctx context.Context) (string, error) {
	v := ctx.Value(constants.RoleKey)
	if v == nil {
		return "", errors.Wrap(serrors.ErrInvalidIdentity, "no role in context")
	}
	role, ok := v.(string)
	if !ok || role == "" {
		return "", errors.Wrap(serrors.ErrInvalidIdentity, "malformed role in context")
	}
	return role, nil
}

const adminRole = "admin"

// RequireAdmin rejects callers whose role claim is not admin. Services call
// it ahead of admin-only operations; route-level enforcement stays in
// middleware.RequireRole.
func RequireAdmin(ctx context.Context) error {
	role, err := UseUserRole(ctx)
	if err != nil {
		return err
	}
	if role != adminRole {
		return serrors.ErrAdminOnly
	}
	return nil
}
