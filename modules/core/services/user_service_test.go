package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/sopdesk/modules/core/domain/aggregates/user"
	"github.com/fieldops/sopdesk/modules/core/infrastructure/persistence"
	"github.com/fieldops/sopdesk/pkg/itf"
	"github.com/fieldops/sopdesk/pkg/serrors"
)

func newUserFixture(t *testing.T) (*UserService, *memUserRepo, *itf.TestEnvironment, *user.User) {
	t.Helper()
	users := newMemUserRepo()
	orgID := uuid.New()
	admin := seedUser(t, users, orgID, "admin@acme.test", user.RoleAdmin, "Sunny1day")
	env := itf.NewTestContext().
		WithTenantID(orgID).
		WithUserID(admin.ID()).
		WithRole(string(user.RoleAdmin)).
		Build(t)
	return NewUserService(users, quietBus()), users, env, admin
}

func TestUserService_Update(t *testing.T) {
	svc, users, env, _ := newUserFixture(t)
	member := seedUser(t, users, env.TenantID, "member@acme.test", user.RoleUser, "Sunny1day")

	updated, err := svc.Update(env.Ctx, member.ID(), "Maria", "Vega", "admin")
	require.NoError(t, err)
	assert.Equal(t, "Maria Vega", updated.FullName())
	assert.Equal(t, user.RoleAdmin, updated.Role())
}

func TestUserService_Update_AdminOnly(t *testing.T) {
	svc, users, env, _ := newUserFixture(t)
	member := seedUser(t, users, env.TenantID, "member@acme.test", user.RoleUser, "Sunny1day")

	_, err := svc.Update(env.AsUser(member.ID(), string(user.RoleUser)), member.ID(), "Maria", "Vega", "admin")
	require.ErrorIs(t, err, serrors.ErrAdminOnly)
}

func TestUserService_Update_OtherTenant(t *testing.T) {
	svc, users, env, _ := newUserFixture(t)
	outsider := seedUser(t, users, uuid.New(), "out@rival.test", user.RoleUser, "Sunny1day")

	_, err := svc.Update(env.Ctx, outsider.ID(), "Maria", "Vega", "admin")
	require.ErrorIs(t, err, persistence.ErrUserNotFound)
}

func TestUserService_Delete(t *testing.T) {
	svc, users, env, _ := newUserFixture(t)
	member := seedUser(t, users, env.TenantID, "member@acme.test", user.RoleUser, "Sunny1day")

	var cascaded []uuid.UUID
	svc.RegisterDeletionCascade(func(_ context.Context, userID uuid.UUID) error {
		cascaded = append(cascaded, userID)
		return nil
	})

	require.NoError(t, svc.Delete(env.Ctx, member.ID()))
	require.Equal(t, []uuid.UUID{member.ID()}, cascaded)

	_, err := svc.GetByID(env.Ctx, member.ID())
	require.ErrorIs(t, err, persistence.ErrUserNotFound)
}

func TestUserService_Delete_Self(t *testing.T) {
	svc, users, env, admin := newUserFixture(t)

	require.ErrorIs(t, svc.Delete(env.Ctx, admin.ID()), ErrSelfDeletion)
	_, ok := users.users[admin.ID()]
	assert.True(t, ok)
}

func TestUserService_Delete_OtherTenant(t *testing.T) {
	svc, users, env, _ := newUserFixture(t)
	outsider := seedUser(t, users, uuid.New(), "out@rival.test", user.RoleUser, "Sunny1day")

	require.ErrorIs(t, svc.Delete(env.Ctx, outsider.ID()), persistence.ErrUserNotFound)
	_, ok := users.users[outsider.ID()]
	assert.True(t, ok)
}
