package composables_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/sopdesk/pkg/composables"
	"github.com/fieldops/sopdesk/pkg/serrors"
)

func TestUseTenantID_FailsClosedWhenAbsent(t *testing.T) {
	_, err := composables.UseTenantID(context.Background())
	require.Error(t, err)
	assert.Equal(t, serrors.KindInvalidIdentity, serrors.KindOf(err))
}

func TestUseTenantID_FailsClosedOnNilUUID(t *testing.T) {
	ctx := composables.WithTenantID(context.Background(), uuid.Nil)
	_, err := composables.UseTenantID(ctx)
	require.Error(t, err)
	assert.Equal(t, serrors.KindInvalidIdentity, serrors.KindOf(err))
}

func TestUseTenantID_ReturnsStoredID(t *testing.T) {
	tenantID := uuid.New()
	ctx := composables.WithTenantID(context.Background(), tenantID)

	got, err := composables.UseTenantID(ctx)
	require.NoError(t, err)
	assert.Equal(t, tenantID, got)
}

func TestUseUserID_FailsClosedWhenAbsent(t *testing.T) {
	_, err := composables.UseUserID(context.Background())
	require.Error(t, err)
	assert.Equal(t, serrors.KindInvalidIdentity, serrors.KindOf(err))
}

func TestUseUserRole_RoundTrip(t *testing.T) {
	ctx := composables.WithUserRole(context.Background(), "admin")
	role, err := composables.UseUserRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin", role)
}

func TestRequireAdmin(t *testing.T) {
	ctx := composables.WithUserRole(context.Background(), "admin")
	require.NoError(t, composables.RequireAdmin(ctx))

	err := composables.RequireAdmin(composables.WithUserRole(context.Background(), "user"))
	require.ErrorIs(t, err, serrors.ErrAdminOnly)

	err = composables.RequireAdmin(context.Background())
	assert.Equal(t, serrors.KindInvalidIdentity, serrors.KindOf(err))
}
