package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/sopdesk/modules/sop/infrastructure/persistence"
)

func TestFavouriteService_AddListRemove(t *testing.T) {
	f := newSopFixture(t)
	created := f.createSop(t, "SOP-001")
	svc := NewFavouriteService(f.favs, f.sops)

	require.NoError(t, svc.Add(f.env.Ctx, created.ID()))
	// Adding twice is a no-op, mirroring ON CONFLICT DO NOTHING.
	require.NoError(t, svc.Add(f.env.Ctx, created.ID()))

	ids, err := svc.List(f.env.Ctx)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{created.ID()}, ids)

	require.NoError(t, svc.Remove(f.env.Ctx, created.ID()))
	ids, err = svc.List(f.env.Ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFavouriteService_Add_OtherTenantSop(t *testing.T) {
	f := newSopFixture(t)
	created := f.createSop(t, "SOP-001")
	svc := NewFavouriteService(f.favs, f.sops)

	err := svc.Add(f.env.AsTenant(uuid.New()), created.ID())
	require.ErrorIs(t, err, persistence.ErrSopNotFound)
	assert.Empty(t, f.favs.favourites)
}
