package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/sopdesk/modules/core/domain/aggregates/user"
	"github.com/fieldops/sopdesk/modules/core/domain/entities/invitation"
	"github.com/fieldops/sopdesk/modules/core/domain/entities/organisation"
	"github.com/fieldops/sopdesk/pkg/eventbus"
	"github.com/fieldops/sopdesk/pkg/itf"
	"github.com/fieldops/sopdesk/pkg/serrors"
)

type invitationFixture struct {
	svc           *InvitationService
	users         *memUserRepo
	invitations   *memInvitationRepo
	organisations *memOrganisationRepo
	bus           eventbus.EventBus
	env           *itf.TestEnvironment
	admin         *user.User
}

func newInvitationFixture(t *testing.T) *invitationFixture {
	t.Helper()

	users := newMemUserRepo()
	invitations := newMemInvitationRepo()
	organisations := newMemOrganisationRepo()
	bus := quietBus()

	org := organisation.New("Acme")
	require.NoError(t, organisations.Create(context.Background(), org))
	admin := seedUser(t, users, org.ID(), "admin@acme.test", user.RoleAdmin, "Sunny1day")

	env := itf.NewTestContext().
		WithTenantID(org.ID()).
		WithUserID(admin.ID()).
		WithRole(string(user.RoleAdmin)).
		Build(t)

	svc := NewInvitationService(
		invitations,
		users,
		organisations,
		testIssuer(),
		bus,
		testPasswordOpts(),
		72*time.Hour,
	)
	return &invitationFixture{
		svc:           svc,
		users:         users,
		invitations:   invitations,
		organisations: organisations,
		bus:           bus,
		env:           env,
		admin:         admin,
	}
}

func TestInvitationService_Invite(t *testing.T) {
	f := newInvitationFixture(t)

	var events []invitation.CreatedEvent
	f.bus.Subscribe(func(e invitation.CreatedEvent) { events = append(events, e) })

	inv, err := f.svc.Invite(f.env.Ctx, "new@acme.test", "user")
	require.NoError(t, err)
	assert.Equal(t, invitation.StatusPending, inv.Status())
	assert.Equal(t, f.env.TenantID, inv.OrganisationID())
	assert.NotEmpty(t, inv.Token())

	require.Len(t, events, 1)
	assert.Equal(t, "Acme", events[0].OrganisationName)
	assert.Equal(t, f.admin.FullName(), events[0].InviterName)
}

func TestInvitationService_Invite_AdminOnly(t *testing.T) {
	f := newInvitationFixture(t)
	member := seedUser(t, f.users, f.env.TenantID, "member@acme.test", user.RoleUser, "Sunny1day")

	_, err := f.svc.Invite(f.env.AsUser(member.ID(), string(user.RoleUser)), "new@acme.test", "user")
	require.ErrorIs(t, err, serrors.ErrAdminOnly)
}

func TestInvitationService_Invite_EmailTaken(t *testing.T) {
	f := newInvitationFixture(t)

	_, err := f.svc.Invite(f.env.Ctx, "admin@acme.test", "user")
	require.ErrorIs(t, err, ErrEmailExists)
	require.Empty(t, f.invitations.invitations, "conflicting invite must not persist")
}

func TestInvitationService_RegisterInvite(t *testing.T) {
	f := newInvitationFixture(t)

	inv, err := f.svc.Invite(f.env.Ctx, "new@acme.test", "user")
	require.NoError(t, err)

	session, err := f.svc.RegisterInvite(f.env.Ctx, RegisterInviteCommand{
		Token:    inv.Token(),
		Forename: "New",
		Surname:  "Hire",
		Password: "Sunny1day",
	})
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)

	created := session.User
	assert.Equal(t, f.env.TenantID, created.OrganisationID())
	assert.Equal(t, user.RoleUser, created.Role())
	assert.Equal(t, "new@acme.test", created.Email().Value())

	stored, err := f.invitations.GetByTokenGlobal(f.env.Ctx, inv.Token())
	require.NoError(t, err)
	assert.Equal(t, invitation.StatusAccepted, stored.Status())
}

func TestInvitationService_RegisterInvite_SingleUse(t *testing.T) {
	f := newInvitationFixture(t)

	inv, err := f.svc.Invite(f.env.Ctx, "new@acme.test", "user")
	require.NoError(t, err)

	cmd := RegisterInviteCommand{
		Token:    inv.Token(),
		Forename: "New",
		Surname:  "Hire",
		Password: "Sunny1day",
	}
	_, err = f.svc.RegisterInvite(f.env.Ctx, cmd)
	require.NoError(t, err)

	_, err = f.svc.RegisterInvite(f.env.Ctx, cmd)
	require.ErrorIs(t, err, invitation.ErrAlreadyAccepted)
}

func TestInvitationService_RegisterInvite_Expired(t *testing.T) {
	f := newInvitationFixture(t)

	// The JWT is still valid; the row's own expiry is the one that counts.
	token, err := testIssuer().IssueInvitation("late@acme.test", "user", f.env.TenantID)
	require.NoError(t, err)
	inv := invitation.New(
		mustEmail(t, "late@acme.test"),
		user.RoleUser,
		f.env.TenantID,
		token,
		time.Now().Add(-time.Hour),
	)
	require.NoError(t, f.invitations.Create(context.Background(), inv))

	_, err = f.svc.RegisterInvite(f.env.Ctx, RegisterInviteCommand{
		Token:    token,
		Forename: "Late",
		Surname:  "Hire",
		Password: "Sunny1day",
	})
	require.ErrorIs(t, err, invitation.ErrExpired)
}

func TestInvitationService_RegisterInvite_BadToken(t *testing.T) {
	f := newInvitationFixture(t)

	_, err := f.svc.RegisterInvite(f.env.Ctx, RegisterInviteCommand{
		Token:    "not-a-jwt",
		Forename: "New",
		Surname:  "Hire",
		Password: "Sunny1day",
	})
	require.Error(t, err)
}

func TestInvitationService_Revoke(t *testing.T) {
	f := newInvitationFixture(t)

	inv, err := f.svc.Invite(f.env.Ctx, "new@acme.test", "user")
	require.NoError(t, err)

	require.NoError(t, f.svc.Revoke(f.env.Ctx, inv.ID()))
	assert.Equal(t, invitation.StatusRevoked, inv.Status())

	_, err = f.svc.RegisterInvite(f.env.Ctx, RegisterInviteCommand{
		Token:    inv.Token(),
		Forename: "New",
		Surname:  "Hire",
		Password: "Sunny1day",
	})
	require.ErrorIs(t, err, invitation.ErrNotPending)

	require.ErrorIs(t, f.svc.Revoke(f.env.Ctx, inv.ID()), invitation.ErrNotPending)
}

func TestInvitationService_GetAll_TenantScoped(t *testing.T) {
	f := newInvitationFixture(t)

	_, err := f.svc.Invite(f.env.Ctx, "new@acme.test", "user")
	require.NoError(t, err)

	other := invitation.New(
		mustEmail(t, "other@rival.test"),
		user.RoleUser,
		uuid.New(),
		"other-token",
		time.Now().Add(time.Hour),
	)
	require.NoError(t, f.invitations.Create(context.Background(), other))

	all, err := f.svc.GetAll(f.env.Ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, f.env.TenantID, all[0].OrganisationID())
}
