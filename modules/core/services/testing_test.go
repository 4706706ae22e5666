package services

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/sopdesk/modules/core/domain/aggregates/user"
	"github.com/fieldops/sopdesk/modules/core/domain/entities/invitation"
	"github.com/fieldops/sopdesk/modules/core/domain/entities/organisation"
	"github.com/fieldops/sopdesk/modules/core/domain/value_objects/internet"
	"github.com/fieldops/sopdesk/modules/core/domain/value_objects/password"
	"github.com/fieldops/sopdesk/modules/core/infrastructure/persistence"
	"github.com/fieldops/sopdesk/pkg/composables"
	"github.com/fieldops/sopdesk/pkg/configuration"
	"github.com/fieldops/sopdesk/pkg/eventbus"
	"github.com/fieldops/sopdesk/pkg/tokens"
)

// The in-memory repositories below mirror the behaviour of the pg
// implementations, including the tenant predicate on every scoped read and
// the named global bypasses.

type memUserRepo struct {
	users map[uuid.UUID]*user.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[uuid.UUID]*user.User{}}
}

func (m *memUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	u, ok := m.users[id]
	if !ok || u.OrganisationID() != tenantID {
		return nil, persistence.ErrUserNotFound
	}
	return u, nil
}

func (m *memUserRepo) GetAll(ctx context.Context) ([]*user.User, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	var out []*user.User
	for _, u := range m.users {
		if u.OrganisationID() == tenantID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUserRepo) Create(_ context.Context, u *user.User) error {
	m.users[u.ID()] = u
	return nil
}

func (m *memUserRepo) Update(_ context.Context, u *user.User) error {
	if _, ok := m.users[u.ID()]; !ok {
		return persistence.ErrUserNotFound
	}
	m.users[u.ID()] = u
	return nil
}

func (m *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.users[id]; !ok {
		return persistence.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUserRepo) GetByEmailGlobal(_ context.Context, email string) (*user.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email().Value(), email) {
			return u, nil
		}
	}
	return nil, persistence.ErrUserNotFound
}

func (m *memUserRepo) EmailExistsGlobal(_ context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email().Value(), email) {
			return true, nil
		}
	}
	return false, nil
}

type memOrganisationRepo struct {
	organisations map[uuid.UUID]*organisation.Organisation
}

func newMemOrganisationRepo() *memOrganisationRepo {
	return &memOrganisationRepo{organisations: map[uuid.UUID]*organisation.Organisation{}}
}

func (m *memOrganisationRepo) Create(_ context.Context, org *organisation.Organisation) error {
	m.organisations[org.ID()] = org
	return nil
}

func (m *memOrganisationRepo) GetByID(_ context.Context, id uuid.UUID) (*organisation.Organisation, error) {
	org, ok := m.organisations[id]
	if !ok {
		return nil, persistence.ErrOrganisationNotFound
	}
	return org, nil
}

func (m *memOrganisationRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	for _, org := range m.organisations {
		if strings.EqualFold(org.Name(), name) {
			return true, nil
		}
	}
	return false, nil
}

type memInvitationRepo struct {
	invitations map[uuid.UUID]*invitation.Invitation
}

func newMemInvitationRepo() *memInvitationRepo {
	return &memInvitationRepo{invitations: map[uuid.UUID]*invitation.Invitation{}}
}

func (m *memInvitationRepo) Create(_ context.Context, inv *invitation.Invitation) error {
	m.invitations[inv.ID()] = inv
	return nil
}

func (m *memInvitationRepo) Update(_ context.Context, inv *invitation.Invitation) error {
	if _, ok := m.invitations[inv.ID()]; !ok {
		return persistence.ErrInvitationNotFound
	}
	m.invitations[inv.ID()] = inv
	return nil
}

func (m *memInvitationRepo) GetByID(ctx context.Context, id uuid.UUID) (*invitation.Invitation, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	inv, ok := m.invitations[id]
	if !ok || inv.OrganisationID() != tenantID {
		return nil, persistence.ErrInvitationNotFound
	}
	return inv, nil
}

func (m *memInvitationRepo) GetAll(ctx context.Context) ([]*invitation.Invitation, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	var out []*invitation.Invitation
	for _, inv := range m.invitations {
		if inv.OrganisationID() == tenantID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *memInvitationRepo) GetByTokenGlobal(_ context.Context, token string) (*invitation.Invitation, error) {
	for _, inv := range m.invitations {
		if inv.Token() == token {
			return inv, nil
		}
	}
	return nil, persistence.ErrInvitationNotFound
}

func testIssuer() *tokens.Issuer {
	return tokens.NewIssuer("test-secret", "sopdesk", "sopdesk-api", time.Hour, 48*time.Hour)
}

// Cost 4 keeps bcrypt fast in tests; symbols are off so fixtures stay short.
func testPasswordOpts() *configuration.PasswordOptions {
	return &configuration.PasswordOptions{
		MinLength:    8,
		RequireDigit: true,
		RequireUpper: true,
		RequireLower: true,
		BcryptCost:   4,
	}
}

func quietBus() eventbus.EventBus {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return eventbus.NewEventPublisher(log)
}

func mustEmail(t *testing.T, raw string) internet.Email {
	t.Helper()
	email, err := internet.NewEmail(raw)
	require.NoError(t, err)
	return email
}

func seedUser(t *testing.T, repo *memUserRepo, orgID uuid.UUID, rawEmail string, role user.Role, plain string) *user.User {
	t.Helper()
	hash, err := password.Hash(plain, testPasswordOpts())
	require.NoError(t, err)
	u := user.New("Test", "User", mustEmail(t, rawEmail), orgID, role, user.WithPasswordHash(hash))
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}
