package services

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/sopdesk/modules/core/domain/aggregates/user"
	"github.com/fieldops/sopdesk/modules/core/domain/value_objects/internet"
	corepersistence "github.com/fieldops/sopdesk/modules/core/infrastructure/persistence"
	"github.com/fieldops/sopdesk/modules/sop/domain/aggregates/sop"
	"github.com/fieldops/sopdesk/modules/sop/domain/entities/favourite"
	"github.com/fieldops/sopdesk/modules/sop/domain/entities/ppe"
	"github.com/fieldops/sopdesk/modules/sop/infrastructure/persistence"
	"github.com/fieldops/sopdesk/pkg/composables"
	"github.com/fieldops/sopdesk/pkg/eventbus"
	"github.com/fieldops/sopdesk/pkg/itf"
)

// In-memory repositories mirroring the pg implementations, tenant predicate
// included. Aggregates are shared by pointer, so writes through the service
// are visible without an explicit reload.

type memSopRepo struct {
	sops map[uuid.UUID]*sop.Sop
	// user ids passed to ClearUserReferences; the real implementation nulls
	// author/approver columns in SQL.
	cleared []uuid.UUID
}

func newMemSopRepo() *memSopRepo {
	return &memSopRepo{sops: map[uuid.UUID]*sop.Sop{}}
}

func (m *memSopRepo) owned(ctx context.Context, id uuid.UUID) (*sop.Sop, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	s, ok := m.sops[id]
	if !ok || s.OrganisationID() != tenantID {
		return nil, persistence.ErrSopNotFound
	}
	return s, nil
}

func (m *memSopRepo) GetByID(ctx context.Context, id uuid.UUID) (*sop.Sop, error) {
	return m.owned(ctx, id)
}

func (m *memSopRepo) GetAll(ctx context.Context, params *sop.FindParams) ([]*sop.Sop, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	var out []*sop.Sop
	for _, s := range m.sops {
		if s.OrganisationID() != tenantID {
			continue
		}
		if params != nil && params.DepartmentID != nil {
			if s.DepartmentID() == nil || *s.DepartmentID() != *params.DepartmentID {
				continue
			}
		}
		if params != nil && params.Search != "" {
			if !strings.Contains(strings.ToLower(s.Reference()), strings.ToLower(params.Search)) {
				continue
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *memSopRepo) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return false, err
	}
	for _, s := range m.sops {
		if s.OrganisationID() == tenantID && strings.EqualFold(s.Reference(), reference) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memSopRepo) Create(_ context.Context, s *sop.Sop) error {
	m.sops[s.ID()] = s
	return nil
}

func (m *memSopRepo) Update(ctx context.Context, s *sop.Sop) error {
	if _, err := m.owned(ctx, s.ID()); err != nil {
		return err
	}
	m.sops[s.ID()] = s
	return nil
}

func (m *memSopRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := m.owned(ctx, id); err != nil {
		return err
	}
	delete(m.sops, id)
	return nil
}

func (m *memSopRepo) CreateVersion(ctx context.Context, v *sop.Version) error {
	s, err := m.owned(ctx, v.SopID())
	if err != nil {
		return err
	}
	s.AddVersion(v)
	return nil
}

func (m *memSopRepo) UpdateVersion(ctx context.Context, v *sop.Version) error {
	s, err := m.owned(ctx, v.SopID())
	if err != nil {
		return err
	}
	if s.Version(v.ID()) == nil {
		return persistence.ErrSopNotFound
	}
	return nil
}

func (m *memSopRepo) UpdateVersionStatus(ctx context.Context, v *sop.Version) error {
	return m.UpdateVersion(ctx, v)
}

func (m *memSopRepo) ClearUserReferences(_ context.Context, userID uuid.UUID) error {
	m.cleared = append(m.cleared, userID)
	return nil
}

type memPpeRepo struct {
	items []*ppe.Ppe
}

func (m *memPpeRepo) GetAll(_ context.Context) ([]*ppe.Ppe, error) {
	return m.items, nil
}

func (m *memPpeRepo) ExistAll(_ context.Context, ids []uuid.UUID) (bool, error) {
	known := make(map[uuid.UUID]struct{}, len(m.items))
	for _, p := range m.items {
		known[p.ID()] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return false, nil
		}
	}
	return true, nil
}

type memFavouriteRepo struct {
	favourites []*favourite.Favourite
}

func (m *memFavouriteRepo) Add(_ context.Context, f *favourite.Favourite) error {
	for _, existing := range m.favourites {
		if existing.UserID == f.UserID && existing.SopID == f.SopID {
			return nil
		}
	}
	m.favourites = append(m.favourites, f)
	return nil
}

func (m *memFavouriteRepo) Remove(_ context.Context, userID, sopID uuid.UUID) error {
	m.favourites = m.filter(func(f *favourite.Favourite) bool {
		return f.UserID != userID || f.SopID != sopID
	})
	return nil
}

func (m *memFavouriteRepo) SopIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	var out []uuid.UUID
	for _, f := range m.favourites {
		if f.UserID == userID && f.OrganisationID == tenantID {
			out = append(out, f.SopID)
		}
	}
	return out, nil
}

func (m *memFavouriteRepo) RemoveAllForUser(_ context.Context, userID uuid.UUID) error {
	m.favourites = m.filter(func(f *favourite.Favourite) bool { return f.UserID != userID })
	return nil
}

func (m *memFavouriteRepo) RemoveAllForSop(_ context.Context, sopID uuid.UUID) error {
	m.favourites = m.filter(func(f *favourite.Favourite) bool { return f.SopID != sopID })
	return nil
}

func (m *memFavouriteRepo) filter(keep func(*favourite.Favourite) bool) []*favourite.Favourite {
	out := m.favourites[:0]
	for _, f := range m.favourites {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}

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
		return nil, corepersistence.ErrUserNotFound
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
	m.users[u.ID()] = u
	return nil
}

func (m *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.users, id)
	return nil
}

func (m *memUserRepo) GetByEmailGlobal(_ context.Context, email string) (*user.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email().Value(), email) {
			return u, nil
		}
	}
	return nil, corepersistence.ErrUserNotFound
}

func (m *memUserRepo) EmailExistsGlobal(_ context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email().Value(), email) {
			return true, nil
		}
	}
	return false, nil
}

type sopFixture struct {
	svc   *SopService
	sops  *memSopRepo
	ppes  *memPpeRepo
	favs  *memFavouriteRepo
	users *memUserRepo
	bus   eventbus.EventBus
	env   *itf.TestEnvironment
	admin *user.User
	ppe   *ppe.Ppe
}

func newSopFixture(t *testing.T) *sopFixture {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)
	bus := eventbus.NewEventPublisher(log)

	sops := newMemSopRepo()
	ppes := &memPpeRepo{items: []*ppe.Ppe{ppe.New("Safety goggles", "goggles.svg")}}
	favs := &memFavouriteRepo{}
	users := newMemUserRepo()

	orgID := uuid.New()
	email, err := internet.NewEmail("admin@acme.test")
	require.NoError(t, err)
	admin := user.New("Ada", "Stone", email, orgID, user.RoleAdmin)
	require.NoError(t, users.Create(context.Background(), admin))

	env := itf.NewTestContext().
		WithTenantID(orgID).
		WithUserID(admin.ID()).
		WithRole(string(user.RoleAdmin)).
		Build(t)

	return &sopFixture{
		svc:   NewSopService(sops, ppes, favs, users, bus),
		sops:  sops,
		ppes:  ppes,
		favs:  favs,
		users: users,
		bus:   bus,
		env:   env,
		admin: admin,
		ppe:   ppes.items[0],
	}
}

func (f *sopFixture) createSop(t *testing.T, reference string) *sop.Sop {
	t.Helper()
	created, err := f.svc.Create(f.env.Ctx, CreateSopCommand{
		Reference:   reference,
		Title:       "Bandsaw operation",
		Description: "How to operate the bandsaw safely.",
		Steps: []StepInput{
			{Position: 1, Title: "Inspect", Text: "Check the blade.", PpeIDs: []uuid.UUID{f.ppe.ID()}},
			{Position: 2, Title: "Cut", Text: "Feed the stock slowly."},
		},
		Hazards: []HazardInput{
			{Name: "Blade contact", ControlMeasure: "Keep hands clear.", RiskLevel: "high"},
		},
	})
	require.NoError(t, err)
	return created
}
