package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/sopdesk/modules/core/domain/aggregates/user"
	"github.com/fieldops/sopdesk/modules/sop/domain/aggregates/sop"
	"github.com/fieldops/sopdesk/modules/sop/infrastructure/persistence"
	"github.com/fieldops/sopdesk/pkg/itf"
	"github.com/fieldops/sopdesk/pkg/serrors"
)

func TestSopService_Create(t *testing.T) {
	f := newSopFixture(t)

	created := f.createSop(t, "SOP-001")

	version := created.LatestVersion()
	require.NotNil(t, version)
	assert.Equal(t, 1, version.Number())
	assert.Equal(t, sop.StatusDraft, version.Status())
	require.NotNil(t, version.AuthorID())
	assert.Equal(t, f.admin.ID(), *version.AuthorID())
	require.Len(t, version.Steps(), 2)
	assert.Equal(t, []uuid.UUID{f.ppe.ID()}, version.Steps()[0].PpeIDs())
	require.Len(t, version.Hazards(), 1)
	assert.Equal(t, sop.RiskHigh, version.Hazards()[0].RiskLevel())
}

func TestSopService_Create_DuplicateReference(t *testing.T) {
	f := newSopFixture(t)
	f.createSop(t, "SOP-001")

	_, err := f.svc.Create(f.env.Ctx, CreateSopCommand{
		Reference: "sop-001",
		Title:     "Duplicate",
		Steps:     []StepInput{{Position: 1, Title: "Only", Text: "Step."}},
	})
	require.ErrorIs(t, err, ErrReferenceExists)
}

func TestSopService_Create_UnknownPpe(t *testing.T) {
	f := newSopFixture(t)

	_, err := f.svc.Create(f.env.Ctx, CreateSopCommand{
		Reference: "SOP-001",
		Title:     "Bad PPE",
		Steps: []StepInput{
			{Position: 1, Title: "Only", Text: "Step.", PpeIDs: []uuid.UUID{uuid.New()}},
		},
	})
	require.ErrorIs(t, err, ErrUnknownPpe)
	assert.Empty(t, f.sops.sops)
}

func TestSopService_Create_InvalidRisk(t *testing.T) {
	f := newSopFixture(t)

	_, err := f.svc.Create(f.env.Ctx, CreateSopCommand{
		Reference: "SOP-001",
		Title:     "Bad risk",
		Hazards:   []HazardInput{{Name: "Noise", ControlMeasure: "Ear defenders.", RiskLevel: "extreme"}},
	})
	require.ErrorIs(t, err, sop.ErrInvalidRisk)
}

func TestSopService_UpdateVersion(t *testing.T) {
	f := newSopFixture(t)
	created := f.createSop(t, "SOP-001")
	version := created.LatestVersion()
	keptID := version.Steps()[0].ID()

	updated, err := f.svc.UpdateVersion(f.env.Ctx, UpdateVersionCommand{
		SopID:       created.ID(),
		VersionID:   version.ID(),
		Title:       "Bandsaw operation v2",
		Description: "Revised.",
		Steps: []StepInput{
			{ID: &keptID, Position: 1, Title: "Inspect thoroughly", Text: "Check blade and guard."},
			{Position: 2, Title: "Shut down", Text: "Wait for the blade to stop."},
		},
		Hazards: []HazardInput{
			{Name: "Dust", ControlMeasure: "Extraction on.", RiskLevel: "medium"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Bandsaw operation v2", updated.Title())
	require.Len(t, updated.Steps(), 2)
	assert.Equal(t, keptID, updated.Steps()[0].ID(), "submitted id survives the rewrite")
	require.Len(t, updated.Hazards(), 1)
	assert.Equal(t, sop.RiskMedium, updated.Hazards()[0].RiskLevel())
}

func TestSopService_UpdateVersion_NotEditable(t *testing.T) {
	f := newSopFixture(t)
	created := f.createSop(t, "SOP-001")
	version := created.LatestVersion()

	_, err := f.svc.RequestApproval(f.env.Ctx, created.ID(), version.ID())
	require.NoError(t, err)

	_, err = f.svc.UpdateVersion(f.env.Ctx, UpdateVersionCommand{
		SopID:     created.ID(),
		VersionID: version.ID(),
		Title:     "Too late",
	})
	require.ErrorIs(t, err, sop.ErrNotEditable)
}

func TestSopService_ApprovalWorkflow(t *testing.T) {
	f := newSopFixture(t)
	created := f.createSop(t, "SOP-001")
	version := created.LatestVersion()

	var submitted []sop.VersionSubmittedEvent
	var approved []sop.VersionApprovedEvent
	f.bus.Subscribe(func(e sop.VersionSubmittedEvent) { submitted = append(submitted, e) })
	f.bus.Subscribe(func(e sop.VersionApprovedEvent) { approved = append(approved, e) })

	_, err := f.svc.RequestApproval(f.env.Ctx, created.ID(), version.ID())
	require.NoError(t, err)
	assert.Equal(t, sop.StatusInReview, version.Status())
	require.NotNil(t, version.RequestedAt())

	require.Len(t, submitted, 1)
	assert.Equal(t, "SOP-001", submitted[0].Reference)
	assert.Equal(t, f.admin.FullName(), submitted[0].AuthorName)
	assert.Equal(t, []string{f.admin.Email().Value()}, submitted[0].AdminEmails)

	// Submitting again while in review is rejected.
	_, err = f.svc.RequestApproval(f.env.Ctx, created.ID(), version.ID())
	require.ErrorIs(t, err, sop.ErrNotDraft)

	_, err = f.svc.Approve(f.env.Ctx, created.ID(), version.ID())
	require.NoError(t, err)
	assert.Equal(t, sop.StatusApproved, version.Status())
	require.NotNil(t, version.ApproverID())
	assert.Equal(t, f.admin.ID(), *version.ApproverID())
	require.NotNil(t, version.ApprovedAt())

	require.Len(t, approved, 1)
	assert.Equal(t, f.admin.FullName(), approved[0].ApproverName)
	assert.Equal(t, f.admin.Email().Value(), approved[0].AuthorEmail)
}

func TestSopService_RequestApproval_AuthorGone(t *testing.T) {
	f := newSopFixture(t)
	created := f.createSop(t, "SOP-001")
	version := created.LatestVersion()

	logger, hook := logrustest.NewNullLogger()
	env := itf.NewTestContext().
		WithTenantID(f.env.TenantID).
		WithUserID(f.admin.ID()).
		WithRole(string(user.RoleAdmin)).
		WithLogger(logrus.NewEntry(logger)).
		Build(t)

	var submitted []sop.VersionSubmittedEvent
	f.bus.Subscribe(func(e sop.VersionSubmittedEvent) { submitted = append(submitted, e) })

	// The author left the organisation between drafting and submitting.
	require.NoError(t, f.users.Delete(context.Background(), f.admin.ID()))

	_, err := f.svc.RequestApproval(env.Ctx, created.ID(), version.ID())
	require.NoError(t, err)

	require.Len(t, submitted, 1)
	assert.Empty(t, submitted[0].AuthorName, "notification still goes out without the name")
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestSopService_Approve_AdminOnly(t *testing.T) {
	f := newSopFixture(t)
	created := f.createSop(t, "SOP-001")
	version := created.LatestVersion()

	_, err := f.svc.RequestApproval(f.env.Ctx, created.ID(), version.ID())
	require.NoError(t, err)

	_, err = f.svc.Approve(f.env.AsUser(uuid.New(), string(user.RoleUser)), created.ID(), version.ID())
	require.ErrorIs(t, err, serrors.ErrAdminOnly)
	assert.Equal(t, sop.StatusInReview, version.Status())
}

func TestSopService_RejectThenResubmit(t *testing.T) {
	f := newSopFixture(t)
	created := f.createSop(t, "SOP-001")
	version := created.LatestVersion()

	var rejected []sop.VersionRejectedEvent
	f.bus.Subscribe(func(e sop.VersionRejectedEvent) { rejected = append(rejected, e) })

	_, err := f.svc.RequestApproval(f.env.Ctx, created.ID(), version.ID())
	require.NoError(t, err)
	_, err = f.svc.Reject(f.env.Ctx, created.ID(), version.ID())
	require.NoError(t, err)
	assert.Equal(t, sop.StatusRejected, version.Status())
	require.Len(t, rejected, 1)

	// A rejected version is editable again and can go back into review.
	_, err = f.svc.UpdateVersion(f.env.Ctx, UpdateVersionCommand{
		SopID:     created.ID(),
		VersionID: version.ID(),
		Title:     "Addressed feedback",
		Steps:     []StepInput{{Position: 1, Title: "Only", Text: "Step."}},
	})
	require.NoError(t, err)

	_, err = f.svc.RequestApproval(f.env.Ctx, created.ID(), version.ID())
	require.NoError(t, err)
	assert.Equal(t, sop.StatusInReview, version.Status())
}

func TestSopService_NewVersionFromApproved(t *testing.T) {
	f := newSopFixture(t)
	created := f.createSop(t, "SOP-001")
	first := created.LatestVersion()
	firstStepIDs := []uuid.UUID{first.Steps()[0].ID(), first.Steps()[1].ID()}

	_, err := f.svc.NewVersionFromApproved(f.env.Ctx, created.ID())
	require.ErrorIs(t, err, sop.ErrNotApproved)

	_, err = f.svc.RequestApproval(f.env.Ctx, created.ID(), first.ID())
	require.NoError(t, err)
	_, err = f.svc.Approve(f.env.Ctx, created.ID(), first.ID())
	require.NoError(t, err)

	next, err := f.svc.NewVersionFromApproved(f.env.Ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, next.Number())
	assert.Equal(t, sop.StatusDraft, next.Status())
	assert.Equal(t, first.Title(), next.Title())
	require.Len(t, next.Steps(), 2)
	for i, s := range next.Steps() {
		assert.NotEqual(t, firstStepIDs[i], s.ID(), "copied steps carry fresh identities")
		assert.Equal(t, next.ID(), s.VersionID())
	}
	assert.Same(t, next, created.LatestVersion())
}

func TestSopService_TenantIsolation(t *testing.T) {
	f := newSopFixture(t)
	created := f.createSop(t, "SOP-001")

	otherTenant := f.env.AsTenant(uuid.New())
	_, err := f.svc.GetByID(otherTenant, created.ID())
	require.ErrorIs(t, err, persistence.ErrSopNotFound)

	items, err := f.svc.List(otherTenant, &sop.FindParams{})
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = f.svc.UpdateVersion(otherTenant, UpdateVersionCommand{
		SopID:     created.ID(),
		VersionID: created.LatestVersion().ID(),
		Title:     "Hijack",
	})
	require.ErrorIs(t, err, persistence.ErrSopNotFound)
}

func TestSopService_List(t *testing.T) {
	f := newSopFixture(t)
	a := f.createSop(t, "SOP-001")
	f.createSop(t, "SOP-002")

	favSvc := NewFavouriteService(f.favs, f.sops)
	require.NoError(t, favSvc.Add(f.env.Ctx, a.ID()))

	items, err := f.svc.List(f.env.Ctx, &sop.FindParams{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	favByRef := map[string]bool{}
	for _, item := range items {
		favByRef[item.Sop.Reference()] = item.Favourite
	}
	assert.True(t, favByRef["SOP-001"])
	assert.False(t, favByRef["SOP-002"])

	filtered, err := f.svc.List(f.env.Ctx, &sop.FindParams{Search: "002"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "SOP-002", filtered[0].Sop.Reference())
}

func TestSopService_Delete(t *testing.T) {
	f := newSopFixture(t)
	created := f.createSop(t, "SOP-001")

	favSvc := NewFavouriteService(f.favs, f.sops)
	require.NoError(t, favSvc.Add(f.env.Ctx, created.ID()))

	err := f.svc.Delete(f.env.AsUser(uuid.New(), string(user.RoleUser)), created.ID())
	require.ErrorIs(t, err, serrors.ErrAdminOnly)

	require.NoError(t, f.svc.Delete(f.env.Ctx, created.ID()))
	assert.Empty(t, f.sops.sops)
	assert.Empty(t, f.favs.favourites)
}

func TestSopService_RemoveUserReferences(t *testing.T) {
	f := newSopFixture(t)
	created := f.createSop(t, "SOP-001")

	favSvc := NewFavouriteService(f.favs, f.sops)
	require.NoError(t, favSvc.Add(f.env.Ctx, created.ID()))

	require.NoError(t, f.svc.RemoveUserReferences(f.env.Ctx, f.admin.ID()))
	assert.Empty(t, f.favs.favourites)
	assert.Equal(t, []uuid.UUID{f.admin.ID()}, f.sops.cleared)
}
