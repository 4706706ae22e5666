package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fieldops/sopdesk/modules/core/domain/aggregates/user"
	"github.com/fieldops/sopdesk/modules/sop/domain/aggregates/sop"
	"github.com/fieldops/sopdesk/modules/sop/domain/entities/favourite"
	"github.com/fieldops/sopdesk/modules/sop/domain/entities/ppe"
	"github.com/fieldops/sopdesk/pkg/composables"
	"github.com/fieldops/sopdesk/pkg/eventbus"
	"github.com/fieldops/sopdesk/pkg/serrors"
)

var (
	ErrReferenceExists = serrors.Conflict("REFERENCE_EXISTS", "an sop with this reference already exists")
	ErrUnknownPpe      = serrors.Validation("UNKNOWN_PPE", "one or more ppe ids do not exist")
)

type StepInput struct {
	ID       *uuid.UUID
	Position int
	Title    string
	Text     string
	ImageRef string
	PpeIDs   []uuid.UUID
}

type HazardInput struct {
	ID             *uuid.UUID
	Name           string
	ControlMeasure string
	RiskLevel      string
}

type CreateSopCommand struct {
	Reference     string
	DepartmentID  *uuid.UUID
	Title         string
	Description   string
	IsAiGenerated bool
	Steps         []StepInput
	Hazards       []HazardInput
}

type UpdateVersionCommand struct {
	SopID       uuid.UUID
	VersionID   uuid.UUID
	Title       string
	Description string
	Steps       []StepInput
	Hazards     []HazardInput
}

// ListItem pairs an aggregate with the caller's favourite flag.
type ListItem struct {
	Sop       *sop.Sop
	Favourite bool
}

type SopService struct {
	sops       sop.Repository
	ppes       ppe.Repository
	favourites favourite.Repository
	users      user.Repository
	publisher  eventbus.EventBus
}

func NewSopService(
	sops sop.Repository,
	ppes ppe.Repository,
	favourites favourite.Repository,
	users user.Repository,
	publisher eventbus.EventBus,
) *SopService {
	return &SopService{
		sops:       sops,
		ppes:       ppes,
		favourites: favourites,
		users:      users,
		publisher:  publisher,
	}
}

func (s *SopService) buildSteps(versionID, tenantID uuid.UUID, inputs []StepInput) []*sop.Step {
	steps := make([]*sop.Step, 0, len(inputs))
	for _, in := range inputs {
		var opts []sop.StepOption
		if in.ID != nil {
			opts = append(opts, sop.WithStepID(*in.ID))
		}
		steps = append(steps, sop.NewStep(versionID, tenantID, in.Position, in.Title, in.Text, in.ImageRef, in.PpeIDs, opts...))
	}
	return steps
}

func (s *SopService) buildHazards(versionID, tenantID uuid.UUID, inputs []HazardInput) ([]*sop.Hazard, error) {
	hazards := make([]*sop.Hazard, 0, len(inputs))
	for _, in := range inputs {
		risk, err := sop.NewRiskLevel(in.RiskLevel)
		if err != nil {
			return nil, err
		}
		var opts []sop.HazardOption
		if in.ID != nil {
			opts = append(opts, sop.WithHazardID(*in.ID))
		}
		hazards = append(hazards, sop.NewHazard(versionID, tenantID, in.Name, in.ControlMeasure, risk, opts...))
	}
	return hazards, nil
}

func (s *SopService) checkPpe(ctx context.Context, inputs []StepInput) error {
	var ids []uuid.UUID
	for _, in := range inputs {
		ids = append(ids, in.PpeIDs...)
	}
	ok, err := s.ppes.ExistAll(ctx, ids)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownPpe
	}
	return nil
}

// Create persists the sop, its first version and all children as one unit.
func (s *SopService) Create(ctx context.Context, cmd CreateSopCommand) (*sop.Sop, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	authorID, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}

	return composables.InTxResult(ctx, func(txCtx context.Context) (*sop.Sop, error) {
		taken, err := s.sops.ReferenceExists(txCtx, cmd.Reference)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrReferenceExists
		}
		if err := s.checkPpe(txCtx, cmd.Steps); err != nil {
			return nil, err
		}

		aggregate := sop.New(
			cmd.Reference,
			tenantID,
			sop.WithDepartmentID(cmd.DepartmentID),
			sop.WithAiGenerated(cmd.IsAiGenerated),
		)
		version := sop.NewVersion(aggregate.ID(), tenantID, 1, cmd.Title, cmd.Description, &authorID)
		hazards, err := s.buildHazards(version.ID(), tenantID, cmd.Hazards)
		if err != nil {
			return nil, err
		}
		if err := version.SetContent(cmd.Title, cmd.Description, s.buildSteps(version.ID(), tenantID, cmd.Steps), hazards); err != nil {
			return nil, err
		}
		aggregate.AddVersion(version)

		if err := s.sops.Create(txCtx, aggregate); err != nil {
			return nil, err
		}
		return aggregate, nil
	})
}

func (s *SopService) GetByID(ctx context.Context, id uuid.UUID) (*ListItem, error) {
	userID, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	aggregate, err := s.sops.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	favIDs, err := s.favourites.SopIDsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	item := &ListItem{Sop: aggregate}
	for _, favID := range favIDs {
		if favID == id {
			item.Favourite = true
			break
		}
	}
	return item, nil
}

func (s *SopService) List(ctx context.Context, params *sop.FindParams) ([]*ListItem, error) {
	userID, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	sops, err := s.sops.GetAll(ctx, params)
	if err != nil {
		return nil, err
	}
	favIDs, err := s.favourites.SopIDsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	favSet := make(map[uuid.UUID]struct{}, len(favIDs))
	for _, id := range favIDs {
		favSet[id] = struct{}{}
	}

	items := make([]*ListItem, 0, len(sops))
	for _, aggregate := range sops {
		_, fav := favSet[aggregate.ID()]
		items = append(items, &ListItem{Sop: aggregate, Favourite: fav})
	}
	return items, nil
}

// loadOwnedVersion fetches the aggregate and re-checks its organisation
// against the caller before any write derived from a primary key lookup.
func (s *SopService) loadOwnedVersion(ctx context.Context, sopID, versionID uuid.UUID) (*sop.Sop, *sop.Version, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, nil, err
	}
	aggregate, err := s.sops.GetByID(ctx, sopID)
	if err != nil {
		return nil, nil, err
	}
	if aggregate.OrganisationID() != tenantID {
		return nil, nil, serrors.ErrForbidden
	}
	version := aggregate.Version(versionID)
	if version == nil {
		return nil, nil, serrors.NotFound("VERSION_NOT_FOUND", "sop version not found")
	}
	return aggregate, version, nil
}

// UpdateVersion edits a draft or rejected version in place, reconciling
// steps and hazards against the submitted state.
func (s *SopService) UpdateVersion(ctx context.Context, cmd UpdateVersionCommand) (*sop.Version, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	return composables.InTxResult(ctx, func(txCtx context.Context) (*sop.Version, error) {
		_, version, err := s.loadOwnedVersion(txCtx, cmd.SopID, cmd.VersionID)
		if err != nil {
			return nil, err
		}
		if err := s.checkPpe(txCtx, cmd.Steps); err != nil {
			return nil, err
		}
		hazards, err := s.buildHazards(version.ID(), tenantID, cmd.Hazards)
		if err != nil {
			return nil, err
		}
		if err := version.SetContent(cmd.Title, cmd.Description, s.buildSteps(version.ID(), tenantID, cmd.Steps), hazards); err != nil {
			return nil, err
		}
		if err := s.sops.UpdateVersion(txCtx, version); err != nil {
			return nil, err
		}
		return version, nil
	})
}

// RequestApproval moves a draft to review and, once committed, notifies the
// tenant's administrators.
func (s *SopService) RequestApproval(ctx context.Context, sopID, versionID uuid.UUID) (*sop.Version, error) {
	var (
		version     *sop.Version
		reference   string
		authorName  string
		adminEmails []string
	)
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		aggregate, v, err := s.loadOwnedVersion(txCtx, sopID, versionID)
		if err != nil {
			return err
		}
		if err := v.Submit(time.Now()); err != nil {
			return err
		}
		if err := s.sops.UpdateVersionStatus(txCtx, v); err != nil {
			return err
		}

		version = v
		reference = aggregate.Reference()
		if v.AuthorID() != nil {
			// Recipient data is best effort; an unresolved author must not
			// fail the submission.
			author, err := s.users.GetByID(txCtx, *v.AuthorID())
			if err != nil {
				composables.UseLogger(txCtx).WithError(err).Warn("could not resolve author for submit notification")
			} else {
				authorName = author.FullName()
			}
		}
		all, err := s.users.GetAll(txCtx)
		if err != nil {
			return err
		}
		for _, u := range all {
			if u.Role() == user.RoleAdmin {
				adminEmails = append(adminEmails, u.Email().Value())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(sop.VersionSubmittedEvent{
		Result:      version,
		Reference:   reference,
		AuthorName:  authorName,
		AdminEmails: adminEmails,
	})
	return version, nil
}

func (s *SopService) decide(ctx context.Context, sopID, versionID uuid.UUID, approve bool) (*sop.Version, error) {
	if err := composables.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	approverID, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}

	var (
		version      *sop.Version
		reference    string
		approverName string
		authorEmail  string
	)
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		aggregate, v, err := s.loadOwnedVersion(txCtx, sopID, versionID)
		if err != nil {
			return err
		}
		if approve {
			err = v.Approve(approverID, time.Now())
		} else {
			err = v.Reject()
		}
		if err != nil {
			return err
		}
		if err := s.sops.UpdateVersionStatus(txCtx, v); err != nil {
			return err
		}

		version = v
		reference = aggregate.Reference()
		approver, err := s.users.GetByID(txCtx, approverID)
		if err != nil {
			composables.UseLogger(txCtx).WithError(err).Warn("could not resolve approver for decision notification")
		} else {
			approverName = approver.FullName()
		}
		if v.AuthorID() != nil {
			author, err := s.users.GetByID(txCtx, *v.AuthorID())
			if err != nil {
				composables.UseLogger(txCtx).WithError(err).Warn("could not resolve author for decision notification")
			} else {
				authorEmail = author.Email().Value()
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if approve {
		s.publisher.Publish(sop.VersionApprovedEvent{
			Result:       version,
			Reference:    reference,
			ApproverName: approverName,
			AuthorEmail:  authorEmail,
		})
	} else {
		s.publisher.Publish(sop.VersionRejectedEvent{
			Result:       version,
			Reference:    reference,
			ApproverName: approverName,
			AuthorEmail:  authorEmail,
		})
	}
	return version, nil
}

func (s *SopService) Approve(ctx context.Context, sopID, versionID uuid.UUID) (*sop.Version, error) {
	return s.decide(ctx, sopID, versionID, true)
}

func (s *SopService) Reject(ctx context.Context, sopID, versionID uuid.UUID) (*sop.Version, error) {
	return s.decide(ctx, sopID, versionID, false)
}

// NewVersionFromApproved copies the latest approved version forward as a
// fresh draft numbered n+1. Child rows get new identities.
func (s *SopService) NewVersionFromApproved(ctx context.Context, sopID uuid.UUID) (*sop.Version, error) {
	authorID, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*sop.Version, error) {
		aggregate, err := s.sops.GetByID(txCtx, sopID)
		if err != nil {
			return nil, err
		}
		latest := aggregate.LatestVersion()
		if latest == nil {
			return nil, sop.ErrNotApproved
		}
		next, err := latest.NextVersion(authorID)
		if err != nil {
			return nil, err
		}
		if err := s.sops.CreateVersion(txCtx, next); err != nil {
			return nil, err
		}
		return next, nil
	})
}

func (s *SopService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := composables.RequireAdmin(ctx); err != nil {
		return err
	}
	return composables.InTx(ctx, func(txCtx context.Context) error {
		if err := s.favourites.RemoveAllForSop(txCtx, id); err != nil {
			return err
		}
		return s.sops.Delete(txCtx, id)
	})
}

// RemoveUserReferences is the sop module's share of the user deletion
// cascade: drop favourites and null author/approver columns, keeping the
// version rows.
func (s *SopService) RemoveUserReferences(ctx context.Context, userID uuid.UUID) error {
	if err := s.favourites.RemoveAllForUser(ctx, userID); err != nil {
		return err
	}
	return s.sops.ClearUserReferences(ctx, userID)
}
