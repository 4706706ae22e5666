package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fieldops/sopdesk/modules/core/domain/aggregates/user"
	"github.com/fieldops/sopdesk/modules/core/domain/entities/invitation"
	"github.com/fieldops/sopdesk/modules/core/domain/entities/organisation"
	"github.com/fieldops/sopdesk/modules/core/domain/value_objects/internet"
	"github.com/fieldops/sopdesk/modules/core/domain/value_objects/password"
	"github.com/fieldops/sopdesk/pkg/composables"
	"github.com/fieldops/sopdesk/pkg/configuration"
	"github.com/fieldops/sopdesk/pkg/eventbus"
	"github.com/fieldops/sopdesk/pkg/tokens"
)

type RegisterInviteCommand struct {
	Token    string
	Forename string
	Surname  string
	Password string
}

type InvitationService struct {
	invitations   invitation.Repository
	users         user.Repository
	organisations organisation.Repository
	issuer        *tokens.Issuer
	publisher     eventbus.EventBus
	passwordOpts  *configuration.PasswordOptions
	ttl           time.Duration
}

func NewInvitationService(
	invitations invitation.Repository,
	users user.Repository,
	organisations organisation.Repository,
	issuer *tokens.Issuer,
	publisher eventbus.EventBus,
	passwordOpts *configuration.PasswordOptions,
	ttl time.Duration,
) *InvitationService {
	return &InvitationService{
		invitations:   invitations,
		users:         users,
		organisations: organisations,
		issuer:        issuer,
		publisher:     publisher,
		passwordOpts:  passwordOpts,
		ttl:           ttl,
	}
}

// Invite creates a pending invitation for the caller's organisation. The
// invite email goes out only after the row is committed.
func (s *InvitationService) Invite(ctx context.Context, rawEmail, rawRole string) (*invitation.Invitation, error) {
	if err := composables.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	email, err := internet.NewEmail(rawEmail)
	if err != nil {
		return nil, err
	}
	role, err := user.NewRole(rawRole)
	if err != nil {
		return nil, err
	}

	callerID, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}

	token, err := s.issuer.IssueInvitation(email.Value(), string(role), tenantID)
	if err != nil {
		return nil, err
	}
	inv := invitation.New(email, role, tenantID, token, time.Now().Add(s.ttl))

	var orgName, inviterName string
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		exists, err := s.users.EmailExistsGlobal(txCtx, email.Value())
		if err != nil {
			return err
		}
		if exists {
			return ErrEmailExists
		}
		org, err := s.organisations.GetByID(txCtx, tenantID)
		if err != nil {
			return err
		}
		inviter, err := s.users.GetByID(txCtx, callerID)
		if err != nil {
			return err
		}
		orgName = org.Name()
		inviterName = inviter.FullName()
		return s.invitations.Create(txCtx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(invitation.CreatedEvent{
		Result:           inv,
		OrganisationName: orgName,
		InviterName:      inviterName,
	})
	return inv, nil
}

// RegisterInvite redeems an invitation token exactly once: the new user row
// and the Accepted transition commit together or not at all.
func (s *InvitationService) RegisterInvite(ctx context.Context, cmd RegisterInviteCommand) (*Session, error) {
	claims, err := s.issuer.ValidateInvitation(cmd.Token)
	if err != nil {
		return nil, err
	}
	if !password.Validate(cmd.Password, s.passwordOpts) {
		return nil, password.ErrWeakPassword
	}
	email, err := internet.NewEmail(claims.Email)
	if err != nil {
		return nil, err
	}
	role, err := user.NewRole(claims.Role)
	if err != nil {
		return nil, err
	}

	var created *user.User
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		inv, err := s.invitations.GetByTokenGlobal(txCtx, cmd.Token)
		if err != nil {
			return err
		}
		if err := inv.Accept(time.Now()); err != nil {
			return err
		}
		exists, err := s.users.EmailExistsGlobal(txCtx, email.Value())
		if err != nil {
			return err
		}
		if exists {
			return ErrEmailExists
		}
		hash, err := password.Hash(cmd.Password, s.passwordOpts)
		if err != nil {
			return err
		}
		created = user.New(
			cmd.Forename,
			cmd.Surname,
			email,
			inv.OrganisationID(),
			role,
			user.WithPasswordHash(hash),
		)
		if err := s.users.Create(txCtx, created); err != nil {
			return err
		}
		return s.invitations.Update(txCtx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(user.CreatedEvent{Result: created})

	token, err := s.issuer.IssueAccess(
		created.ID(),
		created.OrganisationID(),
		created.Email().Value(),
		string(created.Role()),
		created.Forename(),
		created.Surname(),
	)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: created}, nil
}

func (s *InvitationService) Revoke(ctx context.Context, id uuid.UUID) error {
	if err := composables.RequireAdmin(ctx); err != nil {
		return err
	}
	var revoked *invitation.Invitation
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		inv, err := s.invitations.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := inv.Revoke(); err != nil {
			return err
		}
		revoked = inv
		return s.invitations.Update(txCtx, inv)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish(invitation.RevokedEvent{Result: revoked})
	return nil
}

func (s *InvitationService) GetAll(ctx context.Context) ([]*invitation.Invitation, error) {
	if err := composables.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.invitations.GetAll(ctx)
}
