package services

import (
	"context"

	"github.com/fieldops/sopdesk/modules/core/domain/aggregates/user"
	"github.com/fieldops/sopdesk/modules/core/domain/entities/organisation"
	"github.com/fieldops/sopdesk/modules/core/domain/value_objects/internet"
	"github.com/fieldops/sopdesk/modules/core/domain/value_objects/password"
	"github.com/fieldops/sopdesk/pkg/composables"
	"github.com/fieldops/sopdesk/pkg/configuration"
	"github.com/fieldops/sopdesk/pkg/eventbus"
	"github.com/fieldops/sopdesk/pkg/serrors"
	"github.com/fieldops/sopdesk/pkg/tokens"
)

var (
	ErrInvalidCredentials = serrors.Unauthorized("INVALID_CREDENTIALS", "invalid email or password")
	ErrOrganisationExists = serrors.Conflict("ORGANISATION_EXISTS", "an organisation with this name already exists")
	ErrEmailExists        = serrors.Conflict("EMAIL_EXISTS", "a user with this email already exists")
	ErrWrongOldPassword   = serrors.Validation("WRONG_OLD_PASSWORD", "old password is incorrect")
)

type SignupOrganisationCommand struct {
	OrganisationName string
	Forename         string
	Surname          string
	Email            string
	Password         string
}

// Session is what a successful login or signup hands back to the boundary.
type Session struct {
	Token string
	User  *user.User
}

type AuthService struct {
	users         user.Repository
	organisations organisation.Repository
	issuer        *tokens.Issuer
	publisher     eventbus.EventBus
	passwordOpts  *configuration.PasswordOptions
}

func NewAuthService(
	users user.Repository,
	organisations organisation.Repository,
	issuer *tokens.Issuer,
	publisher eventbus.EventBus,
	passwordOpts *configuration.PasswordOptions,
) *AuthService {
	return &AuthService{
		users:         users,
		organisations: organisations,
		issuer:        issuer,
		publisher:     publisher,
		passwordOpts:  passwordOpts,
	}
}

func (s *AuthService) issueSession(u *user.User) (*Session, error) {
	token, err := s.issuer.IssueAccess(
		u.ID(),
		u.OrganisationID(),
		u.Email().Value(),
		string(u.Role()),
		u.Forename(),
		u.Surname(),
	)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: u}, nil
}

// Login never reveals whether the email or the password was wrong.
func (s *AuthService) Login(ctx context.Context, rawEmail, rawPassword string) (*Session, error) {
	email, err := internet.NewEmail(rawEmail)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	u, err := s.users.GetByEmailGlobal(ctx, email.Value())
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !password.Compare(u.PasswordHash(), rawPassword) {
		return nil, ErrInvalidCredentials
	}
	return s.issueSession(u)
}

// SignupOrganisation provisions a new tenant and its first admin in one
// transaction. Runs pre-authentication; the uniqueness checks are the named
// global bypasses.
func (s *AuthService) SignupOrganisation(ctx context.Context, cmd SignupOrganisationCommand) (*Session, error) {
	email, err := internet.NewEmail(cmd.Email)
	if err != nil {
		return nil, err
	}
	if !password.Validate(cmd.Password, s.passwordOpts) {
		return nil, password.ErrWeakPassword
	}

	var created *user.User
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		taken, err := s.organisations.ExistsByName(txCtx, cmd.OrganisationName)
		if err != nil {
			return err
		}
		if taken {
			return ErrOrganisationExists
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
		org := organisation.New(cmd.OrganisationName)
		if err := s.organisations.Create(txCtx, org); err != nil {
			return err
		}
		created = user.New(
			cmd.Forename,
			cmd.Surname,
			email,
			org.ID(),
			user.RoleAdmin,
			user.WithPasswordHash(hash),
		)
		return s.users.Create(txCtx, created)
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(user.CreatedEvent{Result: created})
	return s.issueSession(created)
}

// ChangePassword requires the caller's current password before accepting a
// new one.
func (s *AuthService) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	userID, err := composables.UseUserID(ctx)
	if err != nil {
		return err
	}
	if !password.Validate(newPassword, s.passwordOpts) {
		return password.ErrWeakPassword
	}
	return composables.InTx(ctx, func(txCtx context.Context) error {
		u, err := s.users.GetByID(txCtx, userID)
		if err != nil {
			return err
		}
		if !password.Compare(u.PasswordHash(), oldPassword) {
			return ErrWrongOldPassword
		}
		hash, err := password.Hash(newPassword, s.passwordOpts)
		if err != nil {
			return err
		}
		u.SetPasswordHash(hash)
		return s.users.Update(txCtx, u)
	})
}
