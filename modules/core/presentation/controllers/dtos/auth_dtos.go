package dtos

import (
	"time"

	"github.com/fieldops/sopdesk/modules/core/domain/aggregates/user"
	"github.com/fieldops/sopdesk/modules/core/domain/entities/invitation"
	"github.com/fieldops/sopdesk/modules/core/services"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignupOrganisationRequest struct {
	OrganisationName string `json:"organisationName" validate:"required,min=2,max=100"`
	Forename         string `json:"forename" validate:"required,max=100"`
	Surname          string `json:"surname" validate:"required,max=100"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required"`
}

type RegisterInviteRequest struct {
	Token    string `json:"token" validate:"required"`
	Forename string `json:"forename" validate:"required,max=100"`
	Surname  string `json:"surname" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
}

type InviteUserRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=admin user"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type UserResponse struct {
	ID       string `json:"id"`
	Forename string `json:"forename"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type SessionResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type InvitationResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:       u.ID().String(),
		Forename: u.Forename(),
		Surname:  u.Surname(),
		Email:    u.Email().Value(),
		Role:     string(u.Role()),
	}
}

func NewSessionResponse(s *services.Session) SessionResponse {
	return SessionResponse{
		Token: s.Token,
		User:  NewUserResponse(s.User),
	}
}

func NewInvitationResponse(inv *invitation.Invitation) InvitationResponse {
	return InvitationResponse{
		ID:        inv.ID().String(),
		Email:     inv.Email().Value(),
		Role:      string(inv.Role()),
		Status:    string(inv.Status()),
		ExpiresAt: inv.ExpiresAt(),
		CreatedAt: inv.CreatedAt(),
	}
}
