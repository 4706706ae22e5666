package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fieldops/sopdesk/modules/core/presentation/controllers/dtos"
	"github.com/fieldops/sopdesk/modules/core/services"
	"github.com/fieldops/sopdesk/pkg/application"
	"github.com/fieldops/sopdesk/pkg/httpapi"
	"github.com/fieldops/sopdesk/pkg/middleware"
)

type AuthController struct {
	app         application.Application
	authService *services.AuthService
	invitations *services.InvitationService
}

func NewAuthController(app application.Application) application.Controller {
	return &AuthController{
		app:         app,
		authService: app.Service(services.AuthService{}).(*services.AuthService),
		invitations: app.Service(services.InvitationService{}).(*services.InvitationService),
	}
}

func (c *AuthController) Key() string {
	return "/auth"
}

func (c *AuthController) Register(r *mux.Router) {
	router := r.PathPrefix("/auth").Subrouter()
	router.HandleFunc("/login", c.login).Methods(http.MethodPost)
	router.HandleFunc("/signuporganisation", c.signupOrganisation).Methods(http.MethodPost)
	router.HandleFunc("/registerinvite", c.registerInvite).Methods(http.MethodPost)

	authed := r.PathPrefix("/auth").Subrouter()
	authed.Use(middleware.RequireAuthenticated())
	authed.HandleFunc("/inviteuser", c.inviteUser).Methods(http.MethodPost)
	authed.HandleFunc("/invitations", c.listInvitations).Methods(http.MethodGet)
	authed.HandleFunc("/invitations/{id}", c.revokeInvitation).Methods(http.MethodDelete)
	authed.HandleFunc("/password", c.changePassword).Methods(http.MethodPut)
}

func (c *AuthController) login(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, err)
		return
	}
	session, err := c.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.Ok(w, dtos.NewSessionResponse(session), "logged in")
}

func (c *AuthController) signupOrganisation(w http.ResponseWriter, r *http.Request) {
	var req dtos.SignupOrganisationRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, err)
		return
	}
	session, err := c.authService.SignupOrganisation(r.Context(), services.SignupOrganisationCommand{
		OrganisationName: req.OrganisationName,
		Forename:         req.Forename,
		Surname:          req.Surname,
		Email:            req.Email,
		Password:         req.Password,
	})
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.Created(w, dtos.NewSessionResponse(session), "organisation created")
}

func (c *AuthController) registerInvite(w http.ResponseWriter, r *http.Request) {
	var req dtos.RegisterInviteRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, err)
		return
	}
	session, err := c.invitations.RegisterInvite(r.Context(), services.RegisterInviteCommand{
		Token:    req.Token,
		Forename: req.Forename,
		Surname:  req.Surname,
		Password: req.Password,
	})
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.Created(w, dtos.NewSessionResponse(session), "account created")
}

func (c *AuthController) inviteUser(w http.ResponseWriter, r *http.Request) {
	var req dtos.InviteUserRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, err)
		return
	}
	inv, err := c.invitations.Invite(r.Context(), req.Email, req.Role)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.Created(w, dtos.NewInvitationResponse(inv), "invitation sent")
}

func (c *AuthController) listInvitations(w http.ResponseWriter, r *http.Request) {
	all, err := c.invitations.GetAll(r.Context())
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	out := make([]dtos.InvitationResponse, 0, len(all))
	for _, inv := range all {
		out = append(out, dtos.NewInvitationResponse(inv))
	}
	httpapi.Ok(w, out, "")
}

func (c *AuthController) revokeInvitation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	if err := c.invitations.Revoke(r.Context(), id); err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.Ok(w, nil, "invitation revoked")
}

func (c *AuthController) changePassword(w http.ResponseWriter, r *http.Request) {
	var req dtos.ChangePasswordRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, err)
		return
	}
	if err := c.authService.ChangePassword(r.Context(), req.OldPassword, req.NewPassword); err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.Ok(w, nil, "password changed")
}
