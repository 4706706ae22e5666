package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fieldops/sopdesk/modules/core/presentation/controllers/dtos"
	"github.com/fieldops/sopdesk/modules/core/services"
	"github.com/fieldops/sopdesk/pkg/application"
	"github.com/fieldops/sopdesk/pkg/httpapi"
	"github.com/fieldops/sopdesk/pkg/middleware"
	"github.com/fieldops/sopdesk/pkg/serrors"
)

var errInvalidID = serrors.Validation("INVALID_ID", "id must be a valid uuid")

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, errInvalidID
	}
	return id, nil
}

type UserController struct {
	app         application.Application
	userService *services.UserService
}

func NewUserController(app application.Application) application.Controller {
	return &UserController{
		app:         app,
		userService: app.Service(services.UserService{}).(*services.UserService),
	}
}

func (c *UserController) Key() string {
	return "/user"
}

func (c *UserController) Register(r *mux.Router) {
	router := r.PathPrefix("/user").Subrouter()
	router.Use(middleware.RequireAuthenticated())
	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.update).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.delete).Methods(http.MethodDelete)
}

func (c *UserController) list(w http.ResponseWriter, r *http.Request) {
	users, err := c.userService.GetAll(r.Context())
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	out := make([]dtos.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dtos.NewUserResponse(u))
	}
	httpapi.Ok(w, out, "")
}

func (c *UserController) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	u, err := c.userService.GetByID(r.Context(), id)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.Ok(w, dtos.NewUserResponse(u), "")
}

func (c *UserController) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	var req dtos.UpdateUserRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, err)
		return
	}
	u, err := c.userService.Update(r.Context(), id, req.Forename, req.Surname, req.Role)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.Ok(w, dtos.NewUserResponse(u), "user updated")
}

func (c *UserController) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	if err := c.userService.Delete(r.Context(), id); err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.Ok(w, nil, "user deleted")
}
