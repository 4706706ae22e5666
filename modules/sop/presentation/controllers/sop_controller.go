package controllers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fieldops/sopdesk/modules/sop/domain/aggregates/sop"
	"github.com/fieldops/sopdesk/modules/sop/presentation/controllers/dtos"
	"github.com/fieldops/sopdesk/modules/sop/services"
	"github.com/fieldops/sopdesk/pkg/application"
	"github.com/fieldops/sopdesk/pkg/configuration"
	"github.com/fieldops/sopdesk/pkg/httpapi"
	"github.com/fieldops/sopdesk/pkg/middleware"
	"github.com/fieldops/sopdesk/pkg/serrors"
)

var errInvalidID = serrors.Validation("INVALID_ID", "id must be a valid uuid")

func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[key])
	if err != nil {
		return uuid.Nil, errInvalidID
	}
	return id, nil
}

type SopController struct {
	app        application.Application
	sops       *services.SopService
	favourites *services.FavouriteService
}

func NewSopController(app application.Application) application.Controller {
	return &SopController{
		app:        app,
		sops:       app.Service(services.SopService{}).(*services.SopService),
		favourites: app.Service(services.FavouriteService{}).(*services.FavouriteService),
	}
}

func (c *SopController) Key() string {
	return "/sop"
}

func (c *SopController) Register(r *mux.Router) {
	router := r.PathPrefix("/sop").Subrouter()
	router.Use(middleware.RequireAuthenticated())
	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.delete).Methods(http.MethodDelete)
	router.HandleFunc("/{id}/newversion", c.newVersion).Methods(http.MethodPost)
	router.HandleFunc("/{id}/version/{versionId}", c.updateVersion).Methods(http.MethodPut)
	router.HandleFunc("/{id}/version/{versionId}/requestapproval", c.requestApproval).Methods(http.MethodPost)
	router.HandleFunc("/{id}/version/{versionId}/approve", c.approve).Methods(http.MethodPost)
	router.HandleFunc("/{id}/version/{versionId}/reject", c.reject).Methods(http.MethodPost)
	router.HandleFunc("/{id}/favourite", c.addFavourite).Methods(http.MethodPost)
	router.HandleFunc("/{id}/favourite", c.removeFavourite).Methods(http.MethodDelete)
}

func (c *SopController) list(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	params := &sop.FindParams{
		Search: r.URL.Query().Get("search"),
		Limit:  conf.PageSize,
	}
	if raw := r.URL.Query().Get("departmentId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpapi.Error(w, errInvalidID)
			return
		}
		params.DepartmentID = &id
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			params.Limit = min(n, conf.MaxPageSize)
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			params.Offset = n
		}
	}
	items, err := c.sops.List(r.Context(), params)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	out := make([]dtos.SopResponse, 0, len(items))
	for _, item := range items {
		out = append(out, dtos.NewSopResponse(item))
	}
	httpapi.Ok(w, out, "")
}

func (c *SopController) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	item, err := c.sops.GetByID(r.Context(), id)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.Ok(w, dtos.NewSopResponse(item), "")
}

func (c *SopController) create(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateSopRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, err)
		return
	}
	cmd, err := req.ToCommand()
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	created, err := c.sops.Create(r.Context(), cmd)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.Created(w, dtos.NewSopResponse(&services.ListItem{Sop: created}), "sop created")
}

func (c *SopController) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	if err := c.sops.Delete(r.Context(), id); err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.Ok(w, nil, "sop deleted")
}

func (c *SopController) updateVersion(w http.ResponseWriter, r *http.Request) {
	sopID, err := pathUUID(r, "id")
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	versionID, err := pathUUID(r, "versionId")
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	var req dtos.UpdateVersionRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, err)
		return
	}
	cmd, err := req.ToCommand(sopID, versionID)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	version, err := c.sops.UpdateVersion(r.Context(), cmd)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.Ok(w, dtos.NewVersionResponse(version), "version updated")
}

func (c *SopController) workflow(w http.ResponseWriter, r *http.Request, fn func(sopID, versionID uuid.UUID) (*sop.Version, error), message string) {
	sopID, err := pathUUID(r, "id")
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	versionID, err := pathUUID(r, "versionId")
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	version, err := fn(sopID, versionID)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.Ok(w, dtos.NewVersionResponse(version), message)
}

func (c *SopController) requestApproval(w http.ResponseWriter, r *http.Request) {
	c.workflow(w, r, func(sopID, versionID uuid.UUID) (*sop.Version, error) {
		return c.sops.RequestApproval(r.Context(), sopID, versionID)
	}, "approval requested")
}

func (c *SopController) approve(w http.ResponseWriter, r *http.Request) {
	c.workflow(w, r, func(sopID, versionID uuid.UUID) (*sop.Version, error) {
		return c.sops.Approve(r.Context(), sopID, versionID)
	}, "version approved")
}

func (c *SopController) reject(w http.ResponseWriter, r *http.Request) {
	c.workflow(w, r, func(sopID, versionID uuid.UUID) (*sop.Version, error) {
		return c.sops.Reject(r.Context(), sopID, versionID)
	}, "version rejected")
}

func (c *SopController) newVersion(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	version, err := c.sops.NewVersionFromApproved(r.Context(), id)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.Created(w, dtos.NewVersionResponse(version), "new draft version created")
}

func (c *SopController) addFavourite(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	if err := c.favourites.Add(r.Context(), id); err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.Ok(w, nil, "favourite added")
}

func (c *SopController) removeFavourite(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	if err := c.favourites.Remove(r.Context(), id); err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.Ok(w, nil, "favourite removed")
}
