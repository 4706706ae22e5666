package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fieldops/sopdesk/modules/core/domain/entities/department"
	"github.com/fieldops/sopdesk/modules/core/presentation/controllers/dtos"
	"github.com/fieldops/sopdesk/modules/core/services"
	"github.com/fieldops/sopdesk/pkg/application"
	"github.com/fieldops/sopdesk/pkg/httpapi"
	"github.com/fieldops/sopdesk/pkg/middleware"
)

type DepartmentController struct {
	app         application.Application
	departments *services.DepartmentService
}

func NewDepartmentController(app application.Application) application.Controller {
	return &DepartmentController{
		app:         app,
		departments: app.Service(services.DepartmentService{}).(*services.DepartmentService),
	}
}

func (c *DepartmentController) Key() string {
	return "/department"
}

func (c *DepartmentController) Register(r *mux.Router) {
	router := r.PathPrefix("/department").Subrouter()
	router.Use(middleware.RequireAuthenticated())
	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.update).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.delete).Methods(http.MethodDelete)
}

func toDepartmentResponse(d *department.Department) dtos.DepartmentResponse {
	return dtos.DepartmentResponse{ID: d.ID().String(), Name: d.Name()}
}

func (c *DepartmentController) list(w http.ResponseWriter, r *http.Request) {
	departments, err := c.departments.GetAll(r.Context())
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	out := make([]dtos.DepartmentResponse, 0, len(departments))
	for _, d := range departments {
		out = append(out, toDepartmentResponse(d))
	}
	httpapi.Ok(w, out, "")
}

func (c *DepartmentController) create(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateDepartmentRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, err)
		return
	}
	d, err := c.departments.Create(r.Context(), req.Name)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.Created(w, toDepartmentResponse(d), "department created")
}

func (c *DepartmentController) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	var req dtos.UpdateDepartmentRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, err)
		return
	}
	d, err := c.departments.Rename(r.Context(), id, req.Name)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.Ok(w, toDepartmentResponse(d), "department updated")
}

func (c *DepartmentController) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	if err := c.departments.Delete(r.Context(), id); err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.Ok(w, nil, "department deleted")
}
