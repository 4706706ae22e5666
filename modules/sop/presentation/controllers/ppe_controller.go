package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fieldops/sopdesk/modules/sop/presentation/controllers/dtos"
	"github.com/fieldops/sopdesk/modules/sop/services"
	"github.com/fieldops/sopdesk/pkg/application"
	"github.com/fieldops/sopdesk/pkg/httpapi"
	"github.com/fieldops/sopdesk/pkg/middleware"
)

type PpeController struct {
	app application.Application
	ppe *services.PpeService
}

func NewPpeController(app application.Application) application.Controller {
	return &PpeController{
		app: app,
		ppe: app.Service(services.PpeService{}).(*services.PpeService),
	}
}

func (c *PpeController) Key() string {
	return "/ppe"
}

func (c *PpeController) Register(r *mux.Router) {
	router := r.PathPrefix("/ppe").Subrouter()
	router.Use(middleware.RequireAuthenticated())
	router.HandleFunc("", c.list).Methods(http.MethodGet)
}

func (c *PpeController) list(w http.ResponseWriter, r *http.Request) {
	items, err := c.ppe.GetAll(r.Context())
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	out := make([]dtos.PpeResponse, 0, len(items))
	for _, p := range items {
		out = append(out, dtos.NewPpeResponse(p))
	}
	httpapi.Ok(w, out, "")
}
