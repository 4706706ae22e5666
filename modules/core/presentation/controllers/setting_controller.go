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

type SettingController struct {
	app      application.Application
	settings *services.SettingService
}

func NewSettingController(app application.Application) application.Controller {
	return &SettingController{
		app:      app,
		settings: app.Service(services.SettingService{}).(*services.SettingService),
	}
}

func (c *SettingController) Key() string {
	return "/setting"
}

func (c *SettingController) Register(r *mux.Router) {
	router := r.PathPrefix("/setting").Subrouter()
	router.Use(middleware.RequireAuthenticated())
	router.HandleFunc("/{key}", c.get).Methods(http.MethodGet)
}

func (c *SettingController) get(w http.ResponseWriter, r *http.Request) {
	s, err := c.settings.Get(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.Ok(w, dtos.SettingResponse{Key: s.Key, Value: s.Value}, "")
}
