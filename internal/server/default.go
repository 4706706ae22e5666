package server

import (
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/fieldops/sopdesk/pkg/application"
	"github.com/fieldops/sopdesk/pkg/configuration"
	"github.com/fieldops/sopdesk/pkg/httpapi"
	"github.com/fieldops/sopdesk/pkg/metrics"
	"github.com/fieldops/sopdesk/pkg/middleware"
	"github.com/fieldops/sopdesk/pkg/server"
	"github.com/fieldops/sopdesk/pkg/serrors"
	"github.com/fieldops/sopdesk/pkg/tokens"

	"net/http"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	Pool          *pgxpool.Pool
}

// Default assembles the standard middleware chain. Identity is resolved once
// per request by Authorize; everything after it trusts the context.
func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application
	cfg := options.Configuration

	issuer := tokens.NewIssuer(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.AccessTTL,
		cfg.JWT.InvitationTTL,
	)

	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger),
		middleware.WithPool(options.Pool),
		middleware.Cors(cfg.Origin),
		middleware.RequestParams(),
		middleware.Authorize(issuer),
	}
	app.RegisterMiddleware(middlewares...)

	if cfg.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(cfg.Prometheus.Path))
	}

	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpapi.Error(w, serrors.NotFound("NOT_FOUND", "route not found"))
	})
	notAllowed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpapi.Error(w, serrors.Validation("METHOD_NOT_ALLOWED", "method not allowed"))
	})
	return server.NewHTTPServer(app, notFound, notAllowed), nil
}
