package sop

import (
	corepersistence "github.com/fieldops/sopdesk/modules/core/infrastructure/persistence"
	coreservices "github.com/fieldops/sopdesk/modules/core/services"
	sopdomain "github.com/fieldops/sopdesk/modules/sop/domain/aggregates/sop"
	"github.com/fieldops/sopdesk/modules/sop/infrastructure/persistence"
	"github.com/fieldops/sopdesk/modules/sop/presentation/controllers"
	"github.com/fieldops/sopdesk/modules/sop/services"
	"github.com/fieldops/sopdesk/pkg/application"
	"github.com/fieldops/sopdesk/pkg/configuration"
	"github.com/fieldops/sopdesk/pkg/mailer"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Name() string {
	return "sop"
}

func (m *Module) Register(app application.Application) error {
	cfg := configuration.Use()

	sopRepo := persistence.NewSopRepository()
	ppeRepo := persistence.NewPpeRepository()
	favouriteRepo := persistence.NewFavouriteRepository()
	userRepo := corepersistence.NewUserRepository()

	sopService := services.NewSopService(sopRepo, ppeRepo, favouriteRepo, userRepo, app.EventPublisher())
	app.RegisterServices(
		sopService,
		services.NewFavouriteService(favouriteRepo, sopRepo),
		services.NewPpeService(ppeRepo),
	)

	app.RegisterControllers(
		controllers.NewSopController(app),
		controllers.NewPpeController(app),
	)

	// Deleting a user must drop their favourites and null their authorship
	// inside the same transaction as the user row.
	userService := app.Service(coreservices.UserService{}).(*coreservices.UserService)
	userService.RegisterDeletionCascade(sopService.RemoveUserReferences)

	registerMailHandlers(app, cfg)
	return nil
}

func registerMailHandlers(app application.Application, cfg *configuration.Configuration) {
	send := mailer.NewSMTPMailer(&cfg.SMTP)
	render := mailer.NewRenderer()
	log := app.Logger()
	bus := app.EventPublisher()

	bus.Subscribe(func(event sopdomain.VersionSubmittedEvent) {
		body, err := render.Render("sop_submitted.html", map[string]any{
			"AuthorName": event.AuthorName,
			"Title":      event.Result.Title(),
			"Reference":  event.Reference,
			"Version":    event.Result.Number(),
		})
		if err != nil {
			log.WithError(err).Error("failed to render submission email")
			return
		}
		for _, to := range event.AdminEmails {
			mailer.SendAsync(send, log, to, "SOP awaiting review: "+event.Reference, body)
		}
	})

	decided := func(decision, reference, approverName, authorEmail string, title string, number int) {
		if authorEmail == "" {
			return
		}
		body, err := render.Render("sop_decided.html", map[string]any{
			"Decision":     decision,
			"Title":        title,
			"Reference":    reference,
			"Version":      number,
			"ApproverName": approverName,
		})
		if err != nil {
			log.WithError(err).Error("failed to render decision email")
			return
		}
		mailer.SendAsync(send, log, authorEmail, "Your SOP was "+decision, body)
	}

	bus.Subscribe(func(event sopdomain.VersionApprovedEvent) {
		decided("approved", event.Reference, event.ApproverName, event.AuthorEmail, event.Result.Title(), event.Result.Number())
	})
	bus.Subscribe(func(event sopdomain.VersionRejectedEvent) {
		decided("rejected", event.Reference, event.ApproverName, event.AuthorEmail, event.Result.Title(), event.Result.Number())
	})
}
