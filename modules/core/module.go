package core

import (
	"github.com/fieldops/sopdesk/modules/core/domain/entities/invitation"
	"github.com/fieldops/sopdesk/modules/core/infrastructure/persistence"
	"github.com/fieldops/sopdesk/modules/core/presentation/controllers"
	"github.com/fieldops/sopdesk/modules/core/services"
	"github.com/fieldops/sopdesk/pkg/application"
	"github.com/fieldops/sopdesk/pkg/configuration"
	"github.com/fieldops/sopdesk/pkg/mailer"
	"github.com/fieldops/sopdesk/pkg/tokens"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Name() string {
	return "core"
}

func (m *Module) Register(app application.Application) error {
	cfg := configuration.Use()

	issuer := tokens.NewIssuer(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.AccessTTL,
		cfg.JWT.InvitationTTL,
	)

	userRepo := persistence.NewUserRepository()
	orgRepo := persistence.NewOrganisationRepository()
	invitationRepo := persistence.NewInvitationRepository()
	departmentRepo := persistence.NewDepartmentRepository()
	settingRepo := persistence.NewSettingRepository()

	app.RegisterServices(
		services.NewAuthService(userRepo, orgRepo, issuer, app.EventPublisher(), &cfg.Password),
		services.NewInvitationService(invitationRepo, userRepo, orgRepo, issuer, app.EventPublisher(), &cfg.Password, cfg.JWT.InvitationTTL),
		services.NewUserService(userRepo, app.EventPublisher()),
		services.NewDepartmentService(departmentRepo),
		services.NewSettingService(settingRepo),
	)

	app.RegisterControllers(
		controllers.NewAuthController(app),
		controllers.NewUserController(app),
		controllers.NewDepartmentController(app),
		controllers.NewSettingController(app),
	)

	registerMailHandlers(app, cfg)
	return nil
}

// registerMailHandlers subscribes the invite email sender. Events are only
// published after the owning transaction commits, so mail never references
// rows that were rolled back.
func registerMailHandlers(app application.Application, cfg *configuration.Configuration) {
	send := mailer.NewSMTPMailer(&cfg.SMTP)
	render := mailer.NewRenderer()
	log := app.Logger()

	app.EventPublisher().Subscribe(func(event invitation.CreatedEvent) {
		inv := event.Result
		body, err := render.Render("invitation.html", map[string]any{
			"OrganisationName": event.OrganisationName,
			"InviterName":      event.InviterName,
			"Role":             string(inv.Role()),
			"AcceptURL":        cfg.Origin + "/registerinvite?token=" + inv.Token(),
			"ExpiresAt":        inv.ExpiresAt().Format("02 Jan 2006"),
		})
		if err != nil {
			log.WithError(err).Error("failed to render invitation email")
			return
		}
		mailer.SendAsync(send, log, inv.Email().Value(), "You have been invited to "+event.OrganisationName, body)
	})
}
