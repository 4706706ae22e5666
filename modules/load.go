package modules

import (
	"github.com/fieldops/sopdesk/modules/core"
	"github.com/fieldops/sopdesk/modules/sop"
	"github.com/fieldops/sopdesk/pkg/application"
)

// BuiltInModules is ordered: sop registers a deletion cascade on core's user
// service, so core must load first.
var BuiltInModules = []application.Module{
	core.NewModule(),
	sop.NewModule(),
}

func Load(app application.Application, mods ...application.Module) error {
	return application.Load(app, mods...)
}
