package dashboard

import (
	"go.uber.org/fx"

	"github.com/sahelsolar/fieldops/internal/dashboard/service"
)

var Module = fx.Module("dashboard.service",
	fx.Provide(service.NewService),
)
