package technician

import (
	"go.uber.org/fx"

	"github.com/sahelsolar/fieldops/internal/technician/service"
)

var Module = fx.Module("technician.service",
	fx.Provide(service.NewService),
)
