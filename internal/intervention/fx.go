package intervention

import (
	"go.uber.org/fx"

	"github.com/sahelsolar/fieldops/internal/intervention/service"
)

var Module = fx.Module("intervention.service",
	fx.Provide(service.NewService),
)
