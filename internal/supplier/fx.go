package supplier

import (
	"go.uber.org/fx"

	"github.com/sahelsolar/fieldops/internal/supplier/service"
)

var Module = fx.Module("supplier.service",
	fx.Provide(service.NewService),
)
