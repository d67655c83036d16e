package client

import (
	"go.uber.org/fx"

	"github.com/sahelsolar/fieldops/internal/client/service"
)

var Module = fx.Module("client.service",
	fx.Provide(service.NewService),
)
