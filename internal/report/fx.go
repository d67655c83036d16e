package report

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/sahelsolar/fieldops/internal/config"
	"github.com/sahelsolar/fieldops/internal/report/analyst"
	"github.com/sahelsolar/fieldops/internal/report/service"
)

var Module = fx.Module("report.service",
	fx.Provide(func(cfg config.Config, log *zap.Logger) analyst.Analyst {
		return analyst.NewClient(cfg.AIBaseURL, cfg.AIModel, log)
	}),
	fx.Provide(service.NewService),
)
