package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/sahelsolar/fieldops/internal/config"
	"github.com/sahelsolar/fieldops/internal/observability/logger"
	"github.com/sahelsolar/fieldops/internal/observability/metrics"
	"github.com/sahelsolar/fieldops/internal/observability/tracing"
)

// Module wires logging, tracing and metrics.
var Module = fx.Module("observability",
	logger.Module,
	fx.Provide(func(cfg config.Config) metrics.Config {
		return metrics.Config{
			ServiceName: cfg.ServiceName,
			Environment: cfg.Environment,
		}
	}),
	fx.Provide(func(cfg config.Config) tracing.Config {
		return tracing.Config{
			Enabled:          cfg.Tracing.Enabled,
			ServiceName:      cfg.ServiceName,
			ServiceVersion:   cfg.ServiceVersion,
			Environment:      cfg.Environment,
			ExporterEndpoint: cfg.Tracing.ExporterEndpoint,
			ExporterProtocol: cfg.Tracing.ExporterProtocol,
			SamplingRatio:    cfg.Tracing.SamplingRatio,
		}
	}),
	fx.Provide(func() metric.MeterProvider { return otel.GetMeterProvider() }),
	fx.Provide(metrics.NewHTTPMetrics),
	fx.Provide(func(cfg metrics.Config) *metrics.OpsMetrics {
		return metrics.OpsWithConfig(cfg)
	}),
	fx.Invoke(func(lc fx.Lifecycle, cfg tracing.Config, log *zap.Logger) error {
		_, err := tracing.NewProvider(lc, cfg, log)
		return err
	}),
)
