package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/sahelsolar/fieldops/internal/config"
	obscontext "github.com/sahelsolar/fieldops/internal/observability/context"
)

// New builds the service logger: JSON in production, console elsewhere.
func New(cfg config.Config) (*zap.Logger, error) {
	var log *zap.Logger
	var err error
	if cfg.IsProduction() {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}

	log = log.With(
		zap.String("service", cfg.ServiceName),
		zap.String("version", cfg.ServiceVersion),
	)
	zap.ReplaceGlobals(log)
	return log, nil
}

// FromContext returns the global logger enriched with the active trace,
// span and request identifiers.
func FromContext(ctx context.Context) *zap.Logger {
	log := zap.L()
	if ctx == nil {
		return log
	}

	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		log = log.With(zap.String("request_id", requestID))
	}

	span := trace.SpanContextFromContext(ctx)
	if span.HasTraceID() {
		log = log.With(zap.String("trace_id", span.TraceID().String()))
	}
	if span.HasSpanID() {
		log = log.With(zap.String("span_id", span.SpanID().String()))
	}
	return log
}

// Module provides the zap logger to the fx graph and flushes it on shutdown.
var Module = fx.Module("logger",
	fx.Provide(New),
	fx.Invoke(func(lc fx.Lifecycle, log *zap.Logger) {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				_ = log.Sync()
				return nil
			},
		})
	}),
)
