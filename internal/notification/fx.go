package notification

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/sahelsolar/fieldops/internal/config"
)

// Module provides the Notifier, selecting the AMQP transport when a broker
// URL is configured and falling back to the logging no-op otherwise.
var Module = fx.Module("notification",
	fx.Provide(func(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (Notifier, error) {
		if cfg.AMQPURL == "" {
			return NewNoopNotifier(log), nil
		}

		notifier, err := NewAMQPNotifier(cfg.AMQPURL, cfg.AMQPExchange, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return notifier.Close()
			},
		})
		return notifier, nil
	}),
)
