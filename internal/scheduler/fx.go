package scheduler

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sahelsolar/fieldops/internal/clock"
	"github.com/sahelsolar/fieldops/internal/config"
	"github.com/sahelsolar/fieldops/internal/events"
	"github.com/sahelsolar/fieldops/internal/notification"
	"github.com/sahelsolar/fieldops/internal/observability/metrics"
)

type Param struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Config   config.Config
	Clock    clock.Clock
	Outbox   *events.Outbox
	Notifier notification.Notifier
	Metrics  *metrics.OpsMetrics `optional:"true"`
}

var Module = fx.Module("scheduler",
	fx.Provide(func(p Param) *Scheduler {
		return New(p.DB, p.Log, Config{
			PollInterval: p.Config.ReminderPollInterval,
			BatchSize:    p.Config.ReminderBatchSize,
		}, p.Clock, p.Outbox, p.Notifier, p.Metrics)
	}),
	fx.Invoke(func(lc fx.Lifecycle, s *Scheduler) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				go func() {
					defer close(done)
					s.RunForever(ctx)
				}()
				return nil
			},
			OnStop: func(stopCtx context.Context) error {
				cancel()
				select {
				case <-done:
					return nil
				case <-stopCtx.Done():
					return stopCtx.Err()
				}
			},
		})
	}),
)
