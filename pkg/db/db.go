// Package db owns the gorm database handle and its lifecycle.
package db

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sahelsolar/fieldops/internal/config"
)

// Open connects to PostgreSQL using the configured DSN.
func Open(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	gormDB, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	log.Info("database connected")
	return gormDB, nil
}

var Module = fx.Module("db",
	fx.Provide(Open),
	fx.Invoke(func(lc fx.Lifecycle, gormDB *gorm.DB, log *zap.Logger) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				sqlDB, err := gormDB.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
			OnStop: func(context.Context) error {
				sqlDB, err := gormDB.DB()
				if err != nil {
					return err
				}
				log.Info("closing database")
				return sqlDB.Close()
			},
		})
	}),
)
