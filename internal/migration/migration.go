// Package migration applies the embedded SQL schema migrations at startup.
// Applied versions are recorded in schema_migrations so each file runs once.
package migration

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Run applies every pending migration in filename order.
func Run(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	err := db.WithContext(ctx).Exec(
		`CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	).Error
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := embeddedMigrations.ReadDir(migrationsDir)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		applied, err := isApplied(ctx, db, name)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		contents, err := embeddedMigrations.ReadFile(migrationsDir + "/" + name)
		if err != nil {
			return err
		}

		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(contents)).Error; err != nil {
				return fmt.Errorf("apply %s: %w", name, err)
			}
			return tx.Exec(
				`INSERT INTO schema_migrations (version) VALUES (?)`, name,
			).Error
		})
		if err != nil {
			return err
		}
		log.Info("migration applied", zap.String("version", name))
	}
	return nil
}

func isApplied(ctx context.Context, db *gorm.DB, version string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM schema_migrations WHERE version = ?`, version,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

var Module = fx.Module("migration",
	fx.Invoke(func(lc fx.Lifecycle, db *gorm.DB, log *zap.Logger) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return Run(ctx, db, log.Named("migration"))
			},
		})
	}),
)
