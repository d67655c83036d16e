// Package seed bootstraps demo records for local development.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	clientdomain "github.com/sahelsolar/fieldops/internal/client/domain"
	"github.com/sahelsolar/fieldops/internal/config"
	supplierdomain "github.com/sahelsolar/fieldops/internal/supplier/domain"
	techniciandomain "github.com/sahelsolar/fieldops/internal/technician/domain"
)

// EnsureDemoData seeds one supplier, one technician and one client when the
// database holds no clients yet. It never touches a populated database.
func EnsureDemoData(db *gorm.DB, genID *snowflake.Node, log *zap.Logger) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&clientdomain.Client{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		supplier := supplierdomain.Supplier{
			ID:    genID.Generate(),
			Name:  "Sahel Solar Équipements",
			Phone: "+221 77 000 00 00",
			Email: "contact@sahelsolar.sn",
		}
		if err := tx.Create(&supplier).Error; err != nil {
			return err
		}

		technician := techniciandomain.Technician{
			ID:    genID.Generate(),
			Name:  "Moussa Ba",
			Phone: "+221 77 888 99 00",
			Email: "moussa@sahelsolar.sn",
		}
		if err := tx.Create(&technician).Error; err != nil {
			return err
		}

		client := clientdomain.Client{
			ID:                  genID.Generate(),
			Name:                "Awa Diop",
			Address:             "Dakar, Médina",
			Phone:               "+221 77 111 22 33",
			Email:               "awa.diop@example.sn",
			InstalledAt:         time.Now().UTC().AddDate(-1, 0, 0),
			EquipmentDescriptor: "5KVA 10KWH 10x550W",
			SupplierID:          &supplier.ID,
		}
		if err := tx.Create(&client).Error; err != nil {
			return err
		}

		log.Info("demo data seeded",
			zap.String("supplier_id", supplier.ID.String()),
			zap.String("client_id", client.ID.String()),
		)
		return nil
	})
}

var Module = fx.Module("seed",
	fx.Invoke(func(lc fx.Lifecycle, cfg config.Config, db *gorm.DB, genID *snowflake.Node, log *zap.Logger) {
		if !cfg.Bootstrap.EnsureDemoData {
			return
		}
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				return EnsureDemoData(db, genID, log.Named("seed"))
			},
		})
	}),
)
