// @title           FieldOps API
// @version         1.0
// @description     Solar maintenance operations API

// @host      localhost:8080
// @BasePath  /api
// @Schemes 	http https

package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/sahelsolar/fieldops/internal/client"
	"github.com/sahelsolar/fieldops/internal/clock"
	"github.com/sahelsolar/fieldops/internal/config"
	"github.com/sahelsolar/fieldops/internal/dashboard"
	"github.com/sahelsolar/fieldops/internal/events"
	"github.com/sahelsolar/fieldops/internal/intervention"
	"github.com/sahelsolar/fieldops/internal/migration"
	"github.com/sahelsolar/fieldops/internal/notification"
	"github.com/sahelsolar/fieldops/internal/observability"
	"github.com/sahelsolar/fieldops/internal/report"
	"github.com/sahelsolar/fieldops/internal/scheduler"
	"github.com/sahelsolar/fieldops/internal/seed"
	"github.com/sahelsolar/fieldops/internal/server"
	"github.com/sahelsolar/fieldops/internal/supplier"
	"github.com/sahelsolar/fieldops/internal/technician"
	"github.com/sahelsolar/fieldops/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,
		events.Module,
		notification.Module,

		supplier.Module,
		client.Module,
		technician.Module,
		intervention.Module,
		dashboard.Module,
		report.Module,
		scheduler.Module,
		seed.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
