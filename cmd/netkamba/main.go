// @title           Netkamba API
// @version         1.0
// @description     Controlo Fibra billing and operations API

// @host      localhost:8080
// @BasePath  /v1
// @Schemes 	http

package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/toty12222/controlo-fibra-netkamba/internal/clock"
	"github.com/toty12222/controlo-fibra-netkamba/internal/config"
	"github.com/toty12222/controlo-fibra-netkamba/internal/customer"
	customerdomain "github.com/toty12222/controlo-fibra-netkamba/internal/customer/domain"
	"github.com/toty12222/controlo-fibra-netkamba/internal/importer"
	"github.com/toty12222/controlo-fibra-netkamba/internal/ledger"
	"github.com/toty12222/controlo-fibra-netkamba/internal/logger"
	"github.com/toty12222/controlo-fibra-netkamba/internal/migration"
	"github.com/toty12222/controlo-fibra-netkamba/internal/monitor"
	"github.com/toty12222/controlo-fibra-netkamba/internal/notification"
	"github.com/toty12222/controlo-fibra-netkamba/internal/observability/tracing"
	"github.com/toty12222/controlo-fibra-netkamba/internal/reporting"
	"github.com/toty12222/controlo-fibra-netkamba/internal/seed"
	"github.com/toty12222/controlo-fibra-netkamba/internal/server"
	"github.com/toty12222/controlo-fibra-netkamba/internal/status"
	"github.com/toty12222/controlo-fibra-netkamba/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		tracing.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		fx.Invoke(func(conn *gorm.DB) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return migration.RunMigrations(sqlDB)
		}),

		notification.Module,
		status.Module,
		ledger.Module,
		customer.Module,
		importer.Module,
		reporting.Module,
		monitor.Module,

		fx.Invoke(func(cfg config.Config, conn *gorm.DB, registry customerdomain.Registry, log *zap.Logger) error {
			if !cfg.SeedDemo {
				return nil
			}
			return seed.EnsureDemoCustomers(conn, registry, log)
		}),

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
