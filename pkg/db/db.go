package db

import (
	"os"
	"path/filepath"

	"github.com/toty12222/controlo-fibra-netkamba/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the SQLite store and applies the connection pragmas the
// back office relies on: enforced foreign keys and WAL so the background
// sweep never blocks interactive writes for long.
func Open(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	if dir := filepath.Dir(cfg.DatabasePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	conn, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if err := conn.Exec(pragma).Error; err != nil {
			return nil, err
		}
	}

	log.Info("database opened", zap.String("path", cfg.DatabasePath))
	return conn, nil
}

var Module = fx.Module("db",
	fx.Provide(Open),
)
