package migration

import (
	"github.com/agencyhq/opscore/internal/config"
	"github.com/agencyhq/opscore/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, logger *zap.Logger) error {
		// The embedded schema targets postgres. Other dialects are expected
		// to be migrated out of band (tests use AutoMigrate).
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			logger.Named("migrations").Info("skipping embedded migrations",
				zap.String("db_type", cfg.DBType),
			)
		}

		if cfg.Bootstrap.EnsureDefaultAdmin {
			return seed.EnsureDefaultAdmin(conn, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminName)
		}
		return nil
	}),
)
