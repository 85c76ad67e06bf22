package migrate

import (
	"context"
	"fmt"

	"github.com/frozify/storefront/pkg/config"
	"github.com/frozify/storefront/pkg/db"
	"github.com/frozify/storefront/pkg/logger"
)

// MaybeRun applies the embedded migrations when SQL storage is in use and either the
// auto-migrate flag is set in dev or the database is a local SQLite file.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if client == nil {
		return nil
	}
	local := client.Driver() == config.DBDriverSQLite
	if !local && !(cfg.App.IsDev() && cfg.FeatureFlags.AutoMigrate) {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": client.Driver()})
	logg.Info(ctx, "running goose migrations")

	if err := Up(ctx, sqlDB, client.Driver()); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
