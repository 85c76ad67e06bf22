package migrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/frozify/storefront/pkg/config"
	"github.com/frozify/storefront/pkg/db"
	"github.com/frozify/storefront/pkg/logger"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return conn
}

func TestUpCreatesStorageEntries(t *testing.T) {
	conn := openSQLite(t)
	sqlDB, err := conn.DB()
	require.NoError(t, err)

	require.NoError(t, Up(context.Background(), sqlDB, config.DBDriverSQLite))
	require.True(t, conn.Migrator().HasTable("storage_entries"))

	// second run is a no-op
	require.NoError(t, Up(context.Background(), sqlDB, config.DBDriverSQLite))
}

func TestMaybeRunSkipsPostgresOutsideDev(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: config.AppEnvProd}}
	client := db.FromGorm(openSQLite(t), config.DBDriverPostgres)

	require.NoError(t, MaybeRun(context.Background(), cfg, logger.Nop(), client))
	require.False(t, client.DB().Migrator().HasTable("storage_entries"))
}

func TestMaybeRunAlwaysMigratesSQLite(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: config.AppEnvProd}}
	client := db.FromGorm(openSQLite(t), config.DBDriverSQLite)

	require.NoError(t, MaybeRun(context.Background(), cfg, logger.Nop(), client))
	require.True(t, client.DB().Migrator().HasTable("storage_entries"))
}

func TestDialect(t *testing.T) {
	got, err := Dialect("")
	require.NoError(t, err)
	require.Equal(t, "postgres", got)

	got, err = Dialect(config.DBDriverSQLite)
	require.NoError(t, err)
	require.Equal(t, "sqlite3", got)

	_, err = Dialect("mssql")
	require.Error(t, err)
}

func TestBundledMigrationsValidate(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Order Notes!")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_order_notes.sql"))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(body), "-- +goose Up")
	require.NoError(t, ValidateDir(filepath.Dir(path)))
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "latest.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, ValidateDir(dir))
}
