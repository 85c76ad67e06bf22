package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strconv"

	"github.com/frozify/storefront/pkg/config"
	"github.com/pressly/goose/v3"
)

const DefaultDir = "pkg/migrate/migrations"

// embeddedDir is the path of the bundled migrations inside Embedded.
const embeddedDir = "migrations"

// Embedded carries the migrations compiled into every binary.
//
//go:embed migrations/*.sql
var Embedded embed.FS

// Dialect maps a configured database driver onto goose's dialect name.
func Dialect(driver string) (string, error) {
	switch driver {
	case "", config.DBDriverPostgres:
		return "postgres", nil
	case config.DBDriverSQLite:
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Up applies the embedded migrations.
func Up(ctx context.Context, db *sql.DB, driver string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	dialect, err := Dialect(driver)
	if err != nil {
		return err
	}

	goose.SetBaseFS(Embedded)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, embeddedDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Run executes a standard goose command against migrations on disk.
func Run(ctx context.Context, db *sql.DB, driver, dir, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	dialect, err := Dialect(driver)
	if err != nil {
		return err
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	// RunContext prints status output to stdout (goose internal)
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion migrates up/down to the requested version by comparing current DB version.
func MigrateToVersion(ctx context.Context, db *sql.DB, driver, dir, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}

	dialect, err := Dialect(driver)
	if err != nil {
		return err
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	current, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
		return nil
	default:
		if err := goose.DownToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
		return nil
	}
}
