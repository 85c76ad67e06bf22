package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "prod" {
		t.Fatalf("expected App.Env to be prod, got %q", cfg.App.Env)
	}
	if cfg.Storage.Backend != StorageBackendMemory {
		t.Fatalf("expected memory storage by default, got %q", cfg.Storage.Backend)
	}
	if cfg.Handoff.Recipient != "923704152383" {
		t.Fatalf("unexpected handoff recipient %q", cfg.Handoff.Recipient)
	}
	if got := cfg.Storefront.Timeout; got != 10*time.Second {
		t.Fatalf("expected storefront timeout 10s, got %v", got)
	}
	if got := cfg.JWT.Expiration(); got != 30*24*time.Hour {
		t.Fatalf("expected 30 day session tokens, got %v", got)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	unsetEnv(t, EnvAppEnv)

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RedisBackendRequiresURL(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvStorageBackend, StorageBackendRedis)

	if _, err := Load(); err == nil {
		t.Fatal("expected redis backend without url to fail")
	}

	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if !cfg.Redis.Enabled() {
		t.Fatal("expected redis to be enabled")
	}
}

func TestLoad_SQLBackendBuildsDSN(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvStorageBackend, StorageBackendSQL)
	t.Setenv(EnvDBHost, "db.internal")
	t.Setenv(EnvDBUser, "frozify")
	t.Setenv(EnvDBName, "storefront")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	want := "postgres://frozify@db.internal:5432/storefront?sslmode=disable"
	if cfg.DB.DSN != want {
		t.Fatalf("expected dsn %q, got %q", want, cfg.DB.DSN)
	}
}

func TestLoad_SQLiteDefaultsToLocalFile(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvStorageBackend, StorageBackendSQL)
	t.Setenv(EnvDBDriver, DBDriverSQLite)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.DB.DSN != "frozify.db" {
		t.Fatalf("unexpected sqlite dsn %q", cfg.DB.DSN)
	}
}

func TestLoad_UnknownBackend(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvStorageBackend, "floppy")

	if _, err := Load(); err == nil {
		t.Fatal("expected unknown storage backend to fail")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "prod")
	t.Setenv(EnvPort, "8081")
	t.Setenv(EnvJWTSecret, "secret")
	for _, key := range []string{EnvStorageBackend, EnvRedisURL, EnvDBDSN, EnvDBDriver, EnvDBHost, EnvDBUser, EnvDBName} {
		unsetEnv(t, key)
	}
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset %s: %v", key, err)
	}
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
	if prodConfig.IsDev() {
		t.Fatalf("expected IsDev false for %q", prodConfig.Env)
	}
}
