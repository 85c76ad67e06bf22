package config

const (
	EnvPrefix = "FROZIFY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "FROZIFY_APP_ENV"
	EnvPort     = "FROZIFY_APP_PORT"
	EnvLogLevel = "FROZIFY_LOG_LEVEL"

	EnvStorefrontBaseURL = "FROZIFY_STOREFRONT_BASE_URL"
	EnvStorefrontTimeout = "FROZIFY_STOREFRONT_TIMEOUT"

	EnvStorageBackend = "FROZIFY_STORAGE_BACKEND"
	EnvStorageTTL     = "FROZIFY_STORAGE_TTL"

	EnvDBDSN    = "FROZIFY_DB_DSN"
	EnvDBDriver = "FROZIFY_DB_DRIVER"
	EnvDBHost   = "FROZIFY_DB_HOST"
	EnvDBUser   = "FROZIFY_DB_USER"
	EnvDBName   = "FROZIFY_DB_NAME"

	EnvRedisURL = "FROZIFY_REDIS_URL"

	EnvJWTSecret  = "FROZIFY_JWT_SECRET"
	EnvJWTIssuer  = "FROZIFY_JWT_ISSUER"
	EnvJWTExpMins = "FROZIFY_JWT_EXPIRATION_MINUTES"

	EnvHandoffRecipient = "FROZIFY_HANDOFF_RECIPIENT"
)

const (
	StorageBackendMemory = "memory"
	StorageBackendRedis  = "redis"
	StorageBackendSQL    = "sql"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
