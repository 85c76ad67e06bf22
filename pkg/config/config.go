package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Storefront    StorefrontConfig
	Storage       StorageConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Sessions      SessionsConfig
	Handoff       HandoffConfig
	Checkout      CheckoutConfig
	AuthRateLimit AuthRateLimitConfig
	CORS          CORSConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case StorageBackendMemory:
	case StorageBackendRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvRedisURL, EnvStorageBackend, StorageBackendRedis)
		}
	case StorageBackendSQL:
		if err := c.DB.ensureDSN(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvStorageBackend, c.Storage.Backend)
	}
	if _, err := url.Parse(c.Storefront.BaseURL); err != nil {
		return fmt.Errorf("invalid %s: %w", EnvStorefrontBaseURL, err)
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"FROZIFY_APP_ENV" required:"true"`
	Port         string `envconfig:"FROZIFY_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"FROZIFY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FROZIFY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StorefrontConfig points at the external storefront REST API.
type StorefrontConfig struct {
	BaseURL string        `envconfig:"FROZIFY_STOREFRONT_BASE_URL" default:"http://localhost:5000/api"`
	Timeout time.Duration `envconfig:"FROZIFY_STOREFRONT_TIMEOUT" default:"10s"`

	BreakerMaxRequests  uint32        `envconfig:"FROZIFY_STOREFRONT_BREAKER_MAX_REQUESTS" default:"1"`
	BreakerInterval     time.Duration `envconfig:"FROZIFY_STOREFRONT_BREAKER_INTERVAL" default:"60s"`
	BreakerTimeout      time.Duration `envconfig:"FROZIFY_STOREFRONT_BREAKER_TIMEOUT" default:"30s"`
	BreakerFailureCount uint32        `envconfig:"FROZIFY_STOREFRONT_BREAKER_FAILURES" default:"5"`
}

type StorageConfig struct {
	Backend string        `envconfig:"FROZIFY_STORAGE_BACKEND" default:"memory"`
	TTL     time.Duration `envconfig:"FROZIFY_STORAGE_TTL" default:"720h"`
}

type DBConfig struct {
	DSN    string `envconfig:"FROZIFY_DB_DSN"`
	Driver string `envconfig:"FROZIFY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FROZIFY_DB_HOST"`
	LegacyPort     int    `envconfig:"FROZIFY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FROZIFY_DB_USER"`
	LegacyPassword string `envconfig:"FROZIFY_DB_PASSWORD"`
	LegacyName     string `envconfig:"FROZIFY_DB_NAME"`
	LegacySSLMode  string `envconfig:"FROZIFY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FROZIFY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FROZIFY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FROZIFY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FROZIFY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FROZIFY_REDIS_URL"`
	Address      string        `envconfig:"FROZIFY_REDIS_ADDR"`
	Password     string        `envconfig:"FROZIFY_REDIS_PASSWORD"`
	DB           int           `envconfig:"FROZIFY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FROZIFY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FROZIFY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FROZIFY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FROZIFY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FROZIFY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any Redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// JWTConfig signs the BFF session tokens.
type JWTConfig struct {
	Secret            string `envconfig:"FROZIFY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FROZIFY_JWT_ISSUER" default:"frozify"`
	ExpirationMinutes int    `envconfig:"FROZIFY_JWT_EXPIRATION_MINUTES" default:"43200"`
}

// Expiration returns the session token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type SessionsConfig struct {
	CacheSize int           `envconfig:"FROZIFY_SESSIONS_CACHE_SIZE" default:"1024"`
	IdleTTL   time.Duration `envconfig:"FROZIFY_SESSIONS_IDLE_TTL" default:"30m"`
}

type HandoffConfig struct {
	Recipient string `envconfig:"FROZIFY_HANDOFF_RECIPIENT" default:"923704152383"`
}

type CheckoutConfig struct {
	IdempotencyTTL time.Duration `envconfig:"FROZIFY_CHECKOUT_IDEMPOTENCY_TTL" default:"24h"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"FROZIFY_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"FROZIFY_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"FROZIFY_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"FROZIFY_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"FROZIFY_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"FROZIFY_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `envconfig:"FROZIFY_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FROZIFY_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.Driver == DBDriverSQLite {
		db.DSN = "frozify.db"
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
