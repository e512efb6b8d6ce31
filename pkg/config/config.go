package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "restopos"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "RESTOPOS_DB_DSN"
	EnvDBHost = "RESTOPOS_DB_HOST"
	EnvDBUser = "RESTOPOS_DB_USER"
	EnvDBName = "RESTOPOS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Auth         AuthConfig
	NATS         NATSConfig
	Refresh      RefreshConfig
	Outbox       OutboxConfig
	Pricing      PricingConfig
	Exports      ExportsConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"RESTOPOS_APP_ENV" required:"true"`
	Port         string `envconfig:"RESTOPOS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"RESTOPOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RESTOPOS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"RESTOPOS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"RESTOPOS_DB_DSN"`
	Driver string `envconfig:"RESTOPOS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"RESTOPOS_DB_HOST"`
	LegacyPort     int    `envconfig:"RESTOPOS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RESTOPOS_DB_USER"`
	LegacyPassword string `envconfig:"RESTOPOS_DB_PASSWORD"`
	LegacyName     string `envconfig:"RESTOPOS_DB_NAME"`
	LegacySSLMode  string `envconfig:"RESTOPOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RESTOPOS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RESTOPOS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RESTOPOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RESTOPOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RESTOPOS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"RESTOPOS_REDIS_ADDR"`
	Password     string        `envconfig:"RESTOPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"RESTOPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RESTOPOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RESTOPOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RESTOPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RESTOPOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RESTOPOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"RESTOPOS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"RESTOPOS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"RESTOPOS_JWT_EXPIRATION_MINUTES" default:"720"`
	RefreshTokenDays  int    `envconfig:"RESTOPOS_JWT_REFRESH_TOKEN_DAYS" default:"7"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns how long refresh sessions stay valid.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenDays <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenDays) * 24 * time.Hour
}

// AuthConfig carries the shared provisioning key terminals present at sign-in.
// Staff identity itself lives in the host POS system; an empty key disables
// the sign-in endpoint entirely.
type AuthConfig struct {
	TerminalKey string `envconfig:"RESTOPOS_TERMINAL_KEY"`
}

type NATSConfig struct {
	URL            string `envconfig:"RESTOPOS_NATS_URL" default:"nats://localhost:4222"`
	KitchenSubject string `envconfig:"RESTOPOS_NATS_KITCHEN_SUBJECT" default:"kitchen.events"`
	OrdersSubject  string `envconfig:"RESTOPOS_NATS_ORDERS_SUBJECT" default:"orders.events"`
}

type RefreshConfig struct {
	KitchenInterval time.Duration `envconfig:"RESTOPOS_REFRESH_KITCHEN_INTERVAL" default:"10s"`
	OrdersInterval  time.Duration `envconfig:"RESTOPOS_REFRESH_ORDERS_INTERVAL" default:"30s"`
	SnapshotTTL     time.Duration `envconfig:"RESTOPOS_REFRESH_SNAPSHOT_TTL" default:"2m"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"RESTOPOS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"RESTOPOS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"RESTOPOS_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type PricingConfig struct {
	DefaultPriceList string `envconfig:"RESTOPOS_DEFAULT_PRICE_LIST" default:"Standard Selling"`
}

type ExportsConfig struct {
	Dir     string `envconfig:"RESTOPOS_EXPORTS_DIR" default:"/tmp/restopos-exports"`
	BaseURL string `envconfig:"RESTOPOS_EXPORTS_BASE_URL" default:"/files/exports"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"RESTOPOS_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
