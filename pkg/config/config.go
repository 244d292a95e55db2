package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the namespace for every environment variable the backend reads.
const EnvPrefix = "ORY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	RateLimit    RateLimitConfig
	Payments     PaymentsConfig
	Fulfillment  FulfillmentConfig
	Cart         CartConfig
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
	Env          string `envconfig:"ORY_APP_ENV" default:"dev"`
	Port         string `envconfig:"ORY_APP_PORT" default:"3001"`
	LogLevel     string `envconfig:"ORY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ORY_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"ORY_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ORY_DB_DSN"`
	Driver string `envconfig:"ORY_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"ORY_DB_HOST"`
	Port     int    `envconfig:"ORY_DB_PORT" default:"5432"`
	User     string `envconfig:"ORY_DB_USER"`
	Password string `envconfig:"ORY_DB_PASSWORD"`
	Name     string `envconfig:"ORY_DB_NAME"`
	SSLMode  string `envconfig:"ORY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ORY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ORY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ORY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ORY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite driver was selected (dev and tests).
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, "sqlite")
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file::memory:?cache=shared"
		return nil
	}

	missing := []string{}
	for env, val := range map[string]string{
		"ORY_DB_HOST": db.Host,
		"ORY_DB_USER": db.User,
		"ORY_DB_NAME": db.Name,
	} {
		if val == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either ORY_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"ORY_REDIS_URL"`
	Address      string        `envconfig:"ORY_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"ORY_REDIS_PASSWORD"`
	DB           int           `envconfig:"ORY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ORY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ORY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ORY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ORY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ORY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// RateLimitConfig carries one budget per traffic surface, all keyed per client IP.
type RateLimitConfig struct {
	PaymentWindow    time.Duration `envconfig:"ORY_RATE_LIMIT_PAYMENT_WINDOW" default:"1m"`
	PaymentLimit     int           `envconfig:"ORY_RATE_LIMIT_PAYMENT_LIMIT" default:"10"`
	OrderWindow      time.Duration `envconfig:"ORY_RATE_LIMIT_ORDER_WINDOW" default:"1m"`
	OrderLimit       int           `envconfig:"ORY_RATE_LIMIT_ORDER_LIMIT" default:"5"`
	NewsletterWindow time.Duration `envconfig:"ORY_RATE_LIMIT_NEWSLETTER_WINDOW" default:"5m"`
	NewsletterLimit  int           `envconfig:"ORY_RATE_LIMIT_NEWSLETTER_LIMIT" default:"3"`
}

// PaymentsConfig tunes the mock gateway. Latency simulates PSP round trips.
type PaymentsConfig struct {
	MinLatency time.Duration `envconfig:"ORY_PAYMENTS_MIN_LATENCY" default:"1s"`
	MaxLatency time.Duration `envconfig:"ORY_PAYMENTS_MAX_LATENCY" default:"2s"`
	AmountCap  int           `envconfig:"ORY_PAYMENTS_AMOUNT_CAP" default:"1000000"`
}

type FulfillmentConfig struct {
	ShipDelay    time.Duration `envconfig:"ORY_FULFILLMENT_SHIP_DELAY" default:"3s"`
	PollInterval time.Duration `envconfig:"ORY_FULFILLMENT_POLL_INTERVAL" default:"10s"`
	LockTTL      time.Duration `envconfig:"ORY_FULFILLMENT_LOCK_TTL" default:"1m"`
}

type CartConfig struct {
	TTL time.Duration `envconfig:"ORY_CART_TTL" default:"720h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ORY_AUTO_MIGRATE" default:"false"`
	SeedCatalog bool `envconfig:"ORY_SEED_CATALOG" default:"true"`
}
