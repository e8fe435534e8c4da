package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	MercadoLivre MercadoLivreConfig
	Webhook      WebhookConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("%s is required", EnvDBDSN)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ESTOQUE_APP_ENV" required:"true"`
	Port         string `envconfig:"ESTOQUE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ESTOQUE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ESTOQUE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"ESTOQUE_DB_DSN"`

	MaxOpenConns    int           `envconfig:"ESTOQUE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ESTOQUE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ESTOQUE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ESTOQUE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ESTOQUE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ESTOQUE_REDIS_ADDR"`
	Password     string        `envconfig:"ESTOQUE_REDIS_PASSWORD"`
	DB           int           `envconfig:"ESTOQUE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ESTOQUE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ESTOQUE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ESTOQUE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ESTOQUE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ESTOQUE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ESTOQUE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ESTOQUE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ESTOQUE_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// TokenTTL returns the access token lifetime.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ESTOQUE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ESTOQUE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ESTOQUE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ESTOQUE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ESTOQUE_ARGON_KEY_LEN" default:"32"`
}

// MercadoLivreConfig points the order fetcher at the marketplace API.
type MercadoLivreConfig struct {
	BaseURL      string        `envconfig:"ESTOQUE_ML_BASE_URL" default:"https://api.mercadolibre.com"`
	AccessToken  string        `envconfig:"ESTOQUE_ML_ACCESS_TOKEN"`
	FetchTimeout time.Duration `envconfig:"ESTOQUE_ML_FETCH_TIMEOUT" default:"10s"`
}

type WebhookConfig struct {
	// OrderLockTTL bounds how long a single delivery may hold the
	// per-order processing lock.
	OrderLockTTL time.Duration `envconfig:"ESTOQUE_WEBHOOK_ORDER_LOCK_TTL" default:"30s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ESTOQUE_AUTO_MIGRATE" default:"false"`
}
