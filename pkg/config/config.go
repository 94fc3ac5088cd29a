package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "taproom"

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App        AppConfig
	Backend    BackendConfig
	LocalStore LocalStoreConfig
	Redis      RedisConfig
	Session    SessionConfig
	DevServer  DevServerConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TAPROOM_APP_ENV" default:"development"`
	LogLevel     string `envconfig:"TAPROOM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TAPROOM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// BackendConfig points at the storefront REST API.
type BackendConfig struct {
	BaseURL string        `envconfig:"TAPROOM_BACKEND_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"TAPROOM_BACKEND_TIMEOUT" default:"10s"`
}

// LocalStoreConfig configures the SQLite fallback mirrors.
type LocalStoreConfig struct {
	Path          string `envconfig:"TAPROOM_LOCALSTORE_PATH" default:"taproom.db"`
	AutoMigrate   bool   `envconfig:"TAPROOM_LOCALSTORE_AUTO_MIGRATE" default:"true"`
	DefaultTables int    `envconfig:"TAPROOM_LOCALSTORE_DEFAULT_TABLES" default:"10"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TAPROOM_REDIS_URL"`
	Address      string        `envconfig:"TAPROOM_REDIS_ADDR"`
	Password     string        `envconfig:"TAPROOM_REDIS_PASSWORD"`
	DB           int           `envconfig:"TAPROOM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TAPROOM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TAPROOM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TAPROOM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TAPROOM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TAPROOM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured at all.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// SessionConfig controls where the bearer token is mirrored across restarts.
type SessionConfig struct {
	TokenPath string `envconfig:"TAPROOM_SESSION_TOKEN_PATH" default:".taproom-token"`
}

type DevServerConfig struct {
	Port           string        `envconfig:"TAPROOM_DEVSERVER_PORT" default:"8004"`
	AllowedOrigins []string      `envconfig:"TAPROOM_DEVSERVER_ALLOWED_ORIGINS" default:"*"`
	SessionTTL     time.Duration `envconfig:"TAPROOM_DEVSERVER_SESSION_TTL" default:"12h"`
}
