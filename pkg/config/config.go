package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	Backend BackendConfig
	Store   StoreConfig
	DB      DBConfig
	Redis   RedisConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Store.ensureDriver(); err != nil {
		return nil, err
	}
	if cfg.Store.IsRedis() && cfg.Redis.URL == "" && cfg.Redis.Address == "" {
		return nil, fmt.Errorf("redis session store requires %s or %s", EnvRedisURL, EnvRedisAddr)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SOCIALAI_APP_ENV" required:"true"`
	Port         string `envconfig:"SOCIALAI_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SOCIALAI_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SOCIALAI_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// BackendConfig points the gateway at the remote identity backend.
type BackendConfig struct {
	BaseURL           string `envconfig:"SOCIALAI_BACKEND_BASE_URL" required:"true"`
	LoginPath         string `envconfig:"SOCIALAI_BACKEND_LOGIN_PATH" default:"/webhook/app/api/login"`
	ResetPasswordPath string `envconfig:"SOCIALAI_BACKEND_RESET_PATH" default:"/webhook/app/api/reset-password"`
	CreateUserPath    string `envconfig:"SOCIALAI_BACKEND_CREATE_USER_PATH" default:"/webhook/app/api/create/user"`
}

// StoreConfig selects and parameterizes the session store driver.
type StoreConfig struct {
	Driver   string `envconfig:"SOCIALAI_STORE_DRIVER" default:"file"`
	FilePath string `envconfig:"SOCIALAI_STORE_FILE_PATH" default:"session.json"`
}

func (s StoreConfig) IsFile() bool   { return strings.EqualFold(s.Driver, StoreDriverFile) }
func (s StoreConfig) IsSQLite() bool { return strings.EqualFold(s.Driver, StoreDriverSQLite) }
func (s StoreConfig) IsRedis() bool  { return strings.EqualFold(s.Driver, StoreDriverRedis) }

func (s *StoreConfig) ensureDriver() error {
	switch strings.ToLower(s.Driver) {
	case StoreDriverFile, StoreDriverSQLite, StoreDriverRedis:
		return nil
	}
	return fmt.Errorf("unknown session store driver %q", s.Driver)
}

type DBConfig struct {
	Path            string        `envconfig:"SOCIALAI_DB_PATH" default:"socialai.db"`
	MaxOpenConns    int           `envconfig:"SOCIALAI_DB_MAX_OPEN_CONNS" default:"1"`
	MaxIdleConns    int           `envconfig:"SOCIALAI_DB_MAX_IDLE_CONNS" default:"1"`
	ConnMaxLifetime time.Duration `envconfig:"SOCIALAI_DB_CONN_MAX_LIFETIME" default:"1h"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SOCIALAI_REDIS_URL"`
	Address      string        `envconfig:"SOCIALAI_REDIS_ADDR"`
	Password     string        `envconfig:"SOCIALAI_REDIS_PASSWORD"`
	DB           int           `envconfig:"SOCIALAI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SOCIALAI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SOCIALAI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SOCIALAI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SOCIALAI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SOCIALAI_REDIS_WRITE_TIMEOUT" default:"5s"`
}
