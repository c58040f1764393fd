package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Env               string        `env:"ENV" env-default:"local"`
	ServerHost        string        `env:"SERVER_HOST" env-default:""`
	ServerPort        string        `env:"SERVER_PORT" env-default:"8080"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"5s"`
	QueryDefaultLimit int           `env:"QUERY_DEFAULT_LIMIT" env-default:"100"`

	DB  DBConfig
	Log LogConfig
}

type DBConfig struct {
	Driver   string `env:"DB_DRIVER" env-default:"postgres"`
	Host     string `env:"DB_HOST" env-default:"localhost"`
	Port     string `env:"DB_PORT" env-default:"5432"`
	User     string `env:"DB_USER" env-default:"tasks_user"`
	Password string `env:"DB_PASSWORD" env-default:"tasks_pass"`
	Name     string `env:"DB_NAME" env-default:"tasks_db"`
	SSLMode  string `env:"DB_SSLMODE" env-default:"disable"`
	// Path is the sqlite database file, used when Driver is sqlite.
	Path string `env:"DB_PATH" env-default:"tasks.db"`
}

// DSN returns the postgres connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type LogConfig struct {
	// Level overrides the level implied by Env when set.
	Level      string `env:"LOG_LEVEL" env-default:""`
	File       string `env:"LOG_FILE" env-default:""`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" env-default:"100"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" env-default:"5"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" env-default:"30"`
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := new(Config)
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("unknown env: %s", c.Env)
	}
	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown db driver: %s", c.DB.Driver)
	}
	if c.QueryDefaultLimit < 0 {
		return fmt.Errorf("QUERY_DEFAULT_LIMIT must not be negative")
	}
	return nil
}
