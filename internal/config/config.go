// Package config declares the environment-driven configuration for every
// binary in the repo. Values are read once at startup with envconfig;
// nothing re-reads the environment after that.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Postgres struct {
	DSN             string        `envconfig:"PG_DSN" required:"true"`
	MaxOpenConns    int           `envconfig:"PG_MAX_OPEN_CONNS" default:"16"`
	MaxIdleConns    int           `envconfig:"PG_MAX_IDLE_CONNS" default:"8"`
	ConnMaxIdleTime time.Duration `envconfig:"PG_CONN_MAX_IDLE_TIME" default:"5m"`
	ConnMaxLifetime time.Duration `envconfig:"PG_CONN_MAX_LIFETIME" default:"30m"`
}

type Redis struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// RateLimit configures the per-user fixed-window request limiter.
type RateLimit struct {
	Requests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"60"`
	Window   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// Crash configures the shared crash round clock.
type Crash struct {
	BettingDuration time.Duration `envconfig:"CRASH_BETTING_DURATION" default:"5s"`
	Intermission    time.Duration `envconfig:"CRASH_INTERMISSION" default:"3s"`
	GrowthRate      float64       `envconfig:"CRASH_GROWTH_RATE" default:"0.07"`
	TickInterval    time.Duration `envconfig:"CRASH_TICK_INTERVAL" default:"100ms"`
}

// API is the full configuration of the api binary.
type API struct {
	Port            string        `envconfig:"APP_PORT" default:"8080"`
	LogLevel        string        `envconfig:"APP_LOG_LEVEL" default:"info"`
	ShutdownTimeout time.Duration `envconfig:"APP_SHUTDOWN_TIMEOUT" default:"15s"`

	// AdminToken guards the /admin endpoints. An empty token disables
	// them entirely rather than leaving them open.
	AdminToken string `envconfig:"APP_ADMIN_TOKEN"`

	// MaxBetCents caps a single bet across all games.
	MaxBetCents int64 `envconfig:"APP_MAX_BET_CENTS" default:"100000"`

	// SessionTTL is how long an untouched mines or tower session may
	// stay open before the expiry job forfeits it.
	SessionTTL time.Duration `envconfig:"APP_SESSION_TTL" default:"24h"`

	Postgres  Postgres
	Redis     Redis
	RateLimit RateLimit
	Crash     Crash
}

// Migrator is the configuration of the migrator binary.
type Migrator struct {
	DSN      string `envconfig:"PG_DSN" required:"true"`
	LogLevel string `envconfig:"APP_LOG_LEVEL" default:"info"`
	AppEnv   string `envconfig:"APP_ENV" default:""`
}

func LoadAPI() (*API, error) {
	cfg := new(API)

	err := envconfig.Process("", cfg)
	if err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	return cfg, nil
}

func LoadMigrator() (*Migrator, error) {
	cfg := new(Migrator)

	err := envconfig.Process("", cfg)
	if err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	return cfg, nil
}
