// Package config loads server settings from TIMECLOCK_* environment variables.
package config

import (
	"context"
	"fmt"
	"time"
	_ "time/tzdata" // zone database for hosts without one

	"github.com/sethvargo/go-envconfig"
	"github.com/shopspring/decimal"
)

type Server struct {
	ListenAddr     string   `env:"LISTEN_ADDR, default=:8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS, default=http://localhost:5173,http://localhost:8080"`
}

type Log struct {
	Level  string `env:"LEVEL, default=info"`
	Format string `env:"FORMAT, default=json"`
}

type Config struct {
	Server        Server `env:",prefix=TIMECLOCK_"`
	Log           Log    `env:",prefix=TIMECLOCK_LOG_"`
	DBPath        string `env:"TIMECLOCK_DB_PATH, default=timeclock.db"`
	Timezone      string `env:"TIMECLOCK_TIMEZONE, default=America/Sao_Paulo"`
	WorkloadHours string `env:"TIMECLOCK_WORKLOAD_HOURS, default=8"`
}

// Load reads the process environment.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

// LoadFrom reads from an explicit map, for tests.
func LoadFrom(ctx context.Context, env map[string]string) (*Config, error) {
	return load(ctx, envconfig.MapLookuper(env))
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	})
	if err != nil {
		return nil, err
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	if _, err := cfg.Workload(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMECLOCK_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Workload parses WorkloadHours as the target daily hours.
func (c *Config) Workload() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(c.WorkloadHours)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid TIMECLOCK_WORKLOAD_HOURS %q: %w", c.WorkloadHours, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid TIMECLOCK_WORKLOAD_HOURS %q: must not be negative", c.WorkloadHours)
	}
	return d, nil
}
