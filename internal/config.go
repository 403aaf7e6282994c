package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/samber/lo"
)

type Config struct {
	Host               string        `env:"HOST,default=0.0.0.0"`
	Port               int           `env:"PORT,default=8080"`
	BadgerFilepath     string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel           string        `env:"LOG_LEVEL,required=true"`
	SweepInterval      time.Duration `env:"SWEEP_INTERVAL,default=15s"`
	IdleThreshold      time.Duration `env:"IDLE_THRESHOLD,default=10s"`
	RestartInterval    time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
	CorsAllowedOrigins string        `env:"CORS_ALLOWED_ORIGINS,default=*"`
	RateLimitRPS       float64       `env:"RATE_LIMIT_RPS,default=0"`
	RateLimitBurst     int           `env:"RATE_LIMIT_BURST,default=20"`
	DebugInspectorPort int           `env:"DEBUG_INSPECTOR_PORT,default=0"`
}

// Load reads the configuration from an environment set and validates it.
func Load(es env.EnvSet) (Config, error) {
	var config Config
	if err := env.Unmarshal(es, &config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be in 1..65535, got %d", c.Port)
	}
	intervals := []lo.Tuple2[string, time.Duration]{
		lo.T2("SWEEP_INTERVAL", c.SweepInterval),
		lo.T2("IDLE_THRESHOLD", c.IdleThreshold),
		lo.T2("RESTART_INTERVAL", c.RestartInterval),
		lo.T2("SHUTDOWN_TIMEOUT", c.ShutdownTimeout),
	}
	for _, interval := range intervals {
		if interval.B <= 0 {
			return fmt.Errorf("%s must be positive, got %s", interval.A, interval.B)
		}
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be positive when rate limiting is on, got %d", c.RateLimitBurst)
	}
	return nil
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas, dropping blanks.
func (c Config) AllowedOrigins() []string {
	origins := lo.Map(strings.Split(c.CorsAllowedOrigins, ","), func(o string, _ int) string {
		return strings.TrimSpace(o)
	})
	return lo.Compact(origins)
}
