package internal

import (
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	req := require.New(t)

	// Given only the required variables
	config, err := Load(env.EnvSet{
		"BADGER_FILEPATH": "/tmp/chat",
		"LOG_LEVEL":       "DEBUG",
	})

	// Then every other setting falls back to its default
	req.NoError(err)
	req.Equal("0.0.0.0:8080", config.Address())
	req.Equal(15*time.Second, config.SweepInterval)
	req.Equal(10*time.Second, config.IdleThreshold)
	req.Equal(200*time.Millisecond, config.RestartInterval)
	req.Equal(5*time.Second, config.ShutdownTimeout)
	req.Equal([]string{"*"}, config.AllowedOrigins())
	req.Zero(config.RateLimitRPS)
	req.Zero(config.DebugInspectorPort)
}

func TestLoad_Missing_Required(t *testing.T) {
	req := require.New(t)
	_, err := Load(env.EnvSet{"LOG_LEVEL": "INFO"})
	req.Error(err)
}

func TestLoad_Overrides(t *testing.T) {
	req := require.New(t)

	config, err := Load(env.EnvSet{
		"BADGER_FILEPATH":      "/tmp/chat",
		"LOG_LEVEL":            "INFO",
		"PORT":                 "9000",
		"SWEEP_INTERVAL":       "1s",
		"IDLE_THRESHOLD":       "3s",
		"CORS_ALLOWED_ORIGINS": "http://a.test, ,http://b.test",
		"RATE_LIMIT_RPS":       "2.5",
		"RATE_LIMIT_BURST":     "5",
	})

	req.NoError(err)
	req.Equal(9000, config.Port)
	req.Equal(time.Second, config.SweepInterval)
	req.Equal(3*time.Second, config.IdleThreshold)
	req.Equal([]string{"http://a.test", "http://b.test"}, config.AllowedOrigins())
	req.Equal(2.5, config.RateLimitRPS)
	req.Equal(5, config.RateLimitBurst)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		Port:            8080,
		SweepInterval:   time.Second,
		IdleThreshold:   time.Second,
		RestartInterval: time.Second,
		ShutdownTimeout: time.Second,
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "zero sweep interval", mutate: func(c *Config) { c.SweepInterval = 0 }, wantErr: true},
		{name: "negative idle threshold", mutate: func(c *Config) { c.IdleThreshold = -time.Second }, wantErr: true},
		{name: "port out of range", mutate: func(c *Config) { c.Port = 70000 }, wantErr: true},
		{name: "rate limit without burst", mutate: func(c *Config) { c.RateLimitRPS = 1 }, wantErr: true},
		{name: "rate limit with burst", mutate: func(c *Config) { c.RateLimitRPS = 1; c.RateLimitBurst = 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			if tt.wantErr {
				require.Error(t, c.Validate())
			} else {
				require.NoError(t, c.Validate())
			}
		})
	}
}
