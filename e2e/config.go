package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// CHAT_ADDR targets an already running server. Empty starts one in process.
	ChatAddr string `envconfig:"CHAT_ADDR"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
	// E2E_IDLE_THRESHOLD is the eviction threshold of the in-process server
	IdleThreshold time.Duration `envconfig:"E2E_IDLE_THRESHOLD" default:"2s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
