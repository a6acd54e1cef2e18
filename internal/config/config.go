package config

import (
	"fmt"

	"github.com/andrew-solarstorm/go-packages/common"
)

type ServerEnv = string

var (
	DevEnv     ServerEnv = "dev"
	StagingEnv ServerEnv = "staging"
	ProdEnv    ServerEnv = "prod"
)

const (
	GENERAL_CONFIG_KEY    = "general-config"
	RPC_CONFIG_KEY        = "rpc-config"
	AGGREGATOR_CONFIG_KEY = "aggregator-config"
	VENUE_CONFIG_KEY      = "venue-config"
)

type GeneralConfig struct {
	HTTPPort string
	HTTPHost string
	Env      string
	LogLevel string

	// Per-client token bucket applied to every API route.
	// Default: 10 requests per second, burst 20
	RateLimitRPS   int
	RateLimitBurst int

	// ShutdownTimeoutSecs bounds graceful HTTP shutdown.
	// Default: 5
	ShutdownTimeoutSecs int
}

func (gc *GeneralConfig) Key() string {
	return GENERAL_CONFIG_KEY
}

func (gc *GeneralConfig) Load() error {
	gc.HTTPPort = common.GetEnvOrDefault("HTTP_PORT", "8080")
	gc.HTTPHost = common.GetEnvOrDefault("HTTP_HOST", "localhost")
	gc.Env = common.GetEnvOrDefault("ENV", DevEnv)
	gc.LogLevel = common.GetEnvOrDefault("LOG_LEVEL", "INFO")
	gc.RateLimitRPS = common.GetEnvOrDefaultInt("HTTP_RATE_LIMIT_RPS", 10)
	gc.RateLimitBurst = common.GetEnvOrDefaultInt("HTTP_RATE_LIMIT_BURST", 20)
	gc.ShutdownTimeoutSecs = common.GetEnvOrDefaultInt("HTTP_SHUTDOWN_TIMEOUT_SECONDS", 5)
	return gc.Validate()
}

func (gc *GeneralConfig) Validate() error {
	if gc.HTTPPort == "" || gc.HTTPHost == "" {
		return fmt.Errorf("invalid server config: empty host or port")
	}
	switch gc.Env {
	case DevEnv, StagingEnv, ProdEnv:
	default:
		return fmt.Errorf("invalid server config: unknown env %q", gc.Env)
	}
	if gc.RateLimitRPS <= 0 || gc.RateLimitBurst < gc.RateLimitRPS {
		return fmt.Errorf("invalid server config: rate limit %d/s burst %d", gc.RateLimitRPS, gc.RateLimitBurst)
	}
	if gc.ShutdownTimeoutSecs <= 0 {
		return fmt.Errorf("invalid server config: shutdown timeout must be positive")
	}
	return nil
}
