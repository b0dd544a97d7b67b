// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Load reads configuration from environment variables.
// It attempts to load from .env file first (for local development),
// then parses environment variables into the Config struct.
func Load() (*Config, error) {
	// In production (Docker/K8s), environment variables are injected directly
	if err := godotenv.Load(); err != nil {
		logrus.Warnf("no .env file found or error loading it: %v (this is normal in production)", err)
	} else {
		logrus.Infof("loaded environment variables from .env file")
	}

	return Parse()
}

// Parse reads configuration from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}

	if cfg.AlertWindow == 0 {
		cfg.AlertWindow = cfg.NotifyInterval
	}

	return cfg, nil
}

// Validate performs custom validation on the configuration.
func (c *Config) Validate() error {
	ports := []struct {
		name string
		port int
	}{
		{"GRPC_PORT", c.GRPCPort},
		{"HTTP_PORT", c.HTTPPort},
		{"METRICS_PORT", c.MetricsPort},
	}
	for _, p := range ports {
		if p.port < 1 || p.port > 65535 {
			return fmt.Errorf("invalid %s: %d (must be 1-65535)", p.name, p.port)
		}
	}

	if c.NotifyInterval < time.Second {
		return fmt.Errorf("invalid NOTIFY_INTERVAL: %v (must be at least 1s)", c.NotifyInterval)
	}
	if c.DisplayInterval <= 0 {
		return fmt.Errorf("invalid DISPLAY_INTERVAL: %v (must be positive)", c.DisplayInterval)
	}

	// a window narrower than the poll cadence lets crossings slip between passes
	if c.AlertWindow < c.NotifyInterval {
		return fmt.Errorf("invalid ALERT_WINDOW: %v (must be at least NOTIFY_INTERVAL %v)", c.AlertWindow, c.NotifyInterval)
	}
	if c.AlertWindow > 15*time.Minute {
		return fmt.Errorf("invalid ALERT_WINDOW: %v (must not exceed 15m)", c.AlertWindow)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("invalid SESSION_TTL: %v (must be positive)", c.SessionTTL)
	}
	if c.WebhookTimeout <= 0 {
		return fmt.Errorf("invalid WEBHOOK_TIMEOUT: %v (must be positive)", c.WebhookTimeout)
	}

	if c.DiscordEnabled {
		if c.DiscordBotToken == "" {
			return fmt.Errorf("DISCORD_BOT_TOKEN is required when DISCORD_ENABLED is set")
		}
		if c.DiscordAppID == "" {
			return fmt.Errorf("DISCORD_APP_ID is required when DISCORD_ENABLED is set")
		}
	}

	return nil
}

// RedisRetryDelay is the initial delay between Redis connection attempts
func (c *Config) RedisRetryDelay() time.Duration {
	return time.Duration(c.RedisRetryDelayMs) * time.Millisecond
}
