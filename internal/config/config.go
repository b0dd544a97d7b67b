// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import "time"

// Config holds all application configuration loaded from environment variables.
// This struct uses github.com/caarlos0/env for automatic environment variable parsing.
type Config struct {
	// ============================================================
	// Server configuration
	// ============================================================
	GRPCPort    int    `env:"GRPC_PORT" envDefault:"6565"`
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8000"`
	MetricsPort int    `env:"METRICS_PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"WarDaddy"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// ============================================================
	// Redis configuration (client state: sessions, webhook URL)
	// ============================================================
	RedisEnabled      bool          `env:"REDIS_ENABLED" envDefault:"false"`
	RedisHost         string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort         string        `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword     string        `env:"REDIS_PASSWORD"`
	RedisKeyPrefix    string        `env:"REDIS_KEY_PREFIX" envDefault:"wardaddy:"`
	RedisMaxRetries   int           `env:"REDIS_MAX_RETRIES" envDefault:"5"`
	RedisRetryDelayMs int           `env:"REDIS_RETRY_DELAY_MS" envDefault:"1000"`
	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// ============================================================
	// Board and alert pipeline
	// ============================================================
	ConfigPath      string        `env:"CONFIG_PATH" envDefault:"config/pipeline.yaml"`
	NotifyInterval  time.Duration `env:"NOTIFY_INTERVAL" envDefault:"1m"`
	DisplayInterval time.Duration `env:"DISPLAY_INTERVAL" envDefault:"1s"`
	// AlertWindow falls back to NotifyInterval when unset
	AlertWindow time.Duration `env:"ALERT_WINDOW"`
	ClockOffset time.Duration `env:"CLOCK_OFFSET" envDefault:"0s"`

	// ============================================================
	// Discord
	// ============================================================
	DiscordEnabled   bool          `env:"DISCORD_ENABLED" envDefault:"false"`
	DiscordBotToken  string        `env:"DISCORD_BOT_TOKEN"`
	DiscordAppID     string        `env:"DISCORD_APP_ID"`
	DiscordGuildID   string        `env:"DISCORD_GUILD_ID"`
	DiscordChannelID string        `env:"DISCORD_NOTIFICATION_CHANNEL_ID"`
	DiscordBotRole   string        `env:"DISCORD_BOT_ROLE" envDefault:"ADMIN"`
	DiscordWebhook   string        `env:"DISCORD_WEBHOOK_URL"`
	WebhookTimeout   time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"10s"`

	// ============================================================
	// Telemetry configuration
	// ============================================================
	OtelEnabled  bool   `env:"OTEL_ENABLED" envDefault:"false"`
	OtelEndpoint string `env:"OTEL_EXPORTER_ZIPKIN_ENDPOINT"`
}
