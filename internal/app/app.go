// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/MattchuPichuu/WarDaddy/internal/bootstrap"
	"github.com/MattchuPichuu/WarDaddy/internal/config"
	"github.com/MattchuPichuu/WarDaddy/internal/server"
	"github.com/MattchuPichuu/WarDaddy/pkg/auth"
	"github.com/MattchuPichuu/WarDaddy/pkg/clock"
	"github.com/MattchuPichuu/WarDaddy/pkg/command"
	"github.com/MattchuPichuu/WarDaddy/pkg/discord"
	"github.com/MattchuPichuu/WarDaddy/pkg/handler"
	"github.com/MattchuPichuu/WarDaddy/pkg/pipeline"
	"github.com/MattchuPichuu/WarDaddy/pkg/service"
	"github.com/cenkalti/backoff/v4"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	actionBuiltin "github.com/MattchuPichuu/WarDaddy/pkg/action/builtin"
)

// App holds all application dependencies and manages the application lifecycle.
type App struct {
	cfg               *config.Config
	grpcServer        *server.GRPCServer
	httpServer        *server.HTTPServer
	metricsServer     *server.MetricsServer
	redisClient       *redis.Client
	bot               *discord.Bot
	manager           *pipeline.Manager
	supervisor        *pipeline.Supervisor
	shutdownTelemetry func(context.Context) error
}

// New creates and initializes a new application instance.
//
// Components are initialized in dependency order:
//  1. Metrics registry (everything else records into it)
//  2. Clock and entity store
//  3. Client state (Redis when enabled, memory otherwise)
//  4. Command service and delivery channels (webhook, Discord bot)
//  5. Alert pipeline (signal → rule → action) and its supervisor
//  6. Servers (gRPC, HTTP)
//  7. Telemetry
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logrus.Info("initializing application...")

	app := &App{cfg: cfg}

	// ============================================================
	// Step 1: Metrics
	// ============================================================
	app.metricsServer = server.NewMetricsServer(cfg.MetricsPort, "/metrics")
	if err := app.metricsServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup metrics server: %w", err)
	}
	mt := app.metricsServer.Metrics()

	// ============================================================
	// Step 2: Clock and entity store
	// ============================================================
	clk := clock.NewReal(cfg.ClockOffset)
	store := service.NewEntityStore(clk, service.EntityStoreConfig{})
	logrus.Infof("entity store ready (clock offset %v)", cfg.ClockOffset)

	// ============================================================
	// Step 3: Client state
	// ============================================================
	clientState, err := app.initClientState(ctx, clk)
	if err != nil {
		return nil, fmt.Errorf("failed to init client state: %w", err)
	}
	if err := seedWebhookURL(ctx, clientState, cfg.DiscordWebhook); err != nil {
		return nil, fmt.Errorf("failed to seed webhook url: %w", err)
	}

	// ============================================================
	// Step 4: Command service and delivery channels
	// ============================================================
	webhook := discord.NewWebhookClient(cfg.WebhookTimeout)

	commands := command.NewService(command.Dependencies{
		Store:       store,
		ClientState: clientState,
		Publisher:   webhook,
		Metrics:     mt,
	})

	deps := &actionBuiltin.Dependencies{
		Webhook:    webhook,
		WebhookURL: clientState,
	}
	if cfg.DiscordEnabled {
		app.bot, err = discord.NewBot(discord.BotConfig{
			Token:     cfg.DiscordBotToken,
			AppID:     cfg.DiscordAppID,
			GuildID:   cfg.DiscordGuildID,
			ChannelID: cfg.DiscordChannelID,
			Role:      auth.ParseRole(cfg.DiscordBotRole),
		}, commands)
		if err != nil {
			return nil, fmt.Errorf("failed to create discord bot: %w", err)
		}
		// assigned only here; a typed nil *Bot is not a nil MessageSender
		deps.Sender = app.bot
	} else {
		logrus.Info("discord bot disabled, channel alerts will only be logged")
	}

	// ============================================================
	// Step 5: Alert pipeline
	// ============================================================
	pipelineConfig, err := pipeline.LoadConfig(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline config from %s: %w", cfg.ConfigPath, err)
	}
	logrus.Infof("loaded pipeline configuration from %s", cfg.ConfigPath)

	processor := bootstrap.InitSignalProcessor(store)

	ruleEngine, ruleRegistry, err := bootstrap.InitRuleEngine(pipelineConfig, cfg.AlertWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to init rule engine: %w", err)
	}

	actionExecutor, actionRegistry, err := bootstrap.InitActionExecutor(pipelineConfig, deps)
	if err != nil {
		return nil, fmt.Errorf("failed to init action executor: %w", err)
	}

	// every rule-to-action mapping in config/pipeline.yaml must name registered ids
	if err := pipeline.ValidateWiring(ruleRegistry, actionRegistry, pipelineConfig); err != nil {
		return nil, fmt.Errorf("pipeline wiring validation failed: %w", err)
	}
	logrus.Info("pipeline wiring validation passed")

	app.manager = bootstrap.InitPipeline(processor, ruleEngine, actionExecutor, pipelineConfig, store,
		pipeline.WithAlertWindow(cfg.AlertWindow),
		pipeline.WithDispatchTimeout(cfg.WebhookTimeout),
		pipeline.WithMetrics(mt),
	)

	app.supervisor = pipeline.NewSupervisor(app.manager,
		pipeline.WithDisplayInterval(cfg.DisplayInterval),
		pipeline.WithNotifyInterval(cfg.NotifyInterval),
	)

	// ============================================================
	// Step 6: Servers
	// ============================================================
	app.grpcServer = server.NewGRPCServer(cfg.GRPCPort, handler.NewBoardServer(commands))
	if err := app.grpcServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup gRPC server: %w", err)
	}

	app.httpServer = server.NewHTTPServer(cfg.HTTPPort, handler.NewAPI(commands, service.NewHealthChecker(app.redisClient)))
	if err := app.httpServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup HTTP server: %w", err)
	}

	// ============================================================
	// Step 7: Telemetry
	// ============================================================
	shutdownTelemetry, err := server.SetupTelemetry(ctx, cfg.OtelEnabled, cfg.OtelEndpoint, cfg.ServiceName, cfg.Environment, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to setup telemetry: %w", err)
	}
	app.shutdownTelemetry = shutdownTelemetry

	logrus.Info("application initialized successfully")

	return app, nil
}

// initClientState picks the Redis store when enabled and the in-memory store otherwise.
func (a *App) initClientState(ctx context.Context, clk clock.Clock) (service.ClientStateStore, error) {
	if !a.cfg.RedisEnabled {
		logrus.Info("Redis disabled, keeping sessions in memory")
		return service.NewMemoryClientStateStore(clk, a.cfg.SessionTTL), nil
	}

	if err := a.initRedis(ctx); err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}

	return service.NewRedisClientStateStore(a.redisClient, service.RedisClientStateStoreConfig{
		KeyPrefix:  a.cfg.RedisKeyPrefix,
		SessionTTL: a.cfg.SessionTTL,
	}), nil
}

// initRedis initializes the Redis client, retrying the first ping with backoff.
func (a *App) initRedis(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:         a.cfg.RedisHost + ":" + a.cfg.RedisPort,
		Password:     a.cfg.RedisPassword,
		DB:           0, // use default DB
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	b := backoff.NewExponentialBackOff()
	if delay := a.cfg.RedisRetryDelay(); delay > 0 {
		b.InitialInterval = delay
	}
	retries := backoff.WithContext(backoff.WithMaxRetries(b, uint64(max(a.cfg.RedisMaxRetries, 0))), ctx)

	err := backoff.Retry(
		func() error {
			_, err := client.Ping(ctx).Result()
			if err != nil {
				logrus.Warnf("Redis connection failed: %v, retrying...", err)
				return err
			}
			return nil
		},
		retries,
	)

	if err != nil {
		_ = client.Close()
		return err
	}

	a.redisClient = client
	logrus.Info("Redis client initialized")
	return nil
}

// seedWebhookURL remembers the configured webhook unless one is already remembered
func seedWebhookURL(ctx context.Context, store service.ClientStateStore, url string) error {
	if url == "" {
		return nil
	}
	if err := discord.ValidateURL(url); err != nil {
		return err
	}

	current, err := store.GetWebhookURL(ctx)
	if err != nil {
		return err
	}
	if current != "" {
		return nil
	}

	logrus.Info("seeded remembered webhook url from DISCORD_WEBHOOK_URL")
	return store.SetWebhookURL(ctx, url)
}
