package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"

	"github.com/dev-abubakarsharif/chatdotfun/internal/engine"
	apperrors "github.com/dev-abubakarsharif/chatdotfun/internal/errors"
	"github.com/dev-abubakarsharif/chatdotfun/internal/health"
	"github.com/dev-abubakarsharif/chatdotfun/internal/market"
	"github.com/dev-abubakarsharif/chatdotfun/internal/portfolio"
	"github.com/dev-abubakarsharif/chatdotfun/internal/ratelimit"
	"github.com/dev-abubakarsharif/chatdotfun/internal/server"
	"github.com/dev-abubakarsharif/chatdotfun/internal/state"
	"github.com/dev-abubakarsharif/chatdotfun/internal/token"
	"github.com/dev-abubakarsharif/chatdotfun/internal/transport/telegram"
	"github.com/dev-abubakarsharif/chatdotfun/internal/wallet"
	"github.com/dev-abubakarsharif/chatdotfun/pkg/config"
	"github.com/dev-abubakarsharif/chatdotfun/pkg/graceful"
	"github.com/dev-abubakarsharif/chatdotfun/pkg/logger"
	"github.com/dev-abubakarsharif/chatdotfun/pkg/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.Sentry.Enabled() {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.AppEnv,
		}); err != nil {
			slog.Error("failed to init sentry", slog.Any("error", err))
			os.Exit(1)
		}
		defer sentry.Flush(2 * time.Second)
	}

	log, levelVar := logger.New(logger.Options{
		Level:         cfg.Log.Level,
		Format:        cfg.Log.Format,
		File:          cfg.Log.File,
		MaxSizeMB:     cfg.Log.MaxSizeMB,
		MaxBackups:    cfg.Log.MaxBackups,
		MaxAgeDays:    cfg.Log.MaxAgeDays,
		SentryEnabled: cfg.Sentry.Enabled(),
	})
	slog.SetDefault(log)

	log.Info("starting chatdotfun",
		slog.String("env", cfg.AppEnv),
		slog.String("port", cfg.Server.Port),
		slog.String("log_level", cfg.Log.Level),
	)

	// Core state. Everything is in memory; a restart wipes wallets, tokens
	// and holdings.
	m := market.NewModel(log,
		market.WithBasePrice(cfg.Market.BasePrice),
		market.WithScale(cfg.Market.Scale),
		market.WithFlatTokensPerSol(cfg.Market.FlatTokensPerSol),
	)
	wallets := wallet.NewRegistry(log)
	tokens := token.NewRegistry(m, log)
	ledger := portfolio.NewLedger(tokens, m, log)
	fsm := state.NewMachine(state.NewMemoryStorage(), log)

	errHandler := apperrors.NewHandler(log, cfg.Sentry.Enabled())
	eng := engine.New(fsm, wallets, tokens, ledger, m, errHandler, log)

	checker := health.NewChecker(log)
	checker.AddCheck("market", health.NewMarketChecker(m))

	limiter, redisClient := buildLimiter(ctx, cfg, log)
	if redisClient != nil {
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				log.Warn("error closing redis client", slog.Any("error", cerr))
			}
		}()
		checker.AddCheck("redis", health.NewRedisChecker(redisClient))
	}

	// Config hot reload adjusts the log level without a restart.
	config.Watch(v, log, func(updated *config.Config) {
		levelVar.Set(logger.ParseLevel(updated.Log.Level))
	})

	stateCollector := metrics.NewStateCollector(fsm, log)
	go stateCollector.Run(ctx)

	if cfg.Telegram.Enabled {
		tgBot, err := telegram.New(cfg.Telegram.Token, cfg.Telegram.PollTimeout, eng, log)
		if err != nil {
			log.Error("failed to start telegram bot", slog.Any("error", err))
			os.Exit(1)
		}
		checker.AddCheck("telegram", health.NewTelegramChecker(tgBot.Telebot()))

		go tgBot.Start()
		defer tgBot.Stop()
	}

	webhookSrv := server.New(eng, limiter, server.RateLimitSettings{
		Enabled: cfg.RateLimit.Enabled,
		Limit:   cfg.RateLimit.Limit,
		Window:  cfg.RateLimit.Window,
	}, checker, log)

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           webhookSrv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if err := graceful.NewServer(log, httpSrv, cfg.Server.ShutdownTimeout).ListenAndServe(ctx); err != nil {
		log.Error("http server error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("chatdotfun shut down cleanly")
}

// buildLimiter picks the Redis backend when an address is configured,
// otherwise the in-memory sliding window with a background janitor.
func buildLimiter(ctx context.Context, cfg *config.Config, log *slog.Logger) (ratelimit.Limiter, *redis.Client) {
	if !cfg.RateLimit.Enabled {
		return nil, nil
	}

	if cfg.RateLimit.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RateLimit.RedisAddr})
		return ratelimit.NewRedisLimiter(client, log), client
	}

	mem := ratelimit.NewMemoryLimiter(log)
	go mem.RunCleanup(ctx, time.Minute, 10*cfg.RateLimit.Window)
	return mem, nil
}
