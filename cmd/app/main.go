// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"telegram-nfc-access/internal/application"
	"telegram-nfc-access/internal/config"
	"telegram-nfc-access/internal/domain/ports/adapter"
	tele "telegram-nfc-access/internal/infra/adapters/telegram"
	"telegram-nfc-access/internal/infra/api"
	pg "telegram-nfc-access/internal/infra/db/postgres"
	"telegram-nfc-access/internal/infra/i18n"
	"telegram-nfc-access/internal/infra/logging"
	"telegram-nfc-access/internal/infra/metrics"
	red "telegram-nfc-access/internal/infra/redis"
	"telegram-nfc-access/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("schema bootstrap failed")
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- i18n ----
	translator, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		logger.Fatal().Err(err).Msg("translator init failed")
	}

	// ---- Repositories ----
	keyRepo := pg.NewKeyRepo(pool)
	userRepo := pg.NewUserRepo(pool)
	logRepo := pg.NewAccessLogRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(userRepo, txManager, logger)
	claimUC := usecase.NewClaimUseCase(keyRepo, logRepo, txManager, logger)
	adminUC := usecase.NewKeyAdminUseCase(keyRepo, logRepo, logger)

	// ---- Facade ----
	facade := application.NewBotFacade(userUC, claimUC, adminUC, cfg.Access, translator, logger)

	// ---- Telegram ----
	// Dev mode swaps in the noop adapter: messages and invite links are only
	// logged, so the claim flows can be exercised without a bot token.
	var issuer adapter.TelegramBotAdapter
	if cfg.Runtime.Dev {
		issuer = tele.NewNoopBotAdapter()
		facade.BindIssuer(issuer)
		logger.Info().Msg("dev mode: noop telegram adapter, polling disabled")
	} else {
		botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, facade, rateLimiter, translator, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram init failed")
		}
		issuer = botAdapter
		facade.BindIssuer(botAdapter)

		if mode := strings.ToLower(cfg.Bot.Mode); mode != "" && mode != "polling" {
			logger.Warn().Str("mode", mode).Msg("bot mode not implemented; falling back to polling")
		}
		go func() {
			if err := botAdapter.StartPolling(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("telegram polling stopped")
			}
		}()
	}
	logger.Info().
		Str("bot", issuer.Username()).
		Int64("target_chat", cfg.Access.TargetChatID).
		Msg("bot started")

	// ---- Admin HTTP server (health + metrics) ----
	srv := api.NewServer(pool)
	mux := http.NewServeMux()
	srv.Register(mux)
	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Admin.Port), Handler: mux}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("admin http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("admin http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()
	_ = server.Shutdown(context.Background())
}
