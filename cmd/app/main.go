// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"mindmend/internal/config"
	"mindmend/internal/domain/ports/repository"
	"mindmend/internal/engine"
	"mindmend/internal/infra/api"
	"mindmend/internal/infra/logging"
	"mindmend/internal/infra/metrics"
	red "mindmend/internal/infra/redis"
	tele "mindmend/internal/infra/telegram"
	"mindmend/internal/usecase"
)

// set with -ldflags "-X main.version=... -X main.commit=..."
var (
	version = "dev"
	commit  = "none"
)

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "", "path to YAML config file (default $MINDMEND_CONFIG or config.yaml)")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted text)")
	flag.Parse()

	cfg, err := config.LoadConfig(config.ResolvePath(*cfgPath), *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("mindmend stopped")
	}
	logger.Info().Msg("mindmend stopped")
}

func run(cfg *config.Config, logger *zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}
	if cfg.Metrics.On() {
		metrics.MustRegister()
		metrics.SetBuildInfo(version, commit)
	}

	// ---- Engine ----
	eng, err := engine.Default()
	if err != nil {
		return fmt.Errorf("lexicon: %w", err)
	}
	st := eng.Lexicon().Stats()
	logger.Info().Int("themes", st.Themes).Int("distortions", st.Distortions).Msg("lexicon loaded")

	// ---- Redis (optional) ----
	var (
		cache   repository.ResponseCache
		limiter repository.RateLimiter
	)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer redisClient.Close()
		cache = red.NewResponseCache(redisClient, cfg.Redis.TTL)
		limiter = red.NewRateLimiter(redisClient)
		logger.Info().Dur("ttl", cfg.Redis.TTL).Msg("redis cache enabled")
	}

	// ---- Use case ----
	respondUC := usecase.NewRespondUseCase(eng, cache, cfg.Server.HistoryLimit, logger, cfg.Runtime.Dev)

	// ---- HTTP ----
	var auth *api.Authenticator
	if cfg.Auth.JWTSecret != "" {
		auth = api.NewAuthenticator(cfg.Auth.JWTSecret)
	}
	srv := api.NewServer(respondUC, cfg, limiter, auth, logger)
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// ---- Telegram (optional) ----
	if cfg.Bot.Token != "" {
		bot, err := tele.NewRealTelegramBotAdapter(cfg, respondUC, limiter, logger)
		if err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
		g.Go(func() error { return bot.StartPolling(gctx) })
	}

	// ---- Graceful shutdown ----
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
