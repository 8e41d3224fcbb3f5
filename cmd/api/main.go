package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "place_reviews/internal/adapters/http_server"
	"place_reviews/internal/adapters/observability"
	redisad "place_reviews/internal/adapters/redis"
	"place_reviews/internal/domain"
	"place_reviews/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// cache is optional; results are only cached when both address and ttl are set
	var cache domain.Cache
	if cfg.RedisAddr != "" && cfg.CacheTTL > 0 {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rc.Ping(pingCtx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis not reachable, continuing without it")
		}
		cancel()
		cache = rc
	}

	reviews, err := shared.NewAggregationService(cfg, cfg.ReviewsProvider, cache)
	if err != nil {
		log.Fatal().Err(err).Msg("reviews provider")
	}
	simulate, err := shared.NewAggregationService(cfg, cfg.SimulateProvider, cache)
	if err != nil {
		log.Fatal().Err(err).Msg("simulate provider")
	}

	// http
	srv := server.New(server.Options{RequestTimeout: cfg.RequestTimeout, RateLimitRPS: cfg.RateLimitRPS})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Reviews: reviews, Simulate: simulate})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
