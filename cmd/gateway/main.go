package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"flight_gateway/internal/adapters/backend"
	server "flight_gateway/internal/adapters/http_server"
	"flight_gateway/internal/adapters/observability"
	redisad "flight_gateway/internal/adapters/redis"
	"flight_gateway/internal/app"
	"flight_gateway/internal/domain"
	"flight_gateway/internal/shared"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config failed")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	metricsSrv, err := observability.Serve(cfg.MetricsAddr, reg)
	if err != nil {
		log.Fatal().Err(err).Msg("metrics listener")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// backend clients: built once, shared by all requests
	opts := backend.Options{
		Timeout:         cfg.BackendTimeout,
		RPS:             cfg.BackendRPS,
		BreakerFailures: cfg.BreakerFailures,
		BreakerCooldown: cfg.BreakerCooldown,
	}
	flights, err := backend.NewFlightClient(cfg.FlightServiceURL, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("flight client")
	}
	tickets, err := backend.NewTicketClient(cfg.TicketServiceURL, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("ticket client")
	}
	bonus, err := backend.NewBonusClient(cfg.BonusServiceURL, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("bonus client")
	}
	log.Info().
		Str("flight", cfg.FlightServiceURL).
		Str("ticket", cfg.TicketServiceURL).
		Str("bonus", cfg.BonusServiceURL).
		Msg("backends configured")

	var idem domain.IdempotencyStore
	if cfg.RedisAddr != "" {
		store := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.IdempotencyTTL)
		defer store.Close()
		if err := store.Ping(ctx); err != nil {
			// requests fail open while redis is away
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
		}
		idem = store
	}

	// http
	srv := server.New(cfg.RequestTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{G: app.NewGateway(flights, tickets, bonus), Idem: idem})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("gateway listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}
