package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"buckaroopay/internal/config"
	"buckaroopay/internal/core/reconcile"
	"buckaroopay/internal/gateway"
	httpx "buckaroopay/internal/http"
	"buckaroopay/internal/provider"
	"buckaroopay/internal/provider/buckaroo"
	"buckaroopay/internal/services/checkout"
	"buckaroopay/internal/store/postgres"
	redisstore "buckaroopay/internal/store/redis"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init DB
	pool := postgres.MustOpen(ctx, cfg.DB.DSN)
	defer pool.Close()
	repo := postgres.NewRepo(pool)

	rdb, err := redisstore.Open(ctx, cfg.Redis.Addr)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect fail")
	}
	defer rdb.Close()

	// Buckaroo is the only provider this host ships
	client := gateway.New(gateway.WithHTTPClient(gateway.DefaultTransport(cfg.Gateway.TimeoutSec, cfg.Gateway.MaxRetries)))
	bk := buckaroo.New(client, repo, buckaroo.WithCulture(cfg.Gateway.Culture))

	registry := provider.NewRegistry()
	registry.RegisterProvider(bk)

	svc := checkout.NewService(checkout.Deps{
		Orders:   repo,
		Settings: repo,
		Locker:   redisstore.NewOrderLocker(rdb, cfg.Redis.LockTTL),
		Plugin:   bk,
		BaseURL:  cfg.App.BaseURL,
		Defaults: cfg.BuckarooDefaults(),
		AESKey:   cfg.Sec.AESKey,
	})

	worker := reconcile.NewWorker(repo, svc, cfg.Reconcile.Every, cfg.Reconcile.MinAge, cfg.Reconcile.Batch)
	go worker.Run(ctx)

	r := httpx.NewRouter(httpx.RouterDependencies{
		AdminToken:       cfg.Sec.AdminToken,
		AESKey:           cfg.Sec.AESKey,
		Checkout:         svc,
		Settings:         repo,
		ProviderRegistry: registry,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.Gateway.TimeoutSec+15) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Msgf("checkout API listening on :%s", cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	cancel()
	ctx2, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	log.Info().Msg("server stopped")
}

func setupLogging(cfg config.Cfg) {
	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
