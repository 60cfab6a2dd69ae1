package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/payos-hq/payos-sandbox/config"
	"github.com/payos-hq/payos-sandbox/internal/bootstrap"
	"github.com/payos-hq/payos-sandbox/internal/facilitator/idempotency"
	facservice "github.com/payos-hq/payos-sandbox/internal/facilitator/service"
	"github.com/payos-hq/payos-sandbox/internal/simulation"
	"github.com/payos-hq/payos-sandbox/internal/storage/postgres/ledger"
	"github.com/payos-hq/payos-sandbox/internal/ucp/repository"
	ucpservice "github.com/payos-hq/payos-sandbox/internal/ucp/service"
)

const serviceName = "payos-sandbox"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	db := bootstrap.OpenDB(ctx, &cfg.Database)
	if db != nil {
		defer db.Close()
	}

	quoteRepo := repository.NewQuoteRepository(redisClient)
	tokenRepo := repository.NewTokenRepository(redisClient)
	settlementRepo := repository.NewSettlementRepository(redisClient)

	quotes := ucpservice.NewQuoteService(quoteRepo, cfg.Sandbox.QuoteTTL)
	settlements := ucpservice.NewSettlementService(
		quotes, tokenRepo, settlementRepo,
		cfg.Sandbox.TokenTTL, cfg.Sandbox.SubmitDelay, cfg.Sandbox.SettleDelay,
	)

	facilitator := facservice.NewFacilitator(idempotency.NewRedisStore(redisClient))

	var archiver simulation.Archiver
	if db != nil {
		store := ledger.NewStore(db)
		archiver = store
		settlements.SetArchive(store)
	}
	var notifier simulation.Notifier
	if cfg.Sandbox.WebhookURL != "" {
		notifier = simulation.NewWebhookNotifier(cfg.Sandbox.WebhookURL, cfg.Sandbox.WebhookSecret)
	}

	engine := simulation.NewEngine(settlementRepo, archiver, notifier, cfg.Sandbox.SubmitDelay, cfg.Sandbox.SettleDelay)
	go engine.Run(ctx)

	sweeper := simulation.NewSweeper(settlementRepo, cfg.Sandbox.TokenTTL)
	if err := sweeper.Start(ctx); err != nil {
		log.Fatalf("failed to start expiry sweeper: %v", err)
	}
	defer sweeper.Stop()

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Config:      cfg,
		Redis:       redisClient,
		DB:          db,
		Quotes:      quotes,
		Settlements: settlements,
		Facilitator: facilitator,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("%s listening on :%s", serviceName, cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
}
