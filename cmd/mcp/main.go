package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/payos-hq/payos-sandbox/config"
	"github.com/payos-hq/payos-sandbox/internal/bootstrap"
	"github.com/payos-hq/payos-sandbox/internal/mcp"
	"github.com/payos-hq/payos-sandbox/internal/simulation"
	"github.com/payos-hq/payos-sandbox/internal/ucp/repository"
	ucpservice "github.com/payos-hq/payos-sandbox/internal/ucp/service"
)

// The MCP entrypoint runs the payment tools over stdio with its own
// in-process progression engine, so an agent gets settlement finality
// without the HTTP server running.
func main() {
	// MCP clients own stdout; keep logs on stderr only.
	log.SetPrefix("[payos-sandbox-mcp] ")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.MCP.Transport != "stdio" {
		log.Fatalf("unsupported MCP transport %q", cfg.MCP.Transport)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	quoteRepo := repository.NewQuoteRepository(redisClient)
	tokenRepo := repository.NewTokenRepository(redisClient)
	settlementRepo := repository.NewSettlementRepository(redisClient)

	quotes := ucpservice.NewQuoteService(quoteRepo, cfg.Sandbox.QuoteTTL)
	settlements := ucpservice.NewSettlementService(
		quotes, tokenRepo, settlementRepo,
		cfg.Sandbox.TokenTTL, cfg.Sandbox.SubmitDelay, cfg.Sandbox.SettleDelay,
	)

	engine := simulation.NewEngine(settlementRepo, nil, nil, cfg.Sandbox.SubmitDelay, cfg.Sandbox.SettleDelay)
	go engine.Run(ctx)

	server := mcp.NewServer(cfg.App.Version, quotes, settlements)
	if err := server.Serve(ctx); err != nil {
		log.Fatalf("mcp server stopped: %v", err)
	}
}
