package bootstrap

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/payos-hq/payos-sandbox/config"
	"github.com/payos-hq/payos-sandbox/internal/storage/postgres"
)

// OpenDB opens the settlement ledger pool. Returns nil when the archive
// is not configured; the sandbox degrades to redis-only in that case.
func OpenDB(ctx context.Context, cfg *config.DatabaseConfig) *pgxpool.Pool {
	if !cfg.ArchiveEnabled {
		log.Println("Settlement ledger disabled (no DB_HOST configured)")
		return nil
	}

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		log.Printf("Settlement ledger unavailable, continuing without archive: %v", err)
		return nil
	}

	return pool
}
