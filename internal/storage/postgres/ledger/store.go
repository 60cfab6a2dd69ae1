package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/payos-hq/payos-sandbox/internal/ucp/domain"
)

// Store archives terminal settlements to postgres for durable audit.
// Redis remains the hot store; the ledger is append-mostly, with the
// upsert making re-archival of the same settlement idempotent.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new ledger Store
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Archive upserts a terminal settlement into the ledger.
func (s *Store) Archive(ctx context.Context, stl *domain.Settlement) error {
	recipient, err := json.Marshal(stl.Recipient)
	if err != nil {
		return fmt.Errorf("failed to marshal recipient: %w", err)
	}
	metadata, err := json.Marshal(stl.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	const sql = `
INSERT INTO settlement_ledger
  (settlement_id, corridor, status, from_amount, from_currency, to_amount, to_currency,
   fx_rate, fees, transfer_id, failure_reason, recipient, metadata, created_at, completed_at, archived_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now())
ON CONFLICT (settlement_id) DO UPDATE
  SET status = EXCLUDED.status,
      transfer_id = EXCLUDED.transfer_id,
      failure_reason = EXCLUDED.failure_reason,
      completed_at = EXCLUDED.completed_at,
      archived_at = now()`

	_, err = s.pool.Exec(ctx, sql,
		stl.ID,
		stl.Corridor,
		stl.Status,
		stl.Quote.FromAmount,
		stl.Quote.FromCurrency,
		stl.Quote.ToAmount,
		stl.Quote.ToCurrency,
		stl.Quote.FXRate,
		stl.Quote.Fees,
		nullable(stl.TransferID),
		nullable(stl.FailureReason),
		recipient,
		metadata,
		stl.CreatedAt,
		stl.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to archive settlement: %w", err)
	}

	return nil
}

// GetArchived reads one archived settlement back, mainly for audits.
func (s *Store) GetArchived(ctx context.Context, settlementID string) (*domain.Settlement, error) {
	const sql = `
SELECT settlement_id, corridor, status, from_amount, from_currency, to_amount, to_currency,
       fx_rate, fees, COALESCE(transfer_id, ''), COALESCE(failure_reason, ''),
       recipient, metadata, created_at, completed_at
  FROM settlement_ledger
 WHERE settlement_id = $1`

	var (
		stl           domain.Settlement
		recipientJSON []byte
		metadataJSON  []byte
	)
	row := s.pool.QueryRow(ctx, sql, settlementID)
	err := row.Scan(
		&stl.ID,
		&stl.Corridor,
		&stl.Status,
		&stl.Quote.FromAmount,
		&stl.Quote.FromCurrency,
		&stl.Quote.ToAmount,
		&stl.Quote.ToCurrency,
		&stl.Quote.FXRate,
		&stl.Quote.Fees,
		&stl.TransferID,
		&stl.FailureReason,
		&recipientJSON,
		&metadataJSON,
		&stl.CreatedAt,
		&stl.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSettlementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read archived settlement: %w", err)
	}

	if err := json.Unmarshal(recipientJSON, &stl.Recipient); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipient: %w", err)
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &stl.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &stl, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
