package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/payos-hq/payos-sandbox/internal/ucp/domain"
)

const quoteKeyPrefix = "ucp:quote:" // Key for quote data: ucp:quote:{quote_id}

// QuoteRepository handles Redis operations for FX quotes. Quote keys
// expire with the quote itself, so redemption of a stale quote fails on
// lookup.
type QuoteRepository struct {
	client *redis.Client
}

// NewQuoteRepository creates a new QuoteRepository
func NewQuoteRepository(client *redis.Client) *QuoteRepository {
	return &QuoteRepository{client: client}
}

// Create stores a quote with a TTL matching its expiry.
func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote, ttl time.Duration) error {
	if quote.QuoteID == "" {
		quote.QuoteID = "qt_" + uuid.New().String()
	}
	if quote.CreatedAt.IsZero() {
		quote.CreatedAt = time.Now().UTC()
	}
	quote.ExpiresAt = quote.CreatedAt.Add(ttl)

	data, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}

	if err := r.client.Set(ctx, r.quoteKey(quote.QuoteID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store quote: %w", err)
	}

	return nil
}

// Get retrieves a quote by its ID.
func (r *QuoteRepository) Get(ctx context.Context, quoteID string) (*domain.Quote, error) {
	data, err := r.client.Get(ctx, r.quoteKey(quoteID)).Result()
	if err == redis.Nil {
		return nil, domain.ErrQuoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	var quote domain.Quote
	if err := json.Unmarshal([]byte(data), &quote); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quote: %w", err)
	}

	return &quote, nil
}

func (r *QuoteRepository) quoteKey(quoteID string) string {
	return fmt.Sprintf("%s%s", quoteKeyPrefix, quoteID)
}
