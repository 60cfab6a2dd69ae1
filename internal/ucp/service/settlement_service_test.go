package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payos-hq/payos-sandbox/internal/ucp/domain"
	"github.com/payos-hq/payos-sandbox/internal/ucp/repository"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func newTestServices(t *testing.T, tokenTTL time.Duration) (*QuoteService, *SettlementService) {
	t.Helper()
	client := setupTestRedis(t)

	quotes := NewQuoteService(repository.NewQuoteRepository(client), 5*time.Minute)
	settlements := NewSettlementService(
		quotes,
		repository.NewTokenRepository(client),
		repository.NewSettlementRepository(client),
		tokenTTL,
		500*time.Millisecond,
		2*time.Second,
	)
	return quotes, settlements
}

func pixRecipient() domain.Recipient {
	return domain.Recipient{
		Type:       "pix",
		PixKey:     "maria@example.com",
		PixKeyType: "email",
		Name:       "Maria Silva",
	}
}

func TestAcquireToken(t *testing.T) {
	ctx := context.Background()

	t.Run("mints a token and a created settlement", func(t *testing.T) {
		_, svc := newTestServices(t, 15*time.Minute)

		token, err := svc.AcquireToken(ctx, &domain.TokenRequest{
			Corridor:  "pix",
			Amount:    100,
			Currency:  "USD",
			Recipient: pixRecipient(),
		})
		require.NoError(t, err)

		assert.NotEmpty(t, token.Token)
		assert.NotEmpty(t, token.SettlementID)
		assert.Equal(t, "pix", token.Corridor)
		assert.Equal(t, 100.0, token.Amount)
		assert.Equal(t, 512.20, token.Quote.ToAmount)

		settlement, err := svc.GetSettlement(ctx, token.SettlementID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCreated, settlement.Status)
		assert.Equal(t, token.Token, settlement.TokenID)
	})

	t.Run("token binding survives a fresh read", func(t *testing.T) {
		_, svc := newTestServices(t, 15*time.Minute)

		token, err := svc.AcquireToken(ctx, &domain.TokenRequest{
			Corridor:  "pix",
			Amount:    100,
			Currency:  "USD",
			Recipient: pixRecipient(),
		})
		require.NoError(t, err)

		// Read twice so the second hit exercises the stored record, not
		// any in-memory copy.
		for i := 0; i < 2; i++ {
			settlement, err := svc.GetSettlement(ctx, token.SettlementID)
			require.NoError(t, err)
			assert.Equal(t, token.Token, settlement.TokenID)
		}
	})

	t.Run("reuses a live quote by ID", func(t *testing.T) {
		quotes, svc := newTestServices(t, 15*time.Minute)

		quote, err := quotes.CreateQuote(ctx, &domain.QuoteRequest{Corridor: "pix", Amount: 100, Currency: "USD"})
		require.NoError(t, err)

		token, err := svc.AcquireToken(ctx, &domain.TokenRequest{
			Corridor:  "pix",
			Amount:    100,
			Currency:  "USD",
			QuoteID:   quote.QuoteID,
			Recipient: pixRecipient(),
		})
		require.NoError(t, err)
		assert.Equal(t, quote.QuoteID, token.Quote.QuoteID)
		assert.Equal(t, quote.ToAmount, token.Quote.ToAmount)
	})

	t.Run("rejects a quote that does not match the request", func(t *testing.T) {
		quotes, svc := newTestServices(t, 15*time.Minute)

		quote, err := quotes.CreateQuote(ctx, &domain.QuoteRequest{Corridor: "pix", Amount: 100, Currency: "USD"})
		require.NoError(t, err)

		_, err = svc.AcquireToken(ctx, &domain.TokenRequest{
			Corridor:  "pix",
			Amount:    200,
			Currency:  "USD",
			QuoteID:   quote.QuoteID,
			Recipient: pixRecipient(),
		})
		assert.ErrorIs(t, err, domain.ErrQuoteNotFound)
	})

	t.Run("rejects an invalid recipient", func(t *testing.T) {
		_, svc := newTestServices(t, 15*time.Minute)

		_, err := svc.AcquireToken(ctx, &domain.TokenRequest{
			Corridor:  "pix",
			Amount:    100,
			Currency:  "USD",
			Recipient: domain.Recipient{Type: "pix", Name: "No Key"},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRecipient)
	})

	t.Run("rejects an out of range amount", func(t *testing.T) {
		_, svc := newTestServices(t, 15*time.Minute)

		_, err := svc.AcquireToken(ctx, &domain.TokenRequest{
			Corridor:  "pix",
			Amount:    50000,
			Currency:  "USD",
			Recipient: pixRecipient(),
		})
		assert.ErrorIs(t, err, domain.ErrAmountOutOfRange)
	})
}

func TestSettle(t *testing.T) {
	ctx := context.Background()

	t.Run("moves the settlement to submitted", func(t *testing.T) {
		_, svc := newTestServices(t, 15*time.Minute)

		token, err := svc.AcquireToken(ctx, &domain.TokenRequest{
			Corridor:  "pix",
			Amount:    100,
			Currency:  "USD",
			Recipient: pixRecipient(),
		})
		require.NoError(t, err)

		settlement, err := svc.Settle(ctx, &domain.SettleRequest{Token: token.Token})
		require.NoError(t, err)

		assert.Equal(t, domain.StatusSubmitted, settlement.Status)
		require.NotNil(t, settlement.SubmittedAt)
		require.NotNil(t, settlement.EstimatedCompletion)
		assert.True(t, settlement.EstimatedCompletion.After(*settlement.SubmittedAt))
	})

	t.Run("token is single use", func(t *testing.T) {
		_, svc := newTestServices(t, 15*time.Minute)

		token, err := svc.AcquireToken(ctx, &domain.TokenRequest{
			Corridor:  "pix",
			Amount:    100,
			Currency:  "USD",
			Recipient: pixRecipient(),
		})
		require.NoError(t, err)

		_, err = svc.Settle(ctx, &domain.SettleRequest{Token: token.Token})
		require.NoError(t, err)

		_, err = svc.Settle(ctx, &domain.SettleRequest{Token: token.Token})
		assert.ErrorIs(t, err, domain.ErrTokenAlreadyUsed)
	})

	t.Run("idempotency key replays the original settlement", func(t *testing.T) {
		_, svc := newTestServices(t, 15*time.Minute)

		token, err := svc.AcquireToken(ctx, &domain.TokenRequest{
			Corridor:  "pix",
			Amount:    100,
			Currency:  "USD",
			Recipient: pixRecipient(),
		})
		require.NoError(t, err)

		first, err := svc.Settle(ctx, &domain.SettleRequest{Token: token.Token, IdempotencyKey: "idem-1"})
		require.NoError(t, err)

		replay, err := svc.Settle(ctx, &domain.SettleRequest{Token: token.Token, IdempotencyKey: "idem-1"})
		require.NoError(t, err)
		assert.Equal(t, first.ID, replay.ID)
	})

	t.Run("idempotency key bound to a different token conflicts", func(t *testing.T) {
		_, svc := newTestServices(t, 15*time.Minute)

		first, err := svc.AcquireToken(ctx, &domain.TokenRequest{
			Corridor:  "pix",
			Amount:    100,
			Currency:  "USD",
			Recipient: pixRecipient(),
		})
		require.NoError(t, err)
		second, err := svc.AcquireToken(ctx, &domain.TokenRequest{
			Corridor:  "pix",
			Amount:    100,
			Currency:  "USD",
			Recipient: pixRecipient(),
		})
		require.NoError(t, err)

		_, err = svc.Settle(ctx, &domain.SettleRequest{Token: first.Token, IdempotencyKey: "idem-1"})
		require.NoError(t, err)

		_, err = svc.Settle(ctx, &domain.SettleRequest{Token: second.Token, IdempotencyKey: "idem-1"})
		assert.ErrorIs(t, err, domain.ErrIdempotencyConflict)
	})

	t.Run("expired token expires the settlement", func(t *testing.T) {
		_, svc := newTestServices(t, -time.Second)

		token, err := svc.AcquireToken(ctx, &domain.TokenRequest{
			Corridor:  "pix",
			Amount:    100,
			Currency:  "USD",
			Recipient: pixRecipient(),
		})
		require.NoError(t, err)

		_, err = svc.Settle(ctx, &domain.SettleRequest{Token: token.Token})
		assert.ErrorIs(t, err, domain.ErrTokenExpired)

		settlement, err := svc.GetSettlement(ctx, token.SettlementID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusExpired, settlement.Status)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, svc := newTestServices(t, 15*time.Minute)

		_, err := svc.Settle(ctx, &domain.SettleRequest{Token: "stk_missing"})
		assert.ErrorIs(t, err, domain.ErrTokenNotFound)
	})

	t.Run("expired redemption does not bind the idempotency key", func(t *testing.T) {
		_, svc := newTestServices(t, -time.Second)

		token, err := svc.AcquireToken(ctx, &domain.TokenRequest{
			Corridor:  "pix",
			Amount:    100,
			Currency:  "USD",
			Recipient: pixRecipient(),
		})
		require.NoError(t, err)

		req := &domain.SettleRequest{Token: token.Token, IdempotencyKey: "idem-1"}

		_, err = svc.Settle(ctx, req)
		assert.ErrorIs(t, err, domain.ErrTokenExpired)

		// The retry must repeat the typed error, not replay the expired
		// settlement as a success.
		_, err = svc.Settle(ctx, req)
		assert.ErrorIs(t, err, domain.ErrTokenExpired)
	})

	t.Run("used token with a fresh key does not bind it", func(t *testing.T) {
		_, svc := newTestServices(t, 15*time.Minute)

		token, err := svc.AcquireToken(ctx, &domain.TokenRequest{
			Corridor:  "pix",
			Amount:    100,
			Currency:  "USD",
			Recipient: pixRecipient(),
		})
		require.NoError(t, err)

		_, err = svc.Settle(ctx, &domain.SettleRequest{Token: token.Token})
		require.NoError(t, err)

		req := &domain.SettleRequest{Token: token.Token, IdempotencyKey: "idem-late"}
		_, err = svc.Settle(ctx, req)
		assert.ErrorIs(t, err, domain.ErrTokenAlreadyUsed)

		_, err = svc.Settle(ctx, req)
		assert.ErrorIs(t, err, domain.ErrTokenAlreadyUsed)
	})
}

type mapArchive struct {
	settlements map[string]*domain.Settlement
}

func (a *mapArchive) GetArchived(ctx context.Context, settlementID string) (*domain.Settlement, error) {
	s, ok := a.settlements[settlementID]
	if !ok {
		return nil, domain.ErrSettlementNotFound
	}
	return s, nil
}

func TestGetSettlementArchiveFallback(t *testing.T) {
	ctx := context.Background()
	_, svc := newTestServices(t, 15*time.Minute)

	archived := &domain.Settlement{
		ID:       "stl_archived",
		Corridor: "pix",
		Status:   domain.StatusCompleted,
	}
	svc.SetArchive(&mapArchive{settlements: map[string]*domain.Settlement{archived.ID: archived}})

	t.Run("falls back to the archive after redis eviction", func(t *testing.T) {
		got, err := svc.GetSettlement(ctx, "stl_archived")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, got.Status)
	})

	t.Run("absent everywhere is still not found", func(t *testing.T) {
		_, err := svc.GetSettlement(ctx, "stl_missing")
		assert.ErrorIs(t, err, domain.ErrSettlementNotFound)
	})
}

func TestQuoteService(t *testing.T) {
	ctx := context.Background()

	t.Run("prices and stores a quote", func(t *testing.T) {
		quotes, _ := newTestServices(t, 15*time.Minute)

		quote, err := quotes.CreateQuote(ctx, &domain.QuoteRequest{Corridor: "spei", Amount: 200, Currency: "usd"})
		require.NoError(t, err)

		assert.Equal(t, "spei", quote.Corridor)
		assert.Equal(t, "MXN", quote.ToCurrency)
		// fee = 0.75 + 2.00; (200 - 2.75) * 17.50
		assert.Equal(t, 2.75, quote.Fees)
		assert.Equal(t, 3451.88, quote.ToAmount)

		stored, err := quotes.GetQuote(ctx, quote.QuoteID)
		require.NoError(t, err)
		assert.Equal(t, quote.ToAmount, stored.ToAmount)
	})

	t.Run("unknown corridor", func(t *testing.T) {
		quotes, _ := newTestServices(t, 15*time.Minute)

		_, err := quotes.CreateQuote(ctx, &domain.QuoteRequest{Corridor: "swift", Amount: 100, Currency: "USD"})
		assert.ErrorIs(t, err, domain.ErrUnsupportedCorridor)
	})

	t.Run("currency must match the corridor source", func(t *testing.T) {
		quotes, _ := newTestServices(t, 15*time.Minute)

		_, err := quotes.CreateQuote(ctx, &domain.QuoteRequest{Corridor: "pix", Amount: 100, Currency: "EUR"})
		assert.ErrorIs(t, err, domain.ErrUnsupportedCorridor)
	})

	t.Run("unknown quote", func(t *testing.T) {
		quotes, _ := newTestServices(t, 15*time.Minute)

		_, err := quotes.GetQuote(ctx, "qt_missing")
		assert.ErrorIs(t, err, domain.ErrQuoteNotFound)
	})
}
