package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payos-hq/payos-sandbox/internal/facilitator/domain"
	"github.com/payos-hq/payos-sandbox/internal/facilitator/idempotency"
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

func newTestFacilitator(t *testing.T) *Facilitator {
	t.Helper()
	return NewFacilitator(idempotency.NewRedisStore(setupTestRedis(t)))
}

func validRequest() *domain.VerifyRequest {
	now := time.Now().Unix()
	return &domain.VerifyRequest{
		PaymentPayload: domain.PaymentPayload{
			X402Version: domain.X402Version,
			Scheme:      domain.SchemeExact,
			Network:     domain.NetworkSandbox,
			Payload: domain.ExactPayload{
				From:        "0xpayer",
				To:          "0xmerchant",
				Value:       "10000",
				ValidAfter:  now - 60,
				ValidBefore: now + 300,
				Nonce:       "nonce-1",
			},
		},
		PaymentRequirements: domain.PaymentRequirements{
			Scheme:            domain.SchemeExact,
			Network:           domain.NetworkSandbox,
			MaxAmountRequired: "10000",
			Resource:          "https://api.example.com/reports",
			PayTo:             "0xmerchant",
		},
	}
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	f := newTestFacilitator(t)

	t.Run("accepts a valid payload", func(t *testing.T) {
		resp := f.Verify(ctx, validRequest())
		assert.True(t, resp.IsValid)
		assert.Empty(t, resp.InvalidReason)
		assert.Equal(t, "0xpayer", resp.Payer)
	})

	t.Run("rejects a wrong protocol version", func(t *testing.T) {
		req := validRequest()
		req.PaymentPayload.X402Version = 2
		resp := f.Verify(ctx, req)
		assert.False(t, resp.IsValid)
		assert.Equal(t, domain.ReasonInvalidVersion, resp.InvalidReason)
	})

	t.Run("rejects an unsupported scheme", func(t *testing.T) {
		req := validRequest()
		req.PaymentPayload.Scheme = "upto"
		resp := f.Verify(ctx, req)
		assert.Equal(t, domain.ReasonUnsupportedScheme, resp.InvalidReason)
	})

	t.Run("rejects an unsupported network", func(t *testing.T) {
		req := validRequest()
		req.PaymentPayload.Network = "base-sepolia"
		resp := f.Verify(ctx, req)
		assert.Equal(t, domain.ReasonUnsupportedNetwork, resp.InvalidReason)
	})

	t.Run("rejects a missing nonce", func(t *testing.T) {
		req := validRequest()
		req.PaymentPayload.Payload.Nonce = "  "
		resp := f.Verify(ctx, req)
		assert.Equal(t, domain.ReasonMissingNonce, resp.InvalidReason)
	})

	t.Run("rejects a payTo mismatch", func(t *testing.T) {
		req := validRequest()
		req.PaymentPayload.Payload.To = "0xsomeoneelse"
		resp := f.Verify(ctx, req)
		assert.Equal(t, domain.ReasonPayToMismatch, resp.InvalidReason)
	})

	t.Run("rejects insufficient value", func(t *testing.T) {
		req := validRequest()
		req.PaymentPayload.Payload.Value = "9999"
		resp := f.Verify(ctx, req)
		assert.Equal(t, domain.ReasonInsufficientValue, resp.InvalidReason)
	})

	t.Run("rejects a malformed value", func(t *testing.T) {
		req := validRequest()
		req.PaymentPayload.Payload.Value = "0x2710"
		resp := f.Verify(ctx, req)
		assert.Equal(t, domain.ReasonMalformedValue, resp.InvalidReason)
	})

	t.Run("rejects outside the validity window", func(t *testing.T) {
		req := validRequest()
		req.PaymentPayload.Payload.ValidAfter = time.Now().Unix() + 600
		resp := f.Verify(ctx, req)
		assert.Equal(t, domain.ReasonNotYetValid, resp.InvalidReason)

		req = validRequest()
		req.PaymentPayload.Payload.ValidBefore = time.Now().Unix() - 1
		resp = f.Verify(ctx, req)
		assert.Equal(t, domain.ReasonExpired, resp.InvalidReason)
	})
}

func TestSettle(t *testing.T) {
	ctx := context.Background()

	t.Run("settles a valid payment with a stable transaction hash", func(t *testing.T) {
		f := newTestFacilitator(t)

		resp, err := f.Settle(ctx, validRequest())
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.Equal(t, domain.NetworkSandbox, resp.Network)
		assert.Equal(t, "0xpayer", resp.Payer)
		assert.True(t, strings.HasPrefix(resp.Transaction, "0x"))
		assert.Len(t, resp.Transaction, 66)
	})

	t.Run("retrying the same payload returns the cached result", func(t *testing.T) {
		f := newTestFacilitator(t)

		first, err := f.Settle(ctx, validRequest())
		require.NoError(t, err)
		second, err := f.Settle(ctx, validRequest())
		require.NoError(t, err)

		assert.Equal(t, first.Transaction, second.Transaction)
	})

	t.Run("different nonces settle independently", func(t *testing.T) {
		f := newTestFacilitator(t)

		first, err := f.Settle(ctx, validRequest())
		require.NoError(t, err)

		other := validRequest()
		other.PaymentPayload.Payload.Nonce = "nonce-2"
		second, err := f.Settle(ctx, other)
		require.NoError(t, err)

		assert.NotEqual(t, first.Transaction, second.Transaction)
	})

	t.Run("invalid payloads fail without caching", func(t *testing.T) {
		f := newTestFacilitator(t)

		req := validRequest()
		req.PaymentPayload.Payload.Value = "1"

		resp, err := f.Settle(ctx, req)
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, domain.ReasonInsufficientValue, resp.ErrorReason)

		// A corrected retry of the same nonce succeeds.
		resp, err = f.Settle(ctx, validRequest())
		require.NoError(t, err)
		assert.True(t, resp.Success)
	})
}

func TestSupported(t *testing.T) {
	f := newTestFacilitator(t)

	kinds := f.Supported()
	require.Len(t, kinds, 1)
	assert.Equal(t, domain.SchemeExact, kinds[0].Scheme)
	assert.Equal(t, domain.NetworkSandbox, kinds[0].Network)
	assert.Equal(t, domain.X402Version, kinds[0].X402Version)
}
