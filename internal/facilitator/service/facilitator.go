package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/payos-hq/payos-sandbox/internal/facilitator/domain"
	"github.com/payos-hq/payos-sandbox/internal/facilitator/idempotency"
)

// Facilitator verifies and settles x402 payments on the sandbox
// network. Settlement produces a deterministic transaction hash instead
// of touching a chain, so agent integrations can assert exact values.
type Facilitator struct {
	store idempotency.SettlementStore
}

// NewFacilitator creates a new Facilitator
func NewFacilitator(store idempotency.SettlementStore) *Facilitator {
	return &Facilitator{store: store}
}

// Verify checks a payment payload against its requirements.
func (f *Facilitator) Verify(ctx context.Context, req *domain.VerifyRequest) *domain.VerifyResponse {
	payload := req.PaymentPayload
	reqs := req.PaymentRequirements

	invalid := func(reason string) *domain.VerifyResponse {
		return &domain.VerifyResponse{IsValid: false, InvalidReason: reason, Payer: payload.Payload.From}
	}

	if payload.X402Version != domain.X402Version {
		return invalid(domain.ReasonInvalidVersion)
	}
	if payload.Scheme != domain.SchemeExact || reqs.Scheme != domain.SchemeExact {
		return invalid(domain.ReasonUnsupportedScheme)
	}
	if payload.Network != domain.NetworkSandbox || reqs.Network != domain.NetworkSandbox {
		return invalid(domain.ReasonUnsupportedNetwork)
	}
	if strings.TrimSpace(payload.Payload.Nonce) == "" {
		return invalid(domain.ReasonMissingNonce)
	}
	if reqs.PayTo != "" && payload.Payload.To != reqs.PayTo {
		return invalid(domain.ReasonPayToMismatch)
	}

	value, ok := new(big.Int).SetString(payload.Payload.Value, 10)
	if !ok || value.Sign() < 0 {
		return invalid(domain.ReasonMalformedValue)
	}
	required, ok := new(big.Int).SetString(reqs.MaxAmountRequired, 10)
	if !ok {
		return invalid(domain.ReasonMalformedValue)
	}
	if value.Cmp(required) < 0 {
		return invalid(domain.ReasonInsufficientValue)
	}

	now := time.Now().Unix()
	if payload.Payload.ValidAfter > 0 && now < payload.Payload.ValidAfter {
		return invalid(domain.ReasonNotYetValid)
	}
	if payload.Payload.ValidBefore > 0 && now >= payload.Payload.ValidBefore {
		return invalid(domain.ReasonExpired)
	}

	return &domain.VerifyResponse{IsValid: true, Payer: payload.Payload.From}
}

// Settle executes a verified payment. Retries of the same payload
// return the cached result; concurrent settles of the same payload wait
// for the first to finish. Failed settlements are not cached.
func (f *Facilitator) Settle(ctx context.Context, req *domain.SettleRequest) (*domain.SettleResponse, error) {
	payload := req.PaymentPayload

	failure := func(reason string) *domain.SettleResponse {
		return &domain.SettleResponse{
			Success:     false,
			ErrorReason: reason,
			Network:     payload.Network,
			Payer:       payload.Payload.From,
		}
	}

	if verdict := f.Verify(ctx, req); !verdict.IsValid {
		return failure(verdict.InvalidReason), nil
	}

	key := idempotency.PayloadKey(payload)

	cached, inFlight, err := f.store.CheckAndMark(ctx, key)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}
	if inFlight {
		waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return f.store.WaitForResult(waitCtx, key)
	}

	result := &domain.SettleResponse{
		Success:     true,
		Transaction: sandboxTransactionHash(payload),
		Network:     payload.Network,
		Payer:       payload.Payload.From,
	}

	if err := f.store.Complete(ctx, key, result); err != nil {
		// Clear the marker so the client can retry; the settlement
		// itself produced no durable side effect yet.
		_ = f.store.Fail(ctx, key)
		return nil, err
	}

	return result, nil
}

// Supported lists the (scheme, network) pairs this facilitator settles.
func (f *Facilitator) Supported() []domain.SupportedKind {
	return []domain.SupportedKind{
		{X402Version: domain.X402Version, Scheme: domain.SchemeExact, Network: domain.NetworkSandbox},
	}
}

// sandboxTransactionHash derives a stable pseudo transaction hash from
// the payment authorization, mimicking on-chain finality receipts.
func sandboxTransactionHash(p domain.PaymentPayload) string {
	seed := fmt.Sprintf("%s|%s|%s|%s", p.Payload.From, p.Payload.To, p.Payload.Value, p.Payload.Nonce)
	sum := sha256.Sum256([]byte(seed))
	return "0x" + hex.EncodeToString(sum[:])
}
