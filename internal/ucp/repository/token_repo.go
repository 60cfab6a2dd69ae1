package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/payos-hq/payos-sandbox/internal/ucp/domain"
)

const (
	tokenKeyPrefix = "ucp:token:" // Key for token data: ucp:token:{token}
	tokenTTLGrace  = time.Hour    // Keep expired tokens around so redemption reports expiry, not absence
)

// TokenRepository handles Redis operations for settlement tokens.
// Tokens outlive their redeemable window by a grace period so a late
// redemption can be answered with a precise error.
type TokenRepository struct {
	client *redis.Client
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(client *redis.Client) *TokenRepository {
	return &TokenRepository{client: client}
}

// Create stores a new settlement token.
func (r *TokenRepository) Create(ctx context.Context, token *domain.SettlementToken, ttl time.Duration) error {
	if token.Token == "" {
		token.Token = newTokenID()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	token.ExpiresAt = token.CreatedAt.Add(ttl)

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := r.client.Set(ctx, r.tokenKey(token.Token), data, ttl+tokenTTLGrace).Err(); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	return nil
}

// Get retrieves a token by its value.
func (r *TokenRepository) Get(ctx context.Context, tokenValue string) (*domain.SettlementToken, error) {
	data, err := r.client.Get(ctx, r.tokenKey(tokenValue)).Result()
	if err == redis.Nil {
		return nil, domain.ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	var token domain.SettlementToken
	if err := json.Unmarshal([]byte(data), &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}

	return &token, nil
}

// MarkUsed atomically claims a token for redemption. Returns
// ErrTokenAlreadyUsed when another redemption got there first.
func (r *TokenRepository) MarkUsed(ctx context.Context, tokenValue string) (*domain.SettlementToken, error) {
	usedKey := r.usedKey(tokenValue)

	claimed, err := r.client.SetNX(ctx, usedKey, time.Now().UTC().Format(time.RFC3339Nano), tokenTTLGrace*24).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to claim token: %w", err)
	}
	if !claimed {
		return nil, domain.ErrTokenAlreadyUsed
	}

	token, err := r.Get(ctx, tokenValue)
	if err != nil {
		return nil, err
	}

	token.Used = true
	data, err := json.Marshal(token)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := r.client.Set(ctx, r.tokenKey(tokenValue), data, redis.KeepTTL).Err(); err != nil {
		return nil, fmt.Errorf("failed to update token: %w", err)
	}

	return token, nil
}

// ReleaseClaim undoes a MarkUsed claim so a failed settle attempt does
// not burn the token.
func (r *TokenRepository) ReleaseClaim(ctx context.Context, tokenValue string) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.usedKey(tokenValue))

	token, err := r.Get(ctx, tokenValue)
	if err == nil {
		token.Used = false
		if data, merr := json.Marshal(token); merr == nil {
			pipe.Set(ctx, r.tokenKey(tokenValue), data, redis.KeepTTL)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to release token claim: %w", err)
	}
	return nil
}

func (r *TokenRepository) tokenKey(tokenValue string) string {
	return fmt.Sprintf("%s%s", tokenKeyPrefix, tokenValue)
}

func (r *TokenRepository) usedKey(tokenValue string) string {
	return fmt.Sprintf("%s%s:used", tokenKeyPrefix, tokenValue)
}

func newTokenID() string {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		// fallback (should be rare)
		return "stk_" + time.Now().Format("20060102T150405.000000000")
	}
	return "stk_" + hex.EncodeToString(b)
}
