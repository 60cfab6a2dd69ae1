// Package idempotency prevents duplicate settlements when clients retry
// x402 settle requests during the pending window. Keys are derived from
// the payment payload; failed settlements are not cached, so legitimate
// retries stay possible.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/payos-hq/payos-sandbox/internal/facilitator/domain"
)

const (
	inFlightMarker = "__in_flight__"
	keyPrefix      = "x402:settle:"
	defaultTTL     = 10 * time.Minute
	pollInterval   = 50 * time.Millisecond
)

// SettlementStore deduplicates settle executions per payment payload.
type SettlementStore interface {
	// CheckAndMark atomically returns a cached result, or marks the key
	// in flight. ok is false when this caller owns the execution.
	CheckAndMark(ctx context.Context, key string) (result *domain.SettleResponse, inFlight bool, err error)
	// WaitForResult blocks until an in-flight settlement completes or
	// the context expires.
	WaitForResult(ctx context.Context, key string) (*domain.SettleResponse, error)
	// Complete caches a successful result.
	Complete(ctx context.Context, key string, result *domain.SettleResponse) error
	// Fail clears the in-flight marker so the payload can be retried.
	Fail(ctx context.Context, key string) error
}

// PayloadKey derives the deduplication key from a payment payload.
func PayloadKey(p domain.PaymentPayload) string {
	data, _ := json.Marshal(p)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// RedisStore implements SettlementStore on Redis so deduplication holds
// across load-balanced facilitator instances.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a new RedisStore
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, ttl: defaultTTL}
}

func (s *RedisStore) CheckAndMark(ctx context.Context, key string) (*domain.SettleResponse, bool, error) {
	claimed, err := s.client.SetNX(ctx, s.key(key), inFlightMarker, s.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to mark settlement: %w", err)
	}
	if claimed {
		return nil, false, nil
	}

	raw, err := s.client.Get(ctx, s.key(key)).Result()
	if err == redis.Nil {
		// Marker expired between SetNX and Get; treat as owned.
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read settlement marker: %w", err)
	}

	if raw == inFlightMarker {
		return nil, true, nil
	}

	var result domain.SettleResponse
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached settlement: %w", err)
	}
	return &result, false, nil
}

func (s *RedisStore) WaitForResult(ctx context.Context, key string) (*domain.SettleResponse, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			raw, err := s.client.Get(ctx, s.key(key)).Result()
			if err == redis.Nil {
				// The owner failed and cleared the marker.
				return nil, domain.ErrSettlementInFlight
			}
			if err != nil {
				return nil, fmt.Errorf("failed to poll settlement result: %w", err)
			}
			if raw == inFlightMarker {
				continue
			}

			var result domain.SettleResponse
			if err := json.Unmarshal([]byte(raw), &result); err != nil {
				return nil, fmt.Errorf("failed to unmarshal settlement result: %w", err)
			}
			return &result, nil
		}
	}
}

func (s *RedisStore) Complete(ctx context.Context, key string, result *domain.SettleResponse) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal settlement result: %w", err)
	}
	if err := s.client.Set(ctx, s.key(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache settlement result: %w", err)
	}
	return nil
}

func (s *RedisStore) Fail(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to clear settlement marker: %w", err)
	}
	return nil
}

func (s *RedisStore) key(key string) string {
	return keyPrefix + key
}
