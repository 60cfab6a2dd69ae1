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

const (
	settlementKeyPrefix   = "ucp:settlement:" // Key for settlement data: ucp:settlement:{id}
	settlementActiveSet   = "ucp:settlements:active"
	settlementEventPrefix = "ucp:events:" // Pub/Sub channel for settlement events: ucp:events:{id}
	idempotencyKeyPrefix  = "ucp:idem:"   // Mapping from idempotency key to settlement ID
	settlementTTL         = 7 * 24 * time.Hour
)

// SettlementRepository handles Redis operations for settlements. Active
// (non-terminal) settlements are indexed in a set so the progression
// engine can scan them without a full keyspace walk.
type SettlementRepository struct {
	client *redis.Client
}

// NewSettlementRepository creates a new SettlementRepository
func NewSettlementRepository(client *redis.Client) *SettlementRepository {
	return &SettlementRepository{client: client}
}

// Create stores a new settlement and indexes it as active.
func (r *SettlementRepository) Create(ctx context.Context, s *domain.Settlement) error {
	if s.ID == "" {
		s.ID = "stl_" + uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}
	if s.Status == "" {
		s.Status = domain.StatusCreated
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settlement: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.settlementKey(s.ID), data, settlementTTL)
	pipe.SAdd(ctx, settlementActiveSet, s.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create settlement: %w", err)
	}

	return nil
}

// Get retrieves a settlement by its ID.
func (r *SettlementRepository) Get(ctx context.Context, id string) (*domain.Settlement, error) {
	data, err := r.client.Get(ctx, r.settlementKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrSettlementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	var s domain.Settlement
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settlement: %w", err)
	}

	return &s, nil
}

// Update persists a settlement, maintains the active index, and
// publishes an event for stream consumers.
func (r *SettlementRepository) Update(ctx context.Context, s *domain.Settlement) error {
	s.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settlement: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.settlementKey(s.ID), data, settlementTTL)
	if domain.IsTerminal(s.Status) {
		pipe.SRem(ctx, settlementActiveSet, s.ID)
	} else {
		pipe.SAdd(ctx, settlementActiveSet, s.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update settlement: %w", err)
	}

	// Publish update event to Redis Pub/Sub for SSE consumers.
	r.client.Publish(ctx, r.eventChannel(s.ID), data)

	return nil
}

// ListActive returns the IDs of non-terminal settlements.
func (r *SettlementRepository) ListActive(ctx context.Context) ([]string, error) {
	ids, err := r.client.SMembers(ctx, settlementActiveSet).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list active settlements: %w", err)
	}
	return ids, nil
}

// ClaimIdempotencyKey maps an idempotency key to a settlement ID.
// Returns the settlement ID already bound to the key when the claim is
// not fresh, so callers can distinguish replay from conflict.
func (r *SettlementRepository) ClaimIdempotencyKey(ctx context.Context, key, settlementID string) (string, bool, error) {
	idemKey := r.idempotencyKey(key)

	claimed, err := r.client.SetNX(ctx, idemKey, settlementID, settlementTTL).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	if claimed {
		return settlementID, true, nil
	}

	existing, err := r.client.Get(ctx, idemKey).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	return existing, false, nil
}

// ReleaseIdempotencyKey unbinds an idempotency key after a failed
// redemption so a retry gets the same typed error, not a replay.
func (r *SettlementRepository) ReleaseIdempotencyKey(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.idempotencyKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

func (r *SettlementRepository) settlementKey(id string) string {
	return fmt.Sprintf("%s%s", settlementKeyPrefix, id)
}

func (r *SettlementRepository) eventChannel(id string) string {
	return fmt.Sprintf("%s%s", settlementEventPrefix, id)
}

func (r *SettlementRepository) idempotencyKey(key string) string {
	return fmt.Sprintf("%s%s", idempotencyKeyPrefix, key)
}
