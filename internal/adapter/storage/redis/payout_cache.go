package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// PayoutCache implements ports.PayoutCache using Redis. It is the fast-path
// idempotency layer for settlement: once an order is settled, its payout is
// cached so retries return without touching PostgreSQL. The database's
// unique constraint remains the source of truth; this layer is best-effort.
type PayoutCache struct {
	client *goredis.Client
	prefix string
}

// NewPayoutCache creates a new Redis-backed payout cache.
func NewPayoutCache(client *goredis.Client) *PayoutCache {
	return &PayoutCache{
		client: client,
		prefix: "payout:",
	}
}

// Get retrieves a cached payout by order ID.
// Returns nil, nil if the order has no cached payout.
func (c *PayoutCache) Get(ctx context.Context, orderID uuid.UUID) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+orderID.String()).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis payout get: %w", err)
	}
	return val, nil
}

// Set stores a settled payout with TTL.
func (c *PayoutCache) Set(ctx context.Context, orderID uuid.UUID, payoutJSON []byte, ttl time.Duration) error {
	err := c.client.Set(ctx, c.prefix+orderID.String(), payoutJSON, ttl).Err()
	if err != nil {
		return fmt.Errorf("redis payout set: %w", err)
	}
	return nil
}
