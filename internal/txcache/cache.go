package txcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/decker-labs/decker-backend/internal/helius"
)

const keyPrefix = "txcache:"

// Cache is the per-wallet transaction history cache. Entries expire after
// the configured lifetime; a put fully replaces whatever was stored before.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(addr, password string, ttl time.Duration) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	return &Cache{client: rdb, ttl: ttl}
}

// NewWithClient wires an existing redis client, mainly for tests.
func NewWithClient(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get returns the cached history for a normalized wallet. A hit requires a
// live entry holding at least one transaction; empty entries count as misses
// so zero-activity wallets get re-checked instead of pinning a transient
// upstream failure for a whole day.
func (c *Cache) Get(ctx context.Context, wallet string) ([]helius.Transaction, bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+wallet).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var txs []helius.Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		// Unreadable entry, treat as a miss; the next put overwrites it.
		return nil, false, nil
	}
	if len(txs) == 0 {
		return nil, false, nil
	}
	return txs, true, nil
}

// Put upserts the full history for a wallet and restarts its lifetime.
func (c *Cache) Put(ctx context.Context, wallet string, txs []helius.Transaction) error {
	data, err := json.Marshal(txs)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+wallet, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Invalidate drops a wallet's entry so the next lookup refetches.
func (c *Cache) Invalidate(ctx context.Context, wallet string) error {
	if err := c.client.Del(ctx, keyPrefix+wallet).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
