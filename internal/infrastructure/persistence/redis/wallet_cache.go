// Package redis implements the Redis read-side for the reward engine:
// a hot wallet balance projection kept up to date from settlement
// events. Redis is never the source of truth; the ledger is.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/forgeline/reward-engine/internal/domain/shared"
	"github.com/forgeline/reward-engine/pkg/circuitbreaker"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds Redis connection configuration.
type Config struct {
	// Host is the Redis server hostname.
	Host string

	// Port is the Redis server port.
	Port int

	// Password is the Redis authentication password (empty if no auth).
	Password string

	// DB is the Redis database number (0-15).
	DB int

	// PoolSize is the maximum number of socket connections.
	PoolSize int

	// MinIdleConns is the minimum number of idle connections.
	MinIdleConns int

	// DialTimeout is the timeout for establishing new connections.
	DialTimeout time.Duration

	// ReadTimeout is the timeout for socket reads.
	ReadTimeout time.Duration

	// WriteTimeout is the timeout for socket writes.
	WriteTimeout time.Duration
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         6379,
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Addr returns the Redis address in "host:port" format.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewClient creates a Redis client and verifies it with a ping.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return client, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// WALLET CACHE
// ══════════════════════════════════════════════════════════════════════════════

// walletKey namespaces wallet hashes, one hash per user with one field
// per currency.
const walletKeyPrefix = "wallet:"

func walletKey(userID string) string {
	return walletKeyPrefix + userID
}

// WalletCache maintains the wallet balance projection. All writes go
// through a circuit breaker so a degraded Redis never slows down or
// fails settlement.
type WalletCache struct {
	client  *redis.Client
	breaker *circuitbreaker.CircuitBreaker
	ttl     time.Duration
}

// WalletCacheConfig contains configuration for WalletCache.
type WalletCacheConfig struct {
	// TTL is the expiry applied to each wallet hash on write. Zero
	// means no expiry.
	TTL time.Duration
}

// DefaultWalletCacheConfig returns default configuration.
func DefaultWalletCacheConfig() WalletCacheConfig {
	return WalletCacheConfig{
		TTL: 24 * time.Hour,
	}
}

// NewWalletCache creates a new WalletCache.
func NewWalletCache(client *redis.Client, config WalletCacheConfig) *WalletCache {
	return &WalletCache{
		client:  client,
		breaker: circuitbreaker.CacheBreaker(nil),
		ttl:     config.TTL,
	}
}

// Increment adds amount to the cached balance for one currency.
func (c *WalletCache) Increment(ctx context.Context, userID string, currency shared.Currency, amount float64) error {
	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		key := walletKey(userID)
		pipe := c.client.TxPipeline()
		pipe.HIncrByFloat(ctx, key, currency.String(), amount)
		if c.ttl > 0 {
			pipe.Expire(ctx, key, c.ttl)
		}
		_, err := pipe.Exec(ctx)
		return err
	})
}

// Balances returns the cached balances for a user. A missing key is an
// empty map, not an error.
func (c *WalletCache) Balances(ctx context.Context, userID string) (map[shared.Currency]float64, error) {
	var fields map[string]string
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		var getErr error
		fields, getErr = c.client.HGetAll(ctx, walletKey(userID)).Result()
		return getErr
	})
	if err != nil {
		return nil, fmt.Errorf("redis: read wallet: %w", err)
	}

	balances := make(map[shared.Currency]float64, len(fields))
	for field, raw := range fields {
		value, parseErr := strconv.ParseFloat(raw, 64)
		if parseErr != nil {
			return nil, fmt.Errorf("redis: parse balance %q: %w", raw, parseErr)
		}
		balances[shared.Currency(field)] = value
	}
	return balances, nil
}

// Invalidate drops the cached wallet for a user. Reconciliation uses
// this after detecting drift so the next write rebuilds cleanly.
func (c *WalletCache) Invalidate(ctx context.Context, userID string) error {
	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.client.Del(ctx, walletKey(userID)).Err()
	})
}

// BreakerState exposes the circuit state for health reporting.
func (c *WalletCache) BreakerState() circuitbreaker.State {
	return c.breaker.State()
}
