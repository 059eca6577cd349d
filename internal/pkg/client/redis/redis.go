// Package redis is the volatile latest-state tier: the most recent snapshot
// per host, each entry expiring after a fixed TTL unless refreshed. Expiry is
// enforced by Redis itself, so an expired entry is never returned.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/rikonaka/watchdog/internal/pkg/snapshot"
)

// Cmd is the go-redis subset the store uses, abstracted so unit tests can
// substitute their own implementation.
type Cmd interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Get(ctx context.Context, key string) *goredis.StringCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *goredis.ScanCmd
}

// Client is the volatile snapshot store.
type Client struct {
	rdb Cmd
	ttl time.Duration
}

// New dials the Redis server and verifies connectivity. ttl applies to every
// subsequent Put.
func New(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("unable to connect redis(%s): %w", addr, err)
	}
	return &Client{rdb: rdb, ttl: ttl}, nil
}

// NewWithCmd allows injecting a custom command interface (unit-test mock).
func NewWithCmd(c Cmd, ttl time.Duration) *Client { return &Client{rdb: c, ttl: ttl} }

// TTL reports the configured entry lifetime.
func (c *Client) TTL() time.Duration { return c.ttl }

// Put stores the latest snapshot for a host. Last write wins; any previous
// entry and its remaining TTL are replaced.
func (c *Client) Put(ctx context.Context, hostname string, s *snapshot.Snapshot) error {
	buf, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("unable to encode snapshot(%s): %w", hostname, err)
	}
	if err := c.rdb.Set(ctx, hostname, buf, c.ttl).Err(); err != nil {
		return fmt.Errorf("unable to write snapshot(%s): %w", hostname, err)
	}
	return nil
}

// Get returns the live snapshot for a host, reporting absence without error.
func (c *Client) Get(ctx context.Context, hostname string) (*snapshot.Snapshot, bool, error) {
	val, err := c.rdb.Get(ctx, hostname).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("unable to read snapshot(%s): %w", hostname, err)
	}
	var s snapshot.Snapshot
	if err := json.Unmarshal(val, &s); err != nil {
		return nil, false, fmt.Errorf("unable to decode snapshot(%s): %w", hostname, err)
	}
	return &s, true, nil
}

// GetAll returns every live snapshot keyed by hostname. Entries that expire
// between the scan and the read are skipped, as are values that no longer
// decode.
func (c *Client) GetAll(ctx context.Context) (map[string]*snapshot.Snapshot, error) {
	all := make(map[string]*snapshot.Snapshot)
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, "", 0).Result()
		if err != nil {
			return nil, fmt.Errorf("unable to scan snapshots: %w", err)
		}
		for _, key := range keys {
			s, ok, err := c.Get(ctx, key)
			if err != nil || !ok {
				continue
			}
			all[key] = s
		}
		cursor = next
		if cursor == 0 {
			return all, nil
		}
	}
}
