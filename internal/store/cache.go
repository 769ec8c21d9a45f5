package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// envelope wraps a cached value with the time it was stored.
type envelope struct {
	Value    string    `json:"value"`
	StoredAt time.Time `json:"stored_at"`
}

// Cache adds TTL bookkeeping on top of a KVStore. Entries are never evicted
// on expiry: Get reports freshness and leaves the stale value readable, so
// callers with a stale-on-error policy (the ransomware feed) can fall back
// to it when a refresh fails.
type Cache struct {
	kv  KVStore
	ttl time.Duration
	now func() time.Time // test hook
}

// NewCache wraps kv with the given TTL.
func NewCache(kv KVStore, ttl time.Duration) *Cache {
	return &Cache{kv: kv, ttl: ttl, now: time.Now}
}

// Get returns the cached value for key. fresh reports whether the entry is
// within its TTL; ok reports whether any entry exists at all.
func (c *Cache) Get(ctx context.Context, key string) (value string, fresh, ok bool) {
	raw, err := c.kv.GetValue(ctx, key)
	if err != nil {
		return "", false, false
	}

	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return "", false, false
	}

	return env.Value, c.now().Sub(env.StoredAt) < c.ttl, true
}

// Set stores value under key with the current time.
func (c *Cache) Set(ctx context.Context, key, value string) error {
	raw, err := json.Marshal(envelope{Value: value, StoredAt: c.now()})
	if err != nil {
		return fmt.Errorf("marshalling cache entry: %w", err)
	}
	if err := c.kv.SetValue(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("storing cache entry: %w", err)
	}
	return nil
}

// GetJSON unmarshals a fresh cached entry into out. Stale or missing
// entries report ok=false.
func (c *Cache) GetJSON(ctx context.Context, key string, out any) bool {
	val, fresh, ok := c.Get(ctx, key)
	if !ok || !fresh {
		return false
	}
	return json.Unmarshal([]byte(val), out) == nil
}

// SetJSON marshals v and stores it under key.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshalling cache value: %w", err)
	}
	return c.Set(ctx, key, string(raw))
}
