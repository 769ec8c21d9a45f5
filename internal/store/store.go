// Package store provides the key-value storage abstraction used for OSINT
// caching. A single KVStore interface is served by an in-memory map, a
// durable JSON file, or a Valkey server, so the short-lived DNS/TLS cache
// and the long-lived ransomware feed cache share one implementation with
// different TTL configuration.
package store

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by GetValue when the key has no value.
var ErrKeyNotFound = errors.New("key not found")

// KVStore is the interface for key-value storage backends.
type KVStore interface {
	GetValue(ctx context.Context, key string) (string, error)
	SetValue(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
