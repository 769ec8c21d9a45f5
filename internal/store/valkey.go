package store

import (
	"context"
	"fmt"

	"github.com/valkey-io/valkey-go"
)

// ValkeyStore is a KVStore backed by a Valkey server. It is selected by
// configuration when cache entries should be shared across processes;
// single-process deployments use MemoryStore/FileStore instead.
type ValkeyStore struct {
	client valkey.Client
}

// NewValkeyStore connects to the Valkey server at addr.
func NewValkeyStore(addr string) (*ValkeyStore, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to valkey at %s: %w", addr, err)
	}
	return &ValkeyStore{client: client}, nil
}

// GetValue returns the value for key or ErrKeyNotFound.
func (v *ValkeyStore) GetValue(ctx context.Context, key string) (string, error) {
	resp := v.client.Do(ctx, v.client.B().Get().Key(key).Build())
	val, err := resp.ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("valkey get %q: %w", key, err)
	}
	return val, nil
}

// SetValue stores value under key.
func (v *ValkeyStore) SetValue(ctx context.Context, key, value string) error {
	if err := v.client.Do(ctx, v.client.B().Set().Key(key).Value(value).Build()).Error(); err != nil {
		return fmt.Errorf("valkey set %q: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (v *ValkeyStore) Delete(ctx context.Context, key string) error {
	if err := v.client.Do(ctx, v.client.B().Del().Key(key).Build()).Error(); err != nil {
		return fmt.Errorf("valkey del %q: %w", key, err)
	}
	return nil
}

// Close releases the client connection.
func (v *ValkeyStore) Close() error {
	v.client.Close()
	return nil
}
