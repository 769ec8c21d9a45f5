package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore is a KVStore persisted as a single JSON file. It is the durable
// backing for the ransomware feed cache, so stale entries survive restarts
// and remain available when the upstream feed is unreachable.
type FileStore struct {
	mu   sync.Mutex
	path string
	data map[string]string
}

// NewFileStore opens (or creates) the store at path. A missing or corrupt
// file starts empty rather than failing; the cache is best effort.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	fs := &FileStore{path: path, data: make(map[string]string)}

	raw, err := os.ReadFile(path)
	if err == nil {
		// Ignore unmarshal errors: a corrupt cache file is discarded.
		_ = json.Unmarshal(raw, &fs.data)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading cache file: %w", err)
	}

	return fs, nil
}

// GetValue returns the value for key or ErrKeyNotFound.
func (f *FileStore) GetValue(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	val, ok := f.data[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return val, nil
}

// SetValue stores value under key and persists the file.
func (f *FileStore) SetValue(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.data[key] = value
	return f.flush()
}

// Delete removes key and persists the file.
func (f *FileStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.data, key)
	return f.flush()
}

// Close is a no-op; every write is flushed eagerly.
func (f *FileStore) Close() error {
	return nil
}

// flush writes the map to disk via a temp-file rename so a crash never
// leaves a half-written cache. Caller must hold the mutex.
func (f *FileStore) flush() error {
	raw, err := json.Marshal(f.data)
	if err != nil {
		return fmt.Errorf("marshalling cache: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replacing cache file: %w", err)
	}
	return nil
}
