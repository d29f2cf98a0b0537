package storage

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryBucket keeps objects in process memory. It stands in for S3 in
// tests and in development when no object store runs.
type MemoryBucket struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryBucket() *MemoryBucket {
	return &MemoryBucket{objects: make(map[string][]byte)}
}

func (b *MemoryBucket) Put(_ context.Context, key string, data []byte, _ string) error {
	if key == "" {
		return ErrEmptyKey
	}
	b.mu.Lock()
	b.objects[key] = slices.Clone(data)
	b.mu.Unlock()
	return nil
}

func (b *MemoryBucket) Exists(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	_, ok := b.Get(key)
	return ok, nil
}

// DownloadURL returns a memory:// link; nothing serves it.
func (b *MemoryBucket) DownloadURL(_ context.Context, key string) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrEmptyKey
	}
	return "memory://" + key, time.Now().Add(defaultLinkTTL), nil
}

func (b *MemoryBucket) Get(key string) ([]byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.objects[key]
	return data, ok
}
