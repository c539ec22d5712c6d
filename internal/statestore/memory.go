package statestore

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process Store backed by go-cache.
type Memory struct {
	mu sync.Mutex
	c  *gocache.Cache
}

// NewMemory returns an empty Memory store. Expired states are purged every
// cleanup interval.
func NewMemory(defaultTTL, cleanup time.Duration) *Memory {
	return &Memory{c: gocache.New(defaultTTL, cleanup)}
}

func (m *Memory) Put(_ context.Context, state, provider string, ttl time.Duration) error {
	m.c.Set(state, provider, ttl)
	return nil
}

func (m *Memory) Consume(_ context.Context, state string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.c.Get(state)
	if !ok {
		return "", ErrNotFound
	}
	m.c.Delete(state)
	provider, _ := v.(string)
	return provider, nil
}
