package memory

import (
	"context"
	"sync"
	"time"
)

// CooldownStore marcadores con vencimiento en memoria (un solo proceso).
type CooldownStore struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

// NewCooldownStore crea el almacén. now nil usa time.Now.
func NewCooldownStore(now func() time.Time) *CooldownStore {
	if now == nil {
		now = time.Now
	}
	return &CooldownStore{expires: make(map[string]time.Time), now: now}
}

// Acquire crea el marcador si no existe o ya venció.
func (c *CooldownStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if exp, ok := c.expires[key]; ok && now.Before(exp) {
		return false, nil
	}
	c.expires[key] = now.Add(ttl)
	return true, nil
}

func (c *CooldownStore) Release(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.expires, key)
	return nil
}
