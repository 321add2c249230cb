package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/stocker-api/internal/application/alerts"
)

var _ alerts.CooldownStore = (*CooldownStore)(nil)

// KeyPrefix antepuesto a las claves de cooldown para no chocar con otras apps en la misma base.
const KeyPrefix = "stocker:"

// setNXDeleter subconjunto de *goredis.Client que usa el store.
type setNXDeleter interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.BoolCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

// CooldownStore marcadores con TTL compartidos entre procesos (SET NX EX).
type CooldownStore struct {
	rdb setNXDeleter
}

// NewCooldownStore construye el store sobre el cliente.
func NewCooldownStore(rdb setNXDeleter) *CooldownStore {
	return &CooldownStore{rdb: rdb}
}

// Acquire crea el marcador solo si no existe; false = ya hay uno vigente.
func (c *CooldownStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, KeyPrefix+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return ok, nil
}

func (c *CooldownStore) Release(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, KeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
