package redis

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"
)

// ErrNotObtained otro proceso tiene el lock.
var ErrNotObtained = redislock.ErrNotObtained

// Locker lock distribuido para que un job programado corra una sola vez a la vez.
type Locker struct {
	client *redislock.Client
}

// NewLocker construye el locker sobre el cliente.
func NewLocker(rdb *goredis.Client) *Locker {
	return &Locker{client: redislock.New(rdb)}
}

// Obtain toma el lock sin reintentos. Devuelve la función que lo libera.
func (l *Locker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return err
		}
		return nil
	}, nil
}
