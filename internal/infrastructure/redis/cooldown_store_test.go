package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis implementa SET NX y DEL sobre un mapa (sin vencimiento real).
type fakeRedis struct {
	keys map[string]time.Duration
	err  error
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.BoolCmd {
	if f.err != nil {
		return goredis.NewBoolResult(false, f.err)
	}
	if _, ok := f.keys[key]; ok {
		return goredis.NewBoolResult(false, nil)
	}
	f.keys[key] = expiration
	return goredis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *goredis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.keys[k]; ok {
			delete(f.keys, k)
			n++
		}
	}
	return goredis.NewIntResult(n, f.err)
}

func TestCooldownStore_SetNXConTTL(t *testing.T) {
	fake := &fakeRedis{keys: map[string]time.Duration{}}
	store := NewCooldownStore(fake)
	ctx := context.Background()

	ok, err := store.Acquire(ctx, "low_alert_1", 12*time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 12*time.Hour, fake.keys["stocker:low_alert_1"])

	ok, err = store.Acquire(ctx, "low_alert_1", 12*time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Release(ctx, "low_alert_1"))
	ok, _ = store.Acquire(ctx, "low_alert_1", 12*time.Hour)
	assert.True(t, ok)
}

func TestCooldownStore_ErrorDeRedis(t *testing.T) {
	store := NewCooldownStore(&fakeRedis{keys: map[string]time.Duration{}, err: errors.New("conexión rechazada")})
	ok, err := store.Acquire(context.Background(), "k", time.Hour)
	assert.False(t, ok)
	assert.ErrorContains(t, err, "conexión rechazada")
}
