package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillerhq/tiller/pkg/adapters/redis"
	"github.com/tillerhq/tiller/pkg/domain"
	"github.com/tillerhq/tiller/pkg/ports"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")
	t.Cleanup(mr.Close)

	return mr, backend.NewClient(&backend.Options{Addr: mr.Addr()})
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newTestClient(t)
	ports.RunStateStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newTestClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(10*time.Millisecond))
	ctx := context.Background()

	state := domain.NewState("session-ttl")
	state.Status = domain.StatusSuspended
	state.PendingQuestion = "Which company?"
	require.NoError(t, store.Save(ctx, "session-ttl", state))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, sessions, "session-ttl")

	// FastForward expires the value inside miniredis; the sleep moves real
	// time past the index score so List prunes the entry too.
	mr.FastForward(20 * time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	_, err = store.Load(ctx, "session-ttl")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	sessions, err = store.List(ctx)
	require.NoError(t, err)
	assert.NotContains(t, sessions, "session-ttl")
}

func TestRedisLocker_MutualExclusion(t *testing.T) {
	_, client := newTestClient(t)
	locker := redis.NewLocker(client, "tiller:session:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "sess-1", 30*time.Second)
	require.NoError(t, err)

	// A second acquisition must block until the first is released.
	blockedCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(blockedCtx, "sess-1", 30*time.Second)
	assert.ErrorIs(t, err, redis.ErrLockAcquire)

	require.NoError(t, unlock(ctx))

	unlock2, err := locker.Lock(ctx, "sess-1", 30*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}
