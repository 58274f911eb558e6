package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) *Locker {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	return NewLocker(client, "cauce:")
}

func TestLockerAcquireAndRelease(t *testing.T) {
	locker := newTestLocker(t)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "tienda-1:+5491155550001", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))

	// After release the lock must be immediately acquirable.
	unlock2, err := locker.Lock(ctx, "tienda-1:+5491155550001", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}

func TestLockerBlocksSecondHolder(t *testing.T) {
	locker := newTestLocker(t)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "k", 5*time.Second)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(waitCtx, "k", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(ctx))
}

func TestLockerContendedAcquireSucceedsAfterRelease(t *testing.T) {
	locker := newTestLocker(t)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "k", 5*time.Second)
	require.NoError(t, err)

	acquired := make(chan error, 1)
	go func() {
		u, err := locker.Lock(ctx, "k", 5*time.Second)
		if err == nil {
			_ = u(ctx)
		}
		acquired <- err
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, unlock(ctx))

	select {
	case err := <-acquired:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("second holder never acquired the lock")
	}
}

func TestLockerStaleUnlockIsNoop(t *testing.T) {
	locker := newTestLocker(t)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "k", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))

	// A second holder takes the lock; the first holder's (now stale)
	// unlock must not release it.
	unlock2, err := locker.Lock(ctx, "k", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))

	waitCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(waitCtx, "k", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock2(ctx))
}
