package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeline/reward-engine/internal/domain/shared"
	"github.com/forgeline/reward-engine/internal/domain/user"
)

func TestUserStoreGetUnknown(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "u1")
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))

	// The lock is held after a not-found Get so the caller can create and
	// Save under the same lock.
	created, err := user.New("u1")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, created))

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, shared.UserID("u1"), got.ID)
	store.Release("u1")
}

func TestUserStoreSaveThenGet(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	a, err := user.New("u1")
	require.NoError(t, err)
	require.NoError(t, a.Deposit(shared.XP(42)))

	_, err = store.Get(ctx, "u1")
	require.True(t, shared.IsNotFound(err))
	require.NoError(t, store.Save(ctx, a))

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	defer store.Release("u1")

	assert.InDelta(t, 42, got.Balance(shared.CurrencyXP), 1e-9)
}

func TestUserStoreReturnsCopies(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	a, err := user.New("u1")
	require.NoError(t, err)
	_, _ = store.Get(ctx, "u1")
	require.NoError(t, store.Save(ctx, a))

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, got.Deposit(shared.XP(999)))
	store.Release("u1")

	snap, ok := store.Snapshot("u1")
	require.True(t, ok)
	assert.Zero(t, snap.Balance(shared.CurrencyXP), "mutating a returned copy never leaks into the store")
}

func TestUserStoreSerializesSameUser(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	seed, err := user.New("u1")
	require.NoError(t, err)
	_, _ = store.Get(ctx, "u1")
	require.NoError(t, store.Save(ctx, seed))

	const workers = 32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			a, err := store.Get(ctx, "u1")
			if err != nil {
				store.Release("u1")
				return
			}
			if err := a.Deposit(shared.XP(1)); err != nil {
				store.Release("u1")
				return
			}
			_ = store.Save(ctx, a)
		}()
	}
	wg.Wait()

	snap, ok := store.Snapshot("u1")
	require.True(t, ok)
	assert.InDelta(t, float64(workers), snap.Balance(shared.CurrencyXP), 1e-9,
		"no increment may be lost under contention")
}

func TestUserStoreListIDs(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	for _, id := range []shared.UserID{"u1", "u2", "u3"} {
		a, err := user.New(id)
		require.NoError(t, err)
		_, _ = store.Get(ctx, id)
		require.NoError(t, store.Save(ctx, a))
	}

	ids, err := store.ListIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []shared.UserID{"u1", "u2", "u3"}, ids)
	assert.Equal(t, 3, store.Len())
}
