package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cauceflow/cauce/pkg/domain"
)

func newTestStore(t *testing.T, opts ...Option) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	return NewFromClient(client, opts...), mr
}

func TestStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	id := domain.Identity{TenantID: "tienda-1", Address: "+5491155550001"}

	sess := domain.NewSession(id)
	sess.ActiveFlowID = "reserva"
	sess.CurrentNodeID = "pedir-nombre"
	sess.WaitingForInput = true
	sess.Variables["nombre"] = "Ana"

	require.NoError(t, store.Save(context.Background(), id, sess))

	loaded, err := store.Load(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "reserva", loaded.ActiveFlowID)
	assert.Equal(t, "pedir-nombre", loaded.CurrentNodeID)
	assert.True(t, loaded.WaitingForInput)
	assert.Equal(t, "Ana", loaded.Variables["nombre"])
	assert.Equal(t, id, loaded.Identity)
}

func TestStoreLoadMissing(t *testing.T) {
	store, _ := newTestStore(t)
	id := domain.Identity{TenantID: "tienda-1", Address: "+5491155550002"}

	_, err := store.Load(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStoreDeleteRemovesKeyAndIndex(t *testing.T) {
	store, _ := newTestStore(t)
	id := domain.Identity{TenantID: "tienda-1", Address: "+5491155550003"}

	require.NoError(t, store.Save(context.Background(), id, domain.NewSession(id)))
	require.NoError(t, store.Delete(context.Background(), id))

	_, err := store.Load(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestStoreListParsesIdentities(t *testing.T) {
	store, _ := newTestStore(t)
	a := domain.Identity{TenantID: "tienda-1", Address: "+5491155550004"}
	b := domain.Identity{TenantID: "tienda-2", Address: "+5491155550005"}

	require.NoError(t, store.Save(context.Background(), a, domain.NewSession(a)))
	require.NoError(t, store.Save(context.Background(), b, domain.NewSession(b)))

	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.Identity{a, b}, ids)
}

func TestStoreTTLExpiresSessions(t *testing.T) {
	store, mr := newTestStore(t, WithTTL(time.Minute))
	id := domain.Identity{TenantID: "tienda-1", Address: "+5491155550006"}

	require.NoError(t, store.Save(context.Background(), id, domain.NewSession(id)))

	mr.FastForward(2 * time.Minute)

	_, err := store.Load(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStoreListPrunesExpiredIndexEntries(t *testing.T) {
	store, _ := newTestStore(t, WithTTL(time.Minute))
	id := domain.Identity{TenantID: "tienda-1", Address: "+5491155550007"}

	require.NoError(t, store.Save(context.Background(), id, domain.NewSession(id)))

	// Backdate the index score so the lazy prune on List removes it.
	require.NoError(t, store.client.ZAdd(context.Background(), store.indexKey(),
		backend.Z{Score: 1, Member: id.Key()}).Err())

	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
