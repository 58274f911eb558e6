package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cauceflow/cauce/pkg/adapters/memory"
	"github.com/cauceflow/cauce/pkg/domain"
)

func TestStoreSaveLoad(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	id := domain.Identity{TenantID: "tienda-1", Address: "+5491155550001"}

	s := domain.NewSession(id)
	s.ActiveFlowID = "reserva"
	s.Variables["nombre"] = "Ana"
	require.NoError(t, store.Save(ctx, id, s))

	loaded, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "reserva", loaded.ActiveFlowID)
	assert.Equal(t, "Ana", loaded.Variables["nombre"])
}

func TestStoreIsolatesStoredCopy(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	id := domain.Identity{TenantID: "tienda-1", Address: "+5491155550002"}

	s := domain.NewSession(id)
	require.NoError(t, store.Save(ctx, id, s))

	// Mutations after Save must not leak into the store, nor must
	// mutations of a loaded copy.
	s.Variables["nombre"] = "Ana"
	loaded, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.NotContains(t, loaded.Variables, "nombre")

	loaded.Variables["pedido"] = "x"
	again, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.NotContains(t, again.Variables, "pedido")
}

func TestStoreLoadMissing(t *testing.T) {
	store := memory.NewStore()
	_, err := store.Load(context.Background(), domain.Identity{TenantID: "t", Address: "a"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStoreDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	id := domain.Identity{TenantID: "tienda-1", Address: "+5491155550003"}

	require.NoError(t, store.Save(ctx, id, domain.NewSession(id)))
	require.NoError(t, store.Delete(ctx, id))
	require.NoError(t, store.Delete(ctx, id))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFlowSourceOrderAndLookup(t *testing.T) {
	ctx := context.Background()
	a := &domain.Flow{ID: "a"}
	b := &domain.Flow{ID: "b"}
	src := memory.NewFlowSource(a, b)

	flows, err := src.ListFlows(ctx)
	require.NoError(t, err)
	require.Len(t, flows, 2)
	assert.Equal(t, "a", flows[0].ID)
	assert.Equal(t, "b", flows[1].ID)

	got, err := src.GetFlow(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = src.GetFlow(ctx, "c")
	assert.Error(t, err)
}
