package middleware_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cauceflow/cauce/pkg/adapters/memory"
	"github.com/cauceflow/cauce/pkg/domain"
	"github.com/cauceflow/cauce/pkg/persistence/middleware"
)

func TestPIIMaskHidesMatchingVariables(t *testing.T) {
	ctx := context.Background()
	id := domain.Identity{TenantID: "tienda-1", Address: "+5491155550010"}
	inner := memory.NewStore()
	store := middleware.Chain(inner, middleware.NewPIIMask([]string{"(?i)tarjeta", "^codigo_"}))

	s := domain.NewSession(id)
	s.Variables["nombre"] = "Ana"
	s.Variables["Tarjeta"] = "4509 9535 6623 3704"
	s.Variables["codigo_verificacion"] = "123456"
	s.Variables["pago"] = map[string]any{"tarjeta_titular": "Ana"}
	require.NoError(t, store.Save(ctx, id, s))

	raw, err := inner.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ana", raw.Variables["nombre"])
	assert.Equal(t, "***", raw.Variables["Tarjeta"])
	assert.Equal(t, "***", raw.Variables["codigo_verificacion"])
	nested, ok := raw.Variables["pago"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "***", nested["tarjeta_titular"])
}

func TestPIIMaskDoesNotMutateLiveSession(t *testing.T) {
	ctx := context.Background()
	id := domain.Identity{TenantID: "tienda-1", Address: "+5491155550011"}
	store := middleware.Chain(memory.NewStore(), middleware.NewPIIMask([]string{"tarjeta"}))

	s := domain.NewSession(id)
	s.Variables["tarjeta"] = "4509 9535 6623 3704"
	require.NoError(t, store.Save(ctx, id, s))

	assert.Equal(t, "4509 9535 6623 3704", s.Variables["tarjeta"])
}
