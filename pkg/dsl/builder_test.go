package dsl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cauceflow/cauce/pkg/domain"
	"github.com/cauceflow/cauce/pkg/dsl"
)

func TestBuilderBuildsValidFlow(t *testing.T) {
	b := dsl.Flow("reserva").Name("Reserva de turno").OnKeyword("turno")
	b.Collect("pedir-nombre", "¿Tu nombre?", "nombre").Then("filtro")
	b.Filter("filtro").
		Config("conditions", []map[string]any{
			{"field": "{{nombre}}", "operator": "is_not_empty"},
		}).
		OnTrue("gracias").
		OnFalse("despedida")
	b.Respond("gracias", "Gracias {{nombre}}.")
	b.Respond("despedida", "Hasta luego.")

	f, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "reserva", f.ID)
	assert.Equal(t, "pedir-nombre", f.EntryNodeID)
	require.Len(t, f.Nodes, 4)

	filtro := f.NodeByID("filtro")
	require.NotNil(t, filtro)
	assert.Equal(t, domain.NodeFilter, filtro.Type)
	assert.Equal(t, "gracias", filtro.Next(domain.EdgeTrue))
	assert.Equal(t, "despedida", filtro.Next(domain.EdgeFalse))
}

func TestBuilderRejectsDanglingEdge(t *testing.T) {
	b := dsl.Flow("roto").OnKeyword("hola")
	b.Respond("saludo", "Hola.").Then("no-existe")

	_, err := b.Build()
	assert.Error(t, err)
}

func TestBuilderEntryOverride(t *testing.T) {
	b := dsl.Flow("f").OnAnyMessage().Entry("segundo")
	b.Respond("primero", "uno")
	b.Respond("segundo", "dos")

	f, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "segundo", f.EntryNodeID)
}

func TestBuilderReturnsExistingNode(t *testing.T) {
	b := dsl.Flow("f").OnAnyMessage()
	first := b.Respond("saludo", "Hola.")
	again := b.Node("saludo", domain.NodeResponse)
	assert.Same(t, first, again)

	f, err := b.Build()
	require.NoError(t, err)
	assert.Len(t, f.Nodes, 1)
}
