package fileflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cauceflow/cauce/pkg/domain"
)

const reservaFlow = `
id: reserva
name: Reserva de turno
trigger:
  type: keyword
  keyword: turno
entry: pedir-nombre
max_attempts: 2
nodes:
  - id: pedir-nombre
    type: conversational_collect
    config:
      pregunta: "¿Tu nombre?"
      variable: nombre
      validacion:
        tipo: texto
    edges:
      - target: confirmar
  - id: confirmar
    type: conversational_response
    config:
      mensaje: "Gracias {{nombre}}!"
`

func writeFlow(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFlow(t, dir, "reserva.yaml", reservaFlow)
	writeFlow(t, dir, "notas.txt", "ignorado")

	src, err := New(dir)
	require.NoError(t, err)

	flow, err := src.GetFlow(context.Background(), "reserva")
	require.NoError(t, err)
	assert.Equal(t, "Reserva de turno", flow.Name)
	assert.Equal(t, domain.TriggerKeyword, flow.Trigger.Type)
	assert.Equal(t, "turno", flow.Trigger.Keyword)
	assert.Equal(t, "pedir-nombre", flow.EntryNodeID)
	assert.Equal(t, 2, flow.MaxAttempts)

	node := flow.NodeByID("pedir-nombre")
	require.NotNil(t, node)
	assert.Equal(t, domain.NodeCollect, node.Type)
	assert.Equal(t, "¿Tu nombre?", node.Config["pregunta"])
	assert.Equal(t, "confirmar", node.Next(""))

	flows, err := src.ListFlows(context.Background())
	require.NoError(t, err)
	assert.Len(t, flows, 1)
}

func TestLoadMissingFlow(t *testing.T) {
	dir := t.TempDir()
	writeFlow(t, dir, "reserva.yaml", reservaFlow)

	src, err := New(dir)
	require.NoError(t, err)

	_, err = src.GetFlow(context.Background(), "inexistente")
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)
}

func TestLoadRejectsBrokenFlows(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"unknown node type", `
id: f
entry: a
nodes:
  - id: a
    type: teleport
`},
		{"dangling edge", `
id: f
entry: a
nodes:
  - id: a
    type: conversational_response
    config: {mensaje: hola}
    edges:
      - target: nowhere
`},
		{"missing entry", `
id: f
entry: zzz
nodes:
  - id: a
    type: conversational_response
    config: {mensaje: hola}
`},
		{"keyword trigger without keyword", `
id: f
trigger: {type: keyword}
entry: a
nodes:
  - id: a
    type: conversational_response
    config: {mensaje: hola}
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFlow(t, dir, "f.yaml", tc.content)
			_, err := New(dir)
			assert.Error(t, err)
		})
	}
}

func TestFlowIDDefaultsToFilename(t *testing.T) {
	dir := t.TempDir()
	writeFlow(t, dir, "ventas.yaml", `
entry: a
nodes:
  - id: a
    type: conversational_response
    config: {mensaje: hola}
`)

	src, err := New(dir)
	require.NoError(t, err)
	_, err = src.GetFlow(context.Background(), "ventas")
	assert.NoError(t, err)
}
