package controller

import (
	"net/http"
	"testing"

	"ai-notecanvas/internal/dto"
	"ai-notecanvas/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) createNode(t *testing.T, body string) entity.NoteNode {
	t.Helper()
	status, env := h.do(t, http.MethodPost, "/api/canvas/v1/nodes", body)
	require.Equal(t, http.StatusCreated, status)
	var node entity.NoteNode
	decode(t, env, &node)
	return node
}

func TestCreateAndListNodes(t *testing.T) {
	h := newHarness(t, "test-key")

	node := h.createNode(t, `{"position":{"x":10,"y":20}}`)
	assert.NotEmpty(t, node.Id)
	assert.Equal(t, entity.NodeTypeNote, node.Type)
	assert.Equal(t, entity.NoteStatusDraft, node.Data.Status)
	assert.Equal(t, entity.Position{X: 10, Y: 20}, node.Position)

	status, env := h.do(t, http.MethodGet, "/api/canvas/v1", "")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	var graph dto.GraphResponse
	decode(t, env, &graph)
	require.Len(t, graph.Nodes, 1)
	assert.Equal(t, node.Id, graph.Nodes[0].Id)
	assert.Empty(t, graph.Edges)
}

func TestCreateNodeRejectsBadInput(t *testing.T) {
	h := newHarness(t, "test-key")

	status, env := h.do(t, http.MethodPost, "/api/canvas/v1/nodes", `{"position":{"x":1}}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
	assert.Equal(t, "Validation failed", env.Message)

	status, _ = h.do(t, http.MethodPost, "/api/canvas/v1/nodes", `{"position":`)
	assert.Equal(t, http.StatusBadRequest, status)

	assert.Empty(t, h.store.Nodes())
}

func TestUnknownNodeIsNotFound(t *testing.T) {
	h := newHarness(t, "test-key")

	status, env := h.do(t, http.MethodGet, "/api/canvas/v1/nodes/missing", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, http.StatusNotFound, env.Code)

	status, _ = h.do(t, http.MethodPut, "/api/canvas/v1/nodes/missing/content", `{"content":"x"}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUpdateNodeFields(t *testing.T) {
	h := newHarness(t, "test-key")
	node := h.createNode(t, `{"position":{"x":0,"y":0}}`)
	base := "/api/canvas/v1/nodes/" + node.Id

	status, _ := h.do(t, http.MethodPut, base+"/content", `{"content":"Buy milk and eggs"}`)
	require.Equal(t, http.StatusOK, status)

	status, env := h.do(t, http.MethodPut, base+"/title", `{"title":"Shopping"}`)
	require.Equal(t, http.StatusOK, status)
	var titled entity.NoteNode
	decode(t, env, &titled)
	assert.Equal(t, "Shopping", titled.Data.Title)
	assert.True(t, titled.Data.IsTitleManual)

	status, _ = h.do(t, http.MethodPut, base+"/position", `{"position":{"x":5,"y":6}}`)
	require.Equal(t, http.StatusOK, status)

	status, _ = h.do(t, http.MethodPut, base+"/view", `{"isMinimized":true}`)
	require.Equal(t, http.StatusOK, status)

	status, _ = h.do(t, http.MethodPut, base+"/status", `{"status":"connected"}`)
	require.Equal(t, http.StatusOK, status)

	status, env = h.do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, status)
	var shown dto.NodeResponse
	decode(t, env, &shown)
	assert.Equal(t, "Buy milk and eggs", shown.Node.Data.Content)
	assert.Equal(t, entity.Position{X: 5, Y: 6}, shown.Node.Position)
	assert.True(t, shown.Node.Data.IsMinimized)
	assert.Equal(t, entity.NoteStatusConnected, shown.Node.Data.Status)
}

func TestPendingStatusCannotBeSet(t *testing.T) {
	h := newHarness(t, "test-key")
	node := h.createNode(t, `{"position":{"x":0,"y":0}}`)

	status, _ := h.do(t, http.MethodPut, "/api/canvas/v1/nodes/"+node.Id+"/status", `{"status":"pending"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	n, ok := h.store.Node(node.Id)
	require.True(t, ok)
	assert.Equal(t, entity.NoteStatusDraft, n.Data.Status)
}

func TestEdgesAndCascadingDelete(t *testing.T) {
	h := newHarness(t, "test-key")
	a := h.createNode(t, `{"position":{"x":0,"y":0}}`)
	b := h.createNode(t, `{"position":{"x":1,"y":1}}`)

	status, _ := h.do(t, http.MethodPost, "/api/canvas/v1/edges", `{"source":"`+a.Id+`","target":"`+a.Id+`"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env := h.do(t, http.MethodPost, "/api/canvas/v1/edges", `{"source":"`+a.Id+`","target":"`+b.Id+`"}`)
	require.Equal(t, http.StatusCreated, status)
	var edge entity.Edge
	decode(t, env, &edge)
	assert.Equal(t, a.Id, edge.Source)
	assert.Equal(t, b.Id, edge.Target)

	status, _ = h.do(t, http.MethodDelete, "/api/canvas/v1/edges/unknown", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = h.do(t, http.MethodDelete, "/api/canvas/v1/nodes/"+a.Id, "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, h.store.Edges())
	assert.Len(t, h.store.Nodes(), 1)
}
