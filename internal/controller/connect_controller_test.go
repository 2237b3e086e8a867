package controller

import (
	"errors"
	"net/http"
	"testing"

	"ai-notecanvas/internal/dto"
	"ai-notecanvas/internal/entity"
	"ai-notecanvas/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectNoteUpdatesDocument(t *testing.T) {
	h := newHarness(t, "test-key")
	node := h.createNode(t, `{"position":{"x":0,"y":0},"content":"buy milk"}`)

	h.provider.script("```json\n" + `{"sections":[{"id":"s1","title":"Groceries","content":"- milk"}],"summary_of_changes":"Added groceries"}` + "\n```")

	status, env := h.do(t, http.MethodPost, "/api/canvas/v1/nodes/"+node.Id+"/connect", "")
	require.Equal(t, http.StatusOK, status)

	var res dto.ConnectResult
	decode(t, env, &res)
	assert.Equal(t, "Added groceries", res.SummaryOfChanges)
	assert.Equal(t, entity.NoteStatusConnected, res.Node.Data.Status)
	require.Len(t, res.Document.Sections, 1)
	assert.Equal(t, "Groceries", h.store.Document().Sections[0].Title)
}

func TestConnectUpstreamFailure(t *testing.T) {
	h := newHarness(t, "test-key")
	node := h.createNode(t, `{"position":{"x":0,"y":0},"content":"buy milk"}`)
	h.provider.err = &llm.NetworkError{Err: errors.New("connection refused")}

	status, env := h.do(t, http.MethodPost, "/api/canvas/v1/nodes/"+node.Id+"/connect", "")
	assert.Equal(t, http.StatusBadGateway, status)
	assert.False(t, env.Success)

	n, _ := h.store.Node(node.Id)
	assert.Equal(t, entity.NoteStatusDraft, n.Data.Status)
	assert.Empty(t, h.store.Document().Sections)
}

func TestConnectWithoutKeyIsUnauthorized(t *testing.T) {
	h := newHarness(t, "")
	node := h.createNode(t, `{"position":{"x":0,"y":0},"content":"buy milk"}`)

	status, _ := h.do(t, http.MethodPost, "/api/canvas/v1/nodes/"+node.Id+"/connect", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}
