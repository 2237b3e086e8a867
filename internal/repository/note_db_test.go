package repository

import (
	"context"
	"testing"

	"ai-notecanvas/internal/entity"
	"ai-notecanvas/internal/repository/contract"
	"ai-notecanvas/internal/repository/implementation"
	"ai-notecanvas/internal/repository/memory"
	"ai-notecanvas/pkg/secret"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]contract.KVStore {
	t.Helper()
	bs, err := implementation.NewBadgerStore(implementation.BadgerConfig{InMemory: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bs.Close() })

	return map[string]contract.KVStore{
		"memory": memory.NewKVStore(),
		"badger": bs,
	}
}

func sampleNode(id string, createdAt int64) entity.NoteNode {
	return entity.NoteNode{
		Id:       id,
		Type:     entity.NodeTypeNote,
		Position: entity.Position{X: 12.5, Y: -3},
		Data: entity.NoteNodeData{
			Content:     "",
			Tags:        []string{},
			Status:      entity.NoteStatusDraft,
			ChatHistory: []entity.ChatMessage{},
			CreatedAt:   createdAt,
			UpdatedAt:   createdAt,
		},
	}
}

func TestSaveNodeRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			db := NewNoteDB(kv, nil)

			empty := sampleNode("a", 100)
			full := sampleNode("b", 200)
			full.Data.Title = "Groceries"
			full.Data.IsTitleManual = true
			full.Data.Tags = []string{"home", "weekly"}
			full.Data.Status = entity.NoteStatusConnected
			full.Data.IsExpanded = true
			full.Data.ChatHistory = []entity.ChatMessage{
				{Id: "m1", Role: entity.ChatRoleUser, Content: "hi", Timestamp: 201},
			}

			require.NoError(t, db.SaveNode(ctx, full))
			require.NoError(t, db.SaveNode(ctx, empty))

			nodes, err := db.GetNodes(ctx)
			require.NoError(t, err)
			require.Len(t, nodes, 2)
			assert.Equal(t, empty, nodes[0])
			assert.Equal(t, full, nodes[1])
		})
	}
}

func TestSaveNodeIsUpsert(t *testing.T) {
	ctx := context.Background()
	db := NewNoteDB(memory.NewKVStore(), nil)

	n := sampleNode("a", 1)
	require.NoError(t, db.SaveNode(ctx, n))
	n.Data.Content = "second"
	require.NoError(t, db.SaveNode(ctx, n))

	nodes, err := db.GetNodes(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "second", nodes[0].Data.Content)

	require.NoError(t, db.DeleteNode(ctx, "a"))
	nodes, err = db.GetNodes(ctx)
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestSaveEdgesBatch(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			db := NewNoteDB(kv, nil)
			edges := []entity.Edge{
				{Id: "e1", Source: "a", Target: "b"},
				{Id: "e2", Source: "a", Target: "b"},
			}
			require.NoError(t, db.SaveEdges(ctx, edges))

			got, err := db.GetEdges(ctx)
			require.NoError(t, err)
			assert.ElementsMatch(t, edges, got)

			require.NoError(t, db.DeleteEdge(ctx, "e1"))
			got, err = db.GetEdges(ctx)
			require.NoError(t, err)
			assert.Equal(t, []entity.Edge{edges[1]}, got)
		})
	}
}

func TestSingletonsAbsentReturnNil(t *testing.T) {
	ctx := context.Background()
	db := NewNoteDB(memory.NewKVStore(), nil)

	doc, err := db.GetDocument(ctx)
	require.NoError(t, err)
	assert.Nil(t, doc)

	settings, keyLost, err := db.GetSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, settings)
	assert.False(t, keyLost)

	chats, err := db.GetChats(ctx)
	require.NoError(t, err)
	assert.Nil(t, chats)
}

func TestDocumentStoredUnderMasterKey(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	db := NewNoteDB(kv, nil)

	doc := entity.MasterDocument{
		Sections:    []entity.DocumentSection{{Id: "s1", Title: "Groceries", Content: "Buy milk"}},
		LastUpdated: 42,
	}
	require.NoError(t, db.SaveDocument(ctx, doc))

	raw, err := kv.Get(ctx, contract.CollectionDocument, entity.MasterDocumentId)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"master","sections":[{"id":"s1","title":"Groceries","content":"Buy milk"}],"lastUpdated":42}`, string(raw))

	got, err := db.GetDocument(ctx)
	require.NoError(t, err)
	assert.Equal(t, doc, *got)
}

func TestSettingsApiKeySealedAtRest(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	db := NewNoteDB(kv, secret.NewSealer("local-secret"))

	s := entity.Settings{ApiKey: "pplx-abc", Model: entity.ModelSonar, Theme: entity.ThemeDark}
	require.NoError(t, db.SaveSettings(ctx, s))

	raw, err := kv.Get(ctx, contract.CollectionSettings, entity.SettingsId)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "pplx-abc")

	got, keyLost, err := db.GetSettings(ctx)
	require.NoError(t, err)
	assert.False(t, keyLost)
	assert.Equal(t, s, *got)

	// Secret removed: the key cannot be opened and loads empty.
	got, keyLost, err = NewNoteDB(kv, nil).GetSettings(ctx)
	require.NoError(t, err)
	assert.True(t, keyLost)
	assert.Equal(t, "", got.ApiKey)
	assert.Equal(t, entity.ModelSonar, got.Model)
}

func TestChatsRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := NewNoteDB(memory.NewKVStore(), nil)

	thread := entity.ChatThread{Messages: []entity.ChatMessage{
		{Id: "1", Role: entity.ChatRoleUser, Content: "q", Timestamp: 1},
		{Id: "2", Role: entity.ChatRoleAssistant, Content: "a", Timestamp: 2},
	}}
	require.NoError(t, db.SaveChats(ctx, thread))

	got, err := db.GetChats(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.GlobalChatId, got.Id)
	assert.Equal(t, thread.Messages, got.Messages)
}
