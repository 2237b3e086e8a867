package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"ai-notecanvas/internal/entity"
	"ai-notecanvas/internal/repository/contract"
	"ai-notecanvas/pkg/secret"
)

// ErrPersistenceUnavailable marks a store that could not be opened. The
// application keeps running on the in-memory store for the session.
var ErrPersistenceUnavailable = errors.New("persistence unavailable")

// NoteDB is the typed view over a KVStore. It never originates changes; the
// graph store reads it once at startup and writes it on every mutation.
type NoteDB struct {
	kv     contract.KVStore
	sealer *secret.Sealer
}

func NewNoteDB(kv contract.KVStore, sealer *secret.Sealer) *NoteDB {
	return &NoteDB{kv: kv, sealer: sealer}
}

func (d *NoteDB) Close() error {
	return d.kv.Close()
}

func (d *NoteDB) put(ctx context.Context, collection, id string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	return d.kv.Put(ctx, collection, contract.Record{Id: id, Value: data})
}

// get returns false when the record is absent.
func (d *NoteDB) get(ctx context.Context, collection, id string, v interface{}) (bool, error) {
	data, err := d.kv.Get(ctx, collection, id)
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return true, nil
}

// Nodes

func (d *NoteDB) GetNodes(ctx context.Context) ([]entity.NoteNode, error) {
	records, err := d.kv.GetAll(ctx, contract.CollectionNodes)
	if err != nil {
		return nil, err
	}

	nodes := make([]entity.NoteNode, 0, len(records))
	for _, r := range records {
		var n entity.NoteNode
		if err := json.Unmarshal(r.Value, &n); err != nil {
			return nil, fmt.Errorf("decode node %s: %w", r.Id, err)
		}
		nodes = append(nodes, n)
	}

	// Creation order is the canvas order; backends return key order.
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Data.CreatedAt != nodes[j].Data.CreatedAt {
			return nodes[i].Data.CreatedAt < nodes[j].Data.CreatedAt
		}
		return nodes[i].Id < nodes[j].Id
	})
	return nodes, nil
}

func (d *NoteDB) SaveNode(ctx context.Context, node entity.NoteNode) error {
	return d.put(ctx, contract.CollectionNodes, node.Id, node)
}

func (d *NoteDB) DeleteNode(ctx context.Context, id string) error {
	return d.kv.Delete(ctx, contract.CollectionNodes, id)
}

// Edges

func (d *NoteDB) GetEdges(ctx context.Context) ([]entity.Edge, error) {
	records, err := d.kv.GetAll(ctx, contract.CollectionEdges)
	if err != nil {
		return nil, err
	}

	edges := make([]entity.Edge, 0, len(records))
	for _, r := range records {
		var e entity.Edge
		if err := json.Unmarshal(r.Value, &e); err != nil {
			return nil, fmt.Errorf("decode edge %s: %w", r.Id, err)
		}
		edges = append(edges, e)
	}
	return edges, nil
}

func (d *NoteDB) SaveEdge(ctx context.Context, edge entity.Edge) error {
	return d.put(ctx, contract.CollectionEdges, edge.Id, edge)
}

func (d *NoteDB) SaveEdges(ctx context.Context, edges []entity.Edge) error {
	records := make([]contract.Record, 0, len(edges))
	for _, e := range edges {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode edge %s: %w", e.Id, err)
		}
		records = append(records, contract.Record{Id: e.Id, Value: data})
	}
	return d.kv.PutBatch(ctx, contract.CollectionEdges, records)
}

func (d *NoteDB) DeleteEdge(ctx context.Context, id string) error {
	return d.kv.Delete(ctx, contract.CollectionEdges, id)
}

// Singletons

type documentRecord struct {
	Id string `json:"id"`
	entity.MasterDocument
}

func (d *NoteDB) GetDocument(ctx context.Context) (*entity.MasterDocument, error) {
	var rec documentRecord
	found, err := d.get(ctx, contract.CollectionDocument, entity.MasterDocumentId, &rec)
	if err != nil || !found {
		return nil, err
	}
	if rec.Sections == nil {
		rec.Sections = []entity.DocumentSection{}
	}
	return &rec.MasterDocument, nil
}

func (d *NoteDB) SaveDocument(ctx context.Context, doc entity.MasterDocument) error {
	return d.put(ctx, contract.CollectionDocument, entity.MasterDocumentId, documentRecord{
		Id:             entity.MasterDocumentId,
		MasterDocument: doc,
	})
}

type settingsRecord struct {
	Id string `json:"id"`
	entity.Settings
}

// GetSettings opens a sealed API key. A key that cannot be opened (secret
// rotated or removed) loads as empty and keyLost is set so the caller can warn.
func (d *NoteDB) GetSettings(ctx context.Context) (settings *entity.Settings, keyLost bool, err error) {
	var rec settingsRecord
	found, err := d.get(ctx, contract.CollectionSettings, entity.SettingsId, &rec)
	if err != nil || !found {
		return nil, false, err
	}

	plain, openErr := d.sealer.Open(rec.ApiKey)
	if openErr != nil {
		plain = ""
		keyLost = true
	}
	rec.ApiKey = plain
	return &rec.Settings, keyLost, nil
}

func (d *NoteDB) SaveSettings(ctx context.Context, settings entity.Settings) error {
	sealed, err := d.sealer.Seal(settings.ApiKey)
	if err != nil {
		return fmt.Errorf("seal api key: %w", err)
	}
	settings.ApiKey = sealed
	return d.put(ctx, contract.CollectionSettings, entity.SettingsId, settingsRecord{
		Id:       entity.SettingsId,
		Settings: settings,
	})
}

func (d *NoteDB) GetChats(ctx context.Context) (*entity.ChatThread, error) {
	var thread entity.ChatThread
	found, err := d.get(ctx, contract.CollectionChats, entity.GlobalChatId, &thread)
	if err != nil || !found {
		return nil, err
	}
	if thread.Messages == nil {
		thread.Messages = []entity.ChatMessage{}
	}
	return &thread, nil
}

func (d *NoteDB) SaveChats(ctx context.Context, thread entity.ChatThread) error {
	thread.Id = entity.GlobalChatId
	return d.put(ctx, contract.CollectionChats, entity.GlobalChatId, thread)
}
