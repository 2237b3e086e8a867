package contract

import (
	"context"
)

const (
	CollectionNodes    = "nodes"
	CollectionEdges    = "edges"
	CollectionDocument = "document"
	CollectionSettings = "settings"
	CollectionChats    = "chats"
)

var Collections = []string{
	CollectionNodes,
	CollectionEdges,
	CollectionDocument,
	CollectionSettings,
	CollectionChats,
}

// Record is one keyed value inside a collection. Value is the JSON encoding
// of the entity.
type Record struct {
	Id    string
	Value []byte
}

// KVStore is the durable side of the application: independent collections
// of records keyed by id. Every write is an idempotent upsert.
type KVStore interface {
	GetAll(ctx context.Context, collection string) ([]Record, error)
	// Get returns nil, nil when the key is absent.
	Get(ctx context.Context, collection, id string) ([]byte, error)
	Put(ctx context.Context, collection string, record Record) error
	// PutBatch applies all records together where the backend can; callers
	// must tolerate a partially applied batch after a crash.
	PutBatch(ctx context.Context, collection string, records []Record) error
	Delete(ctx context.Context, collection, id string) error
	Close() error
}
