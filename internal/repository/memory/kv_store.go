package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"ai-notecanvas/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// KVStore keeps records for the lifetime of the process only. It backs the
// session when no durable store can be opened, and the tests.
type KVStore struct {
	cache *cache.Cache
	// batchMu makes PutBatch visible all at once to GetAll.
	batchMu sync.RWMutex
}

var _ contract.KVStore = (*KVStore)(nil)

func NewKVStore() *KVStore {
	return &KVStore{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func key(collection, id string) string {
	return collection + "/" + id
}

func (s *KVStore) GetAll(ctx context.Context, collection string) ([]contract.Record, error) {
	s.batchMu.RLock()
	defer s.batchMu.RUnlock()

	prefix := collection + "/"
	var records []contract.Record
	for k, item := range s.cache.Items() {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		records = append(records, contract.Record{
			Id:    strings.TrimPrefix(k, prefix),
			Value: cloneBytes(item.Object.([]byte)),
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Id < records[j].Id })
	return records, nil
}

func (s *KVStore) Get(ctx context.Context, collection, id string) ([]byte, error) {
	s.batchMu.RLock()
	defer s.batchMu.RUnlock()

	if x, found := s.cache.Get(key(collection, id)); found {
		return cloneBytes(x.([]byte)), nil
	}
	return nil, nil
}

func (s *KVStore) Put(ctx context.Context, collection string, record contract.Record) error {
	s.batchMu.RLock()
	defer s.batchMu.RUnlock()

	s.cache.Set(key(collection, record.Id), cloneBytes(record.Value), cache.NoExpiration)
	return nil
}

func (s *KVStore) PutBatch(ctx context.Context, collection string, records []contract.Record) error {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()

	for _, r := range records {
		s.cache.Set(key(collection, r.Id), cloneBytes(r.Value), cache.NoExpiration)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, collection, id string) error {
	s.batchMu.RLock()
	defer s.batchMu.RUnlock()

	s.cache.Delete(key(collection, id))
	return nil
}

func (s *KVStore) Close() error {
	s.cache.Flush()
	return nil
}

func cloneBytes(b []byte) []byte {
	return append([]byte(nil), b...)
}
