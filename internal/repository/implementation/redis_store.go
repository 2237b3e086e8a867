package implementation

import (
	"context"
	"errors"
	"sort"

	"ai-notecanvas/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "notecanvas:"

// RedisStore keeps one hash per collection, field = record id.
type RedisStore struct {
	rdb *redis.Client
}

var _ contract.KVStore = (*RedisStore)(nil)

func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &RedisStore{rdb: rdb}, nil
}

func NewRedisStoreFromClient(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func hashKey(collection string) string {
	return redisKeyPrefix + collection
}

func (s *RedisStore) GetAll(ctx context.Context, collection string) ([]contract.Record, error) {
	fields, err := s.rdb.HGetAll(ctx, hashKey(collection)).Result()
	if err != nil {
		return nil, err
	}
	records := make([]contract.Record, 0, len(fields))
	for id, value := range fields {
		records = append(records, contract.Record{Id: id, Value: []byte(value)})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Id < records[j].Id })
	return records, nil
}

func (s *RedisStore) Get(ctx context.Context, collection, id string) ([]byte, error) {
	value, err := s.rdb.HGet(ctx, hashKey(collection), id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *RedisStore) Put(ctx context.Context, collection string, record contract.Record) error {
	return s.rdb.HSet(ctx, hashKey(collection), record.Id, record.Value).Err()
}

// PutBatch runs inside MULTI/EXEC.
func (s *RedisStore) PutBatch(ctx context.Context, collection string, records []contract.Record) error {
	if len(records) == 0 {
		return nil
	}
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, r := range records {
			pipe.HSet(ctx, hashKey(collection), r.Id, r.Value)
		}
		return nil
	})
	return err
}

func (s *RedisStore) Delete(ctx context.Context, collection, id string) error {
	return s.rdb.HDel(ctx, hashKey(collection), id).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
