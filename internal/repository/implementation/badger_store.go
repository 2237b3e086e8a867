package implementation

import (
	"context"
	"errors"
	"fmt"
	"os"

	"ai-notecanvas/internal/pkg/logger"
	"ai-notecanvas/internal/repository/contract"

	"github.com/dgraph-io/badger/v4"
)

type BadgerConfig struct {
	// Path is ignored when InMemory is true.
	Path       string
	InMemory   bool
	SyncWrites bool
}

// badgerLogger adapts ILogger to badger's Logger interface.
type badgerLogger struct {
	log logger.ILogger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error("Badger", fmt.Sprintf(format, args...), nil)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn("Badger", fmt.Sprintf(format, args...), nil)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug("Badger", fmt.Sprintf(format, args...), nil)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Debug("Badger", fmt.Sprintf(format, args...), nil)
}

type BadgerStore struct {
	db *badger.DB
}

var _ contract.KVStore = (*BadgerStore)(nil)

func NewBadgerStore(cfg BadgerConfig, log logger.ILogger) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if log != nil {
		opts = opts.WithLogger(&badgerLogger{log: log})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	return &BadgerStore{db: db}, nil
}

func badgerKey(collection, id string) []byte {
	return []byte(collection + "/" + id)
}

func (s *BadgerStore) GetAll(ctx context.Context, collection string) ([]contract.Record, error) {
	var records []contract.Record
	prefix := []byte(collection + "/")

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			records = append(records, contract.Record{
				Id:    string(item.Key()[len(prefix):]),
				Value: value,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", collection, err)
	}

	return records, nil
}

func (s *BadgerStore) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(collection, id))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return value, nil
}

func (s *BadgerStore) Put(ctx context.Context, collection string, record contract.Record) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(collection, record.Id), record.Value)
	})
}

// PutBatch writes inside one transaction so the batch commits atomically.
func (s *BadgerStore) PutBatch(ctx context.Context, collection string, records []contract.Record) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, r := range records {
			if err := txn.Set(badgerKey(collection, r.Id), r.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BadgerStore) Delete(ctx context.Context, collection, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(badgerKey(collection, id))
	})
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
