package implementation

import (
	"context"
	"errors"

	"ai-notecanvas/internal/mapper"
	"ai-notecanvas/internal/model"
	"ai-notecanvas/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresStore struct {
	db     *gorm.DB
	mapper *mapper.KVRecordMapper
}

var _ contract.KVStore = (*PostgresStore)(nil)

// NewPostgresStore migrates the kv_records table before returning.
func NewPostgresStore(db *gorm.DB) (*PostgresStore, error) {
	if err := db.AutoMigrate(&model.KVRecord{}); err != nil {
		return nil, err
	}
	return &PostgresStore{
		db:     db,
		mapper: mapper.NewKVRecordMapper(),
	}, nil
}

func upsertClause() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}
}

func (s *PostgresStore) GetAll(ctx context.Context, collection string) ([]contract.Record, error) {
	var models []*model.KVRecord
	err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("id").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return s.mapper.ToRecords(models), nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var m model.KVRecord
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(m.Payload), nil
}

func (s *PostgresStore) Put(ctx context.Context, collection string, record contract.Record) error {
	m := s.mapper.ToModel(collection, record)
	return s.db.WithContext(ctx).Clauses(upsertClause()).Create(m).Error
}

func (s *PostgresStore) PutBatch(ctx context.Context, collection string, records []contract.Record) error {
	if len(records) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(upsertClause()).Create(s.mapper.ToModels(collection, records)).Error
	})
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	return s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&model.KVRecord{}).Error
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
