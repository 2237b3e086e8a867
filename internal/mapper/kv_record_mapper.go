package mapper

import (
	"ai-notecanvas/internal/model"
	"ai-notecanvas/internal/repository/contract"

	"gorm.io/datatypes"
)

type KVRecordMapper struct{}

func NewKVRecordMapper() *KVRecordMapper {
	return &KVRecordMapper{}
}

func (m *KVRecordMapper) ToRecord(r *model.KVRecord) contract.Record {
	return contract.Record{
		Id:    r.Id,
		Value: []byte(r.Payload),
	}
}

func (m *KVRecordMapper) ToModel(collection string, r contract.Record) *model.KVRecord {
	return &model.KVRecord{
		Collection: collection,
		Id:         r.Id,
		Payload:    datatypes.JSON(r.Value),
	}
}

func (m *KVRecordMapper) ToRecords(models []*model.KVRecord) []contract.Record {
	records := make([]contract.Record, len(models))
	for i, r := range models {
		records[i] = m.ToRecord(r)
	}
	return records
}

func (m *KVRecordMapper) ToModels(collection string, records []contract.Record) []*model.KVRecord {
	models := make([]*model.KVRecord, len(records))
	for i, r := range records {
		models[i] = m.ToModel(collection, r)
	}
	return models
}
