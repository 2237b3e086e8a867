package model

import (
	"time"

	"gorm.io/datatypes"
)

// KVRecord stores every collection in one table; the primary key is the
// (collection, id) pair.
type KVRecord struct {
	Collection string         `gorm:"type:varchar(32);primaryKey"`
	Id         string         `gorm:"type:varchar(64);primaryKey"`
	Payload    datatypes.JSON `gorm:"type:jsonb;not null"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
}

func (KVRecord) TableName() string {
	return "kv_records"
}
