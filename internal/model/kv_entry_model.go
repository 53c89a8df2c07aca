package model

import (
	"time"

	"gorm.io/datatypes"
)

// KVEntry backs the JSON key-value store used for query history.
type KVEntry struct {
	Key       string         `gorm:"type:varchar(128);primaryKey" json:"key"`
	Value     datatypes.JSON `gorm:"type:jsonb;not null" json:"value"`
	UpdatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
