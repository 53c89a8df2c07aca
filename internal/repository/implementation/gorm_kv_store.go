package implementation

import (
	"context"
	"errors"
	"time"

	"chatpulse/internal/model"
	"chatpulse/internal/repository/contract"
	"chatpulse/internal/repository/scope"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormKVStore keeps history as a jsonb row in Postgres.
type GormKVStore struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewGormKVStore(db *gorm.DB) contract.KVStore {
	return &GormKVStore{db: db, timeout: defaultStoreTimeout}
}

func (s *GormKVStore) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var entry model.KVEntry
	err := s.db.WithContext(ctx).Scopes(scope.ByKey(key)).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(entry.Value), true, nil
}

func (s *GormKVStore) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	entry := model.KVEntry{Key: key, Value: datatypes.JSON(value), UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (s *GormKVStore) Remove(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.db.WithContext(ctx).Scopes(scope.ByKey(key)).Delete(&model.KVEntry{}).Error
}
