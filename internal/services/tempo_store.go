package services

import (
	"context"
	"errors"

	"github.com/Conceptual-Machines/beatstoch-api/internal/models"
	"github.com/Conceptual-Machines/beatstoch-api/internal/tempo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TempoStore is a tempo.Cache kept in Postgres
type TempoStore struct {
	db *gorm.DB
}

// NewTempoStore creates a store on db
func NewTempoStore(db *gorm.DB) *TempoStore {
	return &TempoStore{db: db}
}

// Get implements tempo.Cache
func (s *TempoStore) Get(ctx context.Context, key string) (tempo.Entry, bool, error) {
	var entry models.TempoEntry
	err := s.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tempo.Entry{}, false, nil
	}
	if err != nil {
		return tempo.Entry{}, false, err
	}
	return tempo.Entry{BPM: entry.BPM, Source: entry.Source, UpdatedAt: entry.UpdatedAt}, true, nil
}

// Put implements tempo.Cache, overwriting any previous entry for key
func (s *TempoStore) Put(ctx context.Context, key string, e tempo.Entry) error {
	entry := models.TempoEntry{Key: key, BPM: e.BPM, Source: e.Source, UpdatedAt: e.UpdatedAt}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"bpm", "source", "updated_at"}),
	}).Create(&entry).Error
}
