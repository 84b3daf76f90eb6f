package db

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"workdeck/apperr"
	"workdeck/models"
)

// Meta reads one workspace_meta value. The second return reports whether the
// key exists.
func (s *Store) Meta(key string) (string, bool, error) {
	var row models.WorkspaceMeta
	err := s.orm.First(&row, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: read meta %q: %w", apperr.ErrPersistence, key, err)
	}
	return row.Value, true, nil
}

// SetMeta upserts one workspace_meta value.
func (s *Store) SetMeta(key, value string) error {
	row := models.WorkspaceMeta{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.orm.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("%w: write meta %q: %w", apperr.ErrPersistence, key, err)
	}
	return nil
}
