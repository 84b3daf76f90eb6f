package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"workdeck/apperr"
	"workdeck/models"
)

// DirectoryTypes retrieves all directory types ordered by sort order
// ascending.
func (s *Store) DirectoryTypes() ([]models.DirectoryType, error) {
	var types []models.DirectoryType
	if err := s.orm.Order("sort_order ASC").Find(&types).Error; err != nil {
		return nil, fmt.Errorf("%w: list directory types: %w", apperr.ErrPersistence, err)
	}
	return types, nil
}

// InsertDirectoryType writes a new directory type record.
func (s *Store) InsertDirectoryType(dt *models.DirectoryType) error {
	if err := s.orm.Create(dt).Error; err != nil {
		return fmt.Errorf("%w: insert directory type: %w", apperr.ErrPersistence, err)
	}
	return nil
}

// DirectoryTypeByID retrieves one directory type.
func (s *Store) DirectoryTypeByID(id string) (*models.DirectoryType, error) {
	var dt models.DirectoryType
	err := s.orm.First(&dt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: directory type %s", apperr.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get directory type: %w", apperr.ErrPersistence, err)
	}
	return &dt, nil
}

// SaveDirectoryType persists all fields of an existing directory type.
func (s *Store) SaveDirectoryType(dt *models.DirectoryType) error {
	if err := s.orm.Save(dt).Error; err != nil {
		return fmt.Errorf("%w: update directory type: %w", apperr.ErrPersistence, err)
	}
	return nil
}

// ProjectDirectories retrieves all directory bindings of one project.
func (s *Store) ProjectDirectories(projectID string) ([]models.ProjectDirectory, error) {
	var dirs []models.ProjectDirectory
	if err := s.orm.Find(&dirs, "project_id = ?", projectID).Error; err != nil {
		return nil, fmt.Errorf("%w: list project directories: %w", apperr.ErrPersistence, err)
	}
	return dirs, nil
}

// UpsertProjectDirectory creates or updates the binding of one directory type
// within one project. A second call for the same (project, type) replaces the
// relative path of the existing row.
func (s *Store) UpsertProjectDirectory(projectID, dirTypeID, relativePath string) (*models.ProjectDirectory, error) {
	now := time.Now()

	var existing models.ProjectDirectory
	err := s.orm.First(&existing, "project_id = ? AND dir_type_id = ?", projectID, dirTypeID).Error
	switch {
	case err == nil:
		existing.RelativePath = relativePath
		existing.UpdatedAt = now
		if err := s.orm.Save(&existing).Error; err != nil {
			return nil, fmt.Errorf("%w: update project directory: %w", apperr.ErrPersistence, err)
		}
		return &existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		row := models.ProjectDirectory{
			ID:           uuid.NewString(),
			ProjectID:    projectID,
			DirTypeID:    dirTypeID,
			RelativePath: relativePath,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.orm.Create(&row).Error; err != nil {
			return nil, fmt.Errorf("%w: insert project directory: %w", apperr.ErrPersistence, err)
		}
		return &row, nil
	default:
		return nil, fmt.Errorf("%w: get project directory: %w", apperr.ErrPersistence, err)
	}
}
