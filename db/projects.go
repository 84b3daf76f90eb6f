package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"workdeck/apperr"
	"workdeck/models"
)

// Projects retrieves all projects, most recently updated first.
func (s *Store) Projects() ([]models.Project, error) {
	var projects []models.Project
	if err := s.orm.Order("updated_at DESC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("%w: list projects: %w", apperr.ErrPersistence, err)
	}
	return projects, nil
}

// InsertProject writes a new project record.
func (s *Store) InsertProject(project *models.Project) error {
	if err := s.orm.Create(project).Error; err != nil {
		return fmt.Errorf("%w: insert project: %w", apperr.ErrPersistence, err)
	}
	return nil
}

// ProjectByID retrieves one project.
func (s *Store) ProjectByID(id string) (*models.Project, error) {
	var project models.Project
	err := s.orm.First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: project %s", apperr.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get project: %w", apperr.ErrPersistence, err)
	}
	return &project, nil
}

// SaveProject persists all fields of an existing project.
func (s *Store) SaveProject(project *models.Project) error {
	if err := s.orm.Save(project).Error; err != nil {
		return fmt.Errorf("%w: update project: %w", apperr.ErrPersistence, err)
	}
	return nil
}

// DeleteProject removes the registry record only; the on-disk project
// directory is deliberately retained.
func (s *Store) DeleteProject(id string) error {
	res := s.orm.Delete(&models.Project{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("%w: delete project: %w", apperr.ErrPersistence, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: project %s", apperr.ErrNotFound, id)
	}
	return nil
}
