package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"workdeck/apperr"
	"workdeck/models"
)

// RepositoriesByProject retrieves all repository records of one project.
func (s *Store) RepositoriesByProject(projectID string) ([]models.GitRepository, error) {
	var repos []models.GitRepository
	if err := s.orm.Find(&repos, "project_id = ?", projectID).Error; err != nil {
		return nil, fmt.Errorf("%w: list repositories: %w", apperr.ErrPersistence, err)
	}
	return repos, nil
}

// AllRepositories retrieves every repository record in the workspace. Used by
// the background watcher when polling without a repository filter.
func (s *Store) AllRepositories() ([]models.GitRepository, error) {
	var repos []models.GitRepository
	if err := s.orm.Find(&repos).Error; err != nil {
		return nil, fmt.Errorf("%w: list repositories: %w", apperr.ErrPersistence, err)
	}
	return repos, nil
}

// InsertRepository writes a new repository record.
func (s *Store) InsertRepository(repo *models.GitRepository) error {
	if err := s.orm.Create(repo).Error; err != nil {
		return fmt.Errorf("%w: insert repository: %w", apperr.ErrPersistence, err)
	}
	return nil
}

// RepositoryByID retrieves one repository record.
func (s *Store) RepositoryByID(id string) (*models.GitRepository, error) {
	var repo models.GitRepository
	err := s.orm.First(&repo, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: repository %s", apperr.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get repository: %w", apperr.ErrPersistence, err)
	}
	return &repo, nil
}

// SetRepositorySynced records a successful pull.
func (s *Store) SetRepositorySynced(id string, at time.Time) error {
	err := s.orm.Model(&models.GitRepository{}).Where("id = ?", id).
		Updates(map[string]any{"last_sync_at": at, "updated_at": at}).Error
	if err != nil {
		return fmt.Errorf("%w: update sync time: %w", apperr.ErrPersistence, err)
	}
	return nil
}

// SetRepositoryStatus overwrites the cached status snapshot of one
// repository.
func (s *Store) SetRepositoryStatus(id string, status models.GitRepoStatus) error {
	blob, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("%w: encode status snapshot: %w", apperr.ErrPersistence, err)
	}
	err = s.orm.Model(&models.GitRepository{}).Where("id = ?", id).
		Updates(map[string]any{
			"last_status_checked_at": status.LastCheckedAt,
			"last_status_json":       string(blob),
		}).Error
	if err != nil {
		return fmt.Errorf("%w: update status snapshot: %w", apperr.ErrPersistence, err)
	}
	return nil
}
