package workspace

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"workdeck/apperr"
	"workdeck/models"
)

// defaultCustomSortOrder places new custom types after the built-ins.
const defaultCustomSortOrder = 100

// DirectoryTypeCreateInput carries the parameters of a custom directory type.
type DirectoryTypeCreateInput struct {
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	SortOrder *int   `json:"sortOrder,omitempty"`
}

// DirectoryTypeUpdateInput is a partial directory-type update. The kind
// discriminator is immutable and therefore not patchable.
type DirectoryTypeUpdateInput struct {
	Name      *string `json:"name,omitempty"`
	Category  *string `json:"category,omitempty"`
	SortOrder *int    `json:"sortOrder,omitempty"`
}

// ListDirectoryTypes returns all directory types ordered by sort order.
func (m *Manager) ListDirectoryTypes() ([]models.DirectoryType, error) {
	store, err := m.Store()
	if err != nil {
		return nil, err
	}
	return store.DirectoryTypes()
}

// CreateCustomDirectoryType creates a user-defined directory type.
func (m *Manager) CreateCustomDirectoryType(in DirectoryTypeCreateInput) (*models.DirectoryType, error) {
	store, err := m.Store()
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: directory type name must not be empty", apperr.ErrValidation)
	}

	sortOrder := defaultCustomSortOrder
	if in.SortOrder != nil {
		sortOrder = *in.SortOrder
	}

	now := time.Now()
	dt := models.DirectoryType{
		ID:        uuid.NewString(),
		Kind:      models.DirKindCustom,
		Name:      name,
		Category:  in.Category,
		SortOrder: sortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.InsertDirectoryType(&dt); err != nil {
		return nil, err
	}
	return &dt, nil
}

// UpdateDirectoryType merges the provided fields into the directory type.
func (m *Manager) UpdateDirectoryType(id string, patch DirectoryTypeUpdateInput) (*models.DirectoryType, error) {
	store, err := m.Store()
	if err != nil {
		return nil, err
	}

	dt, err := store.DirectoryTypeByID(id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: directory type name must not be empty", apperr.ErrValidation)
		}
		dt.Name = name
	}
	if patch.Category != nil {
		dt.Category = *patch.Category
	}
	if patch.SortOrder != nil {
		dt.SortOrder = *patch.SortOrder
	}
	dt.UpdatedAt = time.Now()

	if err := store.SaveDirectoryType(dt); err != nil {
		return nil, err
	}
	return dt, nil
}

// ListProjectDirectories returns the directory bindings of one project.
func (m *Manager) ListProjectDirectories(projectID string) ([]models.ProjectDirectory, error) {
	store, err := m.Store()
	if err != nil {
		return nil, err
	}
	return store.ProjectDirectories(projectID)
}

// UpsertProjectDirectory binds a directory type to a relative path within a
// project, replacing any previous binding of the same type.
func (m *Manager) UpsertProjectDirectory(projectID, dirTypeID, relativePath string) (*models.ProjectDirectory, error) {
	store, err := m.Store()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dirTypeID) == "" {
		return nil, fmt.Errorf("%w: directory type id must not be empty", apperr.ErrValidation)
	}
	if strings.TrimSpace(relativePath) == "" {
		return nil, fmt.Errorf("%w: relative path must not be empty", apperr.ErrValidation)
	}
	if _, err := store.ProjectByID(projectID); err != nil {
		return nil, err
	}
	if _, err := store.DirectoryTypeByID(dirTypeID); err != nil {
		return nil, err
	}
	return store.UpsertProjectDirectory(projectID, dirTypeID, relativePath)
}
