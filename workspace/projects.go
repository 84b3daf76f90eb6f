package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"workdeck/apperr"
	"workdeck/models"
)

// ProjectCreateInput carries the parameters of a project creation.
type ProjectCreateInput struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Display     *models.ProjectDisplay `json:"display,omitempty"`
}

// ProjectUpdateInput is a partial project update. Nil fields retain their
// prior values.
type ProjectUpdateInput struct {
	Name        *string                `json:"name,omitempty"`
	Description *string                `json:"description,omitempty"`
	Display     *models.ProjectDisplay `json:"display,omitempty"`
	IdeOverride *models.IdeConfig      `json:"ideOverride,omitempty"`
}

// ListProjects returns the projects of the active workspace, most recently
// updated first.
func (m *Manager) ListProjects() ([]models.Project, error) {
	store, err := m.Store()
	if err != nil {
		return nil, err
	}
	return store.Projects()
}

// CreateProject creates the project directory under the workspace root and
// writes the registry record. Creation fails, with no database write, when
// the target path already exists: the registry never adopts directories it
// did not create.
func (m *Manager) CreateProject(in ProjectCreateInput) (*models.Project, error) {
	store, root, err := m.active()
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name must not be empty", apperr.ErrValidation)
	}

	target := filepath.Join(root, name)
	if _, err := os.Stat(target); err == nil {
		return nil, fmt.Errorf("%w: project directory %s", apperr.ErrAlreadyExists, target)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: stat %s: %v", apperr.ErrFilesystem, target, err)
	}

	if err := os.MkdirAll(target, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create project directory %s: %v", apperr.ErrFilesystem, target, err)
	}

	now := time.Now()
	project := models.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: in.Description,
		ProjectPath: target,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	project.SetDisplay(in.Display)

	// If the record write fails the created directory is orphaned; project
	// data is never silently destroyed.
	if err := store.InsertProject(&project); err != nil {
		return nil, err
	}
	return &project, nil
}

// GetProject retrieves one project of the active workspace.
func (m *Manager) GetProject(id string) (*models.Project, error) {
	store, err := m.Store()
	if err != nil {
		return nil, err
	}
	return store.ProjectByID(id)
}

// UpdateProject merges the provided fields into the project and refreshes its
// updated-at timestamp.
func (m *Manager) UpdateProject(id string, patch ProjectUpdateInput) (*models.Project, error) {
	store, err := m.Store()
	if err != nil {
		return nil, err
	}

	project, err := store.ProjectByID(id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: project name must not be empty", apperr.ErrValidation)
		}
		project.Name = name
	}
	if patch.Description != nil {
		project.Description = *patch.Description
	}
	if patch.Display != nil {
		project.SetDisplay(patch.Display)
	}
	if patch.IdeOverride != nil {
		project.SetIdeOverride(patch.IdeOverride)
	}
	project.UpdatedAt = time.Now()

	if err := store.SaveProject(project); err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject removes the registry record. The on-disk directory and its
// files are deliberately retained.
func (m *Manager) DeleteProject(id string) error {
	store, err := m.Store()
	if err != nil {
		return err
	}
	return store.DeleteProject(id)
}
