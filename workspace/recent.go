package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"workdeck/apperr"
	"workdeck/logutils"
	"workdeck/models"
)

// maxRecentWorkspaces caps the recent-workspaces cache.
const maxRecentWorkspaces = 10

const recentFileName = "recent_workspaces.json"

func (m *Manager) recentFile() string {
	if m.configDir == "" {
		return ""
	}
	return filepath.Join(m.configDir, recentFileName)
}

func (m *Manager) loadRecent() []models.WorkspaceInfo {
	file := m.recentFile()
	if file == "" {
		return nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil
	}
	var entries []models.WorkspaceInfo
	if err := json.Unmarshal(data, &entries); err != nil {
		logutils.Log.WithError(err).Warn("unparseable recent-workspaces cache, starting fresh")
		return nil
	}
	return entries
}

func (m *Manager) saveRecent(entries []models.WorkspaceInfo) error {
	file := m.recentFile()
	if file == "" {
		return fmt.Errorf("%w: no user config directory", apperr.ErrFilesystem)
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return fmt.Errorf("%w: create config dir: %v", apperr.ErrFilesystem, err)
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("%w: encode recent workspaces: %v", apperr.ErrFilesystem, err)
	}
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return fmt.Errorf("%w: write recent workspaces: %v", apperr.ErrFilesystem, err)
	}
	return nil
}

// rememberWorkspace moves (or inserts) the workspace at the front of the
// cache, evicting the oldest entry beyond the cap. The alias of a previously
// seen path survives the reopen; it is returned so the caller can report it.
func (m *Manager) rememberWorkspace(ws models.WorkspaceInfo) string {
	entries := m.loadRecent()

	alias := ""
	kept := entries[:0]
	for _, e := range entries {
		if e.Path == ws.Path {
			alias = e.Alias
			continue
		}
		kept = append(kept, e)
	}

	entry := models.WorkspaceInfo{
		Path:         ws.Path,
		DBPath:       ws.DBPath,
		LastOpenedAt: ws.LastOpenedAt,
		Alias:        alias,
	}
	entries = append([]models.WorkspaceInfo{entry}, kept...)
	if len(entries) > maxRecentWorkspaces {
		entries = entries[:maxRecentWorkspaces]
	}

	if err := m.saveRecent(entries); err != nil {
		logutils.Log.WithError(err).Warn("saving recent-workspaces cache")
	}
	return alias
}

// ListRecent returns the cached recent workspaces, most recent first. The
// paths are reported as-is, without checking that they still exist.
func (m *Manager) ListRecent() ([]models.WorkspaceInfo, error) {
	return m.loadRecent(), nil
}

// UpdateAlias sets the user alias of one cached workspace.
func (m *Manager) UpdateAlias(path, alias string) error {
	entries := m.loadRecent()
	for i := range entries {
		if entries[i].Path == path {
			entries[i].Alias = alias
			return m.saveRecent(entries)
		}
	}
	return fmt.Errorf("%w: workspace %s not in recent list", apperr.ErrNotFound, path)
}

// RemoveRecent drops one workspace from the cache by path.
func (m *Manager) RemoveRecent(path string) error {
	entries := m.loadRecent()
	for i := range entries {
		if entries[i].Path == path {
			entries = append(entries[:i], entries[i+1:]...)
			return m.saveRecent(entries)
		}
	}
	return fmt.Errorf("%w: workspace %s not in recent list", apperr.ErrNotFound, path)
}
