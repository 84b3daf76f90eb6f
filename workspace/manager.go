// Package workspace holds the process-wide application context: which
// workspace is active, its database handle, the recent-workspaces cache and
// the workspace settings. Every registry and sync operation goes through a
// Manager instead of package globals, so switching workspaces is an explicit
// replace-and-drop of one owned context.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"workdeck/apperr"
	"workdeck/db"
	"workdeck/logutils"
	"workdeck/models"
)

const (
	appDirName     = ".app"
	dbFileName     = "app.db"
	metaSettings   = "settings"
	metaLastOpened = "last_opened"
)

// Manager is the application context. The zero workspace state is "nothing
// open"; OpenOrCreate activates a workspace and Close (or a second
// OpenOrCreate) releases it.
type Manager struct {
	mu        sync.Mutex
	store     *db.Store
	path      string
	configDir string
}

// Option configures a Manager.
type Option func(*Manager)

// WithConfigDir overrides the per-user config location of the
// recent-workspaces cache. Used by tests.
func WithConfigDir(dir string) Option {
	return func(m *Manager) { m.configDir = dir }
}

// NewManager creates a Manager with no active workspace.
func NewManager(opts ...Option) *Manager {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	if m.configDir == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			m.configDir = filepath.Join(dir, "workdeck")
		}
	}
	return m
}

// DBPath returns the database location derived from a workspace root.
func DBPath(root string) string {
	return filepath.Join(root, appDirName, dbFileName)
}

// OpenOrCreate validates the workspace root, initializes (or reopens) its
// database and makes it the active workspace. The previous database handle,
// if any, is fully released before the new one is acquired. Reopening a known
// workspace is idempotent.
func (m *Manager) OpenOrCreate(path string) (*models.WorkspaceInfo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrPathInvalid, path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrPathInvalid, abs)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", apperr.ErrPathInvalid, abs)
	}

	// Probe writability by creating and removing a marker file.
	probe := filepath.Join(abs, ".workdeck_write_probe")
	if err := os.WriteFile(probe, []byte("probe"), 0o644); err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrNotWritable, abs)
	}
	_ = os.Remove(probe)

	if err := os.MkdirAll(filepath.Join(abs, appDirName), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s dir: %v", apperr.ErrFilesystem, appDirName, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Release the previous handle before acquiring the new one, so a failed
	// switch can never leave two live connections or cross-workspace writes.
	if m.store != nil {
		if err := m.store.Close(); err != nil {
			logutils.Log.WithError(err).Warn("closing previous workspace database")
		}
		m.store = nil
		m.path = ""
	}

	store, err := db.Open(DBPath(abs))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := store.SetMeta(metaLastOpened, now.UTC().Format(time.RFC3339)); err != nil {
		store.Close()
		return nil, err
	}

	settings := m.resolveSettings(store)

	m.store = store
	m.path = abs

	ws := models.WorkspaceInfo{
		Path:         abs,
		DBPath:       DBPath(abs),
		LastOpenedAt: now,
		Settings:     &settings,
	}
	ws.Alias = m.rememberWorkspace(ws)

	logutils.Log.WithField("path", abs).Info("workspace opened")
	return &ws, nil
}

// Close releases the active workspace, if any.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return nil
	}
	err := m.store.Close()
	m.store = nil
	m.path = ""
	return err
}

// Store returns the database of the active workspace.
func (m *Manager) Store() (*db.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return nil, apperr.ErrNoActiveWorkspace
	}
	return m.store, nil
}

// Path returns the root of the active workspace.
func (m *Manager) Path() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return "", apperr.ErrNoActiveWorkspace
	}
	return m.path, nil
}

// active returns both the store and root path of the active workspace.
func (m *Manager) active() (*db.Store, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return nil, "", apperr.ErrNoActiveWorkspace
	}
	return m.store, m.path, nil
}

func (m *Manager) resolveSettings(store *db.Store) models.WorkspaceSettings {
	raw, ok, err := store.Meta(metaSettings)
	if err != nil || !ok {
		return models.DefaultWorkspaceSettings()
	}
	return models.ParseWorkspaceSettings(raw)
}
