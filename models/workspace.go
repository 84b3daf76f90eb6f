package models

import (
	"encoding/json"
	"time"

	"workdeck/logutils"
)

// ThemeMode selects how the UI resolves its color theme.
type ThemeMode string

const (
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
	ThemeSystem ThemeMode = "system"
	ThemeCustom ThemeMode = "custom"
)

// SupportedIdeKind identifies a family of IDE executables.
type SupportedIdeKind string

const (
	IdeVscode       SupportedIdeKind = "vscode"
	IdeVisualStudio SupportedIdeKind = "visual_studio"
	IdeJetbrains    SupportedIdeKind = "jetbrains"
	IdeCustom       SupportedIdeKind = "custom"
)

// IdeConfig describes how to launch an IDE for a repository.
type IdeConfig struct {
	Kind    SupportedIdeKind `json:"kind"`
	Name    string           `json:"name"`
	ExePath string           `json:"exePath"`
	Args    []string         `json:"args,omitempty"`
}

// WorkspaceSettings is the per-workspace settings blob stored under the
// "settings" key in workspace_meta.
type WorkspaceSettings struct {
	ThemeMode     ThemeMode  `json:"themeMode"`
	CustomThemeID string     `json:"customThemeId,omitempty"`
	DefaultIde    *IdeConfig `json:"defaultIde,omitempty"`
}

// DefaultWorkspaceSettings returns the settings used when nothing has been
// persisted yet, or when the persisted blob cannot be parsed.
func DefaultWorkspaceSettings() WorkspaceSettings {
	return WorkspaceSettings{ThemeMode: ThemeSystem}
}

// ParseWorkspaceSettings decodes a settings blob, falling back to defaults on
// any parse failure. A broken blob is logged, never fatal.
func ParseWorkspaceSettings(raw string) WorkspaceSettings {
	if raw == "" {
		return DefaultWorkspaceSettings()
	}
	var s WorkspaceSettings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		logutils.Log.WithError(err).Warn("unparseable workspace settings, using defaults")
		return DefaultWorkspaceSettings()
	}
	if s.ThemeMode == "" {
		s.ThemeMode = ThemeSystem
	}
	return s
}

// WorkspaceInfo describes one workspace root. It is both the return value of
// opening a workspace and the entry format of the recent-workspaces cache.
type WorkspaceInfo struct {
	Path         string             `json:"path"`
	DBPath       string             `json:"dbPath"`
	LastOpenedAt time.Time          `json:"lastOpenedAt"`
	Alias        string             `json:"alias,omitempty"`
	Settings     *WorkspaceSettings `json:"settings,omitempty"`
}

// WorkspaceMeta is a key/value row in the per-workspace database.
type WorkspaceMeta struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `gorm:"not null;type:datetime" json:"updated_at"`
}

func (WorkspaceMeta) TableName() string { return "workspace_meta" }
