package workspace

import (
	"encoding/json"
	"fmt"

	"workdeck/apperr"
	"workdeck/models"
)

// SettingsPatch is a partial update of the workspace settings. Nil fields
// retain their prior values.
type SettingsPatch struct {
	ThemeMode     *models.ThemeMode `json:"themeMode,omitempty"`
	CustomThemeID *string           `json:"customThemeId,omitempty"`
	DefaultIde    *models.IdeConfig `json:"defaultIde,omitempty"`
}

// Settings returns the active workspace's settings, falling back to defaults
// when none are persisted yet.
func (m *Manager) Settings() (models.WorkspaceSettings, error) {
	store, err := m.Store()
	if err != nil {
		return models.WorkspaceSettings{}, err
	}
	return m.resolveSettings(store), nil
}

// UpdateSettings merges the patch into the persisted settings and returns the
// result.
func (m *Manager) UpdateSettings(patch SettingsPatch) (models.WorkspaceSettings, error) {
	store, err := m.Store()
	if err != nil {
		return models.WorkspaceSettings{}, err
	}

	settings := m.resolveSettings(store)
	if patch.ThemeMode != nil {
		settings.ThemeMode = *patch.ThemeMode
	}
	if patch.CustomThemeID != nil {
		settings.CustomThemeID = *patch.CustomThemeID
	}
	if patch.DefaultIde != nil {
		settings.DefaultIde = patch.DefaultIde
	}

	blob, err := json.Marshal(settings)
	if err != nil {
		return models.WorkspaceSettings{}, fmt.Errorf("%w: encode settings: %w", apperr.ErrPersistence, err)
	}
	if err := store.SetMeta(metaSettings, string(blob)); err != nil {
		return models.WorkspaceSettings{}, err
	}
	return settings, nil
}
