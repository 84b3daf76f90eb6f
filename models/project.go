package models

import (
	"encoding/json"
	"time"

	"workdeck/logutils"
)

// ProjectDisplay holds per-project display preferences.
type ProjectDisplay struct {
	ThemeMode  string `json:"themeMode,omitempty"`
	ThemeColor string `json:"themeColor,omitempty"`
}

// Project represents a named unit of work bound to one directory under the
// active workspace root. The display and IDE-override sub-objects are stored
// as JSON blobs so the schema stays stable while they evolve.
type Project struct {
	ID              string    `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"not null;index" json:"name"`
	Description     string    `json:"description,omitempty"`
	ProjectPath     string    `gorm:"not null;unique" json:"projectPath"`
	DisplayJSON     string    `gorm:"column:display_json" json:"-"`
	IdeOverrideJSON string    `gorm:"column:ide_override_json" json:"-"`
	CreatedAt       time.Time `gorm:"not null;type:datetime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;type:datetime;index" json:"updatedAt"`
}

// Display decodes the display blob. A broken blob is logged and treated as
// unset.
func (p *Project) Display() *ProjectDisplay {
	return decodeBlob[ProjectDisplay](p.DisplayJSON, "project display")
}

// SetDisplay encodes the display blob; nil clears it.
func (p *Project) SetDisplay(d *ProjectDisplay) {
	p.DisplayJSON = encodeBlob(d)
}

// IdeOverride decodes the per-project IDE override blob.
func (p *Project) IdeOverride() *IdeConfig {
	return decodeBlob[IdeConfig](p.IdeOverrideJSON, "project ide override")
}

// SetIdeOverride encodes the IDE override blob; nil clears it.
func (p *Project) SetIdeOverride(c *IdeConfig) {
	p.IdeOverrideJSON = encodeBlob(c)
}

func decodeBlob[T any](raw, what string) *T {
	if raw == "" {
		return nil
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		logutils.Log.WithError(err).Warnf("unparseable %s blob, ignoring", what)
		return nil
	}
	return &v
}

func encodeBlob[T any](v *T) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
