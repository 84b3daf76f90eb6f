package models

import "time"

// DirectoryTypeKind discriminates built-in directory types from user-created
// ones. The kind of a row never changes after creation.
type DirectoryTypeKind string

const (
	DirKindCode            DirectoryTypeKind = "code"
	DirKindDocs            DirectoryTypeKind = "docs"
	DirKindUIDesign        DirectoryTypeKind = "ui_design"
	DirKindProjectPlanning DirectoryTypeKind = "project_planning"
	DirKindCustom          DirectoryTypeKind = "custom"
)

// DirectoryType classifies a project subdirectory's purpose.
type DirectoryType struct {
	ID        string            `gorm:"primaryKey" json:"id"`
	Kind      DirectoryTypeKind `gorm:"not null" json:"kind"`
	Name      string            `gorm:"not null" json:"name"`
	Category  string            `json:"category,omitempty"`
	SortOrder int               `gorm:"not null;default:0;index" json:"sortOrder"`
	CreatedAt time.Time         `gorm:"not null;type:datetime" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;type:datetime" json:"updated_at"`
}

// ProjectDirectory binds one directory type to a relative path within one
// project. At most one binding exists per (project, type).
type ProjectDirectory struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	ProjectID    string    `gorm:"not null;uniqueIndex:idx_project_dir_type;index" json:"projectId"`
	DirTypeID    string    `gorm:"not null;uniqueIndex:idx_project_dir_type" json:"dirTypeId"`
	RelativePath string    `gorm:"not null" json:"relativePath"`
	CreatedAt    time.Time `gorm:"not null;type:datetime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;type:datetime" json:"updated_at"`
}
