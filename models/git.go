package models

import "time"

// NetworkState reports whether the last remote interaction reached the
// network.
type NetworkState string

const (
	NetworkOnline  NetworkState = "online"
	NetworkOffline NetworkState = "offline"
	NetworkUnknown NetworkState = "unknown"
)

// GitRepository is the registry record tracking one on-disk working copy
// inside a project.
type GitRepository struct {
	ID                  string     `gorm:"primaryKey" json:"id"`
	ProjectID           string     `gorm:"not null;index" json:"projectId"`
	Name                string     `gorm:"not null" json:"name"`
	Path                string     `gorm:"not null" json:"path"`
	RemoteURL           string     `json:"remoteUrl,omitempty"`
	Branch              string     `json:"branch,omitempty"`
	LastSyncAt          *time.Time `gorm:"type:datetime" json:"lastSyncAt,omitempty"`
	LastStatusCheckedAt *time.Time `gorm:"type:datetime" json:"lastStatusCheckedAt,omitempty"`
	LastStatusJSON      string     `gorm:"column:last_status_json" json:"-"`
	CreatedAt           time.Time  `gorm:"not null;type:datetime" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"not null;type:datetime" json:"updated_at"`
}

// LastStatus decodes the cached status snapshot, if any.
func (r *GitRepository) LastStatus() *GitRepoStatus {
	return decodeBlob[GitRepoStatus](r.LastStatusJSON, "repository status")
}

// GitRepoStatus is a point-in-time reading of one repository. Each check
// overwrites the previous snapshot; it is not an event log.
type GitRepoStatus struct {
	RepoID        string       `json:"repoId"`
	Branch        string       `json:"branch,omitempty"`
	Dirty         bool         `json:"dirty"`
	Ahead         int          `json:"ahead"`
	Behind        int          `json:"behind"`
	LastCheckedAt time.Time    `json:"lastCheckedAt"`
	Network       NetworkState `json:"network"`
	LastError     string       `json:"lastError,omitempty"`
}

// GitCloneInput carries the parameters of a clone request.
type GitCloneInput struct {
	RemoteURL     string `json:"remoteUrl"`
	TargetDirName string `json:"targetDirName"`
	Branch        string `json:"branch,omitempty"`
}

// GitPullResult reports the outcome of a pull. Pull failures against the
// remote are reported here rather than escalated.
type GitPullResult struct {
	OK       bool       `json:"ok"`
	Message  string     `json:"message,omitempty"`
	SyncedAt *time.Time `json:"syncedAt,omitempty"`
}
