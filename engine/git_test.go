package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workdeck/apperr"
	"workdeck/models"
	"workdeck/workspace"
)

func setupWorkspace(t *testing.T) (*workspace.Manager, *models.Project) {
	t.Helper()
	m := workspace.NewManager(workspace.WithConfigDir(t.TempDir()))
	t.Cleanup(func() { m.Close() })

	_, err := m.OpenOrCreate(t.TempDir())
	require.NoError(t, err)

	project, err := m.CreateProject(workspace.ProjectCreateInput{Name: "proj"})
	require.NoError(t, err)
	return m, project
}

// makeSourceRepo creates a repository with one commit on main, usable as a
// local-path remote.
func makeSourceRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.Main},
	})
	require.NoError(t, err)
	commitFile(t, repo, dir, "README.md", "# source\n")
	return dir
}

func commitFile(t *testing.T, repo *git.Repository, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)
	_, err = wt.Commit("add "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
}

func TestCreateLocal(t *testing.T) {
	m, project := setupWorkspace(t)
	eng := New(m)

	record, err := eng.CreateLocal(project.ID, "lib")
	require.NoError(t, err)
	assert.Equal(t, "main", record.Branch)
	assert.Empty(t, record.RemoteURL)
	assert.Equal(t, filepath.Join(project.ProjectPath, "lib"), record.Path)

	_, err = git.PlainOpen(record.Path)
	require.NoError(t, err, "repository exists on disk")

	_, err = eng.CreateLocal(project.ID, "  ")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = eng.CreateLocal("missing", "x")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCloneThenLocalStatus(t *testing.T) {
	m, project := setupWorkspace(t)
	eng := New(m)
	source := makeSourceRepo(t)

	record, err := eng.Clone(context.Background(), project.ID, models.GitCloneInput{
		RemoteURL:     source,
		TargetDirName: "repo",
	})
	require.NoError(t, err)
	assert.Equal(t, "main", record.Branch)
	assert.Equal(t, source, record.RemoteURL)

	status, err := eng.Status(context.Background(), record.ID, false)
	require.NoError(t, err)
	assert.False(t, status.Dirty)
	assert.Equal(t, 0, status.Ahead)
	assert.Equal(t, 0, status.Behind)
	assert.Equal(t, models.NetworkUnknown, status.Network)

	// A local-only check never persists a snapshot.
	store, err := m.Store()
	require.NoError(t, err)
	stored, err := store.RepositoryByID(record.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.LastStatusCheckedAt)
}

func TestStatusReportsDirtyWorktree(t *testing.T) {
	m, project := setupWorkspace(t)
	eng := New(m)
	source := makeSourceRepo(t)

	record, err := eng.Clone(context.Background(), project.ID, models.GitCloneInput{
		RemoteURL:     source,
		TargetDirName: "repo",
	})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(record.Path, "untracked.txt"), []byte("x"), 0o644))

	status, err := eng.Status(context.Background(), record.ID, false)
	require.NoError(t, err)
	assert.True(t, status.Dirty, "untracked file marks the repository dirty")
}

func TestStatusWithNetworkComputesAheadBehind(t *testing.T) {
	m, project := setupWorkspace(t)
	eng := New(m)
	source := makeSourceRepo(t)

	record, err := eng.Clone(context.Background(), project.ID, models.GitCloneInput{
		RemoteURL:     source,
		TargetDirName: "repo",
	})
	require.NoError(t, err)

	// Advance the remote by one commit.
	sourceRepo, err := git.PlainOpen(source)
	require.NoError(t, err)
	commitFile(t, sourceRepo, source, "CHANGES.md", "new upstream work\n")

	status, err := eng.Status(context.Background(), record.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.NetworkOnline, status.Network)
	assert.Equal(t, 0, status.Ahead)
	assert.Equal(t, 1, status.Behind)
	assert.False(t, status.Dirty)

	// Commit locally: now ahead of the fetched tracking ref too.
	localRepo, err := git.PlainOpen(record.Path)
	require.NoError(t, err)
	commitFile(t, localRepo, record.Path, "local.md", "local work\n")

	status, err = eng.Status(context.Background(), record.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Ahead)
	assert.Equal(t, 1, status.Behind)

	// The snapshot was persisted.
	store, err := m.Store()
	require.NoError(t, err)
	stored, err := store.RepositoryByID(record.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastStatusCheckedAt)
	snapshot := stored.LastStatus()
	require.NotNil(t, snapshot)
	assert.Equal(t, 1, snapshot.Ahead)
	assert.Equal(t, 1, snapshot.Behind)
}

func TestPullWithoutOrigin(t *testing.T) {
	m, project := setupWorkspace(t)
	eng := New(m)

	record, err := eng.CreateLocal(project.ID, "standalone")
	require.NoError(t, err)

	_, err = eng.Pull(context.Background(), record.ID)
	assert.ErrorIs(t, err, apperr.ErrRemoteNotFound)
	assert.ErrorIs(t, err, apperr.ErrGit, "sub-reason matches the git kind too")

	store, err := m.Store()
	require.NoError(t, err)
	stored, err := store.RepositoryByID(record.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.LastSyncAt, "failed pull must not record a sync")
}

func TestPullRecordsSyncTime(t *testing.T) {
	m, project := setupWorkspace(t)
	eng := New(m)
	source := makeSourceRepo(t)

	record, err := eng.Clone(context.Background(), project.ID, models.GitCloneInput{
		RemoteURL:     source,
		TargetDirName: "repo",
	})
	require.NoError(t, err)

	result, err := eng.Pull(context.Background(), record.ID)
	require.NoError(t, err)
	assert.True(t, result.OK)
	require.NotNil(t, result.SyncedAt)

	store, err := m.Store()
	require.NoError(t, err)
	stored, err := store.RepositoryByID(record.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastSyncAt)
}

func TestCloneFailureOnFreshTarget(t *testing.T) {
	m, project := setupWorkspace(t)
	eng := New(m, WithNetworkTimeout(5*time.Second))

	_, err := eng.Clone(context.Background(), project.ID, models.GitCloneInput{
		RemoteURL:     filepath.Join(t.TempDir(), "no-such-repo"),
		TargetDirName: "broken",
	})
	assert.ErrorIs(t, err, apperr.ErrClone)
}

func TestCloneFallsBackToExistingRepository(t *testing.T) {
	m, project := setupWorkspace(t)
	eng := New(m)

	// A previous attempt left a valid repository at the target.
	target := filepath.Join(project.ProjectPath, "partial")
	repo, err := git.PlainInitWithOptions(target, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.Main},
	})
	require.NoError(t, err)
	commitFile(t, repo, target, "kept.md", "existing work\n")

	record, err := eng.Clone(context.Background(), project.ID, models.GitCloneInput{
		RemoteURL:     filepath.Join(t.TempDir(), "unreachable"),
		TargetDirName: "partial",
	})
	require.NoError(t, err, "existing target is opened, not re-cloned")
	assert.Equal(t, "main", record.Branch)
}

func TestRepositoryOpsRequireWorkspace(t *testing.T) {
	m := workspace.NewManager(workspace.WithConfigDir(t.TempDir()))
	eng := New(m)

	_, err := eng.List("p")
	assert.ErrorIs(t, err, apperr.ErrNoActiveWorkspace)

	_, err = eng.CreateLocal("p", "r")
	assert.ErrorIs(t, err, apperr.ErrNoActiveWorkspace)

	_, err = eng.Status(context.Background(), "r", false)
	assert.ErrorIs(t, err, apperr.ErrNoActiveWorkspace)
}

func TestStatusMissingRepository(t *testing.T) {
	m, _ := setupWorkspace(t)
	eng := New(m)

	_, err := eng.Status(context.Background(), "missing", false)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = eng.Pull(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
