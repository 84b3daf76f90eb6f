package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workdeck/apperr"
	"workdeck/models"
)

// openTestStore initializes a database in a temporary location.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newProject(name string) *models.Project {
	now := time.Now()
	return &models.Project{
		ID:          uuid.NewString(),
		Name:        name,
		ProjectPath: "/ws/" + name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestSeedingIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "app.db")

	store, err := Open(dbPath)
	require.NoError(t, err)
	first, err := store.DirectoryTypes()
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening the same database must not duplicate the built-ins.
	store, err = Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	second, err := store.DirectoryTypes()
	require.NoError(t, err)
	assert.Len(t, first, 4)
	assert.Len(t, second, 4)

	kinds := map[models.DirectoryTypeKind]int{}
	for _, dt := range second {
		kinds[dt.Kind]++
	}
	for _, kind := range []models.DirectoryTypeKind{
		models.DirKindCode, models.DirKindDocs,
		models.DirKindUIDesign, models.DirKindProjectPlanning,
	} {
		assert.Equal(t, 1, kinds[kind], "kind %s seeded once", kind)
	}
}

func TestProjectCRUD(t *testing.T) {
	store := openTestStore(t)

	p1 := newProject("alpha")
	p1.UpdatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, store.InsertProject(p1))

	p2 := newProject("beta")
	require.NoError(t, store.InsertProject(p2))

	projects, err := store.Projects()
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "beta", projects[0].Name, "most recently updated first")

	got, err := store.ProjectByID(p1.ID)
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Name)

	_, err = store.ProjectByID("missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	got.Description = "first project"
	require.NoError(t, store.SaveProject(got))
	got, err = store.ProjectByID(p1.ID)
	require.NoError(t, err)
	assert.Equal(t, "first project", got.Description)

	require.NoError(t, store.DeleteProject(p1.ID))
	assert.ErrorIs(t, store.DeleteProject(p1.ID), apperr.ErrNotFound)
}

func TestProjectDirectoryUpsert(t *testing.T) {
	store := openTestStore(t)

	project := newProject("gamma")
	require.NoError(t, store.InsertProject(project))

	types, err := store.DirectoryTypes()
	require.NoError(t, err)
	docs := types[1]

	first, err := store.UpsertProjectDirectory(project.ID, docs.ID, "documentation")
	require.NoError(t, err)

	second, err := store.UpsertProjectDirectory(project.ID, docs.ID, "docs")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "upsert must reuse the existing row")

	dirs, err := store.ProjectDirectories(project.ID)
	require.NoError(t, err)
	require.Len(t, dirs, 1)
	assert.Equal(t, "docs", dirs[0].RelativePath)
}

func TestDirectoryTypeOrdering(t *testing.T) {
	store := openTestStore(t)

	now := time.Now()
	early := models.DirectoryType{
		ID: uuid.NewString(), Kind: models.DirKindCustom, Name: "Design Assets",
		SortOrder: 50, CreatedAt: now, UpdatedAt: now,
	}
	late := models.DirectoryType{
		ID: uuid.NewString(), Kind: models.DirKindCustom, Name: "Archives",
		SortOrder: 150, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, store.InsertDirectoryType(&late))
	require.NoError(t, store.InsertDirectoryType(&early))

	types, err := store.DirectoryTypes()
	require.NoError(t, err)
	require.Len(t, types, 6)
	assert.Equal(t, "Design Assets", types[4].Name, "sort 50 after the built-ins")
	assert.Equal(t, "Archives", types[5].Name)
}

func TestMetaRoundTrip(t *testing.T) {
	store := openTestStore(t)

	_, ok, err := store.Meta("settings")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetMeta("settings", `{"themeMode":"dark"}`))
	require.NoError(t, store.SetMeta("settings", `{"themeMode":"light"}`))

	value, ok, err := store.Meta("settings")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"themeMode":"light"}`, value)
}

func TestRepositoryStatusSnapshot(t *testing.T) {
	store := openTestStore(t)

	project := newProject("delta")
	require.NoError(t, store.InsertProject(project))

	now := time.Now()
	repo := models.GitRepository{
		ID: uuid.NewString(), ProjectID: project.ID, Name: "repo",
		Path: "/ws/delta/repo", Branch: "main", CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, store.InsertRepository(&repo))

	status := models.GitRepoStatus{
		RepoID: repo.ID, Branch: "main", Dirty: true, Ahead: 2, Behind: 1,
		LastCheckedAt: now, Network: models.NetworkOnline,
	}
	require.NoError(t, store.SetRepositoryStatus(repo.ID, status))

	got, err := store.RepositoryByID(repo.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastStatusCheckedAt)

	snapshot := got.LastStatus()
	require.NotNil(t, snapshot)
	assert.True(t, snapshot.Dirty)
	assert.Equal(t, 2, snapshot.Ahead)
	assert.Equal(t, 1, snapshot.Behind)
	assert.Equal(t, models.NetworkOnline, snapshot.Network)

	// A second check overwrites the first snapshot.
	status.Dirty = false
	status.Network = models.NetworkOffline
	require.NoError(t, store.SetRepositoryStatus(repo.ID, status))
	got, err = store.RepositoryByID(repo.ID)
	require.NoError(t, err)
	assert.False(t, got.LastStatus().Dirty)
}
