package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workdeck/models"
)

func waitForSnapshot(t *testing.T, eng *Engine, repoID string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		store, err := eng.ws.Store()
		require.NoError(t, err)
		record, err := store.RepositoryByID(repoID)
		require.NoError(t, err)
		if record.LastStatusCheckedAt != nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("watcher never persisted a status snapshot")
}

func TestWatcherPollsRepository(t *testing.T) {
	m, project := setupWorkspace(t)
	eng := New(m)
	source := makeSourceRepo(t)

	record, err := eng.Clone(context.Background(), project.ID, models.GitCloneInput{
		RemoteURL:     source,
		TargetDirName: "watched",
	})
	require.NoError(t, err)

	w := NewWatcher(eng, WithPollInterval(20*time.Millisecond))
	w.Start(record.ID)
	defer w.StopAll()

	waitForSnapshot(t, eng, record.ID)

	store, err := m.Store()
	require.NoError(t, err)
	stored, err := store.RepositoryByID(record.ID)
	require.NoError(t, err)
	snapshot := stored.LastStatus()
	require.NotNil(t, snapshot)
	assert.Equal(t, models.NetworkOnline, snapshot.Network)

	w.Stop(record.ID)
}

func TestWatcherPollsAllRepositories(t *testing.T) {
	m, project := setupWorkspace(t)
	eng := New(m)

	first, err := eng.Clone(context.Background(), project.ID, models.GitCloneInput{
		RemoteURL:     makeSourceRepo(t),
		TargetDirName: "first",
	})
	require.NoError(t, err)
	second, err := eng.Clone(context.Background(), project.ID, models.GitCloneInput{
		RemoteURL:     makeSourceRepo(t),
		TargetDirName: "second",
	})
	require.NoError(t, err)

	w := NewWatcher(eng, WithPollInterval(20*time.Millisecond))
	w.Start("")
	defer w.StopAll()

	waitForSnapshot(t, eng, first.ID)
	waitForSnapshot(t, eng, second.ID)
}

func TestWatcherStartStopIdempotent(t *testing.T) {
	m, project := setupWorkspace(t)
	eng := New(m)

	record, err := eng.CreateLocal(project.ID, "idle")
	require.NoError(t, err)

	w := NewWatcher(eng, WithPollInterval(time.Hour))

	w.Start(record.ID)
	w.Start(record.ID)
	w.Stop(record.ID)
	w.Stop(record.ID)
	w.Stop("never-started")
	w.StopAll()
}
