package engine

import (
	"context"
	"sync"
	"time"

	"workdeck/logutils"
	"workdeck/models"
)

// DefaultPollInterval is the cadence of background status checks.
const DefaultPollInterval = 2 * time.Minute

// allReposKey is the watch key meaning "every repository in the workspace".
const allReposKey = ""

// Watcher periodically runs network status checks for one repository or for
// all of them. Each watch key owns one polling goroutine; per-repository
// serialization is inherited from the Engine, and a repository whose previous
// check is still running is skipped, not queued.
type Watcher struct {
	engine   *Engine
	interval time.Duration

	mu   sync.Mutex
	jobs map[string]*watchJob
}

type watchJob struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithPollInterval overrides the polling cadence.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.interval = d }
}

// NewWatcher creates a stopped Watcher over the engine.
func NewWatcher(e *Engine, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		engine:   e,
		interval: DefaultPollInterval,
		jobs:     map[string]*watchJob{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins polling the given repository, or every repository in the
// active workspace when repoID is empty. Starting an already-watched key is a
// no-op.
func (w *Watcher) Start(repoID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, running := w.jobs[repoID]; running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	job := &watchJob{cancel: cancel, done: make(chan struct{})}
	w.jobs[repoID] = job

	go func() {
		defer close(job.done)
		w.loop(ctx, repoID)
	}()
}

// Stop halts scheduling for the given key (empty = the all-repositories
// poller) and waits for its loop to exit. A check already in flight is
// allowed to finish: cancellation only stops the scheduler.
func (w *Watcher) Stop(repoID string) {
	w.mu.Lock()
	job, running := w.jobs[repoID]
	if running {
		delete(w.jobs, repoID)
	}
	w.mu.Unlock()
	if !running {
		return
	}
	job.cancel()
	<-job.done
}

// StopAll stops every active watch.
func (w *Watcher) StopAll() {
	w.mu.Lock()
	jobs := w.jobs
	w.jobs = map[string]*watchJob{}
	w.mu.Unlock()
	for _, job := range jobs {
		job.cancel()
		<-job.done
	}
}

func (w *Watcher) loop(ctx context.Context, repoID string) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(repoID)
		}
	}
}

// poll runs one round of checks. Checks use a fresh context so that stopping
// the watcher never cancels a check mid-flight.
func (w *Watcher) poll(repoID string) {
	if repoID != allReposKey {
		w.check(repoID)
		return
	}

	// All-repos mode re-lists on every tick so newly registered
	// repositories join the rotation.
	repos, err := w.allRepos()
	if err != nil {
		logutils.Log.WithError(err).Debug("watcher: listing repositories")
		return
	}

	var wg sync.WaitGroup
	for _, repo := range repos {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			w.check(id)
		}(repo.ID)
	}
	wg.Wait()
}

func (w *Watcher) allRepos() ([]models.GitRepository, error) {
	store, err := w.engine.ws.Store()
	if err != nil {
		return nil, err
	}
	return store.AllRepositories()
}

func (w *Watcher) check(repoID string) {
	_, skipped, err := w.engine.StatusIfIdle(context.Background(), repoID, true)
	if skipped {
		logutils.Log.WithField("repo", repoID).Debug("watcher: check still in flight, skipping")
		return
	}
	if err != nil {
		logutils.Log.WithError(err).WithField("repo", repoID).Debug("watcher: status check failed")
	}
}
