// Package engine performs clone, fetch and status computation against the
// on-disk git repositories of the active workspace and writes the resulting
// snapshots back through the registry. All network calls run under a bounded
// timeout and never while a database statement is in flight; operations on
// one repository are serialized, operations on different repositories are
// independent.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/google/uuid"

	"workdeck/apperr"
	"workdeck/models"
	"workdeck/workspace"
)

// DefaultNetworkTimeout bounds clone, fetch and remote-lookup operations.
const DefaultNetworkTimeout = 30 * time.Second

// fetchCandidates are the branches tried when the remote's default branch is
// not known.
var fetchCandidates = []string{"main", "master"}

// Engine is the git repository registry and sync engine.
type Engine struct {
	ws         *workspace.Manager
	creds      CredentialProvider
	netTimeout time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithCredentials replaces the anonymous credential provider.
func WithCredentials(p CredentialProvider) Option {
	return func(e *Engine) { e.creds = p }
}

// WithNetworkTimeout overrides the bound applied to network operations.
func WithNetworkTimeout(d time.Duration) Option {
	return func(e *Engine) { e.netTimeout = d }
}

// New creates an Engine bound to the workspace manager.
func New(ws *workspace.Manager, opts ...Option) *Engine {
	e := &Engine{
		ws:         ws,
		creds:      AnonymousCredentials{},
		netTimeout: DefaultNetworkTimeout,
		locks:      map[string]*sync.Mutex{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// lockFor returns the mutex serializing git operations on one repository.
func (e *Engine) lockFor(repoID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lk, ok := e.locks[repoID]
	if !ok {
		lk = &sync.Mutex{}
		e.locks[repoID] = lk
	}
	return lk
}

func (e *Engine) netCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, e.netTimeout)
}

// List returns the repository records of one project.
func (e *Engine) List(projectID string) ([]models.GitRepository, error) {
	store, err := e.ws.Store()
	if err != nil {
		return nil, err
	}
	return store.RepositoriesByProject(projectID)
}

// CreateLocal initializes an empty repository at <project path>/<name> and
// registers it with no remote and branch defaulted to main.
func (e *Engine) CreateLocal(projectID, name string) (*models.GitRepository, error) {
	store, err := e.ws.Store()
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: repository name must not be empty", apperr.ErrValidation)
	}

	project, err := store.ProjectByID(projectID)
	if err != nil {
		return nil, err
	}

	repoPath := filepath.Join(project.ProjectPath, name)
	if err := os.MkdirAll(repoPath, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", apperr.ErrGitInit, repoPath, err)
	}
	_, err = git.PlainInitWithOptions(repoPath, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.Main},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrGitInit, repoPath, err)
	}

	now := time.Now()
	repo := models.GitRepository{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Name:      name,
		Path:      repoPath,
		Branch:    "main",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.InsertRepository(&repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

// Clone clones a remote into <project path>/<target dir> and registers the
// result. When the clone fails but the target directory already exists (a
// previous partial attempt), the directory is opened as an existing
// repository instead. The branch and first configured remote URL are read
// back from the working copy after either path.
func (e *Engine) Clone(ctx context.Context, projectID string, in models.GitCloneInput) (*models.GitRepository, error) {
	store, err := e.ws.Store()
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.RemoteURL) == "" {
		return nil, fmt.Errorf("%w: remote url must not be empty", apperr.ErrValidation)
	}
	if strings.TrimSpace(in.TargetDirName) == "" {
		return nil, fmt.Errorf("%w: target directory name must not be empty", apperr.ErrValidation)
	}

	project, err := store.ProjectByID(projectID)
	if err != nil {
		return nil, err
	}
	target := filepath.Join(project.ProjectPath, in.TargetDirName)

	cloneOpts := &git.CloneOptions{
		URL:  in.RemoteURL,
		Auth: e.auth(in.RemoteURL),
	}
	if in.Branch != "" {
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(in.Branch)
	}

	netCtx, cancel := e.netCtx(ctx)
	repo, cloneErr := git.PlainCloneContext(netCtx, target, false, cloneOpts)
	cancel()
	if cloneErr != nil {
		// Tolerate a previous partial attempt: an existing target is opened
		// rather than re-cloned. A fresh target that failed to clone is a
		// hard error.
		if _, statErr := os.Stat(target); statErr != nil {
			return nil, fmt.Errorf("%w: %s: %v", apperr.ErrClone, in.RemoteURL, cloneErr)
		}
		repo, err = git.PlainOpen(target)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: clone: %v, open: %v", apperr.ErrClone, target, cloneErr, err)
		}
	}

	branch := headBranch(repo)
	remoteURL := firstRemoteURL(repo)
	if remoteURL == "" {
		remoteURL = in.RemoteURL
	}

	now := time.Now()
	record := models.GitRepository{
		ID:         uuid.NewString(),
		ProjectID:  projectID,
		Name:       in.TargetDirName,
		Path:       target,
		RemoteURL:  remoteURL,
		Branch:     branch,
		LastSyncAt: &now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := store.InsertRepository(&record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Pull fetches the candidate branches from origin and records the sync time.
// Despite the name this is fetch-only: the working tree is never touched, so
// status checks remain the only readers and pull the only ref writer. Fetch
// failures against the remote are reported in the result, not escalated.
func (e *Engine) Pull(ctx context.Context, repoID string) (models.GitPullResult, error) {
	lk := e.lockFor(repoID)
	lk.Lock()
	defer lk.Unlock()

	store, err := e.ws.Store()
	if err != nil {
		return models.GitPullResult{}, err
	}

	record, err := store.RepositoryByID(repoID)
	if err != nil {
		return models.GitPullResult{}, err
	}

	repo, err := git.PlainOpen(record.Path)
	if err != nil {
		return models.GitPullResult{}, fmt.Errorf("%w: %s: %v", apperr.ErrRepoOpen, record.Path, err)
	}

	remote, err := repo.Remote(git.DefaultRemoteName)
	if err != nil {
		return models.GitPullResult{}, fmt.Errorf("%w: repository %s has no origin", apperr.ErrRemoteNotFound, repoID)
	}

	auth := e.auth(record.RemoteURL)
	fetched := false
	var lastErr error
	for _, branch := range fetchBranches(record.Branch) {
		refSpec := gitconfig.RefSpec(fmt.Sprintf("refs/heads/%s:refs/remotes/origin/%s", branch, branch))
		netCtx, cancel := e.netCtx(ctx)
		err := remote.FetchContext(netCtx, &git.FetchOptions{
			RefSpecs: []gitconfig.RefSpec{refSpec},
			Auth:     auth,
		})
		cancel()
		if err == nil || errors.Is(err, git.NoErrAlreadyUpToDate) {
			fetched = true
			break
		}
		lastErr = err
	}

	if !fetched {
		return models.GitPullResult{
			OK:      false,
			Message: fmt.Sprintf("fetch failed: %v", lastErr),
		}, nil
	}

	now := time.Now()
	if err := store.SetRepositorySynced(repoID, now); err != nil {
		return models.GitPullResult{}, err
	}
	return models.GitPullResult{OK: true, Message: "fetched origin", SyncedAt: &now}, nil
}

// Status computes the current snapshot of one repository. The working tree is
// only read, never modified. With allowNetwork the remote is fetched first
// (best effort) so ahead/behind counts are current, and the snapshot is
// persisted; without it the counts are zero, the network state unknown, and
// nothing is written back.
func (e *Engine) Status(ctx context.Context, repoID string, allowNetwork bool) (models.GitRepoStatus, error) {
	lk := e.lockFor(repoID)
	lk.Lock()
	defer lk.Unlock()
	return e.status(ctx, repoID, allowNetwork)
}

// StatusIfIdle is Status, except it reports skipped=true instead of queueing
// when another operation on the repository is already in flight. Used by the
// background watcher so a slow check never piles up behind itself.
func (e *Engine) StatusIfIdle(ctx context.Context, repoID string, allowNetwork bool) (status models.GitRepoStatus, skipped bool, err error) {
	lk := e.lockFor(repoID)
	if !lk.TryLock() {
		return models.GitRepoStatus{}, true, nil
	}
	defer lk.Unlock()
	status, err = e.status(ctx, repoID, allowNetwork)
	return status, false, err
}

func (e *Engine) status(ctx context.Context, repoID string, allowNetwork bool) (models.GitRepoStatus, error) {
	store, err := e.ws.Store()
	if err != nil {
		return models.GitRepoStatus{}, err
	}

	record, err := store.RepositoryByID(repoID)
	if err != nil {
		return models.GitRepoStatus{}, err
	}

	repo, err := git.PlainOpen(record.Path)
	if err != nil {
		return models.GitRepoStatus{}, fmt.Errorf("%w: %s: %v", apperr.ErrRepoOpen, record.Path, err)
	}

	snapshot := models.GitRepoStatus{
		RepoID:        repoID,
		Branch:        headBranch(repo),
		LastCheckedAt: time.Now(),
		Network:       models.NetworkUnknown,
	}

	wt, err := repo.Worktree()
	if err != nil {
		return models.GitRepoStatus{}, fmt.Errorf("%w: worktree of %s: %v", apperr.ErrRepoOpen, record.Path, err)
	}
	wtStatus, err := wt.Status()
	if err != nil {
		return models.GitRepoStatus{}, fmt.Errorf("%w: status of %s: %v", apperr.ErrGit, record.Path, err)
	}
	snapshot.Dirty = statusDirty(wtStatus)

	if allowNetwork {
		e.refreshRemote(ctx, repo, record, &snapshot)
		snapshot.LastCheckedAt = time.Now()
		if err := store.SetRepositoryStatus(repoID, snapshot); err != nil {
			return snapshot, err
		}
	}
	return snapshot, nil
}

// refreshRemote fetches origin and computes ahead/behind against the tracked
// remote branch. Every step is best effort: failures degrade the snapshot
// (offline network state, zero counts, lastError set) instead of failing the
// status check. The database lock is never held here.
func (e *Engine) refreshRemote(ctx context.Context, repo *git.Repository, record *models.GitRepository, snapshot *models.GitRepoStatus) {
	remote, err := repo.Remote(git.DefaultRemoteName)
	if err != nil {
		// No remote configured: nothing to compare against, network state
		// stays unknown.
		return
	}

	auth := e.auth(record.RemoteURL)
	branch := snapshot.Branch
	if branch == "" {
		branch = record.Branch
	}

	fetched := false
	var lastErr error
	for _, candidate := range fetchBranches(branch) {
		refSpec := gitconfig.RefSpec(fmt.Sprintf("refs/heads/%s:refs/remotes/origin/%s", candidate, candidate))
		netCtx, cancel := e.netCtx(ctx)
		err := remote.FetchContext(netCtx, &git.FetchOptions{
			RefSpecs: []gitconfig.RefSpec{refSpec},
			Auth:     auth,
		})
		cancel()
		if err == nil || errors.Is(err, git.NoErrAlreadyUpToDate) {
			fetched = true
			break
		}
		lastErr = err
	}

	if !fetched {
		snapshot.Network = models.NetworkOffline
		snapshot.LastError = fmt.Sprintf("%v: %v", apperr.ErrNetworkUnreachable, lastErr)
		return
	}

	snapshot.Network = models.NetworkOnline
	ahead, behind, err := aheadBehind(repo, branch)
	if err != nil {
		snapshot.LastError = err.Error()
		return
	}
	snapshot.Ahead = ahead
	snapshot.Behind = behind
}

// fetchBranches returns the branches to try fetching, preferring the
// repository's known branch over the generic candidates.
func fetchBranches(known string) []string {
	if known == "" {
		return fetchCandidates
	}
	branches := []string{known}
	for _, c := range fetchCandidates {
		if c != known {
			branches = append(branches, c)
		}
	}
	return branches
}
