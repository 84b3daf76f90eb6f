package engine

import (
	"fmt"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// headBranch returns the short name of HEAD, or "" when the repository has no
// commits yet.
func headBranch(repo *git.Repository) string {
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	return head.Name().Short()
}

// firstRemoteURL returns the first URL of the first configured remote.
func firstRemoteURL(repo *git.Repository) string {
	remotes, err := repo.Remotes()
	if err != nil || len(remotes) == 0 {
		return ""
	}
	urls := remotes[0].Config().URLs
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}

// statusDirty reports whether any entry is new, modified or deleted in either
// the index or the working tree.
func statusDirty(status git.Status) bool {
	for _, file := range status {
		for _, code := range [...]git.StatusCode{file.Staging, file.Worktree} {
			switch code {
			case git.Added, git.Modified, git.Deleted, git.Untracked:
				return true
			}
		}
	}
	return false
}

// aheadBehind counts the commits on HEAD but not on origin/<branch> (ahead)
// and vice versa (behind). A missing tracking ref yields zero counts.
func aheadBehind(repo *git.Repository, branch string) (int, int, error) {
	if branch == "" {
		return 0, 0, nil
	}
	head, err := repo.Head()
	if err != nil {
		return 0, 0, nil
	}
	trackingRef, err := repo.Reference(plumbing.NewRemoteReferenceName(git.DefaultRemoteName, branch), true)
	if err != nil {
		return 0, 0, nil
	}
	if head.Hash() == trackingRef.Hash() {
		return 0, 0, nil
	}

	local, err := repo.CommitObject(head.Hash())
	if err != nil {
		return 0, 0, fmt.Errorf("resolve local head: %w", err)
	}
	remote, err := repo.CommitObject(trackingRef.Hash())
	if err != nil {
		return 0, 0, fmt.Errorf("resolve tracking ref: %w", err)
	}

	bases, err := local.MergeBase(remote)
	if err != nil {
		return 0, 0, fmt.Errorf("merge base: %w", err)
	}

	// Unrelated histories: everything on each side counts.
	stop := plumbing.ZeroHash
	if len(bases) > 0 {
		stop = bases[0].Hash
	}

	ahead, err := countCommits(local, stop)
	if err != nil {
		return 0, 0, err
	}
	behind, err := countCommits(remote, stop)
	if err != nil {
		return 0, 0, err
	}
	return ahead, behind, nil
}

// countCommits counts the commits reachable from start, pruning the walk at
// stop.
func countCommits(start *object.Commit, stop plumbing.Hash) (int, error) {
	if start.Hash == stop {
		return 0, nil
	}
	var ignore []plumbing.Hash
	if stop != plumbing.ZeroHash {
		ignore = []plumbing.Hash{stop}
	}
	count := 0
	iter := object.NewCommitPreorderIter(start, nil, ignore)
	err := iter.ForEach(func(c *object.Commit) error {
		if c.Hash == stop {
			return storer.ErrStop
		}
		count++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walk commits: %w", err)
	}
	return count, nil
}
