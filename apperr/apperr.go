// Package apperr defines the error taxonomy shared by the registries and the
// git sync engine. Every sentinel can be matched with errors.Is through any
// number of fmt.Errorf("%w") wraps; the git sub-reasons additionally match
// ErrGit.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrNoActiveWorkspace = errors.New("no active workspace")
	ErrPersistence       = errors.New("persistence error")
	ErrFilesystem        = errors.New("filesystem error")
	ErrPathInvalid       = errors.New("workspace path invalid")
	ErrNotWritable       = errors.New("workspace path not writable")

	ErrGit = errors.New("git error")

	// Sub-reasons of ErrGit.
	ErrRemoteNotFound = fmt.Errorf("%w: remote not found", ErrGit)
	ErrClone          = fmt.Errorf("%w: clone failed", ErrGit)
	ErrRepoOpen       = fmt.Errorf("%w: cannot open repository", ErrGit)
	ErrGitInit        = fmt.Errorf("%w: init failed", ErrGit)

	// ErrNetworkUnreachable marks a best-effort network step that failed.
	// Callers degrade the result instead of aborting the operation.
	ErrNetworkUnreachable = errors.New("network unreachable")
)
