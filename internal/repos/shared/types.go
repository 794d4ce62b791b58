package shared

import (
	"context"
	"errors"
	"io/fs"
)

const (
	// HiddenEntryPrefixConstant marks directory entries skipped during descent.
	HiddenEntryPrefixConstant = "."

	notARepositoryMessageConstant = "not a git repository root"
)

// ErrNotARepository signals that a directory is not the root of a repository.
// Backends return it from Open; the locator converts it into a boolean result.
var ErrNotARepository = errors.New(notARepositoryMessageConstant)

// RepositoryBackend opens repositories strictly at the requested path.
type RepositoryBackend interface {
	Open(executionContext context.Context, repositoryPath string) (RepositoryHandle, error)
}

// RepositoryHandle is an opened working tree rooted at Path.
type RepositoryHandle interface {
	Path() string
	Remotes(executionContext context.Context) ([]RemoteHandle, error)
	Close() error
}

// RemoteHandle is a named upstream of a repository handle.
type RemoteHandle interface {
	Name() string
	// Fetch retrieves references from the remote. Fetch-domain failures are
	// reported as FetchError; any other error is fatal for the caller.
	Fetch(executionContext context.Context) ([]RefUpdate, error)
}

// SerialFetcher is implemented by repository handles whose remotes must be
// fetched one at a time.
type SerialFetcher interface {
	FetchesSerially() bool
}

// FileSystem exposes filesystem operations required by repository discovery.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadDir(path string) ([]fs.DirEntry, error)
	Abs(path string) (string, error)
}

// RepositoryLocator probes directories and enumerates descent candidates.
type RepositoryLocator interface {
	Probe(executionContext context.Context, directoryPath string) (RepositoryHandle, bool, error)
	ListDescendCandidates(directoryPath string, excludedNames map[string]struct{}) ([]string, error)
}
