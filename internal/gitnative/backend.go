package gitnative

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/temirov/git-fetch-all/internal/repos/shared"
)

const (
	remoteListingErrorTemplateConstant = "failed to list remotes in %s: %w"
	snapshotErrorTemplateConstant      = "failed to read references in %s: %w"
	remoteReferencePrefixTemplate      = "refs/remotes/%s/"
	tagReferencePrefixConstant         = "refs/tags/"
	newTagSummaryConstant              = "[new tag]"
	newBranchSummaryConstant           = "[new branch]"
	tagUpdateSummaryConstant           = "[tag update]"
	upToDateSummaryConstant            = "[up to date]"
	deletedSummaryConstant             = "[deleted]"
	noneReferenceConstant              = "(none)"
	rangeSummaryTemplateConstant       = "%s..%s"
	shortHashLengthConstant            = 7
)

// Backend opens repositories in-process with go-git.
type Backend struct{}

// NewBackend constructs a go-git backed repository backend.
func NewBackend() *Backend {
	return &Backend{}
}

// Open succeeds only when repositoryPath is itself a repository root. A
// repository go-git cannot read yields shared.RepositoryOpenError.
func (backend *Backend) Open(_ context.Context, repositoryPath string) (shared.RepositoryHandle, error) {
	openedRepository, openError := git.PlainOpenWithOptions(repositoryPath, &git.PlainOpenOptions{DetectDotGit: false})
	if openError != nil {
		if errors.Is(openError, git.ErrRepositoryNotExists) || errors.Is(openError, fs.ErrPermission) {
			return nil, shared.ErrNotARepository
		}
		return nil, shared.NewRepositoryOpenError(repositoryPath, "", openError)
	}
	return &repository{path: repositoryPath, repository: openedRepository}, nil
}

type repository struct {
	path       string
	repository *git.Repository
	fetchMutex sync.Mutex
}

func (repository *repository) Path() string {
	return repository.path
}

func (repository *repository) Remotes(context.Context) ([]shared.RemoteHandle, error) {
	configuredRemotes, remotesError := repository.repository.Remotes()
	if remotesError != nil {
		return nil, fmt.Errorf(remoteListingErrorTemplateConstant, repository.path, remotesError)
	}

	remoteNames := make([]string, 0, len(configuredRemotes))
	for _, configuredRemote := range configuredRemotes {
		remoteNames = append(remoteNames, configuredRemote.Config().Name)
	}
	sort.Strings(remoteNames)

	remotes := make([]shared.RemoteHandle, 0, len(remoteNames))
	for _, remoteName := range remoteNames {
		remotes = append(remotes, &remote{repository: repository, name: remoteName})
	}
	return remotes, nil
}

// FetchesSerially is true: go-git's object storage does not support
// concurrent writers.
func (repository *repository) FetchesSerially() bool {
	return true
}

func (repository *repository) Close() error {
	if closer, ok := repository.repository.Storer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

type remote struct {
	repository *repository
	name       string
}

func (remote *remote) Name() string {
	return remote.name
}

// Fetch retrieves the remote's references. Transport, authentication and
// protocol problems are fetch-domain failures; context errors are returned as is.
func (remote *remote) Fetch(executionContext context.Context) ([]shared.RefUpdate, error) {
	remote.repository.fetchMutex.Lock()
	defer remote.repository.fetchMutex.Unlock()

	repositoryPath := remote.repository.path
	before, snapshotError := remote.snapshot()
	if snapshotError != nil {
		return nil, fmt.Errorf(snapshotErrorTemplateConstant, repositoryPath, snapshotError)
	}

	fetchError := remote.repository.repository.FetchContext(executionContext, &git.FetchOptions{RemoteName: remote.name})
	switch {
	case fetchError == nil, errors.Is(fetchError, git.NoErrAlreadyUpToDate):
	case errors.Is(fetchError, transport.ErrEmptyRemoteRepository):
		return []shared.RefUpdate{}, nil
	default:
		if contextError := executionContext.Err(); contextError != nil {
			return nil, contextError
		}
		return nil, shared.NewFetchError(repositoryPath, remote.name, "", fetchError)
	}

	after, snapshotError := remote.snapshot()
	if snapshotError != nil {
		return nil, fmt.Errorf(snapshotErrorTemplateConstant, repositoryPath, snapshotError)
	}
	return DiffReferences(before, after), nil
}

// snapshot records the remote-tracking branches of the remote and all tags.
func (remote *remote) snapshot() (map[plumbing.ReferenceName]plumbing.Hash, error) {
	references, referencesError := remote.repository.repository.References()
	if referencesError != nil {
		return nil, referencesError
	}
	defer references.Close()

	remotePrefix := fmt.Sprintf(remoteReferencePrefixTemplate, remote.name)
	snapshot := map[plumbing.ReferenceName]plumbing.Hash{}
	iterationError := references.ForEach(func(reference *plumbing.Reference) error {
		if reference.Type() != plumbing.HashReference {
			return nil
		}
		referenceName := reference.Name().String()
		if strings.HasPrefix(referenceName, remotePrefix) || strings.HasPrefix(referenceName, tagReferencePrefixConstant) {
			snapshot[reference.Name()] = reference.Hash()
		}
		return nil
	})
	if iterationError != nil {
		return nil, iterationError
	}
	return snapshot, nil
}

// DiffReferences derives per-reference updates from two snapshots, ordered by
// reference name.
func DiffReferences(before map[plumbing.ReferenceName]plumbing.Hash, after map[plumbing.ReferenceName]plumbing.Hash) []shared.RefUpdate {
	names := make([]string, 0, len(before)+len(after))
	for referenceName := range after {
		names = append(names, referenceName.String())
	}
	for referenceName := range before {
		if _, exists := after[referenceName]; !exists {
			names = append(names, referenceName.String())
		}
	}
	sort.Strings(names)

	updates := make([]shared.RefUpdate, 0, len(names))
	for _, name := range names {
		referenceName := plumbing.ReferenceName(name)
		shortName := referenceName.Short()
		previousHash, existedBefore := before[referenceName]
		currentHash, existsAfter := after[referenceName]
		isTag := referenceName.IsTag()

		update := shared.RefUpdate{Source: shortName, Destination: shortName}
		switch {
		case !existsAfter:
			update.Flags = shared.RefUpdatePruned
			update.Summary = deletedSummaryConstant
			update.Source = noneReferenceConstant
		case !existedBefore && isTag:
			update.Flags = shared.RefUpdateNewTag
			update.Summary = newTagSummaryConstant
		case !existedBefore:
			update.Flags = shared.RefUpdateNewHead
			update.Summary = newBranchSummaryConstant
		case previousHash == currentHash:
			update.Flags = shared.RefUpdateUpToDate
			update.Summary = upToDateSummaryConstant
		case isTag:
			update.Flags = shared.RefUpdateTagUpdate
			update.Summary = tagUpdateSummaryConstant
		default:
			update.Flags = shared.RefUpdateFastForward
			update.Summary = fmt.Sprintf(rangeSummaryTemplateConstant, shortHash(previousHash), shortHash(currentHash))
		}
		updates = append(updates, update)
	}
	return updates
}

func shortHash(hash plumbing.Hash) string {
	return hash.String()[:shortHashLengthConstant]
}
