package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/temirov/git-fetch-all/internal/repos/shared"
)

const (
	// DefaultRecursionBudgetConstant is the default number of directory levels to descend.
	DefaultRecursionBudgetConstant = 3

	locatorMissingMessageConstant        = "repository locator not configured"
	fileSystemMissingMessageConstant     = "filesystem not configured"
	rootRequiredMessageConstant          = "root directory must be provided"
	negativeBudgetMessageConstant        = "recursion budget must not be negative"
	negativeConcurrencyMessageConstant   = "concurrency must not be negative"
	rootResolutionErrorTemplateConstant  = "failed to resolve root directory %s: %w"
	rootNotDirectoryTemplateConstant     = "%s is not a directory"
	remoteListingErrorTemplateConstant   = "failed to list remotes of %s: %w"
	remoteFetchErrorTemplateConstant     = "failed to fetch %s in %s: %w"
	operationSlotErrorTemplateConstant   = "failed to acquire git operation slot in %s: %w"
	walkStartedMessageConstant           = "walking directory tree"
	descendMessageConstant               = "descending into subdirectories"
	budgetExhaustedMessageConstant       = "recursion budget exhausted"
	remoteFetchedMessageConstant         = "remote fetched"
	remoteFailedMessageConstant          = "remote fetch failed"
	repositoryUnreadableMessageConstant  = "repository could not be opened"
	repositoryClosedErrorMessageConstant = "failed to close repository handle"
	logFieldRootConstant                 = "root"
	logFieldDirectoryConstant            = "directory"
	logFieldBudgetConstant               = "recursion_budget"
	logFieldCandidateCountConstant       = "candidate_count"
	logFieldRepositoryConstant           = "repository"
	logFieldRemoteConstant               = "remote"
	logFieldStatusConstant               = "status"
	logFieldConcurrencyConstant          = "concurrency"
)

// ErrLocatorNotConfigured indicates the repository locator dependency was missing.
var ErrLocatorNotConfigured = errors.New(locatorMissingMessageConstant)

// ErrFileSystemNotConfigured indicates the filesystem dependency was missing.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// ErrRootRequired indicates the root directory option was empty.
var ErrRootRequired = errors.New(rootRequiredMessageConstant)

// ErrNegativeRecursionBudget indicates a recursion budget below zero.
var ErrNegativeRecursionBudget = errors.New(negativeBudgetMessageConstant)

// ErrNegativeConcurrency indicates a concurrency limit below zero.
var ErrNegativeConcurrency = errors.New(negativeConcurrencyMessageConstant)

// Dependencies captures collaborators required by the Orchestrator.
type Dependencies struct {
	Locator    shared.RepositoryLocator
	FileSystem shared.FileSystem
	Logger     *zap.Logger
}

// Options configures a single fetch pass over a directory tree.
type Options struct {
	Root                   string
	RecursionBudget        int
	IncludeRemotes         []string
	ExcludeRemotes         []string
	ExcludedDirectoryNames []string
	// Concurrency bounds simultaneous backend operations (repository probes,
	// remote listings and fetches); zero means unbounded.
	Concurrency int
}

// Orchestrator walks a directory tree and fetches every remote of every
// repository it discovers.
type Orchestrator struct {
	locator    shared.RepositoryLocator
	fileSystem shared.FileSystem
	logger     *zap.Logger
}

type walkState struct {
	remoteFilter   shared.RemoteFilter
	operationSlots *semaphore.Weighted
}

// acquire takes one operation slot when concurrency is bounded. The returned
// release must be called once the backend operation returns; a slot is never
// held while waiting on other goroutines.
func (state walkState) acquire(executionContext context.Context, directoryPath string) (func(), error) {
	if state.operationSlots == nil {
		return func() {}, nil
	}
	if acquireError := state.operationSlots.Acquire(executionContext, 1); acquireError != nil {
		return nil, fmt.Errorf(operationSlotErrorTemplateConstant, directoryPath, acquireError)
	}
	return func() { state.operationSlots.Release(1) }, nil
}

// NewOrchestrator constructs an Orchestrator from the provided dependencies.
func NewOrchestrator(dependencies Dependencies) (*Orchestrator, error) {
	if dependencies.Locator == nil {
		return nil, ErrLocatorNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{locator: dependencies.Locator, fileSystem: dependencies.FileSystem, logger: logger}, nil
}

// Walk fetches all applicable remotes below options.Root and returns one
// outcome per (repository path, remote name). Fetch-domain failures are
// recorded as failed outcomes; any other error aborts the walk.
func (orchestrator *Orchestrator) Walk(executionContext context.Context, options Options) (shared.ResultSet, error) {
	rootDirectory, validationError := orchestrator.resolveRoot(options)
	if validationError != nil {
		return nil, validationError
	}
	if options.RecursionBudget < 0 {
		return nil, ErrNegativeRecursionBudget
	}
	if options.Concurrency < 0 {
		return nil, ErrNegativeConcurrency
	}

	state := walkState{remoteFilter: shared.NewRemoteFilter(options.IncludeRemotes, options.ExcludeRemotes)}
	if options.Concurrency > 0 {
		state.operationSlots = semaphore.NewWeighted(int64(options.Concurrency))
	}

	orchestrator.logger.Debug(
		walkStartedMessageConstant,
		zap.String(logFieldRootConstant, rootDirectory),
		zap.Int(logFieldBudgetConstant, options.RecursionBudget),
		zap.Int(logFieldConcurrencyConstant, options.Concurrency),
	)

	return orchestrator.walk(executionContext, state, rootDirectory, options.RecursionBudget, shared.NameSet(options.ExcludedDirectoryNames))
}

func (orchestrator *Orchestrator) resolveRoot(options Options) (string, error) {
	trimmedRoot := strings.TrimSpace(options.Root)
	if len(trimmedRoot) == 0 {
		return "", ErrRootRequired
	}

	absoluteRoot, absError := orchestrator.fileSystem.Abs(trimmedRoot)
	if absError != nil {
		return "", fmt.Errorf(rootResolutionErrorTemplateConstant, trimmedRoot, absError)
	}

	rootInfo, statError := orchestrator.fileSystem.Stat(absoluteRoot)
	if statError != nil {
		return "", fmt.Errorf(rootResolutionErrorTemplateConstant, trimmedRoot, statError)
	}
	if !rootInfo.IsDir() {
		return "", fmt.Errorf(rootNotDirectoryTemplateConstant, absoluteRoot)
	}
	return absoluteRoot, nil
}

// walk is applied recursively; excludedNames is only non-empty at the level
// where the walk started.
func (orchestrator *Orchestrator) walk(executionContext context.Context, state walkState, directoryPath string, recursionBudget int, excludedNames map[string]struct{}) (shared.ResultSet, error) {
	release, acquireError := state.acquire(executionContext, directoryPath)
	if acquireError != nil {
		return nil, acquireError
	}
	repositoryHandle, found, probeError := orchestrator.locator.Probe(executionContext, directoryPath)
	release()
	if probeError != nil {
		var openFailure shared.RepositoryOpenError
		if !errors.As(probeError, &openFailure) {
			return nil, probeError
		}
		orchestrator.logger.Warn(repositoryUnreadableMessageConstant, zap.String(logFieldRepositoryConstant, directoryPath), zap.Error(probeError))
		return shared.ResultSet{{RepositoryPath: directoryPath}: shared.FailedOutcome(probeError)}, nil
	}
	if found {
		return orchestrator.fetchRepository(executionContext, state, repositoryHandle)
	}

	if recursionBudget == 0 {
		orchestrator.logger.Debug(budgetExhaustedMessageConstant, zap.String(logFieldDirectoryConstant, directoryPath))
		return shared.ResultSet{}, nil
	}

	candidates, listError := orchestrator.locator.ListDescendCandidates(directoryPath, excludedNames)
	if listError != nil {
		return nil, listError
	}

	orchestrator.logger.Debug(
		descendMessageConstant,
		zap.String(logFieldDirectoryConstant, directoryPath),
		zap.Int(logFieldCandidateCountConstant, len(candidates)),
		zap.Int(logFieldBudgetConstant, recursionBudget-1),
	)

	subtreeResults := make([]shared.ResultSet, len(candidates))
	subtreeGroup, subtreeContext := errgroup.WithContext(executionContext)
	for candidateIndex, candidatePath := range candidates {
		subtreeGroup.Go(func() error {
			candidateResults, walkError := orchestrator.walk(subtreeContext, state, candidatePath, recursionBudget-1, nil)
			if walkError != nil {
				return walkError
			}
			subtreeResults[candidateIndex] = candidateResults
			return nil
		})
	}
	if waitError := subtreeGroup.Wait(); waitError != nil {
		return nil, waitError
	}

	return shared.MergeResultSets(subtreeResults...), nil
}

func (orchestrator *Orchestrator) fetchRepository(executionContext context.Context, state walkState, repositoryHandle shared.RepositoryHandle) (shared.ResultSet, error) {
	defer orchestrator.closeRepository(repositoryHandle)

	repositoryPath := repositoryHandle.Path()
	release, acquireError := state.acquire(executionContext, repositoryPath)
	if acquireError != nil {
		return nil, acquireError
	}
	remotes, remotesError := repositoryHandle.Remotes(executionContext)
	release()
	if remotesError != nil {
		return nil, fmt.Errorf(remoteListingErrorTemplateConstant, repositoryPath, remotesError)
	}

	selectedRemotes := state.remoteFilter.Apply(remotes)
	outcomes := make([]shared.Outcome, len(selectedRemotes))
	remoteGroup, remoteContext := errgroup.WithContext(executionContext)
	if fetchesSerially(repositoryHandle) {
		remoteGroup.SetLimit(1)
	}
	for remoteIndex, remote := range selectedRemotes {
		remoteGroup.Go(func() error {
			outcome, fetchError := orchestrator.fetchRemote(remoteContext, state, repositoryPath, remote)
			if fetchError != nil {
				return fetchError
			}
			outcomes[remoteIndex] = outcome
			return nil
		})
	}
	if waitError := remoteGroup.Wait(); waitError != nil {
		return nil, waitError
	}

	repositoryResults := make(shared.ResultSet, len(selectedRemotes))
	for remoteIndex, remote := range selectedRemotes {
		repositoryResults[shared.ResultKey{RepositoryPath: repositoryPath, RemoteName: remote.Name()}] = outcomes[remoteIndex]
	}
	return repositoryResults, nil
}

// fetchRemote runs one blocking fetch primitive under an operation slot.
func (orchestrator *Orchestrator) fetchRemote(executionContext context.Context, state walkState, repositoryPath string, remote shared.RemoteHandle) (shared.Outcome, error) {
	remoteName := remote.Name()
	release, acquireError := state.acquire(executionContext, repositoryPath)
	if acquireError != nil {
		return shared.Outcome{}, acquireError
	}
	refUpdates, fetchError := remote.Fetch(executionContext)
	release()
	if fetchError != nil {
		var fetchFailure shared.FetchError
		if !errors.As(fetchError, &fetchFailure) {
			return shared.Outcome{}, fmt.Errorf(remoteFetchErrorTemplateConstant, remoteName, repositoryPath, fetchError)
		}
		orchestrator.logger.Debug(
			remoteFailedMessageConstant,
			zap.String(logFieldRepositoryConstant, repositoryPath),
			zap.String(logFieldRemoteConstant, remoteName),
			zap.Error(fetchError),
		)
		return shared.FailedOutcome(fetchError), nil
	}

	outcome := shared.OutcomeFromRefUpdates(refUpdates)
	orchestrator.logger.Debug(
		remoteFetchedMessageConstant,
		zap.String(logFieldRepositoryConstant, repositoryPath),
		zap.String(logFieldRemoteConstant, remoteName),
		zap.Stringer(logFieldStatusConstant, outcome.Status),
	)
	return outcome, nil
}

func fetchesSerially(repositoryHandle shared.RepositoryHandle) bool {
	serialFetcher, implemented := repositoryHandle.(shared.SerialFetcher)
	return implemented && serialFetcher.FetchesSerially()
}

func (orchestrator *Orchestrator) closeRepository(repositoryHandle shared.RepositoryHandle) {
	if closeError := repositoryHandle.Close(); closeError != nil {
		orchestrator.logger.Warn(repositoryClosedErrorMessageConstant, zap.String(logFieldRepositoryConstant, repositoryHandle.Path()), zap.Error(closeError))
	}
}
