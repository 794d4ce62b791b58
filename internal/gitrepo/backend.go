package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/temirov/git-fetch-all/internal/execshell"
	"github.com/temirov/git-fetch-all/internal/repos/shared"
)

const (
	gitRevParseSubcommandConstant        = "rev-parse"
	gitDirFlagConstant                   = "--git-dir"
	gitRemoteSubcommandConstant          = "remote"
	gitFetchSubcommandConstant           = "fetch"
	gitVerboseFlagConstant               = "--verbose"
	gitCeilingDirectoriesEnvironmentKey  = "GIT_CEILING_DIRECTORIES"
	gitTerminalPromptEnvironmentKey      = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledValue       = "0"
	localeEnvironmentKey                 = "LC_ALL"
	neutralLocaleValue                   = "C"
	notARepositoryStderrMarkerConstant   = "not a git repository"
	executorNotConfiguredMessageConstant = "git executor not configured"
	probeErrorTemplateConstant           = "failed to run git in %s: %w"
	remoteListingErrorTemplateConstant   = "failed to list remotes in %s: %w"
	fetchExecutionErrorTemplateConstant  = "failed to run git fetch %s in %s: %w"
)

// ErrGitExecutorNotConfigured indicates that Backend was constructed without an executor.
var ErrGitExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Backend opens repositories by invoking the git executable.
type Backend struct {
	executor GitExecutor
}

// NewBackend constructs a Backend from the provided executor.
func NewBackend(executor GitExecutor) (*Backend, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &Backend{executor: executor}, nil
}

// Open succeeds only when repositoryPath is itself a repository root. Git is
// prevented from searching ancestor directories through GIT_CEILING_DIRECTORIES.
// Directories git cannot enter are reported as not being repositories, while a
// repository git refuses to open yields shared.RepositoryOpenError.
func (backend *Backend) Open(executionContext context.Context, repositoryPath string) (shared.RepositoryHandle, error) {
	_, executionError := backend.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitDirFlagConstant},
		WorkingDirectory: repositoryPath,
		EnvironmentVariables: map[string]string{
			gitCeilingDirectoriesEnvironmentKey: filepath.Dir(repositoryPath),
			localeEnvironmentKey:                neutralLocaleValue,
		},
	})
	if executionError != nil {
		if contextError := executionContext.Err(); contextError != nil {
			return nil, contextError
		}
		if errors.Is(executionError, fs.ErrPermission) {
			return nil, shared.ErrNotARepository
		}
		var commandFailure execshell.CommandFailedError
		if errors.As(executionError, &commandFailure) {
			standardError := commandFailure.Result.StandardError
			if strings.Contains(standardError, notARepositoryStderrMarkerConstant) {
				return nil, shared.ErrNotARepository
			}
			return nil, shared.NewRepositoryOpenError(repositoryPath, standardError, commandFailure)
		}
		return nil, fmt.Errorf(probeErrorTemplateConstant, repositoryPath, executionError)
	}
	return &repository{path: repositoryPath, executor: backend.executor}, nil
}

type repository struct {
	path     string
	executor GitExecutor
}

func (repository *repository) Path() string {
	return repository.path
}

func (repository *repository) Remotes(executionContext context.Context) ([]shared.RemoteHandle, error) {
	executionResult, executionError := repository.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRemoteSubcommandConstant},
		WorkingDirectory: repository.path,
	})
	if executionError != nil {
		return nil, fmt.Errorf(remoteListingErrorTemplateConstant, repository.path, executionError)
	}

	remoteNames := strings.Fields(executionResult.StandardOutput)
	sort.Strings(remoteNames)

	remotes := make([]shared.RemoteHandle, 0, len(remoteNames))
	for _, remoteName := range remoteNames {
		remotes = append(remotes, &remote{repositoryPath: repository.path, name: remoteName, executor: repository.executor})
	}
	return remotes, nil
}

func (repository *repository) Close() error {
	return nil
}

type remote struct {
	repositoryPath string
	name           string
	executor       GitExecutor
}

func (remote *remote) Name() string {
	return remote.name
}

// Fetch runs git fetch for the remote. A non-zero exit is a fetch-domain
// failure; cancellation and process start failures are returned as is.
func (remote *remote) Fetch(executionContext context.Context) ([]shared.RefUpdate, error) {
	executionResult, executionError := remote.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitFetchSubcommandConstant, gitVerboseFlagConstant, remote.name},
		WorkingDirectory: remote.repositoryPath,
		EnvironmentVariables: map[string]string{
			gitTerminalPromptEnvironmentKey: gitTerminalPromptDisabledValue,
			localeEnvironmentKey:            neutralLocaleValue,
		},
	})
	if executionError != nil {
		if contextError := executionContext.Err(); contextError != nil {
			return nil, contextError
		}
		var commandFailure execshell.CommandFailedError
		if errors.As(executionError, &commandFailure) {
			return nil, shared.NewFetchError(remote.repositoryPath, remote.name, commandFailure.Result.StandardError, commandFailure)
		}
		return nil, fmt.Errorf(fetchExecutionErrorTemplateConstant, remote.name, remote.repositoryPath, executionError)
	}
	return ParseFetchOutput(executionResult.StandardError), nil
}
