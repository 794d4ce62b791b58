package repos_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/git-fetch-all/cmd/cli/repos"
	"github.com/temirov/git-fetch-all/internal/repos/shared"
)

const (
	testAlphaDirectoryConstant = "alpha"
	testBetaDirectoryConstant  = "beta"
	testNestedDirectoryName    = "group"
	testOriginRemoteConstant   = "origin"
	testUpstreamRemoteConstant = "upstream"
	testFetchFailureStderr     = "fatal: could not read from remote repository\n\nPlease check access rights.\n"
)

type stubRemote struct {
	name    string
	updates []shared.RefUpdate
	err     error
}

func (remote stubRemote) Name() string {
	return remote.name
}

func (remote stubRemote) Fetch(context.Context) ([]shared.RefUpdate, error) {
	return remote.updates, remote.err
}

type stubRepository struct {
	path    string
	remotes []shared.RemoteHandle
}

func (repository stubRepository) Path() string {
	return repository.path
}

func (repository stubRepository) Remotes(context.Context) ([]shared.RemoteHandle, error) {
	return repository.remotes, nil
}

func (repository stubRepository) Close() error {
	return nil
}

type stubBackend struct {
	repositories map[string][]shared.RemoteHandle
	openFailures map[string]error
}

func (backend stubBackend) Open(_ context.Context, repositoryPath string) (shared.RepositoryHandle, error) {
	if openFailure, failing := backend.openFailures[repositoryPath]; failing {
		return nil, openFailure
	}
	remotes, exists := backend.repositories[repositoryPath]
	if !exists {
		return nil, shared.ErrNotARepository
	}
	return stubRepository{path: repositoryPath, remotes: remotes}, nil
}

func updatedRemote(name string) shared.RemoteHandle {
	return stubRemote{name: name, updates: []shared.RefUpdate{{Flags: shared.RefUpdateFastForward}}}
}

func upToDateRemote(name string) shared.RemoteHandle {
	return stubRemote{name: name, updates: []shared.RefUpdate{{Flags: shared.RefUpdateUpToDate}}}
}

func failingRemote(name string, repositoryPath string) shared.RemoteHandle {
	return stubRemote{name: name, err: shared.NewFetchError(repositoryPath, name, testFetchFailureStderr, nil)}
}

// buildTree creates alpha/ and group/beta/ below a temporary root and returns
// the root together with a backend that treats both as repositories.
func buildTree(testInstance *testing.T, betaFails bool) (string, stubBackend) {
	testInstance.Helper()

	rootDirectory := testInstance.TempDir()
	alphaPath := filepath.Join(rootDirectory, testAlphaDirectoryConstant)
	betaPath := filepath.Join(rootDirectory, testNestedDirectoryName, testBetaDirectoryConstant)
	require.NoError(testInstance, os.MkdirAll(alphaPath, 0o755))
	require.NoError(testInstance, os.MkdirAll(betaPath, 0o755))

	betaOrigin := upToDateRemote(testOriginRemoteConstant)
	if betaFails {
		betaOrigin = failingRemote(testOriginRemoteConstant, betaPath)
	}

	return rootDirectory, stubBackend{repositories: map[string][]shared.RemoteHandle{
		alphaPath: {updatedRemote(testOriginRemoteConstant), upToDateRemote(testUpstreamRemoteConstant)},
		betaPath:  {betaOrigin},
	}}
}

func executeFetch(testInstance *testing.T, builder repos.FetchCommandBuilder, arguments ...string) (string, error) {
	testInstance.Helper()

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(&bytes.Buffer{})
	command.SetArgs(arguments)
	command.SetContext(context.Background())

	executionError := command.Execute()
	return outputBuffer.String(), executionError
}

func TestFetchCommandReports(testInstance *testing.T) {
	testCases := []struct {
		name           string
		betaFails      bool
		arguments      []string
		expectedOutput string
		expectFailure  bool
	}{
		{
			name:           "all_remotes",
			arguments:      nil,
			expectedOutput: "✓ alpha:origin\n- alpha:upstream\n- group/beta:origin\n",
		},
		{
			name:           "failure_details_indented",
			betaFails:      true,
			expectedOutput: "✓ alpha:origin\n- alpha:upstream\n𐄂 group/beta:origin\n    fatal: could not read from remote repository\n\n    Please check access rights.\n",
			expectFailure:  true,
		},
		{
			name:           "quiet_prints_failures_only",
			betaFails:      true,
			arguments:      []string{"--quiet"},
			expectedOutput: "𐄂 group/beta:origin\n    fatal: could not read from remote repository\n\n    Please check access rights.\n",
			expectFailure:  true,
		},
		{
			name:           "quiet_without_failures_is_silent",
			arguments:      []string{"-q"},
			expectedOutput: "",
		},
		{
			name:           "include_remote",
			arguments:      []string{"--include-remote", testUpstreamRemoteConstant},
			expectedOutput: "- alpha:upstream\n",
		},
		{
			name:           "exclude_remote",
			arguments:      []string{"--exclude-remote", testOriginRemoteConstant},
			expectedOutput: "- alpha:upstream\n",
		},
		{
			name:           "recurse_limits_depth",
			arguments:      []string{"--recurse", "1"},
			expectedOutput: "✓ alpha:origin\n- alpha:upstream\n",
		},
		{
			name:           "recurse_zero_on_plain_root",
			arguments:      []string{"-r", "0"},
			expectedOutput: "",
		},
		{
			name:           "exclude_dirname",
			arguments:      []string{"--exclude-dirname", testNestedDirectoryName},
			expectedOutput: "✓ alpha:origin\n- alpha:upstream\n",
		},
		{
			name:           "color_always_highlights_failures",
			betaFails:      true,
			arguments:      []string{"--quiet", "--color", "always"},
			expectedOutput: "\x1b[31m𐄂 group/beta:origin\x1b[0m\n    fatal: could not read from remote repository\n\n    Please check access rights.\n",
			expectFailure:  true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			rootDirectory, backend := buildTree(testInstance, testCase.betaFails)
			builder := repos.FetchCommandBuilder{Backend: backend}

			output, executionError := executeFetch(testInstance, builder, append([]string{rootDirectory}, testCase.arguments...)...)
			if testCase.expectFailure {
				require.ErrorIs(testInstance, executionError, repos.ErrRemoteFetchFailed)
			} else {
				require.NoError(testInstance, executionError)
			}
			require.Equal(testInstance, testCase.expectedOutput, output)
		})
	}
}

func TestFetchCommandStructuredOutput(testInstance *testing.T) {
	rootDirectory, backend := buildTree(testInstance, true)

	output, executionError := executeFetch(testInstance, repos.FetchCommandBuilder{Backend: backend}, rootDirectory, "--output", "json")
	require.ErrorIs(testInstance, executionError, repos.ErrRemoteFetchFailed)

	var entries []map[string]string
	require.NoError(testInstance, json.Unmarshal([]byte(output), &entries))
	require.Len(testInstance, entries, 3)
	require.Equal(testInstance, map[string]string{"path": "alpha", "remote": "origin", "status": "updated"}, entries[0])
	require.Equal(testInstance, "group/beta", entries[2]["path"])
	require.Equal(testInstance, "failed", entries[2]["status"])
	require.Contains(testInstance, entries[2]["error"], "Please check access rights.")
}

func TestFetchCommandUsesConfiguration(testInstance *testing.T) {
	rootDirectory, backend := buildTree(testInstance, false)

	configuration := repos.DefaultCommandConfiguration()
	configuration.Fetch.BaseDirectory = rootDirectory
	configuration.Fetch.IncludeRemotes = []string{" " + testOriginRemoteConstant + " "}
	configuration.Report.Output = "TEXT"

	builder := repos.FetchCommandBuilder{
		Backend: backend,
		ConfigurationProvider: func() repos.CommandConfiguration {
			return configuration
		},
	}

	output, executionError := executeFetch(testInstance, builder)
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "✓ alpha:origin\n- group/beta:origin\n", output)

	output, executionError = executeFetch(testInstance, builder, "--include-remote", testUpstreamRemoteConstant)
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "- alpha:upstream\n", output)
}

func TestFetchCommandRejectsInvalidSettings(testInstance *testing.T) {
	rootDirectory, backend := buildTree(testInstance, false)

	configuration := repos.DefaultCommandConfiguration()
	configuration.Report.Output = "xml"
	builder := repos.FetchCommandBuilder{
		Backend:               backend,
		ConfigurationProvider: func() repos.CommandConfiguration { return configuration },
	}
	_, executionError := executeFetch(testInstance, builder, rootDirectory)
	require.Error(testInstance, executionError)

	_, executionError = executeFetch(testInstance, repos.FetchCommandBuilder{Backend: backend}, rootDirectory, "--color", "sometimes")
	require.Error(testInstance, executionError)

	_, executionError = executeFetch(testInstance, repos.FetchCommandBuilder{Backend: backend}, rootDirectory, "--recurse", "-1")
	require.Error(testInstance, executionError)

	_, executionError = executeFetch(testInstance, repos.FetchCommandBuilder{Backend: backend}, filepath.Join(rootDirectory, "missing"))
	require.Error(testInstance, executionError)

	_, executionError = executeFetch(testInstance, repos.FetchCommandBuilder{Backend: backend}, rootDirectory, rootDirectory)
	require.Error(testInstance, executionError)
}

func TestFetchCommandLogsSummary(testInstance *testing.T) {
	rootDirectory, backend := buildTree(testInstance, true)
	observedCore, observedLogs := observer.New(zapcore.InfoLevel)
	logger := zap.New(observedCore)

	builder := repos.FetchCommandBuilder{
		Backend:        backend,
		LoggerProvider: func() *zap.Logger { return logger },
	}
	_, executionError := executeFetch(testInstance, builder, rootDirectory)
	require.ErrorIs(testInstance, executionError, repos.ErrRemoteFetchFailed)

	summaries := observedLogs.FilterMessage("fetch completed").All()
	require.Len(testInstance, summaries, 1)
	fields := summaries[0].ContextMap()
	require.Equal(testInstance, int64(1), fields["updated"])
	require.Equal(testInstance, int64(1), fields["up_to_date"])
	require.Equal(testInstance, int64(1), fields["failed"])
}

func TestFetchCommandReportsRepositoriesThatCannotBeOpened(testInstance *testing.T) {
	rootDirectory, backend := buildTree(testInstance, false)
	lockedPath := filepath.Join(rootDirectory, "locked")
	require.NoError(testInstance, os.MkdirAll(lockedPath, 0o755))
	backend.openFailures = map[string]error{
		lockedPath: shared.NewRepositoryOpenError(lockedPath, "fatal: detected dubious ownership in repository at '"+lockedPath+"'\n", nil),
	}

	output, executionError := executeFetch(testInstance, repos.FetchCommandBuilder{Backend: backend}, rootDirectory, "--quiet")
	require.ErrorIs(testInstance, executionError, repos.ErrRemoteFetchFailed)
	require.Equal(testInstance, "𐄂 locked\n    fatal: detected dubious ownership in repository at '"+lockedPath+"'\n", output)
}
