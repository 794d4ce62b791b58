package discovery_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/git-fetch-all/internal/repos/discovery"
	"github.com/temirov/git-fetch-all/internal/repos/filesystem"
	"github.com/temirov/git-fetch-all/internal/repos/shared"
)

const (
	developerDirectoryName             = "Dev"
	engineeringGroupDirectoryName      = "Group1"
	applicationRepositoryDirectoryName = "Repo1"
	vendorDirectoryName                = "vendor"
	hiddenDirectoryName                = ".cache"
	plainFileName                      = "README.md"
	linkedDirectoryName                = "linked"
	gitMetadataDirectoryName           = ".git"
	repositoryDirectoryPermissions     = 0o755
	plainFilePermissions               = 0o644
)

var errBackendUnavailable = errors.New("backend unavailable")

type markerRepositoryHandle struct {
	path string
}

func (handle markerRepositoryHandle) Path() string {
	return handle.path
}

func (handle markerRepositoryHandle) Remotes(context.Context) ([]shared.RemoteHandle, error) {
	return nil, nil
}

func (handle markerRepositoryHandle) Close() error {
	return nil
}

// markerBackend treats directories that directly contain .git as repositories.
type markerBackend struct {
	openError error
}

func (backend markerBackend) Open(_ context.Context, repositoryPath string) (shared.RepositoryHandle, error) {
	if backend.openError != nil {
		return nil, backend.openError
	}
	if _, statError := os.Stat(filepath.Join(repositoryPath, gitMetadataDirectoryName)); statError != nil {
		return nil, shared.ErrNotARepository
	}
	return markerRepositoryHandle{path: repositoryPath}, nil
}

func newTestLocator(testInstance *testing.T, backend shared.RepositoryBackend) *discovery.Locator {
	testInstance.Helper()
	locator, creationError := discovery.NewLocator(discovery.Dependencies{Backend: backend, FileSystem: filesystem.OSFileSystem{}})
	require.NoError(testInstance, creationError)
	return locator
}

func TestNewLocatorValidatesDependencies(testInstance *testing.T) {
	_, backendError := discovery.NewLocator(discovery.Dependencies{FileSystem: filesystem.OSFileSystem{}})
	require.ErrorIs(testInstance, backendError, discovery.ErrBackendNotConfigured)

	_, fileSystemError := discovery.NewLocator(discovery.Dependencies{Backend: markerBackend{}})
	require.ErrorIs(testInstance, fileSystemError, discovery.ErrFileSystemNotConfigured)
}

func TestLocatorProbe(testInstance *testing.T) {
	temporaryRootDirectory := testInstance.TempDir()
	repositoryPath := filepath.Join(temporaryRootDirectory, applicationRepositoryDirectoryName)
	nestedPath := filepath.Join(repositoryPath, developerDirectoryName)
	require.NoError(testInstance, os.MkdirAll(filepath.Join(repositoryPath, gitMetadataDirectoryName), repositoryDirectoryPermissions))
	require.NoError(testInstance, os.MkdirAll(nestedPath, repositoryDirectoryPermissions))

	locator := newTestLocator(testInstance, markerBackend{})

	repositoryHandle, found, probeError := locator.Probe(context.Background(), repositoryPath)
	require.NoError(testInstance, probeError)
	require.True(testInstance, found)
	require.Equal(testInstance, repositoryPath, repositoryHandle.Path())

	nestedHandle, nestedFound, nestedError := locator.Probe(context.Background(), nestedPath)
	require.NoError(testInstance, nestedError)
	require.False(testInstance, nestedFound)
	require.Nil(testInstance, nestedHandle)
}

func TestLocatorProbePropagatesBackendFailures(testInstance *testing.T) {
	locator := newTestLocator(testInstance, markerBackend{openError: errBackendUnavailable})

	_, found, probeError := locator.Probe(context.Background(), testInstance.TempDir())
	require.ErrorIs(testInstance, probeError, errBackendUnavailable)
	require.False(testInstance, found)
}

func TestLocatorListDescendCandidates(testInstance *testing.T) {
	temporaryRootDirectory := testInstance.TempDir()
	for _, directoryName := range []string{developerDirectoryName, engineeringGroupDirectoryName, vendorDirectoryName, hiddenDirectoryName} {
		require.NoError(testInstance, os.MkdirAll(filepath.Join(temporaryRootDirectory, directoryName), repositoryDirectoryPermissions))
	}
	require.NoError(testInstance, os.WriteFile(filepath.Join(temporaryRootDirectory, plainFileName), []byte("readme"), plainFilePermissions))
	require.NoError(testInstance, os.Symlink(filepath.Join(temporaryRootDirectory, developerDirectoryName), filepath.Join(temporaryRootDirectory, linkedDirectoryName)))
	require.NoError(testInstance, os.Symlink(filepath.Join(temporaryRootDirectory, "missing"), filepath.Join(temporaryRootDirectory, "dangling")))

	locator := newTestLocator(testInstance, markerBackend{})

	testCases := []struct {
		name               string
		excludedNames      map[string]struct{}
		expectedCandidates []string
	}{
		{
			name: "skips_hidden_files_and_dangling_links",
			expectedCandidates: []string{
				filepath.Join(temporaryRootDirectory, developerDirectoryName),
				filepath.Join(temporaryRootDirectory, engineeringGroupDirectoryName),
				filepath.Join(temporaryRootDirectory, linkedDirectoryName),
				filepath.Join(temporaryRootDirectory, vendorDirectoryName),
			},
		},
		{
			name:          "skips_excluded_names",
			excludedNames: map[string]struct{}{vendorDirectoryName: {}, linkedDirectoryName: {}},
			expectedCandidates: []string{
				filepath.Join(temporaryRootDirectory, developerDirectoryName),
				filepath.Join(temporaryRootDirectory, engineeringGroupDirectoryName),
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			candidates, listError := locator.ListDescendCandidates(temporaryRootDirectory, testCase.excludedNames)
			require.NoError(testInstance, listError)
			require.Equal(testInstance, testCase.expectedCandidates, candidates)
		})
	}
}

func TestLocatorListDescendCandidatesReportsMissingDirectory(testInstance *testing.T) {
	locator := newTestLocator(testInstance, markerBackend{})

	_, listError := locator.ListDescendCandidates(filepath.Join(testInstance.TempDir(), "absent"), nil)
	require.Error(testInstance, listError)
	require.ErrorIs(testInstance, listError, os.ErrNotExist)
}
