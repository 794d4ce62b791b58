// Package testsupport builds real git repositories for backend and command tests.
package testsupport

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

const (
	gitExecutableNameConstant = "git"
	authorNameConstant        = "Fetch Tester"
	authorEmailConstant       = "fetch.tester@example.com"
	directoryPermissions      = 0o755
	filePermissions           = 0o644
)

var commitTimestamp = time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)

// RequireGitExecutable skips the test when git is not installed. Local fetches
// spawn git-upload-pack even through go-git.
func RequireGitExecutable(testInstance testing.TB) {
	testInstance.Helper()
	if _, lookupError := exec.LookPath(gitExecutableNameConstant); lookupError != nil {
		testInstance.Skip("git executable not available")
	}
}

// InitRepository creates a non-bare repository at repositoryPath.
func InitRepository(testInstance testing.TB, repositoryPath string) *git.Repository {
	testInstance.Helper()
	require.NoError(testInstance, os.MkdirAll(repositoryPath, directoryPermissions))
	repository, initError := git.PlainInit(repositoryPath, false)
	require.NoError(testInstance, initError)
	return repository
}

// CommitFile writes fileName with content into the work tree and commits it.
func CommitFile(testInstance testing.TB, repository *git.Repository, fileName string, content string) plumbing.Hash {
	testInstance.Helper()
	worktree, worktreeError := repository.Worktree()
	require.NoError(testInstance, worktreeError)

	filePath := filepath.Join(worktree.Filesystem.Root(), fileName)
	require.NoError(testInstance, os.WriteFile(filePath, []byte(content), filePermissions))

	_, addError := worktree.Add(fileName)
	require.NoError(testInstance, addError)

	commitHash, commitError := worktree.Commit("update "+fileName, &git.CommitOptions{
		Author: &object.Signature{Name: authorNameConstant, Email: authorEmailConstant, When: commitTimestamp},
	})
	require.NoError(testInstance, commitError)
	return commitHash
}

// CreateTag creates a lightweight tag pointing at commitHash.
func CreateTag(testInstance testing.TB, repository *git.Repository, tagName string, commitHash plumbing.Hash) {
	testInstance.Helper()
	_, tagError := repository.CreateTag(tagName, commitHash, nil)
	require.NoError(testInstance, tagError)
}

// AddRemote registers a remote named remoteName pointing at remoteURL.
func AddRemote(testInstance testing.TB, repository *git.Repository, remoteName string, remoteURL string) {
	testInstance.Helper()
	_, remoteError := repository.CreateRemote(&config.RemoteConfig{Name: remoteName, URLs: []string{remoteURL}})
	require.NoError(testInstance, remoteError)
}

// UpstreamWithCommit creates a repository at upstreamPath holding one commit.
func UpstreamWithCommit(testInstance testing.TB, upstreamPath string) *git.Repository {
	testInstance.Helper()
	upstream := InitRepository(testInstance, upstreamPath)
	CommitFile(testInstance, upstream, "README.md", "initial\n")
	return upstream
}
