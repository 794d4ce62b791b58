package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

const testRepositoryDirectoryConstant = "/workspace/repo"

func TestCommandMessageFormatterDescribesGitCommands(t *testing.T) {
	formatter := CommandMessageFormatter{}
	probe := ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"rev-parse", "--git-dir"}, WorkingDirectory: testRepositoryDirectoryConstant}}
	remoteList := ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"remote"}, WorkingDirectory: testRepositoryDirectoryConstant}}
	fetch := ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"fetch", "--verbose", "origin"}, WorkingDirectory: testRepositoryDirectoryConstant}}
	fetchAll := ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"fetch", "--all"}}}
	other := ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"status", "--short"}, WorkingDirectory: testRepositoryDirectoryConstant}}

	testCases := []struct {
		name     string
		message  string
		expected string
	}{
		{name: "probe_start", message: formatter.BuildStartedMessage(probe), expected: "Checking whether /workspace/repo is a repository root"},
		{name: "probe_success", message: formatter.BuildSuccessMessage(probe), expected: "/workspace/repo is a repository root"},
		{
			name:     "probe_failure",
			message:  formatter.BuildFailureMessage(probe, ExecutionResult{ExitCode: 128, StandardError: "fatal: not a git repository\n"}),
			expected: "/workspace/repo is not a repository root (exit code 128: fatal: not a git repository)",
		},
		{name: "remote_list_start", message: formatter.BuildStartedMessage(remoteList), expected: "Listing remotes in /workspace/repo"},
		{
			name:     "remote_list_completion",
			message:  formatter.BuildCompletionMessage(remoteList, ExecutionResult{StandardOutput: "origin\nupstream\n"}),
			expected: "Listed 2 remote(s) in /workspace/repo",
		},
		{name: "fetch_start", message: formatter.BuildStartedMessage(fetch), expected: "Fetching from origin in /workspace/repo"},
		{name: "fetch_all_start", message: formatter.BuildStartedMessage(fetchAll), expected: "Fetching from all remotes in current directory"},
		{
			name:     "fetch_execution_failure",
			message:  formatter.BuildExecutionFailureMessage(fetch, errors.New("signal: killed")),
			expected: "Unable to fetch from origin in /workspace/repo: signal: killed",
		},
		{name: "generic_start", message: formatter.BuildStartedMessage(other), expected: "Running git status --short (in /workspace/repo)"},
		{
			name:     "generic_failure",
			message:  formatter.BuildFailureMessage(other, ExecutionResult{ExitCode: 1}),
			expected: "git status --short (in /workspace/repo) failed with exit code 1",
		},
		{
			name:     "generic_execution_failure_without_cause",
			message:  formatter.BuildExecutionFailureMessage(other, nil),
			expected: "git status --short (in /workspace/repo) failed: unknown error",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expected, testCase.message)
		})
	}
}
