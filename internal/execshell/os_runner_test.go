package execshell_test

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/git-fetch-all/internal/execshell"
)

const testShellCommandName = execshell.CommandName("sh")

func requireShell(testInstance *testing.T) {
	testInstance.Helper()
	if _, lookupError := exec.LookPath(string(testShellCommandName)); lookupError != nil {
		testInstance.Skip("sh is not available")
	}
}

func TestOSCommandRunnerCapturesOutputAndExitCode(testInstance *testing.T) {
	requireShell(testInstance)
	workingDirectory := testInstance.TempDir()

	runner := execshell.NewOSCommandRunner()
	result, runError := runner.Run(context.Background(), execshell.ShellCommand{
		Name: testShellCommandName,
		Details: execshell.CommandDetails{
			Arguments:            []string{"-c", "pwd; echo \"$FETCH_TEST_VALUE\" >&2; exit 3"},
			WorkingDirectory:     workingDirectory,
			EnvironmentVariables: map[string]string{"FETCH_TEST_VALUE": "from-env"},
		},
	})
	require.NoError(testInstance, runError)
	require.Equal(testInstance, 3, result.ExitCode)
	require.Contains(testInstance, result.StandardOutput, workingDirectory)
	require.Equal(testInstance, "from-env\n", result.StandardError)
}

func TestOSCommandRunnerReadsStandardInput(testInstance *testing.T) {
	requireShell(testInstance)

	runner := execshell.NewOSCommandRunner()
	result, runError := runner.Run(context.Background(), execshell.ShellCommand{
		Name:    testShellCommandName,
		Details: execshell.CommandDetails{Arguments: []string{"-c", "cat"}, StandardInput: []byte("payload")},
	})
	require.NoError(testInstance, runError)
	require.Zero(testInstance, result.ExitCode)
	require.Equal(testInstance, "payload", result.StandardOutput)
}

func TestOSCommandRunnerReportsCanceledContext(testInstance *testing.T) {
	requireShell(testInstance)

	canceledContext, cancel := context.WithCancel(context.Background())
	cancel()

	runner := execshell.NewOSCommandRunner()
	_, runError := runner.Run(canceledContext, execshell.ShellCommand{
		Name:    testShellCommandName,
		Details: execshell.CommandDetails{Arguments: []string{"-c", "sleep 5"}},
	})
	require.ErrorIs(testInstance, runError, context.Canceled)
}

func TestOSCommandRunnerReportsMissingExecutable(testInstance *testing.T) {
	runner := execshell.NewOSCommandRunner()
	_, runError := runner.Run(context.Background(), execshell.ShellCommand{Name: execshell.CommandName("definitely-not-a-real-binary-7c1e")})
	require.Error(testInstance, runError)
}
