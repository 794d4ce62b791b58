package execshell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"sort"
)

const environmentAssignmentSeparatorConstant = "="

// OSCommandRunner starts real processes through os/exec.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run starts the process and waits for it. A non-zero exit is reported in the
// result; a process killed because the context ended yields the context error.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	var standardOutputBuffer, standardErrorBuffer bytes.Buffer
	process := prepareProcess(executionContext, command)
	process.Stdout = &standardOutputBuffer
	process.Stderr = &standardErrorBuffer

	runError := process.Run()
	if contextError := executionContext.Err(); contextError != nil {
		return ExecutionResult{}, contextError
	}

	result := ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
	}
	if runError == nil {
		return result, nil
	}

	var exitError *exec.ExitError
	if !errors.As(runError, &exitError) {
		return ExecutionResult{}, runError
	}
	result.ExitCode = exitError.ExitCode()
	return result, nil
}

func prepareProcess(executionContext context.Context, command ShellCommand) *exec.Cmd {
	details := command.Details
	process := exec.CommandContext(executionContext, string(command.Name), append([]string(nil), details.Arguments...)...)
	process.Dir = details.WorkingDirectory
	if len(details.EnvironmentVariables) > 0 {
		process.Env = mergeEnvironment(os.Environ(), details.EnvironmentVariables)
	}
	if len(details.StandardInput) > 0 {
		process.Stdin = bytes.NewReader(details.StandardInput)
	}
	return process
}

// mergeEnvironment appends overrides in key order; later assignments win in exec.
func mergeEnvironment(baseEnvironment []string, overrides map[string]string) []string {
	overrideKeys := make([]string, 0, len(overrides))
	for overrideKey := range overrides {
		overrideKeys = append(overrideKeys, overrideKey)
	}
	sort.Strings(overrideKeys)

	merged := append([]string(nil), baseEnvironment...)
	for _, overrideKey := range overrideKeys {
		merged = append(merged, overrideKey+environmentAssignmentSeparatorConstant+overrides[overrideKey])
	}
	return merged
}
