package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/git-fetch-all/cmd/cli/repos"
	"github.com/temirov/git-fetch-all/internal/repos/testsupport"
)

const (
	testConfigFileNameConstant     = "config.yaml"
	testConfigurationContent       = "common:\n  log_level: warn\nfetch:\n  recurse: 1\n  include_remotes:\n    - origin\nreport:\n  output: json\n"
	testExcludeRemotesEnvironment  = "GITFETCHALL_FETCH_EXCLUDE_REMOTES"
	testLogFormatEnvironment       = "GITFETCHALL_COMMON_LOG_FORMAT"
	testOriginRemoteNameConstant   = "origin"
	testVersionConstant            = "v1.2.3"
	testFetchFailureLinePrefix     = "𐄂 group/beta:origin\n    "
	testUpdatedAlphaLineConstant   = "✓ alpha:origin\n"
	testMissingUpstreamDirectory   = "missing"
	testUpstreamDirectoryConstant  = "upstream"
	testWorkspaceDirectoryConstant = "workspace"
)

// isolateConfiguration keeps user-level configuration files out of the test.
func isolateConfiguration(testInstance *testing.T) {
	testInstance.Helper()
	configurationHome := testInstance.TempDir()
	testInstance.Setenv("HOME", configurationHome)
	testInstance.Setenv("XDG_CONFIG_HOME", filepath.Join(configurationHome, ".config"))
}

func newTestApplication(testInstance *testing.T) *Application {
	testInstance.Helper()
	application, creationError := NewApplication()
	require.NoError(testInstance, creationError)
	require.NotNil(testInstance, application.rootCommand)
	return application
}

func executeApplication(testInstance *testing.T, application *Application, arguments ...string) (string, error) {
	testInstance.Helper()
	outputBuffer := &bytes.Buffer{}
	application.rootCommand.SetOut(outputBuffer)
	application.rootCommand.SetErr(&bytes.Buffer{})
	application.rootCommand.SetArgs(arguments)
	executionError := application.Execute()
	return outputBuffer.String(), executionError
}

func TestApplicationVersionFlag(testInstance *testing.T) {
	for _, versionFlag := range []string{"--version", "-V"} {
		testInstance.Run(versionFlag, func(testInstance *testing.T) {
			isolateConfiguration(testInstance)
			application := newTestApplication(testInstance)
			application.rootCommand.Version = testVersionConstant

			output, executionError := executeApplication(testInstance, application, versionFlag)
			require.NoError(testInstance, executionError)
			require.Equal(testInstance, "git-fetch-all v1.2.3\n", output)
		})
	}
}

func TestApplicationEmbeddedDefaults(testInstance *testing.T) {
	isolateConfiguration(testInstance)
	application := newTestApplication(testInstance)

	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

	defaults := repos.DefaultCommandConfiguration()
	require.Equal(testInstance, "error", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "console", application.configuration.Common.LogFormat)
	require.Equal(testInstance, defaults.Fetch.BaseDirectory, application.configuration.Fetch.BaseDirectory)
	require.Equal(testInstance, defaults.Fetch.Recurse, application.configuration.Fetch.Recurse)
	require.Equal(testInstance, defaults.Fetch.Concurrency, application.configuration.Fetch.Concurrency)
	require.Equal(testInstance, defaults.Fetch.Backend, application.configuration.Fetch.Backend)
	require.Empty(testInstance, application.configuration.Fetch.IncludeRemotes)
	require.Equal(testInstance, defaults.Report, application.configuration.Report)
	require.True(testInstance, application.humanReadableLoggingEnabled())
}

func TestApplicationLayersConfigurationSources(testInstance *testing.T) {
	isolateConfiguration(testInstance)
	configurationPath := filepath.Join(testInstance.TempDir(), testConfigFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testConfigurationContent), 0o600))
	testInstance.Setenv(testExcludeRemotesEnvironment, "backup, fork")
	testInstance.Setenv(testLogFormatEnvironment, "structured")

	application := newTestApplication(testInstance)
	require.NoError(testInstance, application.rootCommand.ParseFlags([]string{"--config", configurationPath, "--log-level", "debug"}))

	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))
	require.Equal(testInstance, configurationPath, application.configurationMetadata.ConfigFileUsed)
	require.Equal(testInstance, "debug", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", application.configuration.Common.LogFormat)
	require.Equal(testInstance, 1, application.configuration.Fetch.Recurse)
	require.Equal(testInstance, []string{"origin"}, application.configuration.Fetch.IncludeRemotes)
	require.Equal(testInstance, []string{"backup", "fork"}, application.configuration.Fetch.ExcludeRemotes)
	require.Equal(testInstance, "json", application.configuration.Report.Output)
	require.False(testInstance, application.humanReadableLoggingEnabled())
}

func TestApplicationRejectsInvalidLogLevel(testInstance *testing.T) {
	isolateConfiguration(testInstance)
	application := newTestApplication(testInstance)

	_, executionError := executeApplication(testInstance, application, "--log-level", "verbose", testInstance.TempDir())
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "unsupported log level")
}

func TestApplicationFetchesRealRepositories(testInstance *testing.T) {
	testsupport.RequireGitExecutable(testInstance)

	for _, backendName := range []string{"cli", "native"} {
		testInstance.Run(backendName, func(testInstance *testing.T) {
			isolateConfiguration(testInstance)
			scratchDirectory := testInstance.TempDir()
			upstreamPath := filepath.Join(scratchDirectory, testUpstreamDirectoryConstant)
			rootDirectory := filepath.Join(scratchDirectory, testWorkspaceDirectoryConstant)

			testsupport.UpstreamWithCommit(testInstance, upstreamPath)
			alpha := testsupport.InitRepository(testInstance, filepath.Join(rootDirectory, "alpha"))
			testsupport.AddRemote(testInstance, alpha, testOriginRemoteNameConstant, upstreamPath)
			beta := testsupport.InitRepository(testInstance, filepath.Join(rootDirectory, "group", "beta"))
			testsupport.AddRemote(testInstance, beta, testOriginRemoteNameConstant, filepath.Join(scratchDirectory, testMissingUpstreamDirectory))
			require.NoError(testInstance, os.MkdirAll(filepath.Join(rootDirectory, "notes", "drafts"), 0o755))

			output, executionError := executeApplication(testInstance, newTestApplication(testInstance), rootDirectory, "--backend", backendName)
			require.ErrorIs(testInstance, executionError, repos.ErrRemoteFetchFailed)
			require.True(testInstance, strings.HasPrefix(output, testUpdatedAlphaLineConstant+testFetchFailureLinePrefix), output)

			output, executionError = executeApplication(testInstance, newTestApplication(testInstance), rootDirectory, "--backend", backendName, "--exclude-dirname", "group")
			require.NoError(testInstance, executionError)
			require.Equal(testInstance, "- alpha:origin\n", output)
		})
	}
}
