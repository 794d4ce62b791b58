package repos

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/git-fetch-all/internal/report"
	pathutils "github.com/temirov/git-fetch-all/internal/utils/path"
)

var repositoryHomeDirectoryExpander = pathutils.NewHomeExpander()

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// determineBaseDirectory prefers the positional argument over the configured value.
func determineBaseDirectory(arguments []string, configuredBaseDirectory string) string {
	if len(arguments) > 0 {
		return repositoryHomeDirectoryExpander.ResolveDirectory(arguments[0])
	}
	return repositoryHomeDirectoryExpander.ResolveDirectory(configuredBaseDirectory)
}

// outputDescriptor exposes the file descriptor behind writer when there is one.
func outputDescriptor(writer io.Writer) report.FileDescriptor {
	descriptor, hasDescriptor := writer.(report.FileDescriptor)
	if !hasDescriptor {
		return nil
	}
	return descriptor
}

func flagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}
	flag := command.Flags().Lookup(flagName)
	return flag != nil && flag.Changed
}
