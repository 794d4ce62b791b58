package dependencies

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/git-fetch-all/internal/execshell"
	"github.com/temirov/git-fetch-all/internal/gitnative"
	"github.com/temirov/git-fetch-all/internal/gitrepo"
	"github.com/temirov/git-fetch-all/internal/repos/discovery"
	"github.com/temirov/git-fetch-all/internal/repos/filesystem"
	"github.com/temirov/git-fetch-all/internal/repos/shared"
	"github.com/temirov/git-fetch-all/internal/ui"
)

// BackendName selects the implementation used to open repositories.
type BackendName string

// Supported backends.
const (
	BackendCLI    BackendName = BackendName("cli")
	BackendNative BackendName = BackendName("native")
)

const unsupportedBackendTemplateConstant = "unsupported backend %q"

// SupportedBackends lists backend names in their canonical order.
func SupportedBackends() []string {
	return []string{string(BackendCLI), string(BackendNative)}
}

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed
// default. Console logging routes command events through the human-readable
// event logger.
func ResolveGitExecutor(existing gitrepo.GitExecutor, logger *zap.Logger, humanReadable bool) (gitrepo.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	var options []execshell.ShellExecutorOption
	if humanReadable && logger != nil {
		options = append(options, execshell.WithCommandEventObserver(ui.NewConsoleCommandEventLogger(logger)))
	}
	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), options...)
}

// ResolveBackend returns the provided backend or constructs the named one. An
// empty name selects the git CLI backend.
func ResolveBackend(existing shared.RepositoryBackend, name string, executor gitrepo.GitExecutor) (shared.RepositoryBackend, error) {
	if existing != nil {
		return existing, nil
	}

	switch BackendName(strings.ToLower(strings.TrimSpace(name))) {
	case "", BackendCLI:
		return gitrepo.NewBackend(executor)
	case BackendNative:
		return gitnative.NewBackend(), nil
	default:
		return nil, fmt.Errorf(unsupportedBackendTemplateConstant, name)
	}
}

// ResolveLocator returns the provided locator or constructs one over backend and fileSystem.
func ResolveLocator(existing shared.RepositoryLocator, backend shared.RepositoryBackend, fileSystem shared.FileSystem, logger *zap.Logger) (shared.RepositoryLocator, error) {
	if existing != nil {
		return existing, nil
	}
	return discovery.NewLocator(discovery.Dependencies{Backend: backend, FileSystem: fileSystem, Logger: logger})
}
