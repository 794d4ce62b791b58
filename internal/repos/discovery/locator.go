package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/git-fetch-all/internal/repos/shared"
)

const (
	backendMissingMessageConstant      = "repository backend not configured"
	fileSystemMissingMessageConstant   = "filesystem not configured"
	probeErrorTemplateConstant         = "failed to probe %s: %w"
	listDirectoryErrorTemplateConstant = "failed to list %s: %w"
	unreadableDirectoryMessageConstant = "skipping unreadable directory"
	unresolvableEntryMessageConstant   = "skipping unresolvable directory entry"
	notARepositoryMessageConstant      = "directory is not a repository root"
	repositoryFoundMessageConstant     = "repository root found"
	logFieldDirectoryConstant          = "directory"
	logFieldEntryConstant              = "entry"
	logFieldErrorConstant              = "error"
)

// ErrBackendNotConfigured indicates the repository backend dependency was missing.
var ErrBackendNotConfigured = errors.New(backendMissingMessageConstant)

// ErrFileSystemNotConfigured indicates the filesystem dependency was missing.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// Dependencies captures collaborators required by the Locator.
type Dependencies struct {
	Backend    shared.RepositoryBackend
	FileSystem shared.FileSystem
	Logger     *zap.Logger
}

// Locator decides whether a directory is a repository root and which child
// directories are worth probing next.
type Locator struct {
	backend    shared.RepositoryBackend
	fileSystem shared.FileSystem
	logger     *zap.Logger
}

// NewLocator constructs a Locator from the provided dependencies.
func NewLocator(dependencies Dependencies) (*Locator, error) {
	if dependencies.Backend == nil {
		return nil, ErrBackendNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Locator{backend: dependencies.Backend, fileSystem: dependencies.FileSystem, logger: logger}, nil
}

// Probe opens directoryPath strictly as a repository root. The boolean result
// is false when the directory is not a repository; that case is not an error.
func (locator *Locator) Probe(executionContext context.Context, directoryPath string) (shared.RepositoryHandle, bool, error) {
	repositoryHandle, openError := locator.backend.Open(executionContext, directoryPath)
	if openError != nil {
		if errors.Is(openError, shared.ErrNotARepository) {
			locator.logger.Debug(notARepositoryMessageConstant, zap.String(logFieldDirectoryConstant, directoryPath))
			return nil, false, nil
		}
		return nil, false, fmt.Errorf(probeErrorTemplateConstant, directoryPath, openError)
	}

	locator.logger.Debug(repositoryFoundMessageConstant, zap.String(logFieldDirectoryConstant, directoryPath))
	return repositoryHandle, true, nil
}

// ListDescendCandidates returns the immediate child directories of
// directoryPath, skipping hidden entries and names in excludedNames.
func (locator *Locator) ListDescendCandidates(directoryPath string, excludedNames map[string]struct{}) ([]string, error) {
	directoryEntries, readError := locator.fileSystem.ReadDir(directoryPath)
	if readError != nil {
		if errors.Is(readError, fs.ErrPermission) {
			locator.logger.Debug(unreadableDirectoryMessageConstant, zap.String(logFieldDirectoryConstant, directoryPath), zap.Error(readError))
			return nil, nil
		}
		return nil, fmt.Errorf(listDirectoryErrorTemplateConstant, directoryPath, readError)
	}

	candidates := make([]string, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		entryName := directoryEntry.Name()
		if strings.HasPrefix(entryName, shared.HiddenEntryPrefixConstant) {
			continue
		}
		if _, excluded := excludedNames[entryName]; excluded {
			continue
		}

		entryPath := filepath.Join(directoryPath, entryName)
		if !locator.isDirectory(entryPath, directoryEntry) {
			continue
		}
		candidates = append(candidates, entryPath)
	}
	return candidates, nil
}

func (locator *Locator) isDirectory(entryPath string, directoryEntry fs.DirEntry) bool {
	if directoryEntry.IsDir() {
		return true
	}
	if directoryEntry.Type()&fs.ModeSymlink == 0 {
		return false
	}

	targetInfo, statError := locator.fileSystem.Stat(entryPath)
	if statError != nil {
		locator.logger.Debug(unresolvableEntryMessageConstant, zap.String(logFieldEntryConstant, entryPath), zap.String(logFieldErrorConstant, statError.Error()))
		return false
	}
	return targetInfo.IsDir()
}
