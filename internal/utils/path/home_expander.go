// Package pathutils normalizes user-supplied directory arguments.
package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	homeShortcutConstant        = "~"
	homeShortcutSlashPrefix     = "~/"
	currentDirectoryPathLiteral = "."
)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander resolves a leading "~" to the user's home directory. The home
// directory is looked up once.
type HomeExpander struct {
	provider     HomeDirectoryProvider
	lookupOnce   sync.Once
	homeDir      string
	lookupFailed bool
}

// NewHomeExpander constructs a HomeExpander backed by os.UserHomeDir.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{provider: provider}
}

// Expand rewrites "~" and "~/..." (or "~\..." on Windows). Other forms,
// including "~user", are returned unchanged, as is every path when the home
// directory cannot be determined.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil || !strings.HasPrefix(candidatePath, homeShortcutConstant) {
		return candidatePath
	}

	homeDirectory, available := expander.home()
	if !available {
		return candidatePath
	}

	switch {
	case candidatePath == homeShortcutConstant:
		return homeDirectory
	case strings.HasPrefix(candidatePath, homeShortcutSlashPrefix):
		return filepath.Join(homeDirectory, candidatePath[len(homeShortcutSlashPrefix):])
	case strings.HasPrefix(candidatePath, homeShortcutConstant+string(os.PathSeparator)):
		return filepath.Join(homeDirectory, candidatePath[len(homeShortcutConstant)+1:])
	default:
		return candidatePath
	}
}

// ResolveDirectory trims candidatePath, expands the home shortcut, and falls
// back to the current directory when nothing remains.
func (expander *HomeExpander) ResolveDirectory(candidatePath string) string {
	trimmedPath := strings.TrimSpace(candidatePath)
	if len(trimmedPath) == 0 {
		return currentDirectoryPathLiteral
	}
	return expander.Expand(trimmedPath)
}

func (expander *HomeExpander) home() (string, bool) {
	expander.lookupOnce.Do(func() {
		homeDirectory, lookupError := expander.provider()
		if lookupError != nil || len(homeDirectory) == 0 {
			expander.lookupFailed = true
			return
		}
		expander.homeDir = homeDirectory
	})
	return expander.homeDir, !expander.lookupFailed
}
