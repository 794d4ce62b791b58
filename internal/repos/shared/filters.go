package shared

import "strings"

// RemoteFilter selects remotes by name. Include is evaluated before Exclude,
// so a name present in both lists is excluded. An empty Include keeps all.
type RemoteFilter struct {
	Include []string
	Exclude []string
}

// NewRemoteFilter normalizes the provided lists, dropping blank names.
func NewRemoteFilter(include []string, exclude []string) RemoteFilter {
	return RemoteFilter{
		Include: NormalizeNames(include),
		Exclude: NormalizeNames(exclude),
	}
}

// Apply returns the surviving remotes in their original order.
func (filter RemoteFilter) Apply(remotes []RemoteHandle) []RemoteHandle {
	includedNames := NameSet(filter.Include)
	excludedNames := NameSet(filter.Exclude)

	surviving := make([]RemoteHandle, 0, len(remotes))
	for _, remote := range remotes {
		remoteName := remote.Name()
		if len(includedNames) > 0 {
			if _, included := includedNames[remoteName]; !included {
				continue
			}
		}
		if _, excluded := excludedNames[remoteName]; excluded {
			continue
		}
		surviving = append(surviving, remote)
	}
	return surviving
}

// NormalizeNames trims names and discards empty entries.
func NormalizeNames(rawNames []string) []string {
	normalized := make([]string, 0, len(rawNames))
	for _, rawName := range rawNames {
		trimmedName := strings.TrimSpace(rawName)
		if len(trimmedName) == 0 {
			continue
		}
		normalized = append(normalized, trimmedName)
	}
	return normalized
}

// NameSet converts names into a lookup set.
func NameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range NormalizeNames(names) {
		set[name] = struct{}{}
	}
	return set
}
