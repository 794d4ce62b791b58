package shared_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/git-fetch-all/internal/repos/shared"
)

type namedRemote string

func (remote namedRemote) Name() string {
	return string(remote)
}

func (remote namedRemote) Fetch(context.Context) ([]shared.RefUpdate, error) {
	return nil, nil
}

func remoteNames(remotes []shared.RemoteHandle) []string {
	names := make([]string, 0, len(remotes))
	for _, remote := range remotes {
		names = append(names, remote.Name())
	}
	return names
}

func TestRemoteFilterApply(testInstance *testing.T) {
	availableRemotes := []shared.RemoteHandle{namedRemote("origin"), namedRemote("backup"), namedRemote("upstream")}

	testCases := []struct {
		name          string
		include       []string
		exclude       []string
		expectedNames []string
	}{
		{
			name:          "no_filters_keep_all",
			expectedNames: []string{"origin", "backup", "upstream"},
		},
		{
			name:          "include_keeps_named",
			include:       []string{"origin"},
			expectedNames: []string{"origin"},
		},
		{
			name:          "exclude_drops_named",
			exclude:       []string{"backup"},
			expectedNames: []string{"origin", "upstream"},
		},
		{
			name:          "exclude_wins_over_include",
			include:       []string{"origin", "backup"},
			exclude:       []string{"backup"},
			expectedNames: []string{"origin"},
		},
		{
			name:          "blank_include_is_ignored",
			include:       []string{"  "},
			expectedNames: []string{"origin", "backup", "upstream"},
		},
		{
			name:          "unknown_include_keeps_nothing",
			include:       []string{"mirror"},
			expectedNames: []string{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			filter := shared.NewRemoteFilter(testCase.include, testCase.exclude)
			require.Equal(testInstance, testCase.expectedNames, remoteNames(filter.Apply(availableRemotes)))
		})
	}
}

func TestNameSetTrimsEntries(testInstance *testing.T) {
	nameSet := shared.NameSet([]string{" vendor ", "", "node_modules"})
	require.Len(testInstance, nameSet, 2)
	require.Contains(testInstance, nameSet, "vendor")
	require.Contains(testInstance, nameSet, "node_modules")
}
