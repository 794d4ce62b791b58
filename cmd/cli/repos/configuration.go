package repos

import (
	"strings"

	"github.com/temirov/git-fetch-all/internal/repos/dependencies"
	"github.com/temirov/git-fetch-all/internal/repos/fetch"
	"github.com/temirov/git-fetch-all/internal/repos/shared"
	"github.com/temirov/git-fetch-all/internal/report"
)

const (
	fetchConfigurationKeyConstant          = "fetch"
	reportConfigurationKeyConstant         = "report"
	configurationBaseDirectoryKeyConstant  = "base_dir"
	configurationRecurseKeyConstant        = "recurse"
	configurationIncludeRemotesKeyConstant = "include_remotes"
	configurationExcludeRemotesKeyConstant = "exclude_remotes"
	configurationExcludeDirsKeyConstant    = "exclude_dirnames"
	configurationConcurrencyKeyConstant    = "concurrency"
	configurationBackendKeyConstant        = "backend"
	configurationQuietKeyConstant          = "quiet"
	configurationColorKeyConstant          = "color"
	configurationOutputKeyConstant         = "output"
	defaultBaseDirectoryConstant           = "."
	defaultConcurrencyConstant             = 16
)

// CommandConfiguration groups the persisted settings of the fetch command.
type CommandConfiguration struct {
	Fetch  FetchConfiguration  `mapstructure:"fetch"`
	Report ReportConfiguration `mapstructure:"report"`
}

// FetchConfiguration controls discovery and fetching.
type FetchConfiguration struct {
	BaseDirectory          string   `mapstructure:"base_dir"`
	Recurse                int      `mapstructure:"recurse"`
	IncludeRemotes         []string `mapstructure:"include_remotes"`
	ExcludeRemotes         []string `mapstructure:"exclude_remotes"`
	ExcludedDirectoryNames []string `mapstructure:"exclude_dirnames"`
	Concurrency            int      `mapstructure:"concurrency"`
	Backend                string   `mapstructure:"backend"`
}

// ReportConfiguration controls report rendering.
type ReportConfiguration struct {
	Quiet  bool   `mapstructure:"quiet"`
	Color  string `mapstructure:"color"`
	Output string `mapstructure:"output"`
}

// DefaultCommandConfiguration returns the baseline fetch command configuration.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Fetch: FetchConfiguration{
			BaseDirectory:          defaultBaseDirectoryConstant,
			Recurse:                fetch.DefaultRecursionBudgetConstant,
			IncludeRemotes:         []string{},
			ExcludeRemotes:         []string{},
			ExcludedDirectoryNames: []string{},
			Concurrency:            defaultConcurrencyConstant,
			Backend:                string(dependencies.BackendCLI),
		},
		Report: ReportConfiguration{
			Quiet:  false,
			Color:  string(report.ColorAuto),
			Output: string(report.FormatText),
		},
	}
}

// DefaultConfigurationValues produces Viper defaults keyed by section.
func DefaultConfigurationValues() map[string]any {
	defaults := DefaultCommandConfiguration()
	fetchKey := func(key string) string { return fetchConfigurationKeyConstant + "." + key }
	reportKey := func(key string) string { return reportConfigurationKeyConstant + "." + key }
	return map[string]any{
		fetchKey(configurationBaseDirectoryKeyConstant):  defaults.Fetch.BaseDirectory,
		fetchKey(configurationRecurseKeyConstant):        defaults.Fetch.Recurse,
		fetchKey(configurationIncludeRemotesKeyConstant): defaults.Fetch.IncludeRemotes,
		fetchKey(configurationExcludeRemotesKeyConstant): defaults.Fetch.ExcludeRemotes,
		fetchKey(configurationExcludeDirsKeyConstant):    defaults.Fetch.ExcludedDirectoryNames,
		fetchKey(configurationConcurrencyKeyConstant):    defaults.Fetch.Concurrency,
		fetchKey(configurationBackendKeyConstant):        defaults.Fetch.Backend,
		reportKey(configurationQuietKeyConstant):         defaults.Report.Quiet,
		reportKey(configurationColorKeyConstant):         defaults.Report.Color,
		reportKey(configurationOutputKeyConstant):        defaults.Report.Output,
	}
}

// sanitize normalizes configuration values read from files and the environment.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Fetch.BaseDirectory = repositoryHomeDirectoryExpander.ResolveDirectory(configuration.Fetch.BaseDirectory)
	sanitized.Fetch.IncludeRemotes = shared.NormalizeNames(configuration.Fetch.IncludeRemotes)
	sanitized.Fetch.ExcludeRemotes = shared.NormalizeNames(configuration.Fetch.ExcludeRemotes)
	sanitized.Fetch.ExcludedDirectoryNames = shared.NormalizeNames(configuration.Fetch.ExcludedDirectoryNames)
	sanitized.Fetch.Backend = strings.ToLower(strings.TrimSpace(configuration.Fetch.Backend))
	sanitized.Report.Color = strings.ToLower(strings.TrimSpace(configuration.Report.Color))
	sanitized.Report.Output = strings.ToLower(strings.TrimSpace(configuration.Report.Output))
	return sanitized
}
