package repos

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/git-fetch-all/internal/gitrepo"
	"github.com/temirov/git-fetch-all/internal/repos/dependencies"
	"github.com/temirov/git-fetch-all/internal/repos/fetch"
	"github.com/temirov/git-fetch-all/internal/repos/shared"
	"github.com/temirov/git-fetch-all/internal/report"
	"github.com/temirov/git-fetch-all/internal/utils"
	flagutils "github.com/temirov/git-fetch-all/internal/utils/flags"
)

const (
	fetchUseConstant              = "git-fetch-all [base_dir]"
	fetchShortDescription         = "Fetch every remote of every git repository below a directory"
	fetchLongDescription          = "git-fetch-all discovers git repositories nested within base_dir (default: the current directory) and concurrently fetches all of their remotes, then prints one status line per repository and remote."
	recurseFlagName               = "recurse"
	recurseFlagShorthand          = "r"
	recurseFlagUsage              = "Number of directory levels to descend while looking for repositories."
	includeRemoteFlagName         = "include-remote"
	includeRemoteFlagUsage        = "Fetch only this remote (repeatable); all remotes when omitted."
	excludeRemoteFlagName         = "exclude-remote"
	excludeRemoteFlagUsage        = "Never fetch this remote (repeatable); applied after --include-remote."
	excludeDirnameFlagName        = "exclude-dirname"
	excludeDirnameFlagUsage       = "Skip this directory name directly below base_dir (repeatable)."
	concurrencyFlagName           = "concurrency"
	concurrencyFlagUsage          = "Maximum number of simultaneous fetches; 0 removes the limit."
	backendFlagName               = "backend"
	backendFlagUsage              = "Implementation used to open repositories and fetch."
	quietFlagName                 = "quiet"
	quietFlagShorthand            = "q"
	quietFlagUsage                = "Only report remotes that failed to fetch."
	colorFlagName                 = "color"
	colorFlagUsage                = "Highlight failed remotes in red."
	outputFlagName                = "output"
	outputFlagUsage               = "Report format."
	fetchFailuresMessageConstant  = "one or more remotes failed to fetch"
	fetchCompletedMessageConstant = "fetch completed"
	logFieldBaseDirectoryConstant = "base_dir"
	logFieldBackendConstant       = "backend"
	logFieldUpdatedConstant       = "updated"
	logFieldUpToDateConstant      = "up_to_date"
	logFieldFailedConstant        = "failed"
)

// ErrRemoteFetchFailed reports that at least one remote, or a repository that
// could not be opened, ended in the failed state.
var ErrRemoteFetchFailed = errors.New(fetchFailuresMessageConstant)

// FetchCommandBuilder assembles the fetch command.
type FetchCommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	GitExecutor                  gitrepo.GitExecutor
	Backend                      shared.RepositoryBackend
	FileSystem                   shared.FileSystem
}

type fetchFlagValues struct {
	recurse                int
	includeRemotes         []string
	excludeRemotes         []string
	excludedDirectoryNames []string
	concurrency            int
	backend                string
	quiet                  bool
	color                  string
	output                 string
}

// Build constructs the fetch command.
func (builder *FetchCommandBuilder) Build() (*cobra.Command, error) {
	defaults := DefaultCommandConfiguration()
	flagValues := &fetchFlagValues{}

	command := &cobra.Command{
		Use:   fetchUseConstant,
		Short: fetchShortDescription,
		Long:  fetchLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments, flagValues)
		},
	}

	flagSet := command.Flags()
	flagSet.IntVarP(&flagValues.recurse, recurseFlagName, recurseFlagShorthand, defaults.Fetch.Recurse, recurseFlagUsage)
	flagSet.StringSliceVar(&flagValues.includeRemotes, includeRemoteFlagName, nil, includeRemoteFlagUsage)
	flagSet.StringSliceVar(&flagValues.excludeRemotes, excludeRemoteFlagName, nil, excludeRemoteFlagUsage)
	flagSet.StringSliceVar(&flagValues.excludedDirectoryNames, excludeDirnameFlagName, nil, excludeDirnameFlagUsage)
	flagSet.IntVar(&flagValues.concurrency, concurrencyFlagName, defaults.Fetch.Concurrency, concurrencyFlagUsage)
	flagSet.BoolVarP(&flagValues.quiet, quietFlagName, quietFlagShorthand, defaults.Report.Quiet, quietFlagUsage)
	flagutils.AddChoiceFlag(flagSet, &flagValues.backend, backendFlagName, defaults.Fetch.Backend, dependencies.SupportedBackends(), backendFlagUsage)
	flagutils.AddChoiceFlag(flagSet, &flagValues.color, colorFlagName, defaults.Report.Color, report.SupportedColorModes(), colorFlagUsage)
	flagutils.AddChoiceFlag(flagSet, &flagValues.output, outputFlagName, defaults.Report.Output, report.SupportedFormats(), outputFlagUsage)

	return command, nil
}

func (builder *FetchCommandBuilder) run(command *cobra.Command, arguments []string, flagValues *fetchFlagValues) error {
	configuration := builder.applyFlags(command, builder.resolveConfiguration(), flagValues)

	reportFormat, formatError := report.ParseFormat(configuration.Report.Output)
	if formatError != nil {
		return formatError
	}
	colorMode, colorError := report.ParseColorMode(configuration.Report.Color)
	if colorError != nil {
		return colorError
	}

	logger := resolveLogger(builder.LoggerProvider)
	fileSystem := dependencies.ResolveFileSystem(builder.FileSystem)

	baseDirectory, absError := fileSystem.Abs(determineBaseDirectory(arguments, configuration.Fetch.BaseDirectory))
	if absError != nil {
		return absError
	}

	backend, backendError := builder.resolveBackend(configuration.Fetch.Backend, logger)
	if backendError != nil {
		return backendError
	}
	locator, locatorError := dependencies.ResolveLocator(nil, backend, fileSystem, logger)
	if locatorError != nil {
		return locatorError
	}
	orchestrator, orchestratorError := fetch.NewOrchestrator(fetch.Dependencies{Locator: locator, FileSystem: fileSystem, Logger: logger})
	if orchestratorError != nil {
		return orchestratorError
	}

	results, walkError := orchestrator.Walk(command.Context(), fetch.Options{
		Root:                   baseDirectory,
		RecursionBudget:        configuration.Fetch.Recurse,
		IncludeRemotes:         configuration.Fetch.IncludeRemotes,
		ExcludeRemotes:         configuration.Fetch.ExcludeRemotes,
		ExcludedDirectoryNames: configuration.Fetch.ExcludedDirectoryNames,
		Concurrency:            configuration.Fetch.Concurrency,
	})
	if walkError != nil {
		return walkError
	}

	output := command.OutOrStdout()
	reportOptions := report.Options{
		BaseDirectory: baseDirectory,
		Quiet:         configuration.Report.Quiet,
		Color:         report.ResolveColor(colorMode, outputDescriptor(output)),
		Format:        reportFormat,
	}
	if writeError := report.Write(utils.NewFlushingWriter(output), results, reportOptions); writeError != nil {
		return writeError
	}

	logger.Info(
		fetchCompletedMessageConstant,
		zap.String(logFieldBaseDirectoryConstant, baseDirectory),
		zap.String(logFieldBackendConstant, configuration.Fetch.Backend),
		zap.Int(logFieldUpdatedConstant, results.Count(shared.OutcomeUpdated)),
		zap.Int(logFieldUpToDateConstant, results.Count(shared.OutcomeUpToDate)),
		zap.Int(logFieldFailedConstant, results.Count(shared.OutcomeFailed)),
	)

	if results.HasFailures() {
		return ErrRemoteFetchFailed
	}
	return nil
}

func (builder *FetchCommandBuilder) resolveBackend(backendName string, logger *zap.Logger) (shared.RepositoryBackend, error) {
	if builder.Backend != nil {
		return builder.Backend, nil
	}

	var gitExecutor gitrepo.GitExecutor
	if dependencies.BackendName(backendName) != dependencies.BackendNative {
		humanReadableLogging := false
		if builder.HumanReadableLoggingProvider != nil {
			humanReadableLogging = builder.HumanReadableLoggingProvider()
		}
		resolvedExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, humanReadableLogging)
		if executorError != nil {
			return nil, executorError
		}
		gitExecutor = resolvedExecutor
	}
	return dependencies.ResolveBackend(nil, backendName, gitExecutor)
}

func (builder *FetchCommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration().sanitize()
	}
	return builder.ConfigurationProvider().sanitize()
}

// applyFlags overrides configuration values with flags given on the command line.
func (builder *FetchCommandBuilder) applyFlags(command *cobra.Command, configuration CommandConfiguration, flagValues *fetchFlagValues) CommandConfiguration {
	if flagChanged(command, recurseFlagName) {
		configuration.Fetch.Recurse = flagValues.recurse
	}
	if flagChanged(command, includeRemoteFlagName) {
		configuration.Fetch.IncludeRemotes = shared.NormalizeNames(flagValues.includeRemotes)
	}
	if flagChanged(command, excludeRemoteFlagName) {
		configuration.Fetch.ExcludeRemotes = shared.NormalizeNames(flagValues.excludeRemotes)
	}
	if flagChanged(command, excludeDirnameFlagName) {
		configuration.Fetch.ExcludedDirectoryNames = shared.NormalizeNames(flagValues.excludedDirectoryNames)
	}
	if flagChanged(command, concurrencyFlagName) {
		configuration.Fetch.Concurrency = flagValues.concurrency
	}
	if flagChanged(command, backendFlagName) {
		configuration.Fetch.Backend = flagValues.backend
	}
	if flagChanged(command, quietFlagName) {
		configuration.Report.Quiet = flagValues.quiet
	}
	if flagChanged(command, colorFlagName) {
		configuration.Report.Color = flagValues.color
	}
	if flagChanged(command, outputFlagName) {
		configuration.Report.Output = flagValues.output
	}
	return configuration
}
