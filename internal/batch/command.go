package batch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/profcov/profcov/internal/coverage"
	"github.com/profcov/profcov/internal/coverage/dependencies"
	"github.com/profcov/profcov/internal/coverage/shared"
	"github.com/profcov/profcov/internal/execshell"
	"github.com/profcov/profcov/internal/filesystem"
	"github.com/profcov/profcov/internal/utils"
)

// LoggerProvider supplies the logger used during command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the batch command.
type CommandBuilder struct {
	LoggerProvider                LoggerProvider
	Pipeline                      ExportPipeline
	Executor                      coverage.ToolCommandExecutor
	FileSystem                    FileSystem
	Clock                         Clock
	CommandEventsObserverProvider func() execshell.CommandEventObserver
	HumanReadableLoggingProvider  func() bool
	ConfigurationProvider         func() CommandConfiguration
}

type commandOptions struct {
	manifestPath     string
	llvmBinDirectory string
}

// Build constructs the batch command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.run,
	}
	command.Flags().String(manifestFlagNameConstant, "", manifestFlagUsageConstant)
	command.Flags().String(llvmBinDirectoryFlagNameConstant, "", llvmBinDirectoryFlagUsageConstant)
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	options, parseError := builder.parseOptions(command)
	if parseError != nil {
		return parseError
	}

	logger := builder.resolveLogger()

	contextAccessor := utils.NewCommandContextAccessor()
	if configurationPath, configurationAvailable := contextAccessor.ConfigurationFilePath(command.Context()); configurationAvailable {
		logger.Debug(configurationSourceLogMessage, zap.String(configurationFileLogFieldConstant, configurationPath))
	}

	manifest, loadError := LoadManifest(options.manifestPath)
	if loadError != nil {
		return loadError
	}

	pipeline, pipelineError := builder.resolvePipeline(logger, options.llvmBinDirectory)
	if pipelineError != nil {
		return pipelineError
	}

	batchService, serviceError := NewService(ServiceDependencies{
		Logger:     logger,
		Pipeline:   pipeline,
		FileSystem: builder.resolveFileSystem(),
		Clock:      builder.resolveClock(),
	})
	if serviceError != nil {
		return fmt.Errorf(batchServiceCreationErrorTemplate, serviceError)
	}

	logger.Debug(batchStartedLogMessageConstant,
		zap.String(manifestLogFieldConstant, options.manifestPath),
		zap.Int(jobsLogFieldConstant, len(manifest.Jobs)),
	)

	jobResults, runError := batchService.Run(command.Context(), manifest)
	if runError != nil {
		return runError
	}

	logger.Info(batchCompletedLogMessageConstant, zap.Int(jobsLogFieldConstant, len(jobResults)))
	return nil
}

func (builder *CommandBuilder) resolvePipeline(logger *zap.Logger, llvmBinDirectory string) (ExportPipeline, error) {
	if builder.Pipeline != nil {
		return builder.Pipeline, nil
	}

	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}
	var commandEventsObserver execshell.CommandEventObserver
	if builder.CommandEventsObserverProvider != nil {
		commandEventsObserver = builder.CommandEventsObserverProvider()
	}

	toolExecutor, executorError := dependencies.ResolveToolExecutor(builder.Executor, logger, humanReadableLogging, commandEventsObserver)
	if executorError != nil {
		return nil, executorError
	}
	toolLocator, locatorError := dependencies.ResolveToolLocator(nil, toolExecutor, llvmBinDirectory)
	if locatorError != nil {
		return nil, locatorError
	}
	profileMerger, mergerError := dependencies.ResolveProfileMerger(nil, toolExecutor)
	if mergerError != nil {
		return nil, mergerError
	}
	profileExporter, exporterError := dependencies.ResolveProfileExporter(nil, toolExecutor)
	if exporterError != nil {
		return nil, exporterError
	}

	coverageService, serviceError := coverage.NewService(coverage.ServiceDependencies{
		Logger:     logger,
		Locator:    toolLocator,
		Merger:     profileMerger,
		Exporter:   profileExporter,
		Discoverer: dependencies.ResolveBinaryDiscoverer(nil),
	})
	if serviceError != nil {
		return nil, fmt.Errorf(serviceCreationErrorTemplateConstant, serviceError)
	}
	return coverageService, nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (commandOptions, error) {
	configuration := builder.resolveConfiguration()

	manifestPath := configuration.Manifest
	if command.Flags().Changed(manifestFlagNameConstant) {
		flagValue, _ := command.Flags().GetString(manifestFlagNameConstant)
		manifestPath = flagValue
	}
	manifestPath = strings.TrimSpace(manifestPath)
	if len(manifestPath) == 0 {
		_ = command.Help()
		return commandOptions{}, errors.New(missingManifestMessageConstant)
	}

	llvmBinDirectory := configuration.LLVMBinDirectory
	if command.Flags().Changed(llvmBinDirectoryFlagNameConstant) {
		flagValue, _ := command.Flags().GetString(llvmBinDirectoryFlagNameConstant)
		llvmBinDirectory = flagValue
	}
	llvmBinDirectory = strings.TrimSpace(llvmBinDirectory)

	return commandOptions{manifestPath: manifestPath, llvmBinDirectory: llvmBinDirectory}, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveFileSystem() FileSystem {
	if builder.FileSystem != nil {
		return builder.FileSystem
	}
	return filesystem.OSFileSystem{}
}

func (builder *CommandBuilder) resolveClock() Clock {
	if builder.Clock != nil {
		return builder.Clock
	}
	return shared.SystemClock{}
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}
