package coverage

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/profcov/profcov/internal/coverage/dependencies"
	"github.com/profcov/profcov/internal/execshell"
	"github.com/profcov/profcov/internal/utils"
	pathutils "github.com/profcov/profcov/internal/utils/path"
)

var commandPathSanitizer = pathutils.NewPathSanitizer()

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the export cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider                LoggerProvider
	Executor                      ToolCommandExecutor
	Locator                       ToolLocator
	Merger                        ProfileMerger
	Exporter                      ProfileExporter
	Discoverer                    BinaryDiscoverer
	FileSystem                    FileSystem
	CommandEventsObserverProvider func() execshell.CommandEventObserver
	HumanReadableLoggingProvider  func() bool
	ConfigurationProvider         func() CommandConfiguration
}

type commandOptions struct {
	fragmentPaths    []string
	binaryTarget     string
	workingDirectory string
	outputPath       string
	llvmBinDirectory string
}

// Build constructs the export command.
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

	command.Flags().StringArray(profrawFlagNameConstant, nil, profrawFlagDescriptionConstant)
	command.Flags().String(binaryFlagNameConstant, "", binaryFlagDescriptionConstant)
	command.Flags().String(workingDirectoryFlagNameConstant, "", workingDirectoryFlagUsageConstant)
	command.Flags().String(outputFlagNameConstant, "", outputFlagUsageConstant)
	command.Flags().String(llvmBinDirectoryFlagNameConstant, "", llvmBinDirectoryFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	options, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()
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
		return executorError
	}

	locator, locatorError := dependencies.ResolveToolLocator(builder.Locator, toolExecutor, options.llvmBinDirectory)
	if locatorError != nil {
		return locatorError
	}

	merger, mergerError := dependencies.ResolveProfileMerger(builder.Merger, toolExecutor)
	if mergerError != nil {
		return mergerError
	}

	exporter, exporterError := dependencies.ResolveProfileExporter(builder.Exporter, toolExecutor)
	if exporterError != nil {
		return exporterError
	}

	discoverer := dependencies.ResolveBinaryDiscoverer(builder.Discoverer)
	fileSystem := dependencies.ResolveFileSystem(builder.FileSystem)

	workingDirectory := options.workingDirectory
	if len(workingDirectory) == 0 {
		temporaryDirectory, temporaryError := fileSystem.MkdirTemp("", temporaryDirectoryPatternConstant)
		if temporaryError != nil {
			return fmt.Errorf(workingDirectoryCreationErrTemplate, temporaryError)
		}
		defer func() {
			_ = fileSystem.RemoveAll(temporaryDirectory)
		}()
		workingDirectory = temporaryDirectory
	} else if directoryError := fileSystem.MkdirAll(workingDirectory, workingDirectoryPermissions); directoryError != nil {
		return fmt.Errorf(workingDirectoryCreationErrTemplate, directoryError)
	}

	service, serviceError := NewService(ServiceDependencies{
		Logger:     logger,
		Locator:    locator,
		Merger:     merger,
		Exporter:   exporter,
		Discoverer: discoverer,
	})
	if serviceError != nil {
		return fmt.Errorf(serviceCreationErrorTemplateConstant, serviceError)
	}

	logger.Debug(
		exportStartedLogMessageConstant,
		zap.Int(logFieldFragmentCountConstant, len(options.fragmentPaths)),
		zap.String(logFieldBinaryTargetConstant, options.binaryTarget),
		zap.String(logFieldWorkingDirectoryConstant, workingDirectory),
	)

	outcome, runError := service.Run(command.Context(), CommandOptions{
		FragmentPaths:    options.fragmentPaths,
		BinaryTarget:     options.binaryTarget,
		WorkingDirectory: workingDirectory,
	})
	if runError != nil {
		return runError
	}

	if writeError := builder.writeReports(command, fileSystem, options.outputPath, outcome); writeError != nil {
		return writeError
	}

	logger.Info(
		exportCompletedLogMessageConstant,
		zap.String(logFieldMergedProfileConstant, outcome.MergedProfilePath),
		zap.Int(logFieldReportCountConstant, len(outcome.Reports)),
		zap.Int(logFieldFailureCountConstant, len(outcome.Failures)),
	)

	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (commandOptions, error) {
	configuration := builder.resolveConfiguration()

	fragmentValues, _ := command.Flags().GetStringArray(profrawFlagNameConstant)
	fragmentPaths := commandPathSanitizer.Sanitize(fragmentValues)

	binaryTarget, _ := command.Flags().GetString(binaryFlagNameConstant)
	binaryTarget = commandPathSanitizer.SanitizePath(binaryTarget)
	if len(binaryTarget) == 0 {
		_ = command.Help()
		return commandOptions{}, errors.New(missingBinaryTargetMessageConstant)
	}

	workingDirectory := configuration.WorkingDirectory
	if command.Flags().Changed(workingDirectoryFlagNameConstant) {
		flagValue, _ := command.Flags().GetString(workingDirectoryFlagNameConstant)
		workingDirectory = commandPathSanitizer.SanitizePath(flagValue)
	}

	outputPath := configuration.Output
	if command.Flags().Changed(outputFlagNameConstant) {
		flagValue, _ := command.Flags().GetString(outputFlagNameConstant)
		outputPath = commandPathSanitizer.SanitizePath(flagValue)
	}
	if len(outputPath) == 0 {
		outputPath = stdoutOutputTokenConstant
	}

	llvmBinDirectory := configuration.LLVMBinDirectory
	if command.Flags().Changed(llvmBinDirectoryFlagNameConstant) {
		flagValue, _ := command.Flags().GetString(llvmBinDirectoryFlagNameConstant)
		llvmBinDirectory = commandPathSanitizer.SanitizePath(flagValue)
	}

	return commandOptions{
		fragmentPaths:    fragmentPaths,
		binaryTarget:     binaryTarget,
		workingDirectory: workingDirectory,
		outputPath:       outputPath,
		llvmBinDirectory: llvmBinDirectory,
	}, nil
}

func (builder *CommandBuilder) writeReports(command *cobra.Command, fileSystem FileSystem, outputPath string, outcome ExportOutcome) error {
	combinedReport := outcome.CombinedLcov()

	if outputPath == stdoutOutputTokenConstant {
		_, writeError := utils.NewFlushingWriter(command.OutOrStdout()).Write(combinedReport)
		if writeError != nil {
			return fmt.Errorf(outputWriteErrorTemplateConstant, writeError)
		}
		return nil
	}

	outputDirectory := filepath.Dir(outputPath)
	if directoryError := fileSystem.MkdirAll(outputDirectory, workingDirectoryPermissions); directoryError != nil {
		return fmt.Errorf(outputDirectoryCreationErrTemplate, directoryError)
	}

	if writeError := fileSystem.WriteFile(outputPath, combinedReport, outputFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(outputWriteErrorTemplateConstant, writeError)
	}

	return nil
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

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}
