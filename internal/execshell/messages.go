package execshell

import (
	"fmt"
	"path/filepath"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	fallbackUnknownValueLabelConstant       = "unknown"
	windowsExecutableSuffixConstant         = ".exe"
)

const (
	profdataMergeSubcommandNameConstant  = "merge"
	profdataOutputFlagConstant           = "-o"
	coverageExportSubcommandNameConstant = "export"
	coverageFormatFlagConstant           = "--format"
	rustcPrintFlagConstant               = "--print"
	rustcSysrootArgumentConstant         = "sysroot"
	rustcVerboseVersionFlagConstant      = "-vV"
	flagPrefixConstant                   = "-"
)

const (
	profileMergeStartTemplateConstant            = "Merging %d profile fragments into %s"
	profileMergeSuccessTemplateConstant          = "Merged %d profile fragments into %s"
	profileMergeFailureTemplateConstant          = "Failed to merge %d profile fragments into %s (exit code %d%s)"
	profileMergeExecutionFailureTemplateConstant = "Unable to merge profile fragments into %s: %s"
	coverageExportStartTemplateConstant          = "Exporting %s coverage for %s"
	coverageExportSuccessTemplateConstant        = "Exported %s coverage for %s"
	coverageExportFailureTemplateConstant        = "Failed to export %s coverage for %s (exit code %d%s)"
	coverageExportExecutionFailureTemplate       = "Unable to export %s coverage for %s: %s"
	sysrootQueryStartTemplateConstant            = "Locating the Rust sysroot"
	sysrootQuerySuccessTemplateConstant          = "Rust sysroot is %s"
	sysrootQueryEmptySuccessTemplateConstant     = "Rust sysroot query returned no path"
	sysrootQueryFailureTemplateConstant          = "Failed to locate the Rust sysroot (exit code %d%s)"
	sysrootQueryExecutionFailureTemplate         = "Unable to locate the Rust sysroot: %s"
	rustcVersionStartTemplateConstant            = "Reading rustc version details"
	rustcVersionSuccessTemplateConstant          = "Collected rustc version details"
	rustcVersionFailureTemplateConstant          = "Failed to read rustc version details (exit code %d%s)"
	rustcVersionExecutionFailureTemplate         = "Unable to read rustc version details: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
// Success text may derive from the captured output, as with the sysroot query result.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

// ShouldAnnounceStart reports whether a start event deserves a log line.
// Toolchain probes run before almost every command and would drown real work.
func (formatter CommandMessageFormatter) ShouldAnnounceStart(command ShellCommand) bool {
	if formatter.canonicalCommandName(command.Name) != CommandRustc {
		return true
	}
	return !formatter.isRustcProbeCommand(command.Details.Arguments)
}

func (formatter CommandMessageFormatter) isRustcProbeCommand(arguments []string) bool {
	if containsArgument(arguments, rustcVerboseVersionFlagConstant) {
		return true
	}
	return containsArgument(arguments, rustcPrintFlagConstant) && containsArgument(arguments, rustcSysrootArgumentConstant)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch formatter.canonicalCommandName(command.Name) {
	case CommandProfileMerger:
		return formatter.describeProfileMergerMessage(command, result, failure, stage)
	case CommandProfileExporter:
		return formatter.describeProfileExporterMessage(command, result, failure, stage)
	case CommandRustc:
		return formatter.describeRustcMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

// canonicalCommandName reduces a resolved tool path to the bare executable name.
func (formatter CommandMessageFormatter) canonicalCommandName(name CommandName) CommandName {
	baseName := filepath.Base(strings.TrimSpace(string(name)))
	baseName = strings.TrimSuffix(baseName, windowsExecutableSuffixConstant)
	return CommandName(baseName)
}

func (formatter CommandMessageFormatter) describeProfileMergerMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 || strings.TrimSpace(arguments[0]) != profdataMergeSubcommandNameConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	destination := formatter.ensureValue(findFlagValue(arguments, profdataOutputFlagConstant))
	fragmentCount := formatter.countMergeFragments(arguments)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(profileMergeStartTemplateConstant, fragmentCount, destination)
	case messageStageSuccess:
		return fmt.Sprintf(profileMergeSuccessTemplateConstant, fragmentCount, destination)
	case messageStageFailure:
		return fmt.Sprintf(profileMergeFailureTemplateConstant, fragmentCount, destination, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(profileMergeExecutionFailureTemplateConstant, destination, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeProfileExporterMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 || strings.TrimSpace(arguments[0]) != coverageExportSubcommandNameConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	binaryPath := formatter.ensureValue(formatter.argumentAtIndex(arguments, 1))
	reportFormat := formatter.ensureValue(findFlagValue(arguments, coverageFormatFlagConstant))

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(coverageExportStartTemplateConstant, reportFormat, binaryPath)
	case messageStageSuccess:
		return fmt.Sprintf(coverageExportSuccessTemplateConstant, reportFormat, binaryPath)
	case messageStageFailure:
		return fmt.Sprintf(coverageExportFailureTemplateConstant, reportFormat, binaryPath, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(coverageExportExecutionFailureTemplate, reportFormat, binaryPath, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeRustcMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments

	if containsArgument(arguments, rustcPrintFlagConstant) && containsArgument(arguments, rustcSysrootArgumentConstant) {
		switch stage {
		case messageStageStart:
			return sysrootQueryStartTemplateConstant
		case messageStageSuccess:
			trimmed := strings.TrimSpace(result.StandardOutput)
			if len(trimmed) == 0 {
				return sysrootQueryEmptySuccessTemplateConstant
			}
			return fmt.Sprintf(sysrootQuerySuccessTemplateConstant, trimmed)
		case messageStageFailure:
			return fmt.Sprintf(sysrootQueryFailureTemplateConstant, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(sysrootQueryExecutionFailureTemplate, formatter.describeFailure(failure))
		}
	}

	if containsArgument(arguments, rustcVerboseVersionFlagConstant) {
		switch stage {
		case messageStageStart:
			return rustcVersionStartTemplateConstant
		case messageStageSuccess:
			return rustcVersionSuccessTemplateConstant
		case messageStageFailure:
			return fmt.Sprintf(rustcVersionFailureTemplateConstant, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(rustcVersionExecutionFailureTemplate, formatter.describeFailure(failure))
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

// countMergeFragments counts positional inputs after the merge subcommand, skipping flags and the output destination.
func (formatter CommandMessageFormatter) countMergeFragments(arguments []string) int {
	fragmentCount := 0
	for index := 1; index < len(arguments); index++ {
		argument := strings.TrimSpace(arguments[index])
		if len(argument) == 0 {
			continue
		}
		if argument == profdataOutputFlagConstant {
			index++
			continue
		}
		if strings.HasPrefix(argument, flagPrefixConstant) {
			continue
		}
		fragmentCount++
	}
	return fragmentCount
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	workingDirectorySuffix := formatter.formatWorkingDirectorySuffix(command)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index >= 0 && index < len(arguments) {
		return arguments[index]
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func findFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == flag && index+1 < len(arguments) {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return emptyStringConstant
}
