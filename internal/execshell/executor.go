package execshell

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant        = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant = "shell executor command runner not configured"
	commandStartedLogMessageConstant          = "executing command"
	commandCompletedLogMessageConstant        = "command completed"
	commandFailedLogMessageConstant           = "command failed"
	commandExecutionFailedLogMessageConstant  = "command execution failed"
	commandLogFieldNameConstant               = "command"
	argumentsLogFieldNameConstant             = "arguments"
	workingDirectoryLogFieldNameConstant      = "working_directory"
	exitCodeLogFieldNameConstant              = "exit_code"
	standardErrorLogFieldNameConstant         = "standard_error"
)

// CommandName identifies the executable a shell command invokes.
type CommandName string

// Executables coordinated by the executor.
const (
	// CommandRustc identifies the host Rust compiler used for toolchain discovery.
	CommandRustc CommandName = "rustc"
	// CommandProfileMerger identifies the llvm-profdata executable when no resolved path overrides it.
	CommandProfileMerger CommandName = "llvm-profdata"
	// CommandProfileExporter identifies the llvm-cov executable when no resolved path overrides it.
	CommandProfileExporter CommandName = "llvm-cov"
)

// CommandDetails captures the arguments and environment for a shell command.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
}

// ShellCommand couples an executable with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures captured process outputs and the exit code.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner abstracts process execution so tests can intercept commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

var (
	// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates the executor was constructed without a command runner.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
)

// CommandFailedError describes a command that finished with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error names the failing command and includes the captured standard error output.
func (failureError CommandFailedError) Error() string {
	return CommandMessageFormatter{}.BuildFailureMessage(failureError.Command, failureError.Result)
}

// CommandExecutionError describes a command that could not be launched.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error names the attempted command and the launch failure.
func (executionError CommandExecutionError) Error() string {
	return CommandMessageFormatter{}.BuildExecutionFailureMessage(executionError.Command, executionError.Cause)
}

// Unwrap exposes the underlying launch failure.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// ShellExecutor runs external tools with structured logging and lifecycle events.
type ShellExecutor struct {
	logger               *zap.Logger
	commandRunner        CommandRunner
	eventObserver        CommandEventObserver
	messageFormatter     CommandMessageFormatter
	humanReadableLogging bool
}

// NewShellExecutor constructs a ShellExecutor after validating its collaborators.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner, humanReadableLogging bool) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	return &ShellExecutor{
		logger:               logger,
		commandRunner:        commandRunner,
		eventObserver:        noopCommandEventObserver{},
		messageFormatter:     CommandMessageFormatter{},
		humanReadableLogging: humanReadableLogging,
	}, nil
}

// SetCommandEventObserver installs an observer for command lifecycle notifications.
func (executor *ShellExecutor) SetCommandEventObserver(observer CommandEventObserver) {
	if observer == nil {
		executor.eventObserver = noopCommandEventObserver{}
		return
	}
	executor.eventObserver = observer
}

// ExecuteRustc runs the host rustc executable with the supplied details.
func (executor *ShellExecutor) ExecuteRustc(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandRustc, Details: details})
}

// ExecuteProfileMerger runs the llvm-profdata executable resolved to toolPath.
func (executor *ShellExecutor) ExecuteProfileMerger(executionContext context.Context, toolPath string, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: resolveCommandName(toolPath, CommandProfileMerger), Details: details})
}

// ExecuteProfileExporter runs the llvm-cov executable resolved to toolPath.
func (executor *ShellExecutor) ExecuteProfileExporter(executionContext context.Context, toolPath string, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: resolveCommandName(toolPath, CommandProfileExporter), Details: details})
}

// Execute runs the supplied command and translates failures into typed errors.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.eventObserver.CommandStarted(command)
	executor.logCommandStarted(command)

	executionResult, runError := executor.commandRunner.Run(executionContext, command)
	if runError != nil {
		executor.eventObserver.CommandExecutionFailed(command, runError)
		executor.logCommandExecutionFailure(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.eventObserver.CommandCompleted(command, executionResult)
	if executionResult.ExitCode != 0 {
		executor.logCommandFailure(command, executionResult)
		return executionResult, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logCommandSuccess(command)
	return executionResult, nil
}

func resolveCommandName(toolPath string, fallbackName CommandName) CommandName {
	trimmedToolPath := strings.TrimSpace(toolPath)
	if len(trimmedToolPath) == 0 {
		return fallbackName
	}
	return CommandName(trimmedToolPath)
}

func (executor *ShellExecutor) logCommandStarted(command ShellCommand) {
	if !executor.messageFormatter.ShouldAnnounceStart(command) {
		return
	}
	executor.routineEventLogger()(commandStartedLogMessageConstant, executor.commandLogFields(command)...)
}

func (executor *ShellExecutor) logCommandSuccess(command ShellCommand) {
	executor.routineEventLogger()(commandCompletedLogMessageConstant, executor.commandLogFields(command)...)
}

func (executor *ShellExecutor) logCommandFailure(command ShellCommand, result ExecutionResult) {
	logFields := append(executor.commandLogFields(command),
		zap.Int(exitCodeLogFieldNameConstant, result.ExitCode),
		zap.String(standardErrorLogFieldNameConstant, result.StandardError),
	)
	executor.logger.Warn(commandFailedLogMessageConstant, logFields...)
}

func (executor *ShellExecutor) logCommandExecutionFailure(command ShellCommand, failure error) {
	logFields := append(executor.commandLogFields(command), zap.Error(failure))
	executor.logger.Error(commandExecutionFailedLogMessageConstant, logFields...)
}

// routineEventLogger picks the level for start and completion diagnostics.
// With human-readable logging the observer carries those events, so the
// structured copies drop to debug.
func (executor *ShellExecutor) routineEventLogger() func(message string, fields ...zap.Field) {
	if executor.humanReadableLogging {
		return executor.logger.Debug
	}
	return executor.logger.Info
}

func (executor *ShellExecutor) commandLogFields(command ShellCommand) []zap.Field {
	return []zap.Field{
		zap.String(commandLogFieldNameConstant, string(command.Name)),
		zap.Strings(argumentsLogFieldNameConstant, command.Details.Arguments),
		zap.String(workingDirectoryLogFieldNameConstant, command.Details.WorkingDirectory),
	}
}
