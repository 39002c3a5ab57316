package toolchain

import (
	"errors"
	"fmt"
)

const (
	executorNotConfiguredMessageConstant     = "tool executor not configured"
	pathResolverNotConfiguredMessageConstant = "tool path resolver not configured"
	sysrootNotReportedMessageConstant        = "rustc did not report a sysroot path"
	hostTripleNotReportedMessageConstant     = "rustc did not report a host triple"
	requiredValueMessageConstant             = "value required"
	operationErrorTemplateConstant           = "%s operation failed: %s"
	invalidInputErrorTemplateConstant        = "%s: %s"
	toolResolutionErrorTemplateConstant      = "unable to resolve %s: %s"
	unrecoverableResolutionTemplateConstant  = "coverage export requires %s and it could not be resolved: %s"
	missingMergerRemediationMessageConstant  = "We couldn't find llvm-profdata. Try installing the llvm-tools component with `rustup component add llvm-tools-preview`."
)

var (
	// ErrExecutorNotConfigured indicates a client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrToolPathResolverNotConfigured indicates the locator was constructed without a path resolver.
	ErrToolPathResolverNotConfigured = errors.New(pathResolverNotConfiguredMessageConstant)
	// ErrSysrootNotReported indicates rustc produced no sysroot path.
	ErrSysrootNotReported = errors.New(sysrootNotReportedMessageConstant)
	// ErrHostTripleNotReported indicates rustc version details lacked a host triple.
	ErrHostTripleNotReported = errors.New(hostTripleNotReportedMessageConstant)
)

// OperationName describes a named tool workflow supported by the clients.
type OperationName string

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for tool operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ToolResolutionError describes a tool identifier that could not be mapped to an executable.
type ToolResolutionError struct {
	Tool  ToolName
	Cause error
}

// Error names the unresolved tool.
func (resolutionError ToolResolutionError) Error() string {
	return fmt.Sprintf(toolResolutionErrorTemplateConstant, resolutionError.Tool, resolutionError.Cause)
}

// Unwrap exposes the underlying resolution failure.
func (resolutionError ToolResolutionError) Unwrap() error {
	return resolutionError.Cause
}

// MissingProfileMergerError reports an absent llvm-profdata installation with remediation guidance.
type MissingProfileMergerError struct {
	Cause error
}

// Error returns the user-facing remediation message.
func (missingError MissingProfileMergerError) Error() string {
	return missingMergerRemediationMessageConstant
}

// Unwrap exposes the underlying resolution failure.
func (missingError MissingProfileMergerError) Unwrap() error {
	return missingError.Cause
}

// UnrecoverableResolutionError reports a tool resolution failure the invocation cannot continue past.
// Callers propagate it; no recovery path is expected.
type UnrecoverableResolutionError struct {
	Tool  ToolName
	Cause error
}

// Error names the required tool and the resolution failure.
func (unrecoverableError UnrecoverableResolutionError) Error() string {
	return fmt.Sprintf(unrecoverableResolutionTemplateConstant, unrecoverableError.Tool, unrecoverableError.Cause)
}

// Unwrap exposes the underlying resolution failure.
func (unrecoverableError UnrecoverableResolutionError) Unwrap() error {
	return unrecoverableError.Cause
}
