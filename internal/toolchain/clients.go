package toolchain

import (
	"context"
	"strings"

	"github.com/profcov/profcov/internal/execshell"
)

const (
	mergeSubcommandConstant            = "merge"
	sparseFlagConstant                 = "-sparse"
	outputFlagConstant                 = "-o"
	exportSubcommandConstant           = "export"
	instrProfileFlagConstant           = "--instr-profile"
	formatFlagConstant                 = "--format"
	lcovFormatValueConstant            = "lcov"
	outputProfileFieldNameConstant     = "output_profile_path"
	binaryPathFieldNameConstant        = "binary_path"
	profilePathFieldNameConstant       = "profile_path"
	mergeProfilesOperationNameConstant = OperationName("MergeProfiles")
	exportLcovOperationNameConstant    = OperationName("ExportLcov")
)

// ProfileMergerExecutor is the minimal interface required from execshell.ShellExecutor for merging.
type ProfileMergerExecutor interface {
	ExecuteProfileMerger(executionContext context.Context, toolPath string, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ProfileExporterExecutor is the minimal interface required from execshell.ShellExecutor for exports.
type ProfileExporterExecutor interface {
	ExecuteProfileExporter(executionContext context.Context, toolPath string, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// MergeRequest describes one indexed-profile merge.
type MergeRequest struct {
	FragmentPaths        []string
	OutputProfilePath    string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
}

// ExportRequest describes one per-binary lcov export.
type ExportRequest struct {
	BinaryPath           string
	ProfilePath          string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
}

// ProfileDataClient coordinates llvm-profdata invocations through execshell.
type ProfileDataClient struct {
	executor ProfileMergerExecutor
}

// NewProfileDataClient constructs an llvm-profdata client.
func NewProfileDataClient(executor ProfileMergerExecutor) (*ProfileDataClient, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &ProfileDataClient{executor: executor}, nil
}

// MergeProfiles merges raw profile fragments into one indexed profile.
//
// Fragment paths are handed to llvm-profdata unvalidated; an empty list is the
// tool's problem to reject.
func (client *ProfileDataClient) MergeProfiles(executionContext context.Context, toolPath string, request MergeRequest) error {
	trimmedOutputPath := strings.TrimSpace(request.OutputProfilePath)
	if len(trimmedOutputPath) == 0 {
		return InvalidInputError{FieldName: outputProfileFieldNameConstant, Message: requiredValueMessageConstant}
	}

	arguments := []string{mergeSubcommandConstant, sparseFlagConstant, outputFlagConstant, trimmedOutputPath}
	arguments = append(arguments, request.FragmentPaths...)

	commandDetails := execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     request.WorkingDirectory,
		EnvironmentVariables: request.EnvironmentVariables,
	}

	_, executionError := client.executor.ExecuteProfileMerger(executionContext, toolPath, commandDetails)
	if executionError != nil {
		return OperationError{Operation: mergeProfilesOperationNameConstant, Cause: executionError}
	}
	return nil
}

// CoverageExportClient coordinates llvm-cov invocations through execshell.
type CoverageExportClient struct {
	executor ProfileExporterExecutor
}

// NewCoverageExportClient constructs an llvm-cov client.
func NewCoverageExportClient(executor ProfileExporterExecutor) (*CoverageExportClient, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &CoverageExportClient{executor: executor}, nil
}

// ExportLcov produces an lcov report for one binary against the supplied indexed profile.
func (client *CoverageExportClient) ExportLcov(executionContext context.Context, toolPath string, request ExportRequest) ([]byte, error) {
	trimmedBinaryPath := strings.TrimSpace(request.BinaryPath)
	if len(trimmedBinaryPath) == 0 {
		return nil, InvalidInputError{FieldName: binaryPathFieldNameConstant, Message: requiredValueMessageConstant}
	}

	trimmedProfilePath := strings.TrimSpace(request.ProfilePath)
	if len(trimmedProfilePath) == 0 {
		return nil, InvalidInputError{FieldName: profilePathFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			exportSubcommandConstant,
			trimmedBinaryPath,
			instrProfileFlagConstant,
			trimmedProfilePath,
			formatFlagConstant,
			lcovFormatValueConstant,
		},
		WorkingDirectory:     request.WorkingDirectory,
		EnvironmentVariables: request.EnvironmentVariables,
	}

	executionResult, executionError := client.executor.ExecuteProfileExporter(executionContext, toolPath, commandDetails)
	if executionError != nil {
		return nil, OperationError{Operation: exportLcovOperationNameConstant, Cause: executionError}
	}

	return []byte(executionResult.StandardOutput), nil
}
