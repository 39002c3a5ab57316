package coverage

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/profcov/profcov/internal/toolchain"
)

// Construction and input sentinels for the coverage service.
var (
	// ErrToolLocatorNotConfigured indicates the service was constructed without a tool locator.
	ErrToolLocatorNotConfigured = errors.New("tool locator not configured")
	// ErrProfileMergerNotConfigured indicates the service was constructed without a profile merger.
	ErrProfileMergerNotConfigured = errors.New("profile merger not configured")
	// ErrProfileExporterNotConfigured indicates the service was constructed without a profile exporter.
	ErrProfileExporterNotConfigured = errors.New("profile exporter not configured")
	// ErrBinaryDiscovererNotConfigured indicates the service was constructed without a binary discoverer.
	ErrBinaryDiscovererNotConfigured = errors.New("binary discoverer not configured")
	// ErrWorkingDirectoryRequired indicates an export run was requested without a working directory.
	ErrWorkingDirectoryRequired = errors.New("working directory is required")
	// ErrBinaryTargetRequired indicates an export run was requested without a binary target.
	ErrBinaryTargetRequired = errors.New("binary target is required")
)

// ServiceDependencies bundles the collaborators required by the coverage service.
type ServiceDependencies struct {
	Logger     *zap.Logger
	Locator    ToolLocator
	Merger     ProfileMerger
	Exporter   ProfileExporter
	Discoverer BinaryDiscoverer
}

// Service coordinates profile merging, binary discovery, and lcov export.
type Service struct {
	logger     *zap.Logger
	locator    ToolLocator
	merger     ProfileMerger
	exporter   ProfileExporter
	discoverer BinaryDiscoverer
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Locator == nil {
		return nil, ErrToolLocatorNotConfigured
	}
	if dependencies.Merger == nil {
		return nil, ErrProfileMergerNotConfigured
	}
	if dependencies.Exporter == nil {
		return nil, ErrProfileExporterNotConfigured
	}
	if dependencies.Discoverer == nil {
		return nil, ErrBinaryDiscovererNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		logger:     logger,
		locator:    dependencies.Locator,
		merger:     dependencies.Merger,
		exporter:   dependencies.Exporter,
		discoverer: dependencies.Discoverer,
	}, nil
}

// Run merges the requested fragments and exports one lcov report per discovered binary.
//
// The merged profile is written exactly once, before any export. A failed
// export is logged, recorded in the outcome, and does not stop the remaining
// binaries; every other error aborts the run.
func (service *Service) Run(executionContext context.Context, options CommandOptions) (ExportOutcome, error) {
	workingDirectory := strings.TrimSpace(options.WorkingDirectory)
	if len(workingDirectory) == 0 {
		return ExportOutcome{}, ErrWorkingDirectoryRequired
	}

	binaryTarget := strings.TrimSpace(options.BinaryTarget)
	if len(binaryTarget) == 0 {
		return ExportOutcome{}, ErrBinaryTargetRequired
	}

	mergedProfilePath := filepath.Join(workingDirectory, mergedProfileFileNameConstant)

	mergerPath, mergerError := service.locator.LocateProfileMerger(executionContext)
	if mergerError != nil {
		return ExportOutcome{}, mergerError
	}

	mergeRequest := toolchain.MergeRequest{
		FragmentPaths:        options.FragmentPaths,
		OutputProfilePath:    mergedProfilePath,
		WorkingDirectory:     workingDirectory,
		EnvironmentVariables: options.EnvironmentVariables,
	}
	if mergeError := service.merger.MergeProfiles(executionContext, mergerPath, mergeRequest); mergeError != nil {
		return ExportOutcome{}, mergeError
	}

	binaries, discoveryError := service.discoverer.DiscoverBinaries(binaryTarget)
	if discoveryError != nil {
		return ExportOutcome{}, discoveryError
	}

	exporterPath, exporterError := service.locator.LocateProfileExporter(executionContext)
	if exporterError != nil {
		return ExportOutcome{}, exporterError
	}

	outcome := ExportOutcome{MergedProfilePath: mergedProfilePath}
	for _, binaryPath := range binaries {
		exportRequest := toolchain.ExportRequest{
			BinaryPath:           binaryPath,
			ProfilePath:          mergedProfilePath,
			WorkingDirectory:     workingDirectory,
			EnvironmentVariables: options.EnvironmentVariables,
		}

		reportContent, exportError := service.exporter.ExportLcov(executionContext, exporterPath, exportRequest)
		if exportError != nil {
			if errors.Is(exportError, context.Canceled) || errors.Is(exportError, context.DeadlineExceeded) {
				return outcome, exportError
			}
			service.logger.Warn(
				exportFailedLogMessageConstant,
				zap.String(logFieldBinaryConstant, binaryPath),
				zap.Error(exportError),
			)
			outcome.Failures = append(outcome.Failures, ExportFailure{BinaryPath: binaryPath, Cause: exportError})
			continue
		}

		outcome.Reports = append(outcome.Reports, BinaryReport{BinaryPath: binaryPath, LcovData: reportContent})
	}

	return outcome, nil
}
