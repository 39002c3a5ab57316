package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/profcov/profcov/internal/coverage"
)

// ErrPipelineNotConfigured indicates a missing export pipeline dependency.
var ErrPipelineNotConfigured = errors.New("export pipeline not configured")

// ErrFileSystemNotConfigured indicates a missing file system dependency.
var ErrFileSystemNotConfigured = errors.New("file system not configured")

// ErrClockNotConfigured indicates a missing clock dependency.
var ErrClockNotConfigured = errors.New("clock not configured")

// ExportPipeline runs one merge-and-export pass.
type ExportPipeline interface {
	Run(executionContext context.Context, options coverage.CommandOptions) (coverage.ExportOutcome, error)
}

// FileSystem describes the file operations batch jobs perform.
type FileSystem interface {
	MkdirAll(path string, permissions fs.FileMode) error
	MkdirTemp(parentDirectory string, namePattern string) (string, error)
	RemoveAll(path string) error
	WriteFile(path string, data []byte, permissions fs.FileMode) error
}

// Clock supplies wall-clock time for job timing.
type Clock interface {
	Now() time.Time
}

// JobResult summarizes one completed batch job.
type JobResult struct {
	Name          string
	OutputPath    string
	Reports       int
	FailedExports int
	Duration      time.Duration
}

// ServiceDependencies lists the collaborators required to run batches.
type ServiceDependencies struct {
	Logger     *zap.Logger
	Pipeline   ExportPipeline
	FileSystem FileSystem
	Clock      Clock
}

// Service executes batch manifests job by job.
type Service struct {
	logger     *zap.Logger
	pipeline   ExportPipeline
	fileSystem FileSystem
	clock      Clock
}

// NewService validates dependencies and constructs a batch Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Pipeline == nil {
		return nil, ErrPipelineNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if dependencies.Clock == nil {
		return nil, ErrClockNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		logger:     logger,
		pipeline:   dependencies.Pipeline,
		fileSystem: dependencies.FileSystem,
		clock:      dependencies.Clock,
	}, nil
}

// Run executes every manifest job in order. The first failing job aborts the
// batch; per-binary export failures inside a job stay recorded in that job's
// result and do not stop it.
func (service *Service) Run(executionContext context.Context, manifest Manifest) ([]JobResult, error) {
	if validationError := manifest.Validate(); validationError != nil {
		return nil, validationError
	}

	jobResults := make([]JobResult, 0, len(manifest.Jobs))
	for jobIndex := range manifest.Jobs {
		jobResult, jobError := service.runJob(executionContext, manifest.Jobs[jobIndex])
		if jobError != nil {
			return jobResults, fmt.Errorf(jobFailedErrorTemplateConstant, manifest.Jobs[jobIndex].Name, jobError)
		}
		jobResults = append(jobResults, jobResult)
	}
	return jobResults, nil
}

func (service *Service) runJob(executionContext context.Context, job JobConfiguration) (JobResult, error) {
	startTime := service.clock.Now()

	workingDirectory := job.WorkingDirectory
	if len(workingDirectory) == 0 {
		temporaryDirectory, temporaryError := service.fileSystem.MkdirTemp("", temporaryDirectoryPatternConstant)
		if temporaryError != nil {
			return JobResult{}, fmt.Errorf(workingDirectoryErrorTemplateConstant, temporaryError)
		}
		defer func() {
			_ = service.fileSystem.RemoveAll(temporaryDirectory)
		}()
		workingDirectory = temporaryDirectory
	} else {
		if directoryError := service.fileSystem.MkdirAll(workingDirectory, workingDirectoryPermissionsConstant); directoryError != nil {
			return JobResult{}, fmt.Errorf(workingDirectoryErrorTemplateConstant, directoryError)
		}
	}

	outcome, runError := service.pipeline.Run(executionContext, coverage.CommandOptions{
		FragmentPaths:        job.FragmentPaths,
		BinaryTarget:         job.BinaryTarget,
		WorkingDirectory:     workingDirectory,
		EnvironmentVariables: job.Environment,
	})
	if runError != nil {
		return JobResult{}, runError
	}

	if directoryError := service.fileSystem.MkdirAll(filepath.Dir(job.Output), workingDirectoryPermissionsConstant); directoryError != nil {
		return JobResult{}, fmt.Errorf(outputDirectoryErrorTemplateConstant, directoryError)
	}
	if writeError := service.fileSystem.WriteFile(job.Output, outcome.CombinedLcov(), outputFilePermissionsConstant); writeError != nil {
		return JobResult{}, fmt.Errorf(outputWriteErrorTemplateConstant, writeError)
	}

	jobResult := JobResult{
		Name:          job.Name,
		OutputPath:    job.Output,
		Reports:       len(outcome.Reports),
		FailedExports: len(outcome.Failures),
		Duration:      service.clock.Now().Sub(startTime),
	}
	service.logger.Info(jobCompletedLogMessageConstant,
		zap.String(jobNameLogFieldConstant, jobResult.Name),
		zap.Int(reportsLogFieldConstant, jobResult.Reports),
		zap.Int(failedExportsLogFieldConstant, jobResult.FailedExports),
		zap.Duration(durationLogFieldConstant, jobResult.Duration),
	)
	return jobResult, nil
}
