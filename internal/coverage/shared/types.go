package shared

import (
	"context"
	"io/fs"
	"time"

	"github.com/profcov/profcov/internal/execshell"
	"github.com/profcov/profcov/internal/toolchain"
)

// Clock abstracts time acquisition for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time source.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ToolCommandExecutor exposes the subset of shell execution used by coverage services.
type ToolCommandExecutor interface {
	ExecuteRustc(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteProfileMerger(executionContext context.Context, toolPath string, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteProfileExporter(executionContext context.Context, toolPath string, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ToolLocator resolves on-disk paths for the coverage toolchain.
type ToolLocator interface {
	LocateProfileMerger(executionContext context.Context) (string, error)
	LocateProfileExporter(executionContext context.Context) (string, error)
}

// ProfileMerger merges raw profile fragments into an indexed profile.
type ProfileMerger interface {
	MergeProfiles(executionContext context.Context, toolPath string, request toolchain.MergeRequest) error
}

// ProfileExporter renders lcov reports from an indexed profile.
type ProfileExporter interface {
	ExportLcov(executionContext context.Context, toolPath string, request toolchain.ExportRequest) ([]byte, error)
}

// BinaryDiscoverer locates instrumented binaries beneath a target path.
type BinaryDiscoverer interface {
	DiscoverBinaries(targetPath string) ([]string, error)
}

// FileSystem exposes filesystem operations required by coverage services.
type FileSystem interface {
	MkdirAll(path string, permissions fs.FileMode) error
	MkdirTemp(parentDirectory string, namePattern string) (string, error)
	RemoveAll(path string) error
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
}
