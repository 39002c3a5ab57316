// Package dependencies resolves coverage command collaborators, substituting
// shell-backed defaults for any the caller leaves unset.
package dependencies

import (
	"go.uber.org/zap"

	"github.com/profcov/profcov/internal/coverage/discovery"
	"github.com/profcov/profcov/internal/coverage/shared"
	"github.com/profcov/profcov/internal/execshell"
	"github.com/profcov/profcov/internal/filesystem"
	"github.com/profcov/profcov/internal/toolchain"
)

// ResolveToolExecutor returns the provided executor or constructs a shell-backed default.
func ResolveToolExecutor(existing shared.ToolCommandExecutor, logger *zap.Logger, humanReadableLogging bool, commandEventsObserver execshell.CommandEventObserver) (shared.ToolCommandExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner, humanReadableLogging)
	if creationError != nil {
		return nil, creationError
	}
	if commandEventsObserver != nil {
		shellExecutor.SetCommandEventObserver(commandEventsObserver)
	}
	return shellExecutor, nil
}

// ResolveToolLocator returns the provided locator or constructs a rustc-backed default.
func ResolveToolLocator(existing shared.ToolLocator, executor shared.ToolCommandExecutor, overrideDirectory string) (shared.ToolLocator, error) {
	if existing != nil {
		return existing, nil
	}

	pathResolver, resolverError := toolchain.NewRustcToolPathResolver(executor, overrideDirectory)
	if resolverError != nil {
		return nil, resolverError
	}
	return toolchain.NewLocator(pathResolver)
}

// ResolveProfileMerger returns the provided merger or constructs one from the executor.
func ResolveProfileMerger(existing shared.ProfileMerger, executor shared.ToolCommandExecutor) (shared.ProfileMerger, error) {
	if existing != nil {
		return existing, nil
	}
	return toolchain.NewProfileDataClient(executor)
}

// ResolveProfileExporter returns the provided exporter or constructs one from the executor.
func ResolveProfileExporter(existing shared.ProfileExporter, executor shared.ToolCommandExecutor) (shared.ProfileExporter, error) {
	if existing != nil {
		return existing, nil
	}
	return toolchain.NewCoverageExportClient(executor)
}

// ResolveBinaryDiscoverer returns the provided discoverer or a filesystem-backed default.
func ResolveBinaryDiscoverer(existing shared.BinaryDiscoverer) shared.BinaryDiscoverer {
	if existing != nil {
		return existing
	}
	return discovery.NewFilesystemBinaryDiscoverer()
}

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}
