package toolchain

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/profcov/profcov/internal/execshell"
)

const (
	rustcPrintFlagConstant          = "--print"
	rustcSysrootArgumentConstant    = "sysroot"
	rustcVerboseVersionFlagConstant = "-vV"
	hostLinePrefixConstant          = "host: "
	sysrootLibDirectoryConstant     = "lib"
	sysrootRustlibDirectoryConstant = "rustlib"
	sysrootBinDirectoryConstant     = "bin"
	windowsExecutableSuffixConstant = ".exe"
	windowsOperatingSystemConstant  = "windows"
)

// ToolName identifies an LLVM coverage tool shipped with the Rust toolchain.
type ToolName string

// Tools resolved by the locator.
const (
	// ToolProfileMerger names the llvm-profdata executable.
	ToolProfileMerger ToolName = "llvm-profdata"
	// ToolProfileExporter names the llvm-cov executable.
	ToolProfileExporter ToolName = "llvm-cov"
)

// RustcExecutor exposes the subset of shell execution used for toolchain probes.
type RustcExecutor interface {
	ExecuteRustc(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ToolPathResolver maps tool identifiers to executable paths on the host.
type ToolPathResolver interface {
	ResolveToolPath(executionContext context.Context, tool ToolName) (string, error)
}

// RustcToolPathResolver resolves LLVM tools through the host Rust toolchain.
//
// Resolution precedence: an explicit tool directory override, then the rustc
// sysroot (<sysroot>/lib/rustlib/<host>/bin), then the system PATH.
type RustcToolPathResolver struct {
	executor          RustcExecutor
	overrideDirectory string
}

// NewRustcToolPathResolver constructs a resolver backed by rustc probes.
func NewRustcToolPathResolver(executor RustcExecutor, overrideDirectory string) (*RustcToolPathResolver, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RustcToolPathResolver{executor: executor, overrideDirectory: strings.TrimSpace(overrideDirectory)}, nil
}

// ResolveToolPath maps the supplied tool identifier to an executable path.
func (resolver *RustcToolPathResolver) ResolveToolPath(executionContext context.Context, tool ToolName) (string, error) {
	executableName := executableFileName(tool)

	if len(resolver.overrideDirectory) > 0 {
		return filepath.Join(resolver.overrideDirectory, executableName), nil
	}

	sysrootCandidate, sysrootError := resolver.resolveSysrootCandidate(executionContext, executableName)
	if sysrootError == nil {
		return sysrootCandidate, nil
	}

	pathCandidate, lookupError := exec.LookPath(string(tool))
	if lookupError == nil {
		return pathCandidate, nil
	}

	return "", ToolResolutionError{Tool: tool, Cause: lookupError}
}

func (resolver *RustcToolPathResolver) resolveSysrootCandidate(executionContext context.Context, executableName string) (string, error) {
	sysrootResult, sysrootError := resolver.executor.ExecuteRustc(executionContext, execshell.CommandDetails{
		Arguments: []string{rustcPrintFlagConstant, rustcSysrootArgumentConstant},
	})
	if sysrootError != nil {
		return "", sysrootError
	}

	sysrootPath := strings.TrimSpace(sysrootResult.StandardOutput)
	if len(sysrootPath) == 0 {
		return "", ErrSysrootNotReported
	}

	hostTriple, tripleError := resolver.resolveHostTriple(executionContext)
	if tripleError != nil {
		return "", tripleError
	}

	candidatePath := filepath.Join(sysrootPath, sysrootLibDirectoryConstant, sysrootRustlibDirectoryConstant, hostTriple, sysrootBinDirectoryConstant, executableName)
	if _, statError := os.Stat(candidatePath); statError != nil {
		return "", statError
	}
	return candidatePath, nil
}

func (resolver *RustcToolPathResolver) resolveHostTriple(executionContext context.Context) (string, error) {
	versionResult, versionError := resolver.executor.ExecuteRustc(executionContext, execshell.CommandDetails{
		Arguments: []string{rustcVerboseVersionFlagConstant},
	})
	if versionError != nil {
		return "", versionError
	}

	for _, versionLine := range strings.Split(versionResult.StandardOutput, "\n") {
		trimmedLine := strings.TrimSpace(versionLine)
		if !strings.HasPrefix(trimmedLine, hostLinePrefixConstant) {
			continue
		}
		hostTriple := strings.TrimSpace(strings.TrimPrefix(trimmedLine, hostLinePrefixConstant))
		if len(hostTriple) > 0 {
			return hostTriple, nil
		}
	}

	return "", ErrHostTripleNotReported
}

func executableFileName(tool ToolName) string {
	if runtime.GOOS == windowsOperatingSystemConstant {
		return string(tool) + windowsExecutableSuffixConstant
	}
	return string(tool)
}

// Locator applies the resolution policy for the profile merger and exporter.
type Locator struct {
	pathResolver ToolPathResolver
}

// NewLocator constructs a Locator using the provided path resolver.
func NewLocator(pathResolver ToolPathResolver) (*Locator, error) {
	if pathResolver == nil {
		return nil, ErrToolPathResolverNotConfigured
	}
	return &Locator{pathResolver: pathResolver}, nil
}

// LocateProfileMerger resolves llvm-profdata and verifies the executable exists on disk.
func (locator *Locator) LocateProfileMerger(executionContext context.Context) (string, error) {
	mergerPath, resolutionError := locator.pathResolver.ResolveToolPath(executionContext, ToolProfileMerger)
	if resolutionError != nil {
		return "", MissingProfileMergerError{Cause: resolutionError}
	}
	if _, statError := os.Stat(mergerPath); statError != nil {
		return "", MissingProfileMergerError{Cause: statError}
	}
	return mergerPath, nil
}

// LocateProfileExporter resolves llvm-cov. A resolution failure here aborts the invocation.
func (locator *Locator) LocateProfileExporter(executionContext context.Context) (string, error) {
	exporterPath, resolutionError := locator.pathResolver.ResolveToolPath(executionContext, ToolProfileExporter)
	if resolutionError != nil {
		return "", UnrecoverableResolutionError{Tool: ToolProfileExporter, Cause: resolutionError}
	}
	return exporterPath, nil
}
