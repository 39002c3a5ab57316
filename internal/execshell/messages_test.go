package execshell

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildStartedMessageForMergeCountsFragments(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandProfileMerger,
		Details: CommandDetails{
			Arguments: []string{"merge", "-sparse", "-o", "/work/profcov.profdata", "one.profraw", "two.profraw"},
		},
	}

	message := formatter.BuildStartedMessage(command)

	require.Equal(t, "Merging 2 profile fragments into /work/profcov.profdata", message)
}

func TestBuildFailureMessageForExportIncludesStandardError(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandName("/toolchain/bin/llvm-cov"),
		Details: CommandDetails{
			Arguments: []string{"export", "/target/debug/app", "--instr-profile", "/work/profcov.profdata", "--format", "lcov"},
		},
	}

	message := formatter.BuildFailureMessage(command, ExecutionResult{ExitCode: 1, StandardError: "malformed instrumentation profile data"})

	require.Equal(t, "Failed to export lcov coverage for /target/debug/app (exit code 1: malformed instrumentation profile data)", message)
}

func TestBuildSuccessMessageForSysrootQueryIncludesPath(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name:    CommandRustc,
		Details: CommandDetails{Arguments: []string{"--print", "sysroot"}},
	}

	message := formatter.BuildSuccessMessage(command, ExecutionResult{})
	require.Equal(t, "Rust sysroot query returned no path", message)

	message = formatter.BuildSuccessMessage(command, ExecutionResult{StandardOutput: "/toolchains/stable\n"})
	require.Equal(t, "Rust sysroot is /toolchains/stable", message)
}
