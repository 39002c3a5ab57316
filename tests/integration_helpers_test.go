package tests

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	integrationGoExecutableNameConstant      = "go"
	integrationBinaryNameConstant            = "profcov"
	integrationBuildSubcommandConstant       = "build"
	integrationBuildOutputFlagConstant       = "-o"
	integrationBuildTimeoutConstant          = 2 * time.Minute
	integrationEnvironmentSeparatorConstant  = "="
	integrationDirectoryPermissionsConstant  = 0o755
	integrationFilePermissionsConstant       = 0o644
	integrationExecutablePermissionsConstant = 0o755
)

// runIntegrationCommand runs the go tool from the repository root and fails the test on error.
func runIntegrationCommand(testInstance *testing.T, repositoryRoot string, environmentOverrides map[string]string, timeout time.Duration, arguments []string) string {
	testInstance.Helper()

	executionContext, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	command := exec.CommandContext(executionContext, integrationGoExecutableNameConstant, arguments...)
	command.Dir = repositoryRoot
	command.Env = integrationEnvironment(environmentOverrides)

	outputBytes, runError := command.CombinedOutput()
	outputText := string(outputBytes)
	requireNoError(testInstance, runError, outputText)
	return outputText
}

// buildIntegrationBinary compiles the CLI into a per-test directory and returns the binary path.
func buildIntegrationBinary(testInstance *testing.T, repositoryRoot string) string {
	testInstance.Helper()

	binaryPath := filepath.Join(testInstance.TempDir(), integrationBinaryNameConstant)
	runIntegrationCommand(
		testInstance,
		repositoryRoot,
		map[string]string{},
		integrationBuildTimeoutConstant,
		[]string{integrationBuildSubcommandConstant, integrationBuildOutputFlagConstant, binaryPath, integrationCurrentModuleConstant},
	)
	return binaryPath
}

// runBinaryIntegrationCommand executes a built CLI binary and returns its combined output and error.
func runBinaryIntegrationCommand(testInstance *testing.T, binaryPath string, workingDirectory string, environmentOverrides map[string]string, timeout time.Duration, arguments []string) (string, error) {
	testInstance.Helper()

	executionContext, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	command := exec.CommandContext(executionContext, binaryPath, arguments...)
	command.Dir = workingDirectory
	command.Env = integrationEnvironment(environmentOverrides)

	outputBytes, runError := command.CombinedOutput()
	return string(outputBytes), runError
}

// integrationEnvironment layers overrides onto the inherited environment, replacing same-named entries.
func integrationEnvironment(environmentOverrides map[string]string) []string {
	environment := make([]string, 0, len(os.Environ())+len(environmentOverrides))
	for _, environmentEntry := range os.Environ() {
		entryKey, _, _ := strings.Cut(environmentEntry, integrationEnvironmentSeparatorConstant)
		if _, overridden := environmentOverrides[entryKey]; overridden {
			continue
		}
		environment = append(environment, environmentEntry)
	}
	for overrideKey, overrideValue := range environmentOverrides {
		environment = append(environment, overrideKey+integrationEnvironmentSeparatorConstant+overrideValue)
	}
	return environment
}

// writeIntegrationFile creates a file along with any missing parent directories.
func writeIntegrationFile(testInstance *testing.T, filePath string, contents string) {
	testInstance.Helper()
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(filePath), integrationDirectoryPermissionsConstant))
	require.NoError(testInstance, os.WriteFile(filePath, []byte(contents), integrationFilePermissionsConstant))
}

// writeExecutableScript installs a shell script with the executable bit set.
func writeExecutableScript(testInstance *testing.T, scriptPath string, scriptContents string) {
	testInstance.Helper()
	writeIntegrationFile(testInstance, scriptPath, scriptContents)
	require.NoError(testInstance, os.Chmod(scriptPath, integrationExecutablePermissionsConstant))
}

func requireNoError(testInstance *testing.T, err error, output string) {
	testInstance.Helper()
	if err != nil {
		testInstance.Fatalf("command failed: %v\n%s", err, output)
	}
}
