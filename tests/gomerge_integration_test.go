package tests

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	gomergeIntegrationCommandNameConstant   = "gomerge"
	gomergeIntegrationOutputFlagConstant    = "--output"
	gomergeIntegrationFirstProfileConstant  = "first.cover.out"
	gomergeIntegrationSecondProfileConstant = "second.cover.out"
	gomergeIntegrationCountProfileConstant  = "count.cover.out"
	gomergeIntegrationMergedProfileConstant = "merged.cover.out"
	gomergeIntegrationModeMismatchFragment  = "coverage modes differ"

	gomergeIntegrationFirstProfileContent = "mode: set\n" +
		"example.com/demo/calc.go:10.2,12.3 2 1\n" +
		"example.com/demo/calc.go:14.2,16.3 1 0\n"

	gomergeIntegrationSecondProfileContent = "mode: set\n" +
		"example.com/demo/calc.go:14.2,16.3 1 1\n" +
		"example.com/demo/util.go:3.1,4.2 1 1\n"

	gomergeIntegrationCountProfileContent = "mode: count\n" +
		"example.com/demo/calc.go:10.2,12.3 2 7\n"

	gomergeIntegrationExpectedMergedContent = "mode: set\n" +
		"example.com/demo/calc.go:10.2,12.3 2 1\n" +
		"example.com/demo/calc.go:14.2,16.3 1 1\n" +
		"example.com/demo/util.go:3.1,4.2 1 1\n"
)

func TestGomergeCommandIntegrationMergesProfiles(testInstance *testing.T) {
	currentWorkingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	repositoryRootDirectory := filepath.Dir(currentWorkingDirectory)
	binaryPath := buildIntegrationBinary(testInstance, repositoryRootDirectory)

	temporaryRoot := testInstance.TempDir()
	firstProfilePath := filepath.Join(temporaryRoot, gomergeIntegrationFirstProfileConstant)
	writeIntegrationFile(testInstance, firstProfilePath, gomergeIntegrationFirstProfileContent)
	secondProfilePath := filepath.Join(temporaryRoot, gomergeIntegrationSecondProfileConstant)
	writeIntegrationFile(testInstance, secondProfilePath, gomergeIntegrationSecondProfileContent)

	mergedProfilePath := filepath.Join(temporaryRoot, gomergeIntegrationMergedProfileConstant)

	outputText, runError := runBinaryIntegrationCommand(
		testInstance,
		binaryPath,
		temporaryRoot,
		map[string]string{integrationXDGConfigHomeEnvKeyConstant: testInstance.TempDir()},
		integrationCommandTimeout,
		[]string{
			gomergeIntegrationCommandNameConstant,
			firstProfilePath,
			secondProfilePath,
			gomergeIntegrationOutputFlagConstant, mergedProfilePath,
		},
	)
	require.NoError(testInstance, runError, outputText)

	mergedContent, readError := os.ReadFile(mergedProfilePath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, gomergeIntegrationExpectedMergedContent, string(mergedContent))
}

func TestGomergeCommandIntegrationRejectsModeMismatch(testInstance *testing.T) {
	currentWorkingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	repositoryRootDirectory := filepath.Dir(currentWorkingDirectory)
	binaryPath := buildIntegrationBinary(testInstance, repositoryRootDirectory)

	temporaryRoot := testInstance.TempDir()
	firstProfilePath := filepath.Join(temporaryRoot, gomergeIntegrationFirstProfileConstant)
	writeIntegrationFile(testInstance, firstProfilePath, gomergeIntegrationFirstProfileContent)
	countProfilePath := filepath.Join(temporaryRoot, gomergeIntegrationCountProfileConstant)
	writeIntegrationFile(testInstance, countProfilePath, gomergeIntegrationCountProfileContent)

	outputText, runError := runBinaryIntegrationCommand(
		testInstance,
		binaryPath,
		temporaryRoot,
		map[string]string{integrationXDGConfigHomeEnvKeyConstant: testInstance.TempDir()},
		integrationCommandTimeout,
		[]string{
			gomergeIntegrationCommandNameConstant,
			firstProfilePath,
			countProfilePath,
		},
	)
	require.Error(testInstance, runError)
	require.Contains(testInstance, outputText, gomergeIntegrationModeMismatchFragment)
}
