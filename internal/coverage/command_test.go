package coverage_test

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/profcov/profcov/internal/coverage"
)

const (
	coverageMissingBinaryMessageConstant  = "binary target is required; supply --binary"
	coverageProfrawFlagConstant           = "--profraw"
	coverageBinaryFlagConstant            = "--binary"
	coverageWorkingDirFlagConstant        = "--working-dir"
	coverageOutputFlagConstant            = "--output"
	coverageWhitespaceBinaryArgument      = "   "
	coverageTemporaryDirectoryConstant    = "/tmp/profcov-2718281828"
	coverageTemporaryPatternConstant      = "profcov-*"
	coverageReportFilePathConstant        = "/reports/app.lcov"
	coverageReportFilePermissionsConstant = fs.FileMode(0o644)
)

type recordingFileSystem struct {
	temporaryDirectory string
	temporaryPattern   string
	createdDirectories []string
	removedPaths       []string
	writtenFiles       map[string][]byte
	writtenPermissions map[string]fs.FileMode
}

func (fileSystem *recordingFileSystem) MkdirAll(path string, permissions fs.FileMode) error {
	fileSystem.createdDirectories = append(fileSystem.createdDirectories, path)
	return nil
}

func (fileSystem *recordingFileSystem) MkdirTemp(parentDirectory string, namePattern string) (string, error) {
	fileSystem.temporaryPattern = namePattern
	return fileSystem.temporaryDirectory, nil
}

func (fileSystem *recordingFileSystem) RemoveAll(path string) error {
	fileSystem.removedPaths = append(fileSystem.removedPaths, path)
	return nil
}

func (fileSystem *recordingFileSystem) ReadFile(path string) ([]byte, error) {
	return nil, nil
}

func (fileSystem *recordingFileSystem) WriteFile(path string, data []byte, permissions fs.FileMode) error {
	if fileSystem.writtenFiles == nil {
		fileSystem.writtenFiles = map[string][]byte{}
		fileSystem.writtenPermissions = map[string]fs.FileMode{}
	}
	fileSystem.writtenFiles[path] = append([]byte{}, data...)
	fileSystem.writtenPermissions[path] = permissions
	return nil
}

func TestCommandBuilderDisplaysHelpWhenBinaryMissing(testInstance *testing.T) {
	testInstance.Parallel()

	testCases := []struct {
		name      string
		arguments []string
	}{
		{
			name:      "no_flags_provided",
			arguments: []string{},
		},
		{
			name: "binary_flag_whitespace",
			arguments: []string{
				coverageBinaryFlagConstant,
				coverageWhitespaceBinaryArgument,
			},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			subTest.Parallel()

			builder := coverage.CommandBuilder{
				LoggerProvider:        func() *zap.Logger { return zap.NewNop() },
				ConfigurationProvider: func() coverage.CommandConfiguration { return coverage.CommandConfiguration{} },
			}

			command, buildError := builder.Build()
			require.NoError(subTest, buildError)

			command.SetContext(context.Background())
			command.SetArgs(testCase.arguments)

			outputBuffer := &strings.Builder{}
			command.SetOut(outputBuffer)
			command.SetErr(outputBuffer)

			executionError := command.Execute()
			require.Error(subTest, executionError)
			require.Equal(subTest, coverageMissingBinaryMessageConstant, executionError.Error())
			require.Contains(subTest, outputBuffer.String(), command.UseLine())
		})
	}
}

func TestCommandWritesCombinedReportToStdout(testInstance *testing.T) {
	testInstance.Parallel()

	binaryPath := filepath.Join(testBinaryDirectoryConstant, "app")
	exporter := &scriptedProfileExporter{
		reports: map[string][]byte{binaryPath: []byte("SF:app\nend_of_record\n")},
	}
	merger := &recordingProfileMerger{}
	fileSystem := &recordingFileSystem{}

	builder := coverage.CommandBuilder{
		LoggerProvider:        func() *zap.Logger { return zap.NewNop() },
		Locator:               &stubToolLocator{mergerPath: testMergerToolPathConstant, exporterPath: testExporterToolPathConstant},
		Merger:                merger,
		Exporter:              exporter,
		Discoverer:            stubBinaryDiscoverer{binaries: []string{binaryPath}},
		FileSystem:            fileSystem,
		ConfigurationProvider: func() coverage.CommandConfiguration { return coverage.CommandConfiguration{} },
	}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	command.SetContext(context.Background())
	command.SetArgs([]string{
		coverageProfrawFlagConstant, "fragment_one.profraw",
		coverageProfrawFlagConstant, "fragment_two.profraw",
		coverageBinaryFlagConstant, testBinaryDirectoryConstant,
		coverageWorkingDirFlagConstant, testWorkingDirectoryConstant,
	})

	outputBuffer := &strings.Builder{}
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)

	executionError := command.Execute()
	require.NoError(testInstance, executionError)

	require.Equal(testInstance, "SF:app\nend_of_record\n", outputBuffer.String())
	require.Contains(testInstance, fileSystem.createdDirectories, testWorkingDirectoryConstant)
	require.Empty(testInstance, fileSystem.removedPaths)
	require.Equal(testInstance, []string{"fragment_one.profraw", "fragment_two.profraw"}, merger.lastRequest.FragmentPaths)
	require.Equal(testInstance, filepath.Join(testWorkingDirectoryConstant, testMergedProfileNameConstant), merger.lastRequest.OutputProfilePath)
}

func TestCommandCreatesTemporaryWorkingDirectoryWhenUnset(testInstance *testing.T) {
	testInstance.Parallel()

	binaryPath := filepath.Join(testBinaryDirectoryConstant, "app")
	merger := &recordingProfileMerger{}
	fileSystem := &recordingFileSystem{temporaryDirectory: coverageTemporaryDirectoryConstant}

	builder := coverage.CommandBuilder{
		LoggerProvider:        func() *zap.Logger { return zap.NewNop() },
		Locator:               &stubToolLocator{mergerPath: testMergerToolPathConstant, exporterPath: testExporterToolPathConstant},
		Merger:                merger,
		Exporter:              &scriptedProfileExporter{},
		Discoverer:            stubBinaryDiscoverer{binaries: []string{binaryPath}},
		FileSystem:            fileSystem,
		ConfigurationProvider: func() coverage.CommandConfiguration { return coverage.CommandConfiguration{} },
	}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	command.SetContext(context.Background())
	command.SetArgs([]string{coverageBinaryFlagConstant, testBinaryDirectoryConstant})

	outputBuffer := &strings.Builder{}
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)

	executionError := command.Execute()
	require.NoError(testInstance, executionError)

	require.Equal(testInstance, coverageTemporaryPatternConstant, fileSystem.temporaryPattern)
	require.Equal(testInstance, []string{coverageTemporaryDirectoryConstant}, fileSystem.removedPaths)
	require.Equal(testInstance, filepath.Join(coverageTemporaryDirectoryConstant, testMergedProfileNameConstant), merger.lastRequest.OutputProfilePath)
}

func TestCommandWritesReportToFile(testInstance *testing.T) {
	testInstance.Parallel()

	binaryPath := filepath.Join(testBinaryDirectoryConstant, "app")
	fileSystem := &recordingFileSystem{}

	builder := coverage.CommandBuilder{
		LoggerProvider: func() *zap.Logger { return zap.NewNop() },
		Locator:        &stubToolLocator{mergerPath: testMergerToolPathConstant, exporterPath: testExporterToolPathConstant},
		Merger:         &recordingProfileMerger{},
		Exporter: &scriptedProfileExporter{
			reports: map[string][]byte{binaryPath: []byte("SF:app\nend_of_record\n")},
		},
		Discoverer:            stubBinaryDiscoverer{binaries: []string{binaryPath}},
		FileSystem:            fileSystem,
		ConfigurationProvider: func() coverage.CommandConfiguration { return coverage.CommandConfiguration{} },
	}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	command.SetContext(context.Background())
	command.SetArgs([]string{
		coverageBinaryFlagConstant, testBinaryDirectoryConstant,
		coverageWorkingDirFlagConstant, testWorkingDirectoryConstant,
		coverageOutputFlagConstant, coverageReportFilePathConstant,
	})

	outputBuffer := &strings.Builder{}
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)

	executionError := command.Execute()
	require.NoError(testInstance, executionError)

	require.Empty(testInstance, outputBuffer.String())
	require.Contains(testInstance, fileSystem.createdDirectories, filepath.Dir(coverageReportFilePathConstant))
	require.Equal(testInstance, []byte("SF:app\nend_of_record\n"), fileSystem.writtenFiles[coverageReportFilePathConstant])
	require.Equal(testInstance, coverageReportFilePermissionsConstant, fileSystem.writtenPermissions[coverageReportFilePathConstant])
}

func TestCommandAppliesConfigurationWithFlagOverrides(testInstance *testing.T) {
	testInstance.Parallel()

	configuredConfiguration := coverage.CommandConfiguration{
		WorkingDirectory: "/configured/work",
		Output:           "/configured/coverage.lcov",
	}

	testCases := []struct {
		name               string
		arguments          []string
		expectedDirectory  string
		expectedOutputFile string
	}{
		{
			name:               "configuration_defaults_used",
			arguments:          []string{coverageBinaryFlagConstant, testBinaryDirectoryConstant},
			expectedDirectory:  "/configured/work",
			expectedOutputFile: "/configured/coverage.lcov",
		},
		{
			name: "flags_override_configuration",
			arguments: []string{
				coverageBinaryFlagConstant, testBinaryDirectoryConstant,
				coverageWorkingDirFlagConstant, "/flagged/work",
				coverageOutputFlagConstant, "-",
			},
			expectedDirectory:  "/flagged/work",
			expectedOutputFile: "",
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			subTest.Parallel()

			binaryPath := filepath.Join(testBinaryDirectoryConstant, "app")
			fileSystem := &recordingFileSystem{}

			builder := coverage.CommandBuilder{
				LoggerProvider: func() *zap.Logger { return zap.NewNop() },
				Locator:        &stubToolLocator{mergerPath: testMergerToolPathConstant, exporterPath: testExporterToolPathConstant},
				Merger:         &recordingProfileMerger{},
				Exporter: &scriptedProfileExporter{
					reports: map[string][]byte{binaryPath: []byte("SF:app\nend_of_record\n")},
				},
				Discoverer:            stubBinaryDiscoverer{binaries: []string{binaryPath}},
				FileSystem:            fileSystem,
				ConfigurationProvider: func() coverage.CommandConfiguration { return configuredConfiguration },
			}

			command, buildError := builder.Build()
			require.NoError(subTest, buildError)

			command.SetContext(context.Background())
			command.SetArgs(testCase.arguments)

			outputBuffer := &strings.Builder{}
			command.SetOut(outputBuffer)
			command.SetErr(outputBuffer)

			executionError := command.Execute()
			require.NoError(subTest, executionError)

			require.Contains(subTest, fileSystem.createdDirectories, testCase.expectedDirectory)
			if testCase.expectedOutputFile == "" {
				require.Equal(subTest, "SF:app\nend_of_record\n", outputBuffer.String())
				require.Empty(subTest, fileSystem.writtenFiles)
			} else {
				require.Equal(subTest, []byte("SF:app\nend_of_record\n"), fileSystem.writtenFiles[testCase.expectedOutputFile])
				require.Empty(subTest, outputBuffer.String())
			}
		})
	}
}
