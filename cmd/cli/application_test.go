package cli_test

import (
	"bytes"
	"testing"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/profcov/profcov/cmd/cli"
	"github.com/profcov/profcov/internal/batch"
	"github.com/profcov/profcov/internal/coverage"
	"github.com/profcov/profcov/internal/gocover"
)

const (
	embeddedDefaultLogLevelConstant          = "info"
	embeddedDefaultLogFormatConstant         = "structured"
	embeddedDefaultOutputConstant            = "-"
	embeddedToolsSectionKeyConstant          = "tools"
	embeddedCoverageToolNameConstant         = "coverage"
	embeddedBatchToolNameConstant            = "batch"
	embeddedGomergeToolNameConstant          = "gomerge"
	embeddedDefaultsCoverageTestNameConstant = "coverage_tool_defaults"
	embeddedDefaultsBatchTestNameConstant    = "batch_tool_defaults"
	embeddedDefaultsGomergeTestNameConstant  = "gomerge_tool_defaults"
)

func TestEmbeddedDefaultConfigurationProvidesBaseline(testInstance *testing.T) {
	configurationData, configurationType := cli.EmbeddedDefaultConfiguration()
	require.NotEmpty(testInstance, configurationData)

	viperInstance := viper.New()
	viperInstance.SetConfigType(configurationType)

	readError := viperInstance.ReadConfig(bytes.NewReader(configurationData))
	require.NoError(testInstance, readError)

	var configuration cli.ApplicationConfiguration
	unmarshalError := viperInstance.Unmarshal(&configuration)
	require.NoError(testInstance, unmarshalError)

	require.Equal(testInstance, embeddedDefaultLogLevelConstant, configuration.Common.LogLevel)
	require.Equal(testInstance, embeddedDefaultLogFormatConstant, configuration.Common.LogFormat)
	require.Equal(testInstance, embeddedDefaultOutputConstant, configuration.Tools.Coverage.Output)
	require.Equal(testInstance, embeddedDefaultOutputConstant, configuration.Tools.Gomerge.Output)
	require.Empty(testInstance, configuration.Tools.Batch.Manifest)
}

func TestEmbeddedDefaultConfigurationReturnsIndependentCopies(testInstance *testing.T) {
	firstCopy, _ := cli.EmbeddedDefaultConfiguration()
	require.NotEmpty(testInstance, firstCopy)

	firstCopy[0] = '#'

	secondCopy, _ := cli.EmbeddedDefaultConfiguration()
	require.NotEqual(testInstance, firstCopy[0], secondCopy[0])
}

func TestApplicationEmbeddedDefaultsProvideToolConfigurations(testInstance *testing.T) {
	toolOptionIndex := buildEmbeddedToolOptionIndex(testInstance)

	testCases := []struct {
		name      string
		toolName  string
		assertion func(testing.TB, map[string]any)
	}{
		{
			name:     embeddedDefaultsCoverageTestNameConstant,
			toolName: embeddedCoverageToolNameConstant,
			assertion: func(assertionTarget testing.TB, options map[string]any) {
				assertionTarget.Helper()

				var configuration coverage.CommandConfiguration
				decodeToolOptions(assertionTarget, options, &configuration)
				sanitized := configuration.Sanitize()

				assertions := require.New(assertionTarget)
				assertions.Empty(sanitized.WorkingDirectory)
				assertions.Equal(embeddedDefaultOutputConstant, sanitized.Output)
				assertions.Empty(sanitized.LLVMBinDirectory)
			},
		},
		{
			name:     embeddedDefaultsBatchTestNameConstant,
			toolName: embeddedBatchToolNameConstant,
			assertion: func(assertionTarget testing.TB, options map[string]any) {
				assertionTarget.Helper()

				var configuration batch.CommandConfiguration
				decodeToolOptions(assertionTarget, options, &configuration)
				sanitized := configuration.Sanitize()

				assertions := require.New(assertionTarget)
				assertions.Empty(sanitized.Manifest)
				assertions.Empty(sanitized.LLVMBinDirectory)
			},
		},
		{
			name:     embeddedDefaultsGomergeTestNameConstant,
			toolName: embeddedGomergeToolNameConstant,
			assertion: func(assertionTarget testing.TB, options map[string]any) {
				assertionTarget.Helper()

				var configuration gocover.CommandConfiguration
				decodeToolOptions(assertionTarget, options, &configuration)
				sanitized := configuration.Sanitize()

				assertions := require.New(assertionTarget)
				assertions.Equal(embeddedDefaultOutputConstant, sanitized.Output)
			},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(t *testing.T) {
			toolOptions, optionsFound := toolOptionIndex[testCase.toolName]
			require.True(t, optionsFound)

			testCase.assertion(t, toolOptions)
		})
	}
}

func buildEmbeddedToolOptionIndex(testingInstance testing.TB) map[string]map[string]any {
	testingInstance.Helper()

	configurationData, configurationType := cli.EmbeddedDefaultConfiguration()
	viperInstance := viper.New()
	viperInstance.SetConfigType(configurationType)

	readError := viperInstance.ReadConfig(bytes.NewReader(configurationData))
	require.NoError(testingInstance, readError)

	toolOptionIndex := make(map[string]map[string]any)
	for toolName, rawOptions := range viperInstance.GetStringMap(embeddedToolsSectionKeyConstant) {
		toolOptions, isOptionMap := rawOptions.(map[string]any)
		require.True(testingInstance, isOptionMap)
		toolOptionIndex[toolName] = toolOptions
	}

	return toolOptionIndex
}

func decodeToolOptions(testingInstance testing.TB, options map[string]any, target any) {
	testingInstance.Helper()

	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "mapstructure", Result: target})
	require.NoError(testingInstance, decoderError)

	decodeError := decoder.Decode(options)
	require.NoError(testingInstance, decodeError)
}
