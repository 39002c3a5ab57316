package gocover

import (
	pathutils "github.com/profcov/profcov/internal/utils/path"
)

const (
	configurationOutputKeyConstant = "output"
)

var configurationPathSanitizer = pathutils.NewPathSanitizer()

// CommandConfiguration captures persistent settings for the gomerge command.
type CommandConfiguration struct {
	Output string `mapstructure:"output"`
}

// DefaultCommandConfiguration returns baseline configuration values for the gomerge command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{Output: stdoutOutputTokenConstant}
}

// DefaultConfigurationValues produces Viper defaults for the gomerge command.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + "." + configurationOutputKeyConstant: defaults.Output,
	}
}

// Sanitize normalizes the output path and applies defaults to unset configuration values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Output = configurationPathSanitizer.SanitizePath(configuration.Output)
	if len(sanitized.Output) == 0 {
		sanitized.Output = stdoutOutputTokenConstant
	}
	return sanitized
}
