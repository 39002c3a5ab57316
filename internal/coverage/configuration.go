package coverage

import (
	pathutils "github.com/profcov/profcov/internal/utils/path"
)

const (
	configurationWorkingDirectoryKeyConstant = "working_dir"
	configurationOutputKeyConstant           = "output"
	configurationLLVMBinDirectoryKeyConstant = "llvm_bin_dir"
)

var configurationPathSanitizer = pathutils.NewPathSanitizer()

// CommandConfiguration captures persistent settings for the export command.
type CommandConfiguration struct {
	WorkingDirectory string `mapstructure:"working_dir"`
	Output           string `mapstructure:"output"`
	LLVMBinDirectory string `mapstructure:"llvm_bin_dir"`
}

// DefaultCommandConfiguration returns baseline configuration values for the export command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		WorkingDirectory: "",
		Output:           stdoutOutputTokenConstant,
		LLVMBinDirectory: "",
	}
}

// DefaultConfigurationValues produces Viper defaults for the export command.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + "." + configurationWorkingDirectoryKeyConstant: defaults.WorkingDirectory,
		rootKey + "." + configurationOutputKeyConstant:           defaults.Output,
		rootKey + "." + configurationLLVMBinDirectoryKeyConstant: defaults.LLVMBinDirectory,
	}
}

// Sanitize normalizes path values and applies defaults to unset configuration values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.WorkingDirectory = configurationPathSanitizer.SanitizePath(configuration.WorkingDirectory)
	sanitized.Output = configurationPathSanitizer.SanitizePath(configuration.Output)
	sanitized.LLVMBinDirectory = configurationPathSanitizer.SanitizePath(configuration.LLVMBinDirectory)
	if len(sanitized.Output) == 0 {
		sanitized.Output = stdoutOutputTokenConstant
	}
	return sanitized
}
