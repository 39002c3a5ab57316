package batch

import (
	pathutils "github.com/profcov/profcov/internal/utils/path"
)

const (
	configurationManifestKeyConstant         = "manifest"
	configurationLLVMBinDirectoryKeyConstant = "llvm_bin_dir"
)

var configurationPathSanitizer = pathutils.NewPathSanitizer()

// CommandConfiguration captures persistent settings for the batch command.
type CommandConfiguration struct {
	Manifest         string `mapstructure:"manifest"`
	LLVMBinDirectory string `mapstructure:"llvm_bin_dir"`
}

// DefaultCommandConfiguration returns baseline configuration values for the batch command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{}
}

// DefaultConfigurationValues produces Viper defaults for the batch command.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + "." + configurationManifestKeyConstant:         defaults.Manifest,
		rootKey + "." + configurationLLVMBinDirectoryKeyConstant: defaults.LLVMBinDirectory,
	}
}

// Sanitize normalizes configured path values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Manifest = configurationPathSanitizer.SanitizePath(configuration.Manifest)
	sanitized.LLVMBinDirectory = configurationPathSanitizer.SanitizePath(configuration.LLVMBinDirectory)
	return sanitized
}
