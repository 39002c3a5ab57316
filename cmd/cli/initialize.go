package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const (
	initFlagNameConstant             = "init"
	initFlagUsageConstant            = "Write the default configuration file and exit (--init writes ./config.yaml, --init=user writes the per-user file)."
	forceFlagNameConstant            = "force"
	forceFlagUsageConstant           = "Overwrite an existing configuration file during --init."
	initLocalScopeConstant           = "local"
	initUserScopeConstant            = "user"
	initUnknownScopeTemplateConstant = "unknown configuration scope %q (expected local or user)"
	initExistingFileTemplateConstant = "configuration file %s already exists; rerun with --force to overwrite"
	initDirectoryPermissionsConstant = 0o755
	initFilePermissionsConstant      = 0o600
	initWrittenMessageConstant       = "default configuration written"
	configurationFileNameConstant    = configurationNameConstant + "." + configurationTypeConstant
)

// initializeDefaultConfiguration writes the embedded default configuration for the
// requested scope. Existing files stay untouched unless forceOverwrite is set.
func (application *Application) initializeDefaultConfiguration(scope string, forceOverwrite bool) error {
	targetPath, targetPathError := application.configurationTargetPath(scope)
	if targetPathError != nil {
		return targetPathError
	}

	if !forceOverwrite {
		if _, statError := os.Stat(targetPath); statError == nil {
			return fmt.Errorf(initExistingFileTemplateConstant, targetPath)
		}
	}

	if directoryError := os.MkdirAll(filepath.Dir(targetPath), initDirectoryPermissionsConstant); directoryError != nil {
		return directoryError
	}

	configurationContent, _ := EmbeddedDefaultConfiguration()
	if writeError := os.WriteFile(targetPath, configurationContent, initFilePermissionsConstant); writeError != nil {
		return writeError
	}

	application.logger.Info(initWrittenMessageConstant, zap.String(configurationFileFieldConstant, targetPath))
	return nil
}

// configurationTargetPath maps an init scope to the configuration file it manages.
// The user scope mirrors the per-user configuration search path.
func (application *Application) configurationTargetPath(scope string) (string, error) {
	switch scope {
	case initLocalScopeConstant:
		return configurationFileNameConstant, nil
	case initUserScopeConstant:
		userConfigurationDirectory, userConfigurationError := os.UserConfigDir()
		if userConfigurationError != nil {
			return "", userConfigurationError
		}
		return filepath.Join(userConfigurationDirectory, applicationNameConstant, configurationFileNameConstant), nil
	default:
		return "", fmt.Errorf(initUnknownScopeTemplateConstant, scope)
	}
}
