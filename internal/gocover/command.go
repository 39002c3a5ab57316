package gocover

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/tools/cover"

	"github.com/profcov/profcov/internal/filesystem"
	"github.com/profcov/profcov/internal/utils"
	pathutils "github.com/profcov/profcov/internal/utils/path"
)

var commandPathSanitizer = pathutils.NewPathSanitizer()

// LoggerProvider supplies the logger used during command execution.
type LoggerProvider func() *zap.Logger

// FileSystem describes the file operations the gomerge command performs.
type FileSystem interface {
	MkdirAll(path string, permissions fs.FileMode) error
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
}

// CommandBuilder assembles the gomerge command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	FileSystem            FileSystem
	ConfigurationProvider func() CommandConfiguration
}

type commandOptions struct {
	profilePaths []string
	outputPath   string
}

// Build constructs the gomerge command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ArbitraryArgs,
		RunE:          builder.run,
	}
	command.Flags().String(outputFlagNameConstant, "", outputFlagUsageConstant)
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	options, parseError := builder.parseOptions(command, arguments)
	if parseError != nil {
		return parseError
	}

	logger := builder.resolveLogger()
	fileSystem := builder.resolveFileSystem()

	var mergedProfiles []*cover.Profile
	for _, profilePath := range options.profilePaths {
		profileData, readError := fileSystem.ReadFile(profilePath)
		if readError != nil {
			return fmt.Errorf(profileReadErrorTemplateConstant, profilePath, readError)
		}
		parsedProfiles, profileParseError := cover.ParseProfilesFromReader(bytes.NewReader(profileData))
		if profileParseError != nil {
			return fmt.Errorf(profileParseErrorTemplateConstant, profilePath, profileParseError)
		}
		for _, parsedProfile := range parsedProfiles {
			var addError error
			mergedProfiles, addError = AddProfile(mergedProfiles, parsedProfile)
			if addError != nil {
				return addError
			}
		}
	}

	renderedProfile := &bytes.Buffer{}
	if renderError := WriteProfiles(renderedProfile, mergedProfiles); renderError != nil {
		return fmt.Errorf(outputWriteErrorTemplateConstant, renderError)
	}

	if options.outputPath == stdoutOutputTokenConstant {
		if _, writeError := utils.NewFlushingWriter(command.OutOrStdout()).Write(renderedProfile.Bytes()); writeError != nil {
			return fmt.Errorf(outputWriteErrorTemplateConstant, writeError)
		}
	} else {
		if directoryError := fileSystem.MkdirAll(filepath.Dir(options.outputPath), outputDirectoryPermissionsConstant); directoryError != nil {
			return fmt.Errorf(outputDirectoryErrorTemplate, directoryError)
		}
		if writeError := fileSystem.WriteFile(options.outputPath, renderedProfile.Bytes(), outputFilePermissionsConstant); writeError != nil {
			return fmt.Errorf(outputWriteErrorTemplateConstant, writeError)
		}
	}

	logger.Info(mergeCompletedLogMessageConstant,
		zap.Int(profilesLogFieldConstant, len(options.profilePaths)),
		zap.Int(mergedFilesLogFieldConstant, len(mergedProfiles)),
	)
	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command, arguments []string) (commandOptions, error) {
	configuration := builder.resolveConfiguration()

	profilePaths := commandPathSanitizer.Sanitize(arguments)
	if len(profilePaths) == 0 {
		_ = command.Help()
		return commandOptions{}, errors.New(missingProfilesMessageConstant)
	}

	outputPath := configuration.Output
	if command.Flags().Changed(outputFlagNameConstant) {
		flagValue, _ := command.Flags().GetString(outputFlagNameConstant)
		outputPath = commandPathSanitizer.SanitizePath(flagValue)
	}
	if len(outputPath) == 0 {
		outputPath = stdoutOutputTokenConstant
	}

	return commandOptions{profilePaths: profilePaths, outputPath: outputPath}, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveFileSystem() FileSystem {
	if builder.FileSystem != nil {
		return builder.FileSystem
	}
	return filesystem.OSFileSystem{}
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}
