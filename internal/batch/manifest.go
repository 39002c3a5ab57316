package batch

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	pathutils "github.com/profcov/profcov/internal/utils/path"
)

var manifestPathSanitizer = pathutils.NewPathSanitizer()

// Manifest describes the ordered export jobs loaded from YAML.
type Manifest struct {
	Jobs []JobConfiguration `yaml:"jobs"`
}

// JobConfiguration captures one export job: the fragments to merge, the
// binary target to export against, and where the lcov report lands.
type JobConfiguration struct {
	Name             string            `yaml:"name"`
	FragmentPaths    []string          `yaml:"profraws"`
	BinaryTarget     string            `yaml:"binary"`
	WorkingDirectory string            `yaml:"working_dir"`
	Output           string            `yaml:"output"`
	Environment      map[string]string `yaml:"environment"`
}

// LoadManifest reads the batch definition from disk and validates it. Jobs
// may sit at the top level or under a batch key.
func LoadManifest(filePath string) (Manifest, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return Manifest{}, errors.New(manifestPathRequiredMessageConstant)
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return Manifest{}, fmt.Errorf(manifestLoadErrorTemplateConstant, readError)
	}

	var manifest Manifest
	if unmarshalError := yaml.Unmarshal(contentBytes, &manifest); unmarshalError != nil {
		return Manifest{}, fmt.Errorf(manifestParseErrorTemplateConstant, unmarshalError)
	}
	if len(manifest.Jobs) == 0 {
		var wrapper struct {
			Batch Manifest `yaml:"batch"`
		}
		if nestedError := yaml.Unmarshal(contentBytes, &wrapper); nestedError == nil && len(wrapper.Batch.Jobs) > 0 {
			manifest = wrapper.Batch
		}
	}

	manifest = manifest.normalized()
	if validationError := manifest.Validate(); validationError != nil {
		return Manifest{}, validationError
	}
	return manifest, nil
}

// Validate checks the manifest invariants: at least one job, unique job
// names, and a fragment list, binary target, and output path per job.
func (manifest Manifest) Validate() error {
	if len(manifest.Jobs) == 0 {
		return errors.New(manifestEmptyJobsMessageConstant)
	}

	seenNames := make(map[string]struct{}, len(manifest.Jobs))
	for jobIndex := range manifest.Jobs {
		job := manifest.Jobs[jobIndex]
		trimmedName := strings.TrimSpace(job.Name)
		if len(trimmedName) == 0 {
			return fmt.Errorf(jobNameMissingTemplateConstant, jobIndex+1)
		}
		if _, nameExists := seenNames[trimmedName]; nameExists {
			return fmt.Errorf(jobDuplicateNameTemplateConstant, trimmedName)
		}
		seenNames[trimmedName] = struct{}{}

		if len(job.FragmentPaths) == 0 {
			return fmt.Errorf(jobFragmentsMissingTemplateConstant, trimmedName)
		}
		if len(strings.TrimSpace(job.BinaryTarget)) == 0 {
			return fmt.Errorf(jobBinaryMissingTemplateConstant, trimmedName)
		}
		if len(strings.TrimSpace(job.Output)) == 0 {
			return fmt.Errorf(jobOutputMissingTemplateConstant, trimmedName)
		}
	}
	return nil
}

func (manifest Manifest) normalized() Manifest {
	normalizedManifest := Manifest{Jobs: make([]JobConfiguration, 0, len(manifest.Jobs))}
	for jobIndex := range manifest.Jobs {
		job := manifest.Jobs[jobIndex]
		job.Name = strings.TrimSpace(job.Name)
		job.BinaryTarget = manifestPathSanitizer.SanitizePath(job.BinaryTarget)
		job.WorkingDirectory = manifestPathSanitizer.SanitizePath(job.WorkingDirectory)
		job.Output = manifestPathSanitizer.SanitizePath(job.Output)
		job.FragmentPaths = manifestPathSanitizer.Sanitize(job.FragmentPaths)

		normalizedManifest.Jobs = append(normalizedManifest.Jobs, job)
	}
	return normalizedManifest
}
