package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
)

const executablePermissionMaskConstant = 0o111

// FilesystemBinaryDiscoverer locates instrumented binaries on disk.
type FilesystemBinaryDiscoverer struct{}

// NewFilesystemBinaryDiscoverer constructs a binary discoverer backed by filepath.WalkDir.
func NewFilesystemBinaryDiscoverer() *FilesystemBinaryDiscoverer {
	return &FilesystemBinaryDiscoverer{}
}

// DiscoverBinaries returns the candidate binaries beneath the target path.
//
// A target that is itself a file is returned as the single candidate without
// further checks. A directory is walked depth-first; an entry qualifies when it
// is a regular file, carries an executable permission bit, and is not empty.
// Entries that cannot be inspected abort the walk.
func (discoverer *FilesystemBinaryDiscoverer) DiscoverBinaries(targetPath string) ([]string, error) {
	targetInformation, statError := os.Stat(targetPath)
	if statError != nil {
		return nil, statError
	}

	if !targetInformation.IsDir() {
		return []string{targetPath}, nil
	}

	var binaries []string
	walkError := filepath.WalkDir(targetPath, func(entryPath string, directoryEntry fs.DirEntry, entryError error) error {
		if entryError != nil {
			return entryError
		}

		if directoryEntry.IsDir() {
			return nil
		}

		entryInformation, informationError := directoryEntry.Info()
		if informationError != nil {
			return informationError
		}

		if !entryInformation.Mode().IsRegular() {
			return nil
		}

		if entryInformation.Mode().Perm()&executablePermissionMaskConstant == 0 {
			return nil
		}

		if entryInformation.Size() == 0 {
			return nil
		}

		binaries = append(binaries, entryPath)
		return nil
	})
	if walkError != nil {
		return nil, walkError
	}

	return binaries, nil
}
