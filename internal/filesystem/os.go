// Package filesystem provides operating system backed file primitives shared
// by the coverage commands.
package filesystem

import (
	"io/fs"
	"os"
)

// OSFileSystem implements filesystem access using the operating system primitives.
type OSFileSystem struct{}

// MkdirAll ensures a directory hierarchy exists with the provided permissions.
func (OSFileSystem) MkdirAll(path string, permissions fs.FileMode) error {
	return os.MkdirAll(path, permissions)
}

// MkdirTemp creates a fresh temporary directory beneath the supplied parent.
func (OSFileSystem) MkdirTemp(parentDirectory string, namePattern string) (string, error) {
	return os.MkdirTemp(parentDirectory, namePattern)
}

// RemoveAll deletes a path and any children it contains.
func (OSFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// ReadFile reads file contents.
func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to a file with the supplied permissions.
func (OSFileSystem) WriteFile(path string, data []byte, permissions fs.FileMode) error {
	return os.WriteFile(path, data, permissions)
}
