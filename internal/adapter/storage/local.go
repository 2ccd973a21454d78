package storage

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// LocalStorage manages run folders under the backup root.
type LocalStorage struct {
	fs afero.Fs
}

func NewLocal(fs afero.Fs) *LocalStorage {
	return &LocalStorage{fs: fs}
}

// Ensure creates path and any missing parents. An existing directory is left
// untouched.
func (l *LocalStorage) Ensure(path string) error {
	info, err := l.fs.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("backup folder %s exists and is not a directory", path)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat backup folder: %w", err)
	}

	if err := l.fs.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create backup folder: %w", err)
	}
	return nil
}

// Remove deletes path and everything below it.
func (l *LocalStorage) Remove(path string) error {
	if err := l.fs.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to delete backup folder: %w", err)
	}
	return nil
}
