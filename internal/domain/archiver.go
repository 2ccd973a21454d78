package domain

import "errors"

var ErrNothingToArchive = errors.New("nothing to archive")

// Archiver bundles the named dump artifacts of folder into a single file.
type Archiver interface {
	Archive(folder string, databases []string, dest string) error
}
