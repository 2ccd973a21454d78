package domain

import "context"

// Folders manages the run's local destination folder.
type Folders interface {
	Ensure(path string) error
	Remove(path string) error
}

// Storage is an offsite target the finished archive is copied to.
type Storage interface {
	Upload(ctx context.Context, localPath string, remoteName string) error
}

// Notifier reports a finished run to an operator channel.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}
