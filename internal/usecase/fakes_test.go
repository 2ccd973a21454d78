package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/semmidev/mysqlbackup/internal/infrastructure/logger"
)

func newObservedLogger() (*logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logger.Wrap(zap.New(core)), logs
}

type fakeLister struct {
	names []string
	err   error
}

func (f *fakeLister) ListDatabases(ctx context.Context) ([]string, error) {
	return f.names, f.err
}

// fakeDumper writes a small dump for every database except those in fail.
type fakeDumper struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls []string
}

func (f *fakeDumper) DumpDatabase(ctx context.Context, database, outputPath string) error {
	f.mu.Lock()
	f.calls = append(f.calls, database)
	f.mu.Unlock()

	if f.fail[database] {
		return fmt.Errorf("mysqldump exited with code 2")
	}
	return os.WriteFile(outputPath, []byte("-- dump of "+database+"\n"), 0644)
}

type failingArchiver struct{}

func (failingArchiver) Archive(folder string, databases []string, dest string) error {
	return errors.New("disk full")
}

// spyFolders counts Remove calls on top of a real folder manager.
type spyFolders struct {
	inner interface {
		Ensure(path string) error
		Remove(path string) error
	}
	ensureErr error
	removeErr error
	removed   int
}

func (s *spyFolders) Ensure(path string) error {
	if s.ensureErr != nil {
		return s.ensureErr
	}
	return s.inner.Ensure(path)
}

func (s *spyFolders) Remove(path string) error {
	s.removed++
	if s.removeErr != nil {
		return s.removeErr
	}
	return s.inner.Remove(path)
}

type recordingStorage struct {
	mu      sync.Mutex
	err     error
	uploads []string
}

func (r *recordingStorage) Upload(ctx context.Context, localPath string, remoteName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploads = append(r.uploads, remoteName)
	return r.err
}

type recordingNotifier struct {
	messages []string
}

func (r *recordingNotifier) Notify(ctx context.Context, message string) error {
	r.messages = append(r.messages, message)
	return nil
}

var severityCritical = zap.String("severity", "critical")
