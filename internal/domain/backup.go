package domain

import (
	"context"
	"path/filepath"
	"strings"
	"time"
)

// DateLayout names a run's destination folder.
const DateLayout = "2006-01-02"

// Run is one execution of the backup sequence, scoped to a calendar date.
type Run struct {
	Date       time.Time
	Folder     string
	Discovered []string
	Dumped     []string
}

func NewRun(backupRoot string, now time.Time) *Run {
	return &Run{
		Date:   now,
		Folder: filepath.Join(backupRoot, now.Format(DateLayout)),
	}
}

// ArchivePath is where the run's archive is written: <folder>.zip.
func (r *Run) ArchivePath() string {
	return r.Folder + ".zip"
}

// DumpPath is the dump artifact location for a database inside the run folder.
func (r *Run) DumpPath(database string) string {
	return filepath.Join(r.Folder, DumpFilename(database))
}

// SafeDumpName reports whether a database name can be used as a file name
// inside the run folder and as a flat archive entry. MySQL allows quoted
// names containing path separators and "..", which would escape the folder.
func SafeDumpName(database string) bool {
	if database == "" || database == "." || database == ".." {
		return false
	}
	return !strings.ContainsAny(database, `/\`) && !strings.Contains(database, "..")
}

func DumpFilename(database string) string {
	return database + ".sql"
}

type State string

const (
	StateStart           State = "START"
	StateFolderReady     State = "FOLDER_READY"
	StateDatabasesListed State = "DATABASES_LISTED"
	StateDumped          State = "DUMPED"
	StateArchived        State = "ARCHIVED"
	StateCleaned         State = "CLEANED"

	StateFolderFailed  State = "FOLDER_FAILED"
	StateNothingToDump State = "NOTHING_TO_DUMP"
	StateArchiveFailed State = "ARCHIVE_FAILED"
)

// ExitCode maps a terminal state to the process exit status.
func (s State) ExitCode() int {
	switch s {
	case StateArchived, StateCleaned:
		return 0
	case StateNothingToDump:
		return 2
	case StateArchiveFailed:
		return 3
	default:
		return 1
	}
}

// Outcome is what a run reports when it terminates.
type Outcome struct {
	State         State
	Run           *Run
	Archive       string
	CleanupCalled bool
	Duration      time.Duration
}

func (o Outcome) Succeeded() bool {
	return o.State.ExitCode() == 0
}

type BackupExecutor interface {
	Execute(ctx context.Context) Outcome
}
