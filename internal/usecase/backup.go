package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/semmidev/mysqlbackup/internal/domain"
)

type Logger interface {
	Infof(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Criticalf(template string, args ...interface{})
}

// Backup sequences one run: folder, enumeration, dumps, archive, cleanup.
type Backup struct {
	backupRoot string
	folders    domain.Folders
	enumerator *Enumerator
	dumps      *Dump
	archiver   domain.Archiver
	uploads    *Upload
	cleanup    *Cleanup
	notifiers  []domain.Notifier
	logger     Logger
	now        func() time.Time
}

func NewBackup(
	backupRoot string,
	folders domain.Folders,
	enumerator *Enumerator,
	dumps *Dump,
	archiver domain.Archiver,
	uploads *Upload,
	cleanup *Cleanup,
	notifiers []domain.Notifier,
	logger Logger,
) *Backup {
	return &Backup{
		backupRoot: backupRoot,
		folders:    folders,
		enumerator: enumerator,
		dumps:      dumps,
		archiver:   archiver,
		uploads:    uploads,
		cleanup:    cleanup,
		notifiers:  notifiers,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the clock that dates runs.
func (uc *Backup) WithClock(now func() time.Time) *Backup {
	uc.now = now
	return uc
}

func (uc *Backup) Execute(ctx context.Context) domain.Outcome {
	start := time.Now()
	run := domain.NewRun(uc.backupRoot, uc.now())
	outcome := domain.Outcome{State: domain.StateStart, Run: run}

	uc.logger.Infof("=== Starting backup run %s ===", run.Date.Format(domain.DateLayout))

	outcome.State = uc.execute(ctx, run, &outcome)
	outcome.Duration = time.Since(start)

	uc.report(ctx, outcome)
	return outcome
}

func (uc *Backup) execute(ctx context.Context, run *domain.Run, outcome *domain.Outcome) domain.State {
	if err := uc.folders.Ensure(run.Folder); err != nil {
		uc.logger.Criticalf("Backup folder not present: %v", err)
		return domain.StateFolderFailed
	}
	uc.advance(outcome, domain.StateFolderReady)

	run.Discovered = uc.enumerator.Execute(ctx)
	if len(run.Discovered) == 0 {
		uc.logger.Warnf("No databases to back up")
		return domain.StateNothingToDump
	}
	uc.advance(outcome, domain.StateDatabasesListed)

	run.Dumped = uc.dumps.Execute(ctx, run, run.Discovered)
	uc.advance(outcome, domain.StateDumped)

	archive := run.ArchivePath()
	if err := uc.archiver.Archive(run.Folder, run.Dumped, archive); err != nil {
		uc.logger.Errorf("Could not archive %s, keeping folder: %v", run.Folder, err)
		return domain.StateArchiveFailed
	}
	outcome.Archive = archive
	uc.logger.Infof("Archived %d database(s) to %s", len(run.Dumped), archive)
	uc.advance(outcome, domain.StateArchived)

	if err := uc.uploads.Execute(ctx, archive); err != nil {
		uc.logger.Warnf("Offsite copy incomplete: %v", err)
	}

	outcome.CleanupCalled = true
	if !uc.cleanup.Execute(run.Folder) {
		return domain.StateArchived
	}
	return domain.StateCleaned
}

func (uc *Backup) advance(outcome *domain.Outcome, state domain.State) {
	outcome.State = state
	uc.logger.Infof("Run state: %s", state)
}

func (uc *Backup) report(ctx context.Context, outcome domain.Outcome) {
	run := outcome.Run
	summary := fmt.Sprintf("Backup run %s finished: %s, dumped %d/%d database(s) in %s",
		run.Date.Format(domain.DateLayout),
		outcome.State,
		len(run.Dumped),
		len(run.Discovered),
		outcome.Duration.Round(time.Second),
	)

	if outcome.Succeeded() {
		uc.logger.Infof("%s", summary)
	} else {
		uc.logger.Errorf("%s", summary)
	}

	for _, n := range uc.notifiers {
		if err := n.Notify(ctx, summary); err != nil {
			uc.logger.Warnf("Could not send run notification: %v", err)
		}
	}
}
