package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/multierr"

	"github.com/semmidev/mysqlbackup/internal/domain"
)

type UploadTarget struct {
	Name    string
	Storage domain.Storage
}

// Upload copies a finished archive to every offsite target in parallel.
type Upload struct {
	targets []UploadTarget
	logger  Logger
}

func NewUpload(targets []UploadTarget, logger Logger) *Upload {
	return &Upload{targets: targets, logger: logger}
}

// Execute returns the combined error of all failed targets.
func (uc *Upload) Execute(ctx context.Context, archivePath string) error {
	if len(uc.targets) == 0 {
		return nil
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs error
	)
	remoteName := filepath.Base(archivePath)

	for _, target := range uc.targets {
		wg.Add(1)
		go func(t UploadTarget) {
			defer wg.Done()

			uc.logger.Infof("Uploading %s to %s...", remoteName, t.Name)
			if err := t.Storage.Upload(ctx, archivePath, remoteName); err != nil {
				uc.logger.Errorf("Failed to upload %s to %s: %v", remoteName, t.Name, err)
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", t.Name, err))
				mu.Unlock()
				return
			}
			uc.logger.Infof("Successfully uploaded %s to %s", remoteName, t.Name)
		}(target)
	}

	wg.Wait()
	return errs
}
