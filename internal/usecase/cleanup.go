package usecase

import (
	"github.com/semmidev/mysqlbackup/internal/domain"
)

// Cleanup removes a run folder once its archive exists. Failing to remove it
// leaves the folder behind and is only worth a warning.
type Cleanup struct {
	folders domain.Folders
	logger  Logger
}

func NewCleanup(folders domain.Folders, logger Logger) *Cleanup {
	return &Cleanup{folders: folders, logger: logger}
}

func (uc *Cleanup) Execute(folder string) bool {
	if err := uc.folders.Remove(folder); err != nil {
		uc.logger.Warnf("Could not delete backup folder %s: %v", folder, err)
		return false
	}

	uc.logger.Infof("Deleted backup folder %s", folder)
	return true
}
