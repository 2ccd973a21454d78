package usecase

import (
	"context"

	"github.com/semmidev/mysqlbackup/internal/domain"
)

// Enumerator lists the databases to back up. Any failure to list degrades to
// an empty result; callers treat empty as nothing to back up.
type Enumerator struct {
	lister  domain.DatabaseLister
	exclude map[string]struct{}
	logger  Logger
}

func NewEnumerator(lister domain.DatabaseLister, exclude []string, logger Logger) *Enumerator {
	set := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		set[name] = struct{}{}
	}
	return &Enumerator{lister: lister, exclude: set, logger: logger}
}

func (uc *Enumerator) Execute(ctx context.Context) []string {
	names, err := uc.lister.ListDatabases(ctx)
	if err != nil {
		uc.logger.Criticalf("Could not get a list of databases: %v", err)
		return nil
	}

	var databases []string
	for _, name := range names {
		if _, skip := uc.exclude[name]; skip {
			continue
		}
		databases = append(databases, name)
	}

	uc.logger.Infof("Found %d database(s), %d excluded", len(databases), len(names)-len(databases))
	return databases
}
