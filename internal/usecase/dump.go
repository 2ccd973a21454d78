package usecase

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/iter"

	"github.com/semmidev/mysqlbackup/internal/domain"
)

// Dump runs the dump utility once per database. Failures are logged and
// skipped; they never stop the remaining databases.
type Dump struct {
	dumper      domain.DatabaseDumper
	concurrency int
	logger      Logger
}

func NewDump(dumper domain.DatabaseDumper, concurrency int, logger Logger) *Dump {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Dump{dumper: dumper, concurrency: concurrency, logger: logger}
}

// Execute returns the databases whose dump file was produced, in input order.
func (uc *Dump) Execute(ctx context.Context, run *domain.Run, databases []string) []string {
	// One result slot per database; slots are only read after every dump returned.
	ok := iter.Mapper[string, bool]{MaxGoroutines: uc.concurrency}.Map(databases, func(name *string) bool {
		return uc.dumpOne(ctx, run, *name)
	})

	dumped := make([]string, 0, len(databases))
	for i, name := range databases {
		if ok[i] {
			dumped = append(dumped, name)
		}
	}
	return dumped
}

func (uc *Dump) dumpOne(ctx context.Context, run *domain.Run, database string) bool {
	if !domain.SafeDumpName(database) {
		uc.logger.Errorf("Could not dump database %q: name is not usable as a file name", database)
		return false
	}

	start := time.Now()
	uc.logger.Infof("[%s] Dumping database...", database)

	if err := uc.dumper.DumpDatabase(ctx, database, run.DumpPath(database)); err != nil {
		uc.logger.Errorf("Could not dump database %s: %v", database, err)
		return false
	}

	uc.logger.Infof("[%s] Dump completed in %s", database, time.Since(start).Round(time.Millisecond))
	return true
}
