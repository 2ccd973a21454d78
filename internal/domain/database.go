package domain

import "context"

// DatabaseLister returns the raw database names visible to the configured
// account, in the order the server reports them.
type DatabaseLister interface {
	ListDatabases(ctx context.Context) ([]string, error)
}

// DatabaseDumper writes a complete logical dump of one database to outputPath.
type DatabaseDumper interface {
	DumpDatabase(ctx context.Context, database, outputPath string) error
}
