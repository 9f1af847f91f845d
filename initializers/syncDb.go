package initializers

import (
	"context"

	"github.com/meethahouse/dessert-api/repository"
)

type migrator interface {
	Migrate() error
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// SyncDatabase brings the schema (MySQL tables or Mongo indexes) up to date.
func SyncDatabase(ctx context.Context, store repository.Store) error {
	switch s := store.(type) {
	case migrator:
		return s.Migrate()
	case indexer:
		return s.EnsureIndexes(ctx)
	}
	return nil
}
