package initializers

import (
	"context"
	"fmt"

	"github.com/meethahouse/dessert-api/repository"
)

// ConnectToDB opens the store selected by cfg.DBDriver.
func ConnectToDB(ctx context.Context, cfg *Config) (repository.Store, error) {
	switch cfg.DBDriver {
	case DriverMongo:
		return repository.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case DriverMySQL:
		return repository.ConnectMySQL(cfg.MySQLDSN)
	case DriverMemory:
		return repository.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
}
