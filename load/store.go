package load

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/rasnes/inegi-duckdb-framework/config"
	"github.com/rasnes/inegi-duckdb-framework/transform"
)

// TableLoader persists one canonical table per indicator with full replace semantics.
type TableLoader interface {
	ReplaceTable(table *transform.Table) error
	ReadTable(name string) (*transform.Table, error)
	Close() error
}

// Connect opens the configured database. It returns a nil loader and no error when
// database.driver is empty, meaning only CSV files are written.
// The DSN is read from DATABASE_DSN and falls back to database.path.
func Connect(cfg *config.Config, logger *slog.Logger) (TableLoader, error) {
	switch cfg.Database.Driver {
	case "":
		logger.Info("Database persistence disabled")
		return nil, nil
	case "duckdb":
		db, err := NewDuckDB(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("error creating DuckDB database: %w", err)
		}
		return db, nil
	default:
		dsn := os.Getenv("DATABASE_DSN")
		if dsn == "" {
			dsn = cfg.Database.Path
		}
		store, err := NewSQLStore(cfg.Database.Driver, dsn, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}
