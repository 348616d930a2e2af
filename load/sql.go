package load

import (
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/microsoft/go-mssqldb"
	"github.com/rasnes/inegi-duckdb-framework/constants"
	"github.com/rasnes/inegi-duckdb-framework/transform"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know by default.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

type dialect struct {
	driverName string
	textType   string
	doubleType string
	quote      func(string) string
}

var dialects = map[string]dialect{
	"sqlite": {
		driverName: "sqlite",
		textType:   "TEXT",
		doubleType: "REAL",
		quote:      quoteIdent,
	},
	"postgres": {
		driverName: "pgx",
		textType:   "TEXT",
		doubleType: "DOUBLE PRECISION",
		quote:      quoteIdent,
	},
	"mysql": {
		driverName: "mysql",
		textType:   "VARCHAR(64)",
		doubleType: "DOUBLE",
		quote: func(name string) string {
			return "`" + strings.ReplaceAll(name, "`", "``") + "`"
		},
	},
	"sqlserver": {
		driverName: "sqlserver",
		textType:   "NVARCHAR(64)",
		doubleType: "FLOAT",
		quote: func(name string) string {
			return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
		},
	},
}

// SQLStore persists series into a relational database through database/sql drivers.
type SQLStore struct {
	Logger  *slog.Logger
	DB      *sqlx.DB
	Driver  string
	dialect dialect
}

func NewSQLStore(driver, dsn string, logger *slog.Logger) (*SQLStore, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if dsn == "" {
		return nil, fmt.Errorf("no DSN for database driver %q, set DATABASE_DSN", driver)
	}

	db, err := sqlx.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening %s database: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to %s database: %w", driver, err)
	}

	logger.Info("Connected to SQL database", "driver", driver)

	return &SQLStore{
		Logger:  logger,
		DB:      db,
		Driver:  driver,
		dialect: d,
	}, nil
}

func (s *SQLStore) Close() error {
	return s.DB.Close()
}

// ReplaceTable drops and recreates the table for the series and inserts every row, all in one
// transaction. MySQL commits DDL implicitly, so there the swap is not atomic.
func (s *SQLStore) ReplaceTable(table *transform.Table) error {
	if table == nil || len(table.Rows) == 0 {
		return fmt.Errorf("received empty table")
	}

	name := s.dialect.quote(table.Name)
	dateCol := s.dialect.quote(constants.DateColumn)
	valueCol := s.dialect.quote(table.Name)

	tx, err := s.DB.Beginx()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", name)); err != nil {
		return fmt.Errorf("error dropping table %s: %w", table.Name, err)
	}

	create := fmt.Sprintf("CREATE TABLE %s (%s %s, %s %s)",
		name, dateCol, s.dialect.textType, valueCol, s.dialect.doubleType)
	if _, err := tx.Exec(create); err != nil {
		return fmt.Errorf("error creating table %s: %w", table.Name, err)
	}

	insert := tx.Rebind(fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (?, ?)", name, dateCol, valueCol))
	stmt, err := tx.Preparex(insert)
	if err != nil {
		return fmt.Errorf("error preparing insert into %s: %w", table.Name, err)
	}
	defer stmt.Close()

	for _, row := range table.Rows {
		if _, err := stmt.Exec(row.Date, row.Value); err != nil {
			return fmt.Errorf("error inserting into %s: %w", table.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing table %s: %w", table.Name, err)
	}

	s.Logger.Debug("Replaced table", "driver", s.Driver, "table", table.Name, "rows", len(table.Rows))
	return nil
}

type storedRow struct {
	Fecha string  `db:"fecha"`
	Valor float64 `db:"valor"`
}

func (s *SQLStore) ReadTable(name string) (*transform.Table, error) {
	query := fmt.Sprintf("SELECT %s AS fecha, %s AS valor FROM %s",
		s.dialect.quote(constants.DateColumn), s.dialect.quote(name), s.dialect.quote(name))

	var rows []storedRow
	if err := s.DB.Select(&rows, query); err != nil {
		return nil, fmt.Errorf("error reading table %s: %w", name, err)
	}

	dates := make([]string, len(rows))
	values := make([]string, len(rows))
	for i, row := range rows {
		dates[i] = row.Fecha
		values[i] = fmt.Sprint(row.Valor)
	}
	return tableFromColumns(name, dates, values)
}
