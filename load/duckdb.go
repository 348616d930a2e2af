package load

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/template"

	"github.com/marcboeker/go-duckdb"
	"github.com/rasnes/inegi-duckdb-framework/config"
	"github.com/rasnes/inegi-duckdb-framework/constants"
	"github.com/rasnes/inegi-duckdb-framework/transform"
)

const replaceTableTemplate = `CREATE OR REPLACE TABLE {{.Table}} AS
SELECT * FROM read_csv('{{.CsvFile}}', delim=',', quote='"', escape='"', header=true, columns={{.Columns}});`

type DuckDB struct {
	Logger    *slog.Logger
	DB        *sql.DB
	Connector *duckdb.Connector
	DBType    string
}

func NewDuckDB(config *config.DatabaseConfig, logger *slog.Logger) (*DuckDB, error) {
	var path string
	var dbType string
	if strings.HasPrefix(config.Path, "md:") {
		motherduckToken := os.Getenv("MOTHERDUCK_TOKEN")
		if motherduckToken == "" {
			return nil, fmt.Errorf("MOTHERDUCK_TOKEN env variable is not set")
		}
		path = fmt.Sprintf("%s?motherduck_token=%s", config.Path, motherduckToken)
		dbType = ":md:"
	} else if config.Path == "" || config.Path == ":memory:" {
		path = ""
		dbType = ":memory:"
	} else {
		path = config.Path
		dbType = path
	}

	var connInitFn func(driver.ExecerContext) error
	if len(config.ConnInitFnQueries) > 0 {
		connInitFn = func(exec driver.ExecerContext) error {
			for _, path := range config.ConnInitFnQueries {
				query, err := readQuery(path)
				if err != nil {
					return err
				}

				if _, err = exec.ExecContext(context.Background(), string(query), nil); err != nil {
					return fmt.Errorf("failed to execute query from file %s: %w", path, err)
				}
			}
			return nil
		}
		logger.Debug(fmt.Sprintf("Connection initialization queries: %v", config.ConnInitFnQueries))
	}

	connector, err := duckdb.NewConnector(path, connInitFn)
	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(connector)

	switch dbType {
	case ":memory:":
		logger.Info("Connected to DuckDB in-memory database")
	case ":md:":
		logger.Info("Connected to MotherDuck database")
	default:
		logger.Info(fmt.Sprintf("Connected to local DuckDB database at %s", dbType))
	}

	return &DuckDB{
		Logger:    logger,
		DB:        db,
		Connector: connector,
		DBType:    dbType,
	}, nil
}

func readQuery(path string) ([]byte, error) {
	query, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return query, nil
}

func (db *DuckDB) Close() error {
	dbErr := db.DB.Close()
	if err := db.Connector.Close(); err != nil {
		return err
	}
	return dbErr
}

// ReplaceTable stages the table as CSV and swaps the DuckDB table in one statement.
// Fecha is always VARCHAR so that labels like "2020/01" are not reinterpreted.
func (db *DuckDB) ReplaceTable(table *transform.Table) error {
	csv, err := EncodeTable(table)
	if err != nil {
		return err
	}

	columns := fmt.Sprintf("{%s: 'VARCHAR', %s: 'DOUBLE'}",
		quoteLiteral(constants.DateColumn), quoteLiteral(table.Name))
	params := map[string]any{
		"Table":   quoteIdent(table.Name),
		"Columns": columns,
	}

	if _, err := db.LoadCSVWithQuery(csv, replaceTableTemplate, params); err != nil {
		return fmt.Errorf("error replacing table %s: %w", table.Name, err)
	}
	return nil
}

// ReadTable reads a table written by ReplaceTable back into a series.
func (db *DuckDB) ReadTable(name string) (*transform.Table, error) {
	query := fmt.Sprintf("SELECT %s AS fecha, %s AS valor FROM %s;",
		quoteIdent(constants.DateColumn), quoteIdent(name), quoteIdent(name))
	results, err := db.GetQueryResults(query)
	if err != nil {
		return nil, fmt.Errorf("error reading table %s: %w", name, err)
	}
	return tableFromColumns(name, results["fecha"], results["valor"])
}

// LoadCSVWithQuery loads CSV data using a templated SQL query.
// The query template should use {{.CsvFile}} where the temporary CSV filename should be inserted.
func (db *DuckDB) LoadCSVWithQuery(csv []byte, queryTemplate string, params map[string]any) (sql.Result, error) {
	tmpFile, err := createTmpFile(csv)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmpFile.Name())

	if params == nil {
		params = make(map[string]any)
	}
	params["CsvFile"] = strings.ReplaceAll(tmpFile.Name(), "'", "''")

	tmpl, err := template.New("sql").Parse(queryTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse query template: %w", err)
	}

	var queryBuffer bytes.Buffer
	if err := tmpl.Execute(&queryBuffer, params); err != nil {
		return nil, fmt.Errorf("failed to execute query template: %w", err)
	}

	db.Logger.Debug("Executing DuckDB query", "query", queryBuffer.String())

	res, err := db.DB.ExecContext(context.Background(), queryBuffer.String())
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	return res, nil
}

func createTmpFile(csv []byte) (*os.File, error) {
	if len(csv) == 0 {
		return nil, fmt.Errorf("received empty CSV data")
	}

	tmpFile, err := os.CreateTemp("", constants.TmpCSVFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}

	if _, err := tmpFile.Write(csv); err != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		return nil, fmt.Errorf("failed to write to temporary file: %w", err)
	}

	// Close the file to flush the data
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpFile.Name())
		return nil, fmt.Errorf("failed to close temporary file: %w", err)
	}

	return tmpFile, nil
}

// GetQueryResults executes a query and returns the results as a map of column names to slices of values
func (db *DuckDB) GetQueryResults(query string) (map[string][]string, error) {
	rows, err := db.DB.QueryContext(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	results := make(map[string][]string)
	for _, col := range columns {
		results[col] = []string{}
	}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		for i, col := range columns {
			results[col] = append(results[col], fmt.Sprintf("%v", values[i]))
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}

	return results, nil
}

// quoteIdent quotes a table or column name the way DuckDB, SQLite and Postgres expect.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// tableFromColumns rebuilds a series from a date and a value column read as text.
func tableFromColumns(name string, dates, values []string) (*transform.Table, error) {
	if len(dates) != len(values) {
		return nil, fmt.Errorf("table %s: %d dates for %d values", name, len(dates), len(values))
	}

	table := &transform.Table{Name: name}
	for i := range dates {
		value, ok := parseFinite(values[i])
		if !ok {
			continue
		}
		table.Rows = append(table.Rows, transform.Row{Date: dates[i], Value: value})
	}
	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("table %s: %w", name, transform.ErrNoValidRows)
	}
	return table, nil
}
