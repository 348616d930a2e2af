package load

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/rasnes/inegi-duckdb-framework/constants"
	"github.com/rasnes/inegi-duckdb-framework/transform"
	"github.com/sourcegraph/conc/iter"
)

// WriteSeriesCSV writes <dir>/<name>.csv, replacing any previous file, and returns its path
// and the xxhash of the bytes written.
func WriteSeriesCSV(dir string, table *transform.Table) (string, uint64, error) {
	data, err := EncodeTable(table)
	if err != nil {
		return "", 0, err
	}

	path := filepath.Join(dir, table.Name+constants.CSVExtension)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", 0, fmt.Errorf("error writing %s: %w", path, err)
	}

	return path, xxhash.Sum64(data), nil
}

// ReadSeriesCSV reads an artifact back. The first column is the date label and the second the
// value; rows whose value is not a finite number are dropped. The table is named after the file.
func ReadSeriesCSV(path string) (*transform.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", path, err)
	}
	defer file.Close()

	df := dataframe.ReadCSV(file,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, df.Err)
	}
	if df.Ncol() < 2 {
		return nil, fmt.Errorf("%s has %d columns, expected at least 2", path, df.Ncol())
	}

	names := df.Names()
	dates := df.Col(names[0]).Records()
	values := df.Col(names[1]).Records()

	table := &transform.Table{Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))}
	for i := range dates {
		date := strings.TrimSpace(dates[i])
		if date == "" {
			continue
		}
		value, ok := parseFinite(values[i])
		if !ok {
			continue
		}
		table.Rows = append(table.Rows, transform.Row{Date: date, Value: value})
	}

	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("%s: %w", path, transform.ErrNoValidRows)
	}
	return table, nil
}

// ReadSeriesDir reads every CSV artifact in dir concurrently. Files that cannot be read are
// logged and skipped. The result is sorted by series name.
func ReadSeriesDir(dir string, logger *slog.Logger) ([]*transform.Table, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("error reading output directory: %w", err)
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*"+constants.CSVExtension))
	if err != nil {
		return nil, fmt.Errorf("error listing %s: %w", dir, err)
	}

	mapper := iter.Mapper[string, *transform.Table]{
		MaxGoroutines: 8,
	}
	results := mapper.Map(paths, func(path *string) *transform.Table {
		table, err := ReadSeriesCSV(*path)
		if err != nil {
			logger.Warn("Skipping unreadable series file", "path", *path, "error", err)
			return nil
		}
		return table
	})

	tables := make([]*transform.Table, 0, len(results))
	for _, table := range results {
		if table != nil {
			tables = append(tables, table)
		}
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })

	return tables, nil
}

func parseFinite(raw string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}
