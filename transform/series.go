package transform

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rasnes/inegi-duckdb-framework/constants"
	"github.com/rasnes/inegi-duckdb-framework/extract"
	"github.com/rasnes/inegi-duckdb-framework/utils"
	"github.com/shopspring/decimal"
)

var (
	ErrMissingIdentifier = errors.New("series has no indicator identifier")
	ErrNoObservations    = errors.New("series has no observations")
	ErrMissingColumns    = errors.New("observations lack TIME_PERIOD or OBS_VALUE")
	ErrNoValidRows       = errors.New("no valid rows left after cleaning")
)

type Options struct {
	// Round rounds values half to even to zero decimals.
	Round bool
}

type Row struct {
	Date  string
	Value float64
}

// Table is the canonical form of one indicator: a date label and a finite value per row.
type Table struct {
	Name string
	Rows []Row
}

func (t *Table) Dates() []string {
	dates := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		dates[i] = row.Date
	}
	return dates
}

func (t *Table) Values() []float64 {
	values := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row.Value
	}
	return values
}

// BuildTable turns a raw series into its canonical table. Series that cannot produce a table
// return one of the Err* sentinels, wrapped with the indicator id.
func BuildTable(series extract.RawSeries, catalog Catalog, opts Options) (*Table, error) {
	id := strings.TrimSpace(series.Indicator)
	if id == "" {
		return nil, ErrMissingIdentifier
	}
	if len(series.Observations) == 0 {
		return nil, fmt.Errorf("indicator %s: %w", id, ErrNoObservations)
	}

	hasPeriod, hasValue := false, false
	for _, observation := range series.Observations {
		if _, ok := observation.Field(extract.KeyTimePeriod); ok {
			hasPeriod = true
		}
		if _, ok := observation.Field(extract.KeyObsValue); ok {
			hasValue = true
		}
	}
	if !hasPeriod || !hasValue {
		return nil, fmt.Errorf("indicator %s: %w", id, ErrMissingColumns)
	}

	table := &Table{Name: DisplayName(series, catalog)}
	for _, observation := range series.Observations {
		periodRaw, _ := observation.Field(extract.KeyTimePeriod)
		date, ok := PeriodLabel(periodRaw)
		if !ok {
			continue
		}
		valueRaw, _ := observation.Field(extract.KeyObsValue)
		value, ok := ParseValue(valueRaw)
		if !ok {
			continue
		}
		if opts.Round {
			value = decimal.NewFromFloat(value).RoundBank(0).InexactFloat64()
		}
		table.Rows = append(table.Rows, Row{Date: date, Value: value})
	}

	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("indicator %s: %w", id, ErrNoValidRows)
	}
	return table, nil
}

// DisplayName resolves the series name: catalog entry, then the API description, then
// Valor_<id>. The result is safe to use as a file or table name and never collides with
// the date column.
func DisplayName(series extract.RawSeries, catalog Catalog) string {
	id := strings.TrimSpace(series.Indicator)
	fallback := utils.SafeName("Valor_" + id)

	if name, ok := catalog.Name(id); ok {
		if safe, ok := usableName(name); ok {
			return safe
		}
	}
	if safe, ok := usableName(series.Description); ok {
		return safe
	}
	return fallback
}

func usableName(name string) (string, bool) {
	safe := utils.SafeName(strings.TrimSpace(name))
	if safe == "" || strings.EqualFold(safe, constants.DateColumn) {
		return "", false
	}
	return safe, true
}

// ParseValue coerces an OBS_VALUE to a finite float. JSON numbers are used as is, strings are
// trimmed and parsed; everything else (null, "N/E", booleans, NaN, Inf) is missing.
func ParseValue(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}

	var text string
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, false
		}
		text = strings.TrimSpace(text)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		text = string(raw)
	default:
		return 0, false
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

// PeriodLabel reads a TIME_PERIOD as text. Null, empty and non-scalar periods are missing.
func PeriodLabel(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}

	switch raw[0] {
	case '"':
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return "", false
		}
		text = strings.TrimSpace(text)
		return text, text != ""
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return string(raw), true
	default:
		return "", false
	}
}
