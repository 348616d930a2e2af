package transform

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/rasnes/inegi-duckdb-framework/constants"
)

// NullFloat is a display cell that may be empty.
type NullFloat struct {
	Value float64
	Valid bool
}

func (n NullFloat) String() string {
	if !n.Valid {
		return constants.MissingCell
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

type Stats struct {
	Name   string
	Count  int
	First  float64
	Last   float64
	Min    float64
	Max    float64
	Mean   float64
	Growth float64
	// GrowthPct is empty when the first value is zero.
	GrowthPct NullFloat
}

// Summarize computes descriptive statistics over the rows of a table, in row order.
func Summarize(table *Table) (Stats, error) {
	if table == nil || len(table.Rows) == 0 {
		return Stats{}, fmt.Errorf("error summarizing series: %w", ErrNoValidRows)
	}

	values := table.Values()
	stats := Stats{
		Name:  table.Name,
		Count: len(values),
		First: values[0],
		Last:  values[len(values)-1],
		Min:   values[0],
		Max:   values[0],
	}

	sum := 0.0
	for _, v := range values {
		sum += v
		stats.Min = math.Min(stats.Min, v)
		stats.Max = math.Max(stats.Max, v)
	}
	stats.Mean = sum / float64(len(values))
	stats.Growth = stats.Last - stats.First
	if stats.First != 0 {
		stats.GrowthPct = NullFloat{Value: stats.Growth / math.Abs(stats.First) * 100, Valid: true}
	}

	return stats, nil
}

// Normalize scales values to [0,1] with min-max scaling. A constant series maps to zeros.
func Normalize(values []float64) []float64 {
	normalized := make([]float64, len(values))
	if len(values) == 0 {
		return normalized
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		return normalized
	}
	for i, v := range values {
		normalized[i] = (v - lo) / (hi - lo)
	}
	return normalized
}

// Preview joins tables on their date label and renders the first n rows, header included.
// Dates missing from a table show as N/D. A non-positive n renders every row.
func Preview(tables []*Table, n int) [][]string {
	header := []string{constants.DateColumn}
	var labels []string
	seen := map[string]bool{}
	cells := make([]map[string]NullFloat, len(tables))

	for i, table := range tables {
		header = append(header, table.Name)
		cells[i] = make(map[string]NullFloat, len(table.Rows))
		for _, row := range table.Rows {
			cells[i][row.Date] = NullFloat{Value: row.Value, Valid: true}
			if !seen[row.Date] {
				seen[row.Date] = true
				labels = append(labels, row.Date)
			}
		}
	}

	labels = sortLabels(labels)
	if n > 0 && n < len(labels) {
		labels = labels[:n]
	}

	rows := [][]string{header}
	for _, label := range labels {
		row := []string{label}
		for i := range tables {
			row = append(row, cells[i][label].String())
		}
		rows = append(rows, row)
	}
	return rows
}

// sortLabels orders labels by their timeline key. Labels without a key keep their order after
// the rest.
func sortLabels(labels []string) []string {
	timeline := NewTimeline(labels)
	order := make([]int, len(labels))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if timeline.Valid[ia] != timeline.Valid[ib] {
			return timeline.Valid[ia]
		}
		return timeline.Valid[ia] && timeline.Keys[ia] < timeline.Keys[ib]
	})

	sorted := make([]string, len(labels))
	for i, idx := range order {
		sorted[i] = labels[idx]
	}
	return sorted
}
