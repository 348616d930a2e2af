package report

import (
	"fmt"
	"strings"

	"github.com/rasnes/inegi-duckdb-framework/constants"
	"github.com/rasnes/inegi-duckdb-framework/transform"
	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet = "Resumen"
	// Excel refuses longer sheet names.
	maxSheetName = 31
)

var summaryHeaders = []string{
	"Indicador", "Observaciones", "Primero", "Último", "Mínimo", "Máximo", "Promedio", "Crecimiento", "Crecimiento %",
}

var sheetNameReplacer = strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "(", "]", ")")

// ExportWorkbook writes a workbook with a Resumen sheet holding the statistics of every table
// and one sheet per table with its rows.
func ExportWorkbook(tables []*transform.Table, path string) error {
	if len(tables) == 0 {
		return fmt.Errorf("no series to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("error naming summary sheet: %w", err)
	}
	if err := writeRow(f, SummarySheet, 1, stringsToCells(summaryHeaders)); err != nil {
		return err
	}

	used := map[string]bool{strings.ToLower(SummarySheet): true}
	for i, table := range tables {
		stats, err := transform.Summarize(table)
		if err != nil {
			return fmt.Errorf("error summarizing %s: %w", table.Name, err)
		}

		var growthPct interface{} = stats.GrowthPct.String()
		if stats.GrowthPct.Valid {
			growthPct = stats.GrowthPct.Value
		}
		summaryRow := []interface{}{
			stats.Name, stats.Count, stats.First, stats.Last, stats.Min, stats.Max, stats.Mean, stats.Growth, growthPct,
		}
		if err := writeRow(f, SummarySheet, i+2, summaryRow); err != nil {
			return err
		}

		sheet := sheetName(table.Name, used)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("error creating sheet %s: %w", sheet, err)
		}
		if err := writeRow(f, sheet, 1, []interface{}{constants.DateColumn, table.Name}); err != nil {
			return err
		}
		for j, row := range table.Rows {
			if err := writeRow(f, sheet, j+2, []interface{}{row.Date, row.Value}); err != nil {
				return err
			}
		}
		if err := f.SetColWidth(sheet, "A", "B", 18); err != nil {
			return fmt.Errorf("error sizing columns of %s: %w", sheet, err)
		}
	}
	if err := f.SetColWidth(SummarySheet, "A", "A", 32); err != nil {
		return fmt.Errorf("error sizing columns of %s: %w", SummarySheet, err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("error saving workbook to %s: %w", path, err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("error writing row %d of %s: %w", row, sheet, err)
	}
	return nil
}

func stringsToCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

// sheetName returns a valid, unused sheet name derived from name.
func sheetName(name string, used map[string]bool) string {
	base := strings.TrimSpace(sheetNameReplacer.Replace(name))
	base = strings.Trim(base, "'")
	if base == "" {
		base = "Serie"
	}
	base = truncateRunes(base, maxSheetName)

	candidate := base
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf("~%d", n)
		candidate = truncateRunes(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
