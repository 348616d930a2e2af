package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rasnes/inegi-duckdb-framework/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testTables() []*transform.Table {
	return []*transform.Table{
		{Name: "Hogares_con_Internet", Rows: []transform.Row{
			{Date: "2019", Value: 50},
			{Date: "2020", Value: 40},
			{Date: "2021", Value: 75},
		}},
		{Name: "Hogares con radio", Rows: []transform.Row{
			{Date: "2020", Value: 0},
			{Date: "2021", Value: 3},
		}},
	}
}

func TestPlotSeries(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		tables  []*transform.Table
		opts    PlotOptions
		wantErr bool
	}{
		{name: "dated series", tables: testTables(), opts: PlotOptions{Title: "Hogares"}},
		{name: "normalized", tables: testTables(), opts: PlotOptions{Normalize: true}},
		{
			name: "mixed tiers fall back to index",
			tables: []*transform.Table{
				testTables()[0],
				{Name: "Censos", Rows: []transform.Row{{Date: "Censo 2010", Value: 1}, {Date: "Censo 2020", Value: 2}}},
			},
		},
		{name: "no tables", tables: nil, wantErr: true},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "grafica_"+string(rune('a'+i))+".png")
			err := PlotSeries(tt.tables, path, tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				assert.NoFileExists(t, path)
				return
			}
			require.NoError(t, err)
			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(0))
		})
	}
}

func TestExportWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "indicadores.xlsx")
	require.NoError(t, ExportWorkbook(testTables(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Resumen", "Hogares_con_Internet", "Hogares con radio"}, f.GetSheetList())

	rows, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Indicador", rows[0][0])
	assert.Equal(t, []string{"Hogares_con_Internet", "3", "50", "75", "40", "75", "55", "25", "50"}, rows[1])
	assert.Equal(t, "N/D", rows[2][8])

	series, err := f.GetRows("Hogares con radio")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Fecha", "Hogares con radio"}, {"2020", "0"}, {"2021", "3"}}, series)

	width, err := f.GetColWidth(SummarySheet, "A")
	require.NoError(t, err)
	assert.Equal(t, 32.0, width)
	width, err = f.GetColWidth("Hogares con radio", "B")
	require.NoError(t, err)
	assert.Equal(t, 18.0, width)

	assert.Error(t, ExportWorkbook(nil, path))
}

func TestSheetName(t *testing.T) {
	used := map[string]bool{"resumen": true}

	assert.Equal(t, "Ventas_Mensuales", sheetName("Ventas/Mensuales", used))
	assert.Equal(t, "Resumen~2", sheetName("Resumen", used))
	assert.Equal(t, "Serie", sheetName("  ", used))

	long := "Porcentaje de hogares con conexion a Internet"
	first := sheetName(long, used)
	second := sheetName(long, used)
	assert.Len(t, []rune(first), 31)
	assert.Len(t, []rune(second), 31)
	assert.NotEqual(t, first, second)
}
