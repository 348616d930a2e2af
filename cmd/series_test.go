package cmd

import (
	"bytes"
	"testing"

	"github.com/rasnes/inegi-duckdb-framework/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTables() []*transform.Table {
	return []*transform.Table{
		{Name: "Alfa", Rows: []transform.Row{{Date: "2020", Value: 1}, {Date: "2021", Value: 2.5}}},
		{Name: "Beta", Rows: []transform.Row{{Date: "2019", Value: 0}, {Date: "2020", Value: 4}}},
	}
}

func TestSelectTables(t *testing.T) {
	tables := testTables()

	tests := []struct {
		name    string
		names   []string
		want    []string
		wantErr bool
	}{
		{name: "all", names: nil, want: []string{"Alfa", "Beta"}},
		{name: "requested order", names: []string{"Beta", "Alfa"}, want: []string{"Beta", "Alfa"}},
		{name: "unknown", names: []string{"Gamma"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectTables(tables, tt.names)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			names := make([]string, len(got))
			for i, table := range got {
				names[i] = table.Name
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestWriteSeriesList(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeSeriesList(&out, testTables()))

	assert.Contains(t, out.String(), "SERIE")
	assert.Contains(t, out.String(), "Alfa")
	assert.Contains(t, out.String(), "2.5")
}

func TestWriteSeriesDetail(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeSeriesDetail(&out, testTables()[1], 0))

	assert.Contains(t, out.String(), "Fecha")
	assert.Contains(t, out.String(), "Observaciones: 2")
	assert.Contains(t, out.String(), "(N/D%)")
}
