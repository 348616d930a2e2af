package transform

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/rasnes/inegi-duckdb-framework/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func observation(period, value string) extract.Observation {
	obs := extract.Observation{}
	if period != "" {
		obs[extract.KeyTimePeriod] = json.RawMessage(period)
	}
	if value != "" {
		obs[extract.KeyObsValue] = json.RawMessage(value)
	}
	return obs
}

func TestBuildTable(t *testing.T) {
	catalog := Catalog{"123": "Test_Indicator", "777": "Ventas/Mensuales"}

	tests := []struct {
		name    string
		series  extract.RawSeries
		opts    Options
		want    *Table
		wantErr error
	}{
		{
			name: "catalog name and non-numeric row dropped",
			series: extract.RawSeries{
				Indicator: "123",
				Observations: []extract.Observation{
					observation(`"2020"`, `"100"`),
					observation(`"2021"`, `"N/E"`),
				},
			},
			want: &Table{Name: "Test_Indicator", Rows: []Row{{Date: "2020", Value: 100}}},
		},
		{
			name: "description used when not in catalog",
			series: extract.RawSeries{
				Indicator:   "456",
				Description: "Hogares con radio",
				Observations: []extract.Observation{
					observation(`"2019/01"`, `" 12.5 "`),
					observation(`"2019/02"`, `13`),
				},
			},
			want: &Table{Name: "Hogares con radio", Rows: []Row{
				{Date: "2019/01", Value: 12.5},
				{Date: "2019/02", Value: 13},
			}},
		},
		{
			name: "fallback name and path separators replaced",
			series: extract.RawSeries{
				Indicator:    "777",
				Observations: []extract.Observation{observation(`"2020"`, `"1"`)},
			},
			want: &Table{Name: "Ventas_Mensuales", Rows: []Row{{Date: "2020", Value: 1}}},
		},
		{
			name: "Valor fallback",
			series: extract.RawSeries{
				Indicator:    "999",
				Description:  "   ",
				Observations: []extract.Observation{observation(`2020`, `"1.5"`)},
			},
			want: &Table{Name: "Valor_999", Rows: []Row{{Date: "2020", Value: 1.5}}},
		},
		{
			name: "missing dates and null values dropped",
			series: extract.RawSeries{
				Indicator: "123",
				Observations: []extract.Observation{
					observation(`null`, `"5"`),
					observation(`""`, `"6"`),
					observation(`"2020"`, `null`),
					observation(`"2021"`, `true`),
					observation(`"2022"`, `"NaN"`),
					observation(`"2023"`, `{"v": 1}`),
					observation(`"2024"`, `"7"`),
				},
			},
			want: &Table{Name: "Test_Indicator", Rows: []Row{{Date: "2024", Value: 7}}},
		},
		{
			name: "half to even rounding",
			series: extract.RawSeries{
				Indicator: "123",
				Observations: []extract.Observation{
					observation(`"2020"`, `"2.5"`),
					observation(`"2021"`, `"3.5"`),
					observation(`"2022"`, `"-1.6"`),
				},
			},
			opts: Options{Round: true},
			want: &Table{Name: "Test_Indicator", Rows: []Row{
				{Date: "2020", Value: 2},
				{Date: "2021", Value: 4},
				{Date: "2022", Value: -2},
			}},
		},
		{
			name:    "missing identifier",
			series:  extract.RawSeries{Observations: []extract.Observation{observation(`"2020"`, `"1"`)}},
			wantErr: ErrMissingIdentifier,
		},
		{
			name:    "no observations",
			series:  extract.RawSeries{Indicator: "123"},
			wantErr: ErrNoObservations,
		},
		{
			name: "no OBS_VALUE anywhere",
			series: extract.RawSeries{
				Indicator:    "123",
				Observations: []extract.Observation{observation(`"2020"`, "")},
			},
			wantErr: ErrMissingColumns,
		},
		{
			name: "no TIME_PERIOD anywhere",
			series: extract.RawSeries{
				Indicator:    "123",
				Observations: []extract.Observation{observation("", `"1"`)},
			},
			wantErr: ErrMissingColumns,
		},
		{
			name: "every value non-numeric",
			series: extract.RawSeries{
				Indicator: "123",
				Observations: []extract.Observation{
					observation(`"2020"`, `"N/E"`),
					observation(`"2021"`, `""`),
				},
			},
			wantErr: ErrNoValidRows,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildTable(tt.series, catalog, tt.opts)
			if tt.wantErr != nil {
				assert.Nil(t, got)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{`"100"`, 100, true},
		{`"-3.25"`, -3.25, true},
		{`"1e3"`, 1000, true},
		{`42.5`, 42.5, true},
		{`"N/E"`, 0, false},
		{`""`, 0, false},
		{`null`, 0, false},
		{`false`, 0, false},
		{`"Inf"`, 0, false},
		{`[1]`, 0, false},
		{``, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseValue(json.RawMessage(tt.raw))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTable_Columns(t *testing.T) {
	table := &Table{Name: "x", Rows: []Row{{Date: "2020", Value: 1}, {Date: "2021", Value: 2}}}
	assert.Equal(t, []string{"2020", "2021"}, table.Dates())
	assert.Equal(t, []float64{1, 2}, table.Values())
}

func TestDisplayName(t *testing.T) {
	catalog := Catalog{"123": "Test_Indicator", "321": "Fecha"}

	tests := []struct {
		name   string
		series extract.RawSeries
		want   string
	}{
		{"catalog entry", extract.RawSeries{Indicator: "123", Description: "Otro"}, "Test_Indicator"},
		{"description", extract.RawSeries{Indicator: "456", Description: " Hogares con radio "}, "Hogares con radio"},
		{"identifier fallback", extract.RawSeries{Indicator: "456"}, "Valor_456"},
		{"catalog name taken by date column", extract.RawSeries{Indicator: "321", Description: "Periodo"}, "Periodo"},
		{"description taken by date column", extract.RawSeries{Indicator: "654", Description: "fecha"}, "Valor_654"},
		{"both taken by date column", extract.RawSeries{Indicator: "321", Description: "FECHA"}, "Valor_321"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.series, catalog))
		})
	}
}
