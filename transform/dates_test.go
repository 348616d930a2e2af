package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewTimeline(t *testing.T) {
	jan2020 := float64(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).Unix())
	feb2020 := float64(time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC).Unix())
	mar2021 := float64(time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC).Unix())

	tests := []struct {
		name      string
		labels    []string
		wantTier  Tier
		wantKeys  []float64
		wantValid []bool
	}{
		{
			name:      "monthly labels parse as dates",
			labels:    []string{"2020/01", "2020/02"},
			wantTier:  TierDate,
			wantKeys:  []float64{jan2020, feb2020},
			wantValid: []bool{true, true},
		},
		{
			name:      "mixed labels keep the date tier and mark the rest invalid",
			labels:    []string{"2020", "15/03/2021", "Trimestre 1"},
			wantTier:  TierDate,
			wantKeys:  []float64{jan2020, mar2021, 0},
			wantValid: []bool{true, true, false},
		},
		{
			name:      "year extraction",
			labels:    []string{"Censo 2010", "Conteo 2015", "sin dato"},
			wantTier:  TierYear,
			wantKeys:  []float64{2010, 2015, 0},
			wantValid: []bool{true, true, false},
		},
		{
			name:      "ordinal fallback",
			labels:    []string{"Primero", "Segundo", "Tercero"},
			wantTier:  TierOrdinal,
			wantKeys:  []float64{0, 1, 2},
			wantValid: []bool{true, true, true},
		},
		{
			name:      "empty input",
			labels:    []string{},
			wantTier:  TierOrdinal,
			wantKeys:  []float64{},
			wantValid: []bool{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewTimeline(tt.labels)
			assert.Equal(t, tt.wantTier, got.Tier)
			assert.Equal(t, tt.wantKeys, got.Keys)
			assert.Equal(t, tt.wantValid, got.Valid)
		})
	}
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "date", TierDate.String())
	assert.Equal(t, "year", TierYear.String())
	assert.Equal(t, "ordinal", TierOrdinal.String())
}
