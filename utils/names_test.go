package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "already safe",
			input:    "Hogares_con_Internet",
			expected: "Hogares_con_Internet",
		},
		{
			name:     "path separators",
			input:    "Usuarios/Hogares\\Total",
			expected: "Usuarios_Hogares_Total",
		},
		{
			name:     "relative path attempt",
			input:    "../secreto",
			expected: "_secreto",
		},
		{
			name:     "surrounding whitespace",
			input:    "  Valor_123 \n",
			expected: "Valor_123",
		},
		{
			name:     "spaces and accents are kept",
			input:    "Población total",
			expected: "Población total",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SafeName(tt.input))
		})
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty",
			input:    "",
			expected: []string{},
		},
		{
			name:     "single",
			input:    "6206972692",
			expected: []string{"6206972692"},
		},
		{
			name:     "blanks and empty items",
			input:    " 8999998853, ,6206972692,",
			expected: []string{"8999998853", "6206972692"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseList(tt.input))
		})
	}
}
