package normalizer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignedAmount_Formats(t *testing.T) {
	tests := []struct {
		name string
		raw  interface{}
		want float64
	}{
		{"plain float", 1234.56, 1234.56},
		{"plain int", 1500, 1500},
		{"dot decimal", "1234.56", 1234.56},
		{"comma decimal", "1234,56", 1234.56},
		{"thousands dot, comma decimal", "1.234,56", 1234.56},
		{"thousands comma, dot decimal", "1,234.56", 1234.56},
		{"currency symbol and spaces", "$ 1.234,56", 1234.56},
		{"negative text", "-50", -50},
		{"negative with symbol", "-$1.200,00", -1200},
		{"large grouped", "12.345.678,90", 12345678.90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSignedAmount(tt.raw)
			require.True(t, ok)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestParseSignedAmount_Idempotence(t *testing.T) {
	// Reformatting a parsed value and parsing again yields the same
	// number, for every accepted representation.
	inputs := []interface{}{"1.234,56", "1234.56", 1234.56, "1,234.56"}

	for _, raw := range inputs {
		value, ok := ParseSignedAmount(raw)
		require.True(t, ok)

		again, ok := ParseSignedAmount(fmt.Sprintf("%.2f", value))
		require.True(t, ok)
		assert.InDelta(t, value, again, 0.001)
	}
}

func TestParseSignedAmount_Rejections(t *testing.T) {
	tests := []struct {
		name string
		raw  interface{}
	}{
		{"zero text", "0"},
		{"zero number", 0.0},
		{"zero with decimals", "0,00"},
		{"empty", ""},
		{"letters", "abc"},
		{"only symbols", "$ -"},
		{"nil", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParseSignedAmount(tt.raw)
			assert.False(t, ok, "expected %v to be rejected", tt.raw)
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 130000.00, Round2(100*1300.0))
	assert.Equal(t, 10.56, Round2(10.555))
	assert.Equal(t, -10.56, Round2(-10.555))
}
