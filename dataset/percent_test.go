package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePercent(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"12%", 12},
		{"12.5%", 12.5},
		{" 0.75% ", 0.75},
		{"1,234%", 1234},
		{"1,234.5%", 1234.5},
		{"1,000,000%", 1000000},
		{"42", 42},
		{"-3.5%", -3.5},
		{"7 %", 7},
	}
	for _, tt := range tests {
		got, err := ParsePercent(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestParsePercentRejects(t *testing.T) {
	for _, input := range []string{"", "%", "  ", "n/a", "- -", "12%%", "NaN", "Inf", "1.2.3%", "abc%", "0x1p4%", "0X10", "1p4", "Infinity", "1_000%"} {
		_, err := ParsePercent(input)
		require.Error(t, err, input)
		assert.True(t, errors.Is(err, ErrMalformedPercent), input)
	}
}

func TestPercentRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 1, 12.5, 0.001, 99.999, 1234.5, 1e6, 3.14159} {
		got, err := ParsePercent(FormatPercent(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "12.5%", FormatPercent(12.5))
	assert.Equal(t, "1234%", FormatPercent(1234))
	assert.Equal(t, "0%", FormatPercent(0))
}
