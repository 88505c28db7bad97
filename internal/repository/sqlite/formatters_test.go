package sqlite

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatHoursForDB(t *testing.T) {
	tests := []struct {
		name     string
		hours    decimal.Decimal
		expected string
	}{
		{"whole", decimal.NewFromInt(8), "8.00"},
		{"quarter", decimal.RequireFromString("1.25"), "1.25"},
		{"zero", decimal.Zero, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatHoursForDB(tt.hours))
		})
	}
}

func TestParseHoursFromDB(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"7.50", "7.5"},
		{" 3 ", "3"},
		{"", "0"},
		{"abc", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseHoursFromDB(tt.input).String())
		})
	}
}

func TestFormatHours_RoundTrip(t *testing.T) {
	original := decimal.RequireFromString("5.75")
	assert.True(t, original.Equal(ParseHoursFromDB(FormatHoursForDB(original))))
}

func TestFormatNullableDate(t *testing.T) {
	empty := ""
	date := "2025-04-01"

	assert.Nil(t, FormatNullableDate(nil))
	assert.Nil(t, FormatNullableDate(&empty))
	assert.Equal(t, "2025-04-01", FormatNullableDate(&date))
}
