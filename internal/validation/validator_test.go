package validation

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"timesheet/internal/config"
)

func TestValidator_ParseHours(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		input    string
		expected string
	}{
		{"8", "8"},
		{"7.3", "7.25"},
		{"7.4", "7.5"},
		{"0.1", "0"},
		{"", "0"},
		{"abc", "0"},
		{"-3", "0"},
		{"30", "24"},
		{" 2.75 ", "2.75"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := v.ParseHours(tt.input)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)), "got %s", got)
		})
	}
}

func TestValidator_NormalizeHoursWithConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Validation.MaxHoursPerDay = decimal.NewFromInt(12)
	cfg.Validation.HoursIncrement = decimal.RequireFromString("0.5")
	v := NewValidatorWithConfig(cfg)

	assert.Equal(t, "12", v.NormalizeHours(decimal.NewFromInt(15)).String())
	assert.Equal(t, "1.5", v.NormalizeHours(decimal.RequireFromString("1.3")).String())
	assert.True(t, v.IsValidHours(decimal.RequireFromString("1.5")))
	assert.False(t, v.IsValidHours(decimal.RequireFromString("1.25")))
}

func TestValidator_Notes(t *testing.T) {
	v := NewValidator()

	long := strings.Repeat("é", 1200)
	truncated := v.NormalizeNote(long)
	assert.Equal(t, 1000, len([]rune(truncated)))
	assert.True(t, v.IsValidNoteLength(truncated))
	assert.False(t, v.IsValidNoteLength(long))
	assert.Equal(t, "short", v.NormalizeNote("short"))

	assert.True(t, v.IsBlank("  \t"))
	assert.False(t, v.IsBlank(" x "))
}

func TestValidator_IsValidID(t *testing.T) {
	v := NewValidator()
	assert.True(t, v.IsValidID(1))
	assert.False(t, v.IsValidID(0))
	assert.False(t, v.IsValidID(-5))
}
