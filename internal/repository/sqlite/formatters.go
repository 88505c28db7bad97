package sqlite

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatHoursForDB formats hours with two decimal places for storage
func FormatHoursForDB(hours decimal.Decimal) string {
	return hours.StringFixed(2)
}

// ParseHoursFromDB parses a stored hours value. Unparseable text reads as zero.
func ParseHoursFromDB(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatNullableDate returns nil for a nil date so it is stored as NULL
func FormatNullableDate(date *string) interface{} {
	if date == nil || *date == "" {
		return nil
	}
	return *date
}
