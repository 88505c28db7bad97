package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input       string
		expected    Date
		expectError bool
	}{
		{"2025-03-04", Date{2025, time.March, 4}, false},
		{"2024-02-29", Date{2024, time.February, 29}, false},
		{"2025-02-29", Date{}, true},
		{"04/03/2025", Date{}, true},
		{"", Date{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestDate_Arithmetic(t *testing.T) {
	d := MustParseDate("2025-02-27")

	assert.Equal(t, "2025-03-01", d.AddDays(2).String())
	assert.Equal(t, "2025-02-26", d.AddDays(-1).String())
	assert.Equal(t, time.Thursday, d.Weekday())
	assert.Equal(t, "2025-02-24", d.StartOfWeek().String())
	assert.Equal(t, "2025-03-03", MustParseDate("2025-03-09").StartOfWeek().String(), "sunday belongs to the week before")
	assert.Equal(t, 2, d.DaysUntil(d.AddDays(2)))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.After(d.AddDays(-1)))
	assert.True(t, d.Between(d, d))
	assert.False(t, d.Between(d.AddDays(1), d.AddDays(3)))
	assert.Equal(t, 0, d.Compare(NewDate(2025, time.February, 27)))
	assert.True(t, Date{}.IsZero())
	assert.Equal(t, "2025-02-01", d.StartOfMonth().String())
	assert.Equal(t, "2025-02-28", d.EndOfMonth().String())
	assert.True(t, d.Equal(NewDate(2025, time.February, 27)))
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

func TestToday(t *testing.T) {
	clock := fixedClock(time.Date(2025, time.March, 5, 23, 30, 0, 0, time.UTC))
	assert.Equal(t, "2025-03-05", Today(clock).String())
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Date Date `json:"date"`
	}

	b, err := json.Marshal(payload{Date: MustParseDate("2025-12-31")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2025-12-31"}`, string(b))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2026-01-02"}`), &p))
	assert.Equal(t, "2026-01-02", p.Date.String())

	assert.Error(t, json.Unmarshal([]byte(`{"date":"tomorrow"}`), &p))
}

func TestMonth(t *testing.T) {
	m, err := ParseMonth("2024-02")
	require.NoError(t, err)

	assert.Equal(t, "2024-02-01", m.Start().String())
	assert.Equal(t, "2024-02-29", m.End().String())
	assert.Equal(t, 29, m.Days())
	assert.Equal(t, "2024-03", m.AddMonths(1).String())
	assert.Equal(t, "2023-12", m.AddMonths(-2).String())
	assert.Equal(t, "February 2024", m.Label())
	assert.True(t, m.Contains(MustParseDate("2024-02-10")))
	assert.False(t, m.Contains(MustParseDate("2024-03-01")))

	_, err = ParseMonth("2024-13")
	assert.Error(t, err)
}
