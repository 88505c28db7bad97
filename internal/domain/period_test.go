package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPeriodOf(t *testing.T) {
	d := MustParseDate("2025-03-05") // Wednesday

	tests := []struct {
		name      string
		kind      PeriodKind
		wantStart string
		wantEnd   string
		wantLen   int
	}{
		{"day", PeriodDay, "2025-03-05", "2025-03-05", 1},
		{"week", PeriodWeek, "2025-03-03", "2025-03-09", 7},
		{"month", PeriodMonth, "2025-03-01", "2025-03-31", 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PeriodOf(tt.kind, d)
			assert.Equal(t, tt.wantStart, p.Start.String())
			assert.Equal(t, tt.wantEnd, p.End.String())
			assert.Equal(t, tt.wantLen, p.Len())
			assert.Len(t, p.Days(), tt.wantLen)
			assert.True(t, p.Contains(d))
			assert.Equal(t, tt.kind.String(), p.Kind.String())
		})
	}
}

func TestPeriod_Navigation(t *testing.T) {
	week := WeekPeriod(MustParseDate("2025-03-05"))
	assert.Equal(t, "2025-03-10", week.Next().Start.String())
	assert.Equal(t, "2025-02-24", week.Prev().Start.String())

	day := DayPeriod(MustParseDate("2025-03-01"))
	assert.Equal(t, "2025-02-28", day.Prev().Start.String())

	month := MonthPeriod(Month{Year: 2025, Month: 1})
	assert.Equal(t, "2025-02-28", month.Next().End.String())
	assert.Equal(t, "2024-12-01", month.Prev().Start.String())
}

func TestPeriod_DayIndex(t *testing.T) {
	week := WeekPeriod(MustParseDate("2025-03-05"))

	assert.Equal(t, 0, week.DayIndex(MustParseDate("2025-03-03")))
	assert.Equal(t, 6, week.DayIndex(MustParseDate("2025-03-09")))
	assert.Equal(t, -1, week.DayIndex(MustParseDate("2025-03-10")))
}

func TestPeriod_Label(t *testing.T) {
	assert.Equal(t, "Wednesday 2025-03-05", DayPeriod(MustParseDate("2025-03-05")).Label())
	assert.Equal(t, "Week of 2025-03-03 to 2025-03-09", WeekPeriod(MustParseDate("2025-03-05")).Label())
	assert.Equal(t, "March 2025", MonthPeriod(Month{Year: 2025, Month: 3}).Label())
}
