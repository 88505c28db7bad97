package domain

import "fmt"

// PeriodKind is the span a grid or report covers.
type PeriodKind int

const (
	PeriodDay PeriodKind = iota
	PeriodWeek
	PeriodMonth
)

// String returns the string representation of the period kind
func (k PeriodKind) String() string {
	switch k {
	case PeriodDay:
		return "day"
	case PeriodWeek:
		return "week"
	case PeriodMonth:
		return "month"
	default:
		return "unknown"
	}
}

// Period is an inclusive range of days. Weeks start on Monday.
type Period struct {
	Kind  PeriodKind
	Start Date
	End   Date
}

// DayPeriod returns the single-day period for d.
func DayPeriod(d Date) Period {
	return Period{Kind: PeriodDay, Start: d, End: d}
}

// WeekPeriod returns the Monday-to-Sunday week containing d.
func WeekPeriod(d Date) Period {
	start := d.StartOfWeek()
	return Period{Kind: PeriodWeek, Start: start, End: start.AddDays(6)}
}

// MonthPeriod returns the whole month m.
func MonthPeriod(m Month) Period {
	return Period{Kind: PeriodMonth, Start: m.Start(), End: m.End()}
}

// PeriodOf returns the period of the given kind containing d.
func PeriodOf(kind PeriodKind, d Date) Period {
	switch kind {
	case PeriodWeek:
		return WeekPeriod(d)
	case PeriodMonth:
		return MonthPeriod(d.MonthOf())
	default:
		return DayPeriod(d)
	}
}

// Len returns the number of days in the period.
func (p Period) Len() int {
	return p.Start.DaysUntil(p.End) + 1
}

// Days lists every day of the period in order.
func (p Period) Days() []Date {
	days := make([]Date, 0, p.Len())
	for d := p.Start; !d.After(p.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// Contains reports whether d lies inside the period.
func (p Period) Contains(d Date) bool {
	return d.Between(p.Start, p.End)
}

// DayIndex returns the offset of d from the start of the period, or -1.
func (p Period) DayIndex(d Date) int {
	if !p.Contains(d) {
		return -1
	}
	return p.Start.DaysUntil(d)
}

// Next returns the following period of the same kind.
func (p Period) Next() Period {
	if p.Kind == PeriodMonth {
		return MonthPeriod(p.Start.MonthOf().AddMonths(1))
	}
	return PeriodOf(p.Kind, p.End.AddDays(1))
}

// Prev returns the preceding period of the same kind.
func (p Period) Prev() Period {
	if p.Kind == PeriodMonth {
		return MonthPeriod(p.Start.MonthOf().AddMonths(-1))
	}
	return PeriodOf(p.Kind, p.Start.AddDays(-1))
}

// Label is a human heading for the period.
func (p Period) Label() string {
	switch p.Kind {
	case PeriodDay:
		return fmt.Sprintf("%s %s", p.Start.Weekday(), p.Start)
	case PeriodWeek:
		return fmt.Sprintf("Week of %s to %s", p.Start, p.End)
	default:
		return p.Start.MonthOf().Label()
	}
}
