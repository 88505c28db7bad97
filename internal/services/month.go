package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"timesheet/internal/directory"
	"timesheet/internal/domain"
	"timesheet/internal/errors"
)

// CalendarDay is one square of the month calendar. Padding days outside the
// month have InMonth false and no hours.
type CalendarDay struct {
	Date    domain.Date     `json:"date"`
	InMonth bool            `json:"in_month"`
	IsToday bool            `json:"is_today"`
	Hours   decimal.Decimal `json:"hours"`
}

// MonthSummary is the acting user's hours over one month.
type MonthSummary struct {
	Month     domain.Month                    `json:"month"`
	DayTotals map[domain.Date]decimal.Decimal `json:"-"`
	Total     decimal.Decimal                 `json:"total"`
	Weeks     [][7]CalendarDay                `json:"weeks"`
}

// MonthService loads month summaries and opens daily grids from them.
type MonthService struct {
	dir  directory.Directory
	opts GridOptions
}

// NewMonthService returns a month service. opts configures the grids opened
// by DrillDown.
func NewMonthService(dir directory.Directory, opts GridOptions) *MonthService {
	return &MonthService{dir: dir, opts: opts}
}

// Load sums the user's hours per day of month.
func (s *MonthService) Load(ctx context.Context, month domain.Month) (*MonthSummary, error) {
	store := NewRecordStore(s.dir, s.opts.UserID)
	if err := store.Load(ctx, domain.MonthPeriod(month)); err != nil {
		return nil, err
	}

	summary := &MonthSummary{
		Month:     month,
		DayTotals: make(map[domain.Date]decimal.Decimal),
		Total:     decimal.Zero,
	}
	for _, r := range store.Records() {
		summary.DayTotals[r.Date] = summary.DayTotals[r.Date].Add(r.Hours)
		summary.Total = summary.Total.Add(r.Hours)
	}
	summary.Weeks = calendarWeeks(month, summary.DayTotals, s.today())
	return summary, nil
}

// DrillDown opens and loads a daily grid for a day of month.
func (s *MonthService) DrillDown(ctx context.Context, month domain.Month, date domain.Date) (*Grid, error) {
	if !month.Contains(date) {
		return nil, errors.NewInvalidInputError("date", date.String(), "must be in "+month.Label())
	}
	opts := s.opts
	opts.Kind = domain.PeriodDay
	opts.Date = date
	g := NewGrid(ctx, s.dir, opts)
	if err := g.Load(ctx); err != nil {
		g.Close()
		return nil, err
	}
	return g, nil
}

func (s *MonthService) today() domain.Date {
	if s.opts.Scheduler.Clock != nil {
		return domain.DateOf(s.opts.Scheduler.Clock.Now())
	}
	return domain.DateOf(time.Now())
}

// calendarWeeks lays month out in Sunday-first weeks.
func calendarWeeks(month domain.Month, totals map[domain.Date]decimal.Decimal, today domain.Date) [][7]CalendarDay {
	first := month.Start()
	start := first.AddDays(-int(first.Weekday()))
	last := month.End()

	var weeks [][7]CalendarDay
	for d := start; !d.After(last); {
		var week [7]CalendarDay
		for i := range week {
			week[i] = CalendarDay{
				Date:    d,
				InMonth: month.Contains(d),
				IsToday: d == today,
				Hours:   decimal.Zero,
			}
			if week[i].InMonth {
				week[i].Hours = totals[d]
			}
			d = d.AddDays(1)
		}
		weeks = append(weeks, week)
	}
	return weeks
}
