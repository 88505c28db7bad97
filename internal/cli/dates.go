package cli

import (
	"strings"

	"github.com/markusmobius/go-dateparser"

	"timesheet/internal/domain"
	"timesheet/internal/errors"
)

// parseDateArg reads a day as YYYY-MM-DD or natural language such as
// "yesterday" or "last friday". Empty input means today.
func parseDateArg(input string) (domain.Date, error) {
	input = strings.TrimSpace(input)
	now := timeNow()
	switch strings.ToLower(input) {
	case "", "today":
		return domain.DateOf(now), nil
	}
	if d, err := domain.ParseDate(input); err == nil {
		return d, nil
	}

	cfg := &dateparser.Configuration{
		CurrentTime: now,
	}
	result, err := dateparser.Parse(cfg, input)
	if err != nil || result.Time.IsZero() {
		return domain.Date{}, errors.NewInvalidInputError("date", input, "expected YYYY-MM-DD or a day such as \"yesterday\"")
	}
	return domain.DateOf(result.Time), nil
}

// parseMonthArg reads a month as YYYY-MM or natural language such as
// "last month" or "january 2025". Empty input means the current month.
func parseMonthArg(input string) (domain.Month, error) {
	input = strings.TrimSpace(input)
	now := timeNow()
	switch strings.ToLower(input) {
	case "", "this month", "current month":
		return domain.DateOf(now).MonthOf(), nil
	case "last month", "previous month":
		return domain.DateOf(now).MonthOf().AddMonths(-1), nil
	}
	if m, err := domain.ParseMonth(input); err == nil {
		return m, nil
	}

	cfg := &dateparser.Configuration{
		CurrentTime: now,
	}
	result, err := dateparser.Parse(cfg, input)
	if err != nil || result.Time.IsZero() {
		return domain.Month{}, errors.NewInvalidInputError("month", input, "expected YYYY-MM or a month such as \"last month\"")
	}
	return domain.DateOf(result.Time).MonthOf(), nil
}

// weekdayHeader formats a date for column headers.
func weekdayHeader(d domain.Date) string {
	return d.Time().Format("Mon 02")
}

// dayLabel formats a date for messages, e.g. "Wed 2025-03-05".
func dayLabel(d domain.Date) string {
	return d.Time().Format("Mon 2006-01-02")
}
