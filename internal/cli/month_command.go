package cli

import (
	"context"
	"fmt"
	"strings"

	"timesheet/internal/services"
)

// MonthCommand handles the month command
type MonthCommand struct {
	app    *App
	Format string
}

// NewMonthCommand creates a new month command handler
func NewMonthCommand(app *App) *MonthCommand {
	return &MonthCommand{app: app}
}

// Execute shows the calendar of the month in args, or the current month
func (c *MonthCommand) Execute(ctx context.Context, args []string) error {
	month, err := parseMonthArg(strings.Join(args, " "))
	if err != nil {
		return c.app.errors.HandleSimple(err)
	}

	summary, err := c.app.businessAPI.GetMonthSummary(ctx, month)
	if err != nil {
		return c.app.errors.Handle("load month", err)
	}

	r, err := c.app.renderer(c.Format)
	if err != nil {
		return c.app.errors.HandleSimple(err)
	}
	if r.Format == services.FormatJSON {
		return r.RenderJSON(c.app.out, summary)
	}

	header, rows := calendarTable(summary)
	title := fmt.Sprintf("%s, %s hours", month.Label(), services.FormatHours(summary.Total))
	return r.RenderTable(c.app.out, title, header, rows, false)
}

// calendarTable lays a month out Sunday first. Days with hours show them
// after the day of month; days outside the month are blank.
func calendarTable(summary *services.MonthSummary) ([]string, [][]string) {
	header := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	rows := make([][]string, 0, len(summary.Weeks))
	for _, week := range summary.Weeks {
		row := make([]string, 0, len(week))
		for _, day := range week {
			if !day.InMonth {
				row = append(row, "")
				continue
			}
			text := fmt.Sprintf("%2d", day.Date.Day)
			if day.IsToday {
				text += "*"
			}
			if !day.Hours.IsZero() {
				text += " " + services.FormatHours(day.Hours)
			}
			row = append(row, text)
		}
		rows = append(rows, row)
	}
	return header, rows
}
