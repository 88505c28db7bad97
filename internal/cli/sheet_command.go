package cli

import (
	"context"
	"strings"

	"timesheet/internal/api"
	"timesheet/internal/domain"
	"timesheet/internal/services"
)

// SheetCommand handles the day and week commands
type SheetCommand struct {
	app    *App
	kind   domain.PeriodKind
	Format string
}

// NewDayCommand creates a handler showing one day
func NewDayCommand(app *App) *SheetCommand {
	return &SheetCommand{app: app, kind: domain.PeriodDay}
}

// NewWeekCommand creates a handler showing the week containing a day
func NewWeekCommand(app *App) *SheetCommand {
	return &SheetCommand{app: app, kind: domain.PeriodWeek}
}

// Execute runs the command. args form an optional date.
func (c *SheetCommand) Execute(ctx context.Context, args []string) error {
	date, err := parseDateArg(strings.Join(args, " "))
	if err != nil {
		return c.app.errors.HandleSimple(err)
	}

	sheet, err := c.app.businessAPI.GetSheet(ctx, c.kind, date)
	if err != nil {
		return c.app.errors.Handle("load timesheet", err)
	}

	r, err := c.app.renderer(c.Format)
	if err != nil {
		return c.app.errors.HandleSimple(err)
	}
	if r.Format == services.FormatJSON {
		return r.RenderJSON(c.app.out, sheet)
	}

	header, rows := sheetTable(sheet)
	return r.RenderTable(c.app.out, sheet.Label, header, rows, true)
}

// sheetTable lays a sheet out with a total row. Cells outside a project's
// active window are marked with "-".
func sheetTable(sheet *api.Sheet) ([]string, [][]string) {
	if sheet.Kind == domain.PeriodWeek.String() {
		header := []string{"Project"}
		for i := 0; i < len(sheet.DayTotals); i++ {
			header = append(header, weekdayHeader(sheet.Start.AddDays(i)))
		}
		header = append(header, "Total")

		rows := make([][]string, 0, len(sheet.Weekly)+1)
		for _, w := range sheet.Weekly {
			row := []string{projectName(w.ProjectName, w.HasDateIssue)}
			for i := range sheet.DayTotals {
				row = append(row, dayText(w.Days[i]))
			}
			rows = append(rows, append(row, services.FormatHours(w.Total())))
		}
		total := []string{"Total"}
		for _, t := range sheet.DayTotals {
			total = append(total, services.FormatHours(t))
		}
		rows = append(rows, append(total, services.FormatHours(sheet.Total)))
		return header, rows
	}

	header := []string{"Project", "Hours", "Note"}
	rows := make([][]string, 0, len(sheet.Daily)+1)
	for _, c := range sheet.Daily {
		hours := services.FormatHours(c.Hours)
		if c.ReadOnly {
			hours = "-"
			if !c.Hours.IsZero() {
				hours = services.FormatHours(c.Hours) + " (closed)"
			}
		}
		rows = append(rows, []string{projectName(c.ProjectName, c.HasDateIssue), hours, c.Notes})
	}
	rows = append(rows, []string{"Total", services.FormatHours(sheet.Total), ""})
	return header, rows
}

func dayText(d domain.DayCell) string {
	switch {
	case !d.Valid && d.Hours.IsZero():
		return "-"
	case d.Hours.IsZero():
		return ""
	default:
		return services.FormatHours(d.Hours)
	}
}

func projectName(name string, dateIssue bool) string {
	if dateIssue {
		return name + " (no dates)"
	}
	return name
}
