package cli

import (
	"context"
	"strings"

	"timesheet/internal/domain"
	"timesheet/internal/services"
	"timesheet/internal/tui"
)

// runEditor is a variable that can be replaced in tests
var runEditor = tui.Run

// EditCommand handles the interactive edit command
type EditCommand struct {
	app *App
	Day bool
}

// NewEditCommand creates a new edit command handler
func NewEditCommand(app *App) *EditCommand {
	return &EditCommand{app: app}
}

// Execute opens the editor on the week, or with Day set the day, containing
// the date in args.
func (c *EditCommand) Execute(ctx context.Context, args []string) error {
	date, err := parseDateArg(strings.Join(args, " "))
	if err != nil {
		return c.app.errors.HandleSimple(err)
	}

	kind := domain.PeriodWeek
	if c.Day {
		kind = domain.PeriodDay
	}

	open := func(ctx context.Context, onStatus services.StatusFunc) (*services.Grid, error) {
		return c.app.businessAPI.OpenGrid(ctx, kind, date, onStatus)
	}
	if err := runEditor(ctx, open); err != nil {
		return c.app.errors.Handle("edit timesheet", err)
	}
	return nil
}
