package cli

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"timesheet/internal/domain"
	"timesheet/internal/errors"
	"timesheet/internal/services"
)

// LogCommand handles the log command
type LogCommand struct {
	app  *App
	Date string
	Note string
}

// NewLogCommand creates a new log command handler
func NewLogCommand(app *App) *LogCommand {
	return &LogCommand{app: app}
}

// Execute sets the hours of a project on a day. args are PROJECT HOURS.
func (c *LogCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return c.app.errors.HandleSimple(errors.NewInvalidInputError("args", strings.Join(args, " "), "expected PROJECT HOURS"))
	}

	date, err := parseDateArg(c.Date)
	if err != nil {
		return c.app.errors.HandleSimple(err)
	}
	hours, err := parseHoursArg(args[1])
	if err != nil {
		return c.app.errors.HandleSimple(err)
	}
	project, err := c.app.businessAPI.ResolveProject(ctx, args[0])
	if err != nil {
		return c.app.errors.Handle("find project", err)
	}

	record, err := c.app.businessAPI.LogHours(ctx, project.ID, date, hours, c.Note)
	if err != nil {
		return c.app.errors.Handle("log hours", err)
	}

	if record == nil || record.Hours.IsZero() {
		c.app.printf("Cleared %s on %s\n", project.Name, dayLabel(date))
		return nil
	}
	c.app.printf("Logged %sh on %s for %s\n", services.FormatHours(record.Hours), project.Name, dayLabel(date))
	if record.Note != "" {
		c.app.printf("  Note: %s\n", record.Note)
	}
	return nil
}

// NoteCommand handles the note command
type NoteCommand struct {
	app  *App
	Date string
}

// NewNoteCommand creates a new note command handler
func NewNoteCommand(app *App) *NoteCommand {
	return &NoteCommand{app: app}
}

// Execute replaces the note of a project on a day. args are PROJECT TEXT...
func (c *NoteCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return c.app.errors.HandleSimple(errors.NewInvalidInputError("args", strings.Join(args, " "), "expected PROJECT TEXT"))
	}

	date, err := parseDateArg(c.Date)
	if err != nil {
		return c.app.errors.HandleSimple(err)
	}
	project, err := c.app.businessAPI.ResolveProject(ctx, args[0])
	if err != nil {
		return c.app.errors.Handle("find project", err)
	}

	note := strings.Join(args[1:], " ")
	record, err := c.app.businessAPI.SetNote(ctx, project.ID, date, note)
	if err != nil {
		return c.app.errors.Handle("save note", err)
	}

	if record == nil {
		c.app.printf("Noted %s on %s (no hours logged yet)\n", project.Name, dayLabel(date))
		return nil
	}
	c.app.printf("Noted %s on %s: %s\n", project.Name, dayLabel(date), record.Note)
	return nil
}

// parseHoursArg reads hours as a decimal number such as "1.5" or "2".
func parseHoursArg(text string) (decimal.Decimal, error) {
	hours, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return decimal.Zero, errors.NewInvalidInputError("hours", text, "expected a number such as 1.5")
	}
	if hours.IsNegative() {
		return decimal.Zero, errors.NewInvalidInputError("hours", text, "hours cannot be negative")
	}
	return hours, nil
}

// projectRef resolves a project reference, returning nil for an empty one.
func (a *App) projectRef(ctx context.Context, ref string) (*domain.Project, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, nil
	}
	return a.businessAPI.ResolveProject(ctx, ref)
}

// userRef resolves a user reference, returning nil for an empty one.
func (a *App) userRef(ctx context.Context, ref string) (*domain.User, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, nil
	}
	return a.businessAPI.ResolveUser(ctx, ref)
}
