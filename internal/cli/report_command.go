package cli

import (
	"context"
	"strings"

	"timesheet/internal/domain"
	"timesheet/internal/errors"
)

// ReportCommand handles the report command
type ReportCommand struct {
	app     *App
	Month   string
	User    string
	Project string
	Format  string
}

// NewReportCommand creates a new report command handler
func NewReportCommand(app *App) *ReportCommand {
	return &ReportCommand{app: app}
}

// Execute aggregates a month. Empty --user or --project flags mean all
// users or all projects.
func (c *ReportCommand) Execute(ctx context.Context, args []string) error {
	month, err := parseMonthArg(c.monthInput(args))
	if err != nil {
		return c.app.errors.HandleSimple(err)
	}

	filter := domain.ReportFilter{Month: month}
	user, err := c.app.userRef(ctx, c.User)
	if err != nil {
		return c.app.errors.Handle("find user", err)
	}
	if user != nil {
		filter.UserID = &user.ID
	}
	project, err := c.app.projectRef(ctx, c.Project)
	if err != nil {
		return c.app.errors.Handle("find project", err)
	}
	if project != nil {
		filter.ProjectID = &project.ID
	}

	r, err := c.app.renderer(c.Format)
	if err != nil {
		return c.app.errors.HandleSimple(err)
	}

	report, err := c.app.businessAPI.GenerateReport(ctx, filter)
	if err != nil {
		return c.app.errors.Handle("generate report", err)
	}
	return r.RenderReport(c.app.out, report)
}

// monthInput prefers the --month flag over positional words.
func (c *ReportCommand) monthInput(args []string) string {
	if c.Month != "" {
		return c.Month
	}
	return strings.Join(args, " ")
}

// BreakdownCommand handles the breakdown command
type BreakdownCommand struct {
	app    *App
	Month  string
	User   string
	Format string
}

// NewBreakdownCommand creates a new breakdown command handler
func NewBreakdownCommand(app *App) *BreakdownCommand {
	return &BreakdownCommand{app: app}
}

// Execute lists every entry on the project in args[0] for a month.
func (c *BreakdownCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return c.app.errors.HandleSimple(errors.NewInvalidInputError("args", strings.Join(args, " "), "expected PROJECT"))
	}

	month, err := parseMonthArg(c.Month)
	if err != nil {
		return c.app.errors.HandleSimple(err)
	}
	project, err := c.app.businessAPI.ResolveProject(ctx, args[0])
	if err != nil {
		return c.app.errors.Handle("find project", err)
	}
	var userID *int64
	user, err := c.app.userRef(ctx, c.User)
	if err != nil {
		return c.app.errors.Handle("find user", err)
	}
	if user != nil {
		userID = &user.ID
	}

	r, err := c.app.renderer(c.Format)
	if err != nil {
		return c.app.errors.HandleSimple(err)
	}

	breakdown, err := c.app.businessAPI.ProjectBreakdown(ctx, month, project.ID, userID)
	if err != nil {
		return c.app.errors.Handle("load breakdown", err)
	}
	return r.RenderBreakdown(c.app.out, breakdown)
}
