package api

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"timesheet/internal/directory"
	"timesheet/internal/domain"
	"timesheet/internal/errors"
	"timesheet/internal/services"
	"timesheet/internal/validation"
)

// Sheet is a read-only snapshot of a daily or weekly grid.
type Sheet struct {
	Kind      string                  `json:"kind"`
	Start     domain.Date             `json:"start"`
	End       domain.Date             `json:"end"`
	Label     string                  `json:"label"`
	Daily     []domain.GridCell       `json:"daily,omitempty"`
	Weekly    []domain.WeeklyGridCell `json:"weekly,omitempty"`
	DayTotals []decimal.Decimal       `json:"day_totals"`
	Total     decimal.Decimal         `json:"total"`
}

// BusinessAPI defines the business-logic-only interface for timesheet operations
type BusinessAPI interface {
	// ========== Capture Workflows ==========

	// LogHours sets the hours of one project on one day and saves at once.
	// A non-empty note is stored first, so positive hours on a cell without
	// a note need one. It returns nil when no record exists afterwards.
	LogHours(ctx context.Context, projectID int64, date domain.Date, hours decimal.Decimal, note string) (*domain.TimeRecord, error)

	// SetNote replaces the note of one project on one day and saves at once.
	SetNote(ctx context.Context, projectID int64, date domain.Date, note string) (*domain.TimeRecord, error)

	// OpenGrid returns a loaded live grid. Callers Flush and Close it.
	// onStatus may be nil.
	OpenGrid(ctx context.Context, kind domain.PeriodKind, date domain.Date, onStatus services.StatusFunc) (*services.Grid, error)

	// ========== Query Operations ==========

	// GetSheet returns the cells of the day or week containing date.
	GetSheet(ctx context.Context, kind domain.PeriodKind, date domain.Date) (*Sheet, error)

	// GetMonthSummary returns the calendar of daily totals of month.
	GetMonthSummary(ctx context.Context, month domain.Month) (*services.MonthSummary, error)

	// ========== Reports ==========

	// GenerateReport aggregates a month over the working sets of filter.
	GenerateReport(ctx context.Context, filter domain.ReportFilter) (*domain.Report, error)

	// ProjectBreakdown lists every entry on a project for a month.
	ProjectBreakdown(ctx context.Context, month domain.Month, projectID int64, userID *int64) (*domain.ProjectBreakdown, error)

	// ========== Directory ==========

	ListProjects(ctx context.Context) ([]domain.Project, error)
	ListAssignedProjects(ctx context.Context) ([]domain.Project, error)
	ListUsers(ctx context.Context) ([]domain.User, error)

	// CurrentUser returns the acting user.
	CurrentUser(ctx context.Context) (*domain.User, error)

	// ResolveProject finds a project by ID or case-insensitive name.
	ResolveProject(ctx context.Context, ref string) (*domain.Project, error)

	// ResolveUser finds an active user by ID, username or display name.
	ResolveUser(ctx context.Context, ref string) (*domain.User, error)
}

// businessAPIImpl implements the BusinessAPI interface
type businessAPIImpl struct {
	services  *services.ServiceContainer
	validator *validation.TimeRecordValidator
}

// NewBusinessAPI creates a new BusinessAPI instance
func NewBusinessAPI(container *services.ServiceContainer) BusinessAPI {
	validator := container.GridOptions.Validator
	if validator == nil {
		validator = validation.NewTimeRecordValidator()
	}
	return &businessAPIImpl{
		services:  container,
		validator: validator,
	}
}

// ========== Capture Workflows ==========

func (b *businessAPIImpl) LogHours(ctx context.Context, projectID int64, date domain.Date, hours decimal.Decimal, note string) (*domain.TimeRecord, error) {
	if err := b.validateCell(projectID, date); err != nil {
		return nil, err
	}
	if hours.IsNegative() || hours.GreaterThan(b.validator.Validator().MaxHoursPerDay()) {
		return nil, errors.NewInvalidInputError("hours", hours.String(),
			fmt.Sprintf("must be between 0 and %s", b.validator.Validator().MaxHoursPerDay()))
	}

	return b.withDayGrid(ctx, projectID, date, func(g *services.Grid) error {
		// 1. A given note goes in first so the guard sees it
		if !b.validator.Validator().IsBlank(note) {
			if err := g.SetNotes(projectID, 0, note); err != nil {
				return err
			}
		}

		// 2. Set the hours; a suspended edit means the note is missing
		if err := g.SetHours(projectID, 0, hours); err != nil {
			return err
		}
		if p, ok := g.Prompt(); ok {
			_ = g.CancelEdit()
			return errors.NewNoteRequiredError(p.Key.ProjectID, p.Key.Date.String())
		}
		return nil
	})
}

func (b *businessAPIImpl) SetNote(ctx context.Context, projectID int64, date domain.Date, note string) (*domain.TimeRecord, error) {
	if err := b.validateCell(projectID, date); err != nil {
		return nil, err
	}
	return b.withDayGrid(ctx, projectID, date, func(g *services.Grid) error {
		return g.SetNotes(projectID, 0, note)
	})
}

// withDayGrid runs edit on a loaded day grid, saves and returns the record of
// the cell.
func (b *businessAPIImpl) withDayGrid(ctx context.Context, projectID int64, date domain.Date, edit func(*services.Grid) error) (*domain.TimeRecord, error) {
	g, err := b.OpenGrid(ctx, domain.PeriodDay, date, nil)
	if err != nil {
		return nil, err
	}
	defer g.Close()

	if err := edit(g); err != nil {
		return nil, err
	}
	if err := g.Flush(ctx); err != nil {
		return nil, err
	}
	if status, err := g.Status(projectID, 0); status == domain.SaveError {
		return nil, err
	}

	record, ok := g.Record(projectID, 0)
	if !ok {
		return nil, nil
	}
	return record, nil
}

func (b *businessAPIImpl) OpenGrid(ctx context.Context, kind domain.PeriodKind, date domain.Date, onStatus services.StatusFunc) (*services.Grid, error) {
	g := b.services.NewGrid(ctx, kind, date, onStatus)
	if err := g.Load(ctx); err != nil {
		g.Close()
		return nil, err
	}
	return g, nil
}

// ========== Query Operations ==========

func (b *businessAPIImpl) GetSheet(ctx context.Context, kind domain.PeriodKind, date domain.Date) (*Sheet, error) {
	g, err := b.OpenGrid(ctx, kind, date, nil)
	if err != nil {
		return nil, err
	}
	defer g.Close()

	period := g.Period()
	sheet := &Sheet{
		Kind:      period.Kind.String(),
		Start:     period.Start,
		End:       period.End,
		Label:     period.Label(),
		DayTotals: g.DayTotals(),
		Total:     g.Total(),
	}
	if period.Kind == domain.PeriodWeek {
		sheet.Weekly = g.WeeklyCells()
	} else {
		sheet.Daily = g.Cells()
	}
	return sheet, nil
}

func (b *businessAPIImpl) GetMonthSummary(ctx context.Context, month domain.Month) (*services.MonthSummary, error) {
	if month.Month < 1 || month.Month > 12 {
		return nil, errors.NewInvalidInputError("month", month.String(), "must be a calendar month")
	}
	return b.services.MonthService.Load(ctx, month)
}

// ========== Reports ==========

func (b *businessAPIImpl) GenerateReport(ctx context.Context, filter domain.ReportFilter) (*domain.Report, error) {
	return b.services.ReportingService.GenerateReport(ctx, filter)
}

func (b *businessAPIImpl) ProjectBreakdown(ctx context.Context, month domain.Month, projectID int64, userID *int64) (*domain.ProjectBreakdown, error) {
	return b.services.ReportingService.ProjectBreakdown(ctx, month, projectID, userID)
}

// ========== Directory ==========

func (b *businessAPIImpl) ListProjects(ctx context.Context) ([]domain.Project, error) {
	projects, err := b.services.Directory.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	sortProjects(projects)
	return projects, nil
}

func (b *businessAPIImpl) ListAssignedProjects(ctx context.Context) ([]domain.Project, error) {
	projects, err := b.services.Directory.ListAssignedProjects(ctx, b.services.GridOptions.UserID)
	if err != nil {
		return nil, err
	}
	sortProjects(projects)
	return projects, nil
}

func (b *businessAPIImpl) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := b.services.Directory.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].DisplayName() < users[j].DisplayName() })
	return users, nil
}

func (b *businessAPIImpl) CurrentUser(ctx context.Context) (*domain.User, error) {
	if p, ok := b.services.Directory.(directory.Profiler); ok {
		return p.CurrentUser(ctx)
	}

	userID := b.services.GridOptions.UserID
	users, err := b.services.Directory.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == userID {
			return &u, nil
		}
	}
	return nil, errors.NewNotFoundError("user", strconv.FormatInt(userID, 10))
}

func (b *businessAPIImpl) ResolveProject(ctx context.Context, ref string) (*domain.Project, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.NewInvalidInputError("project", ref, "must not be empty")
	}

	projects, err := b.services.Directory.ListProjects(ctx)
	if err != nil {
		return nil, err
	}

	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for _, p := range projects {
			if p.ID == id {
				return &p, nil
			}
		}
	}

	var matches []domain.Project
	for _, p := range projects {
		if strings.EqualFold(p.Name, ref) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return nil, errors.NewNotFoundError("project", ref)
	case 1:
		return &matches[0], nil
	default:
		return nil, errors.NewInvalidInputError("project", ref,
			fmt.Sprintf("matches %d projects, use the ID", len(matches)))
	}
}

func (b *businessAPIImpl) ResolveUser(ctx context.Context, ref string) (*domain.User, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.NewInvalidInputError("user", ref, "must not be empty")
	}

	users, err := b.services.Directory.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for _, u := range users {
			if u.ID == id {
				return &u, nil
			}
		}
	}

	var matches []domain.User
	for _, u := range users {
		if strings.EqualFold(u.Username, ref) || strings.EqualFold(u.DisplayName(), ref) {
			matches = append(matches, u)
		}
	}
	switch len(matches) {
	case 0:
		return nil, errors.NewNotFoundError("user", ref)
	case 1:
		return &matches[0], nil
	default:
		return nil, errors.NewInvalidInputError("user", ref,
			fmt.Sprintf("matches %d users, use the ID", len(matches)))
	}
}

// ========== Helpers ==========

func (b *businessAPIImpl) validateCell(projectID int64, date domain.Date) error {
	ve := validation.NewValidationError()
	if !b.validator.Validator().IsValidID(projectID) {
		ve.AddInvalidValueError("project", projectID, "must be a positive integer")
	}
	if date.IsZero() {
		ve.AddRequiredError("date")
	}
	return ve.OrNil()
}

func sortProjects(projects []domain.Project) {
	sort.SliceStable(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
}
