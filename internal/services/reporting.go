package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"timesheet/internal/directory"
	"timesheet/internal/domain"
	"timesheet/internal/errors"
	"timesheet/internal/logging"
	"timesheet/internal/validation"
)

// reportingServiceImpl implements the ReportingService interface
type reportingServiceImpl struct {
	dir       directory.Directory
	validator *validation.TimeRecordValidator
}

// NewReportingService creates a new ReportingService instance
func NewReportingService(dir directory.Directory) ReportingService {
	return &reportingServiceImpl{
		dir:       dir,
		validator: validation.NewTimeRecordValidator(),
	}
}

type reportInputs struct {
	users    []domain.User
	projects []domain.Project
	records  []domain.TimeRecord
}

// load fetches users, projects and the records of month concurrently. Users
// come back ordered by display name and projects by name.
func (r *reportingServiceImpl) load(ctx context.Context, month domain.Month, record domain.RecordFilter) (*reportInputs, error) {
	start, end := month.Start(), month.End()
	record.StartDate, record.EndDate = &start, &end

	in := &reportInputs{}
	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		in.users, err = r.dir.ListUsers(egctx)
		return err
	})
	eg.Go(func() error {
		var err error
		in.projects, err = r.dir.ListProjects(egctx)
		return err
	})
	eg.Go(func() error {
		var err error
		in.records, err = r.dir.ListTimeRecords(egctx, record)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(in.users, func(i, j int) bool { return in.users[i].DisplayName() < in.users[j].DisplayName() })
	sort.SliceStable(in.projects, func(i, j int) bool { return in.projects[i].Name < in.projects[j].Name })
	return in, nil
}

// GenerateReport aggregates the month of filter over its working sets
func (r *reportingServiceImpl) GenerateReport(ctx context.Context, filter domain.ReportFilter) (*domain.Report, error) {
	if err := r.validator.ValidateReportFilter(filter); err != nil {
		return nil, err
	}

	in, err := r.load(ctx, filter.Month, domain.RecordFilter{UserID: filter.UserID, ProjectID: filter.ProjectID})
	if err != nil {
		return nil, err
	}

	rows := Aggregate(in.records, in.users, in.projects, filter)
	report := &domain.Report{
		Month:      filter.Month,
		Filter:     filter,
		Columns:    Columns(in.users, filter),
		Rows:       rows,
		UserTotals: UserTotals(rows),
		GrandTotal: GrandTotal(rows),
		Shape:      ShapeFor(filter),
	}

	logging.FromContext(ctx).Debug("report generated",
		"month", filter.Month.String(), "rows", len(rows), "columns", len(report.Columns))
	return report, nil
}

// ProjectBreakdown lists every employee's entries on a project for a month
func (r *reportingServiceImpl) ProjectBreakdown(ctx context.Context, month domain.Month, projectID int64, userID *int64) (*domain.ProjectBreakdown, error) {
	filter := domain.ReportFilter{Month: month, UserID: userID, ProjectID: &projectID}
	if err := r.validator.ValidateReportFilter(filter); err != nil {
		return nil, err
	}

	in, err := r.load(ctx, month, domain.RecordFilter{UserID: userID, ProjectID: &projectID})
	if err != nil {
		return nil, err
	}

	projects := WorkingProjects(in.projects, filter)
	if len(projects) == 0 {
		return nil, errors.NewNotFoundError("project", fmt.Sprintf("%d", projectID))
	}

	breakdown := &domain.ProjectBreakdown{Project: projects[0], Month: month, Total: decimal.Zero}
	for _, u := range WorkingUsers(in.users, filter) {
		emp := domain.EmployeeHours{UserID: u.ID, Name: u.DisplayName(), Subtotal: decimal.Zero}
		for _, rec := range in.records {
			if rec.UserID == u.ID && rec.ProjectID == projectID && month.Contains(rec.Date) {
				emp.Entries = append(emp.Entries, rec)
				emp.Subtotal = emp.Subtotal.Add(rec.Hours)
			}
		}
		if len(emp.Entries) == 0 {
			continue
		}
		sort.SliceStable(emp.Entries, func(i, j int) bool { return emp.Entries[i].Date.Before(emp.Entries[j].Date) })
		breakdown.Employees = append(breakdown.Employees, emp)
		breakdown.Total = breakdown.Total.Add(emp.Subtotal)
	}
	sort.SliceStable(breakdown.Employees, func(i, j int) bool {
		return breakdown.Employees[i].Name < breakdown.Employees[j].Name
	})
	return breakdown, nil
}
