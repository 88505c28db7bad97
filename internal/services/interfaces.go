package services

import (
	"context"

	"timesheet/internal/config"
	"timesheet/internal/directory"
	"timesheet/internal/domain"
)

// ReportingService aggregates time records into monthly reports.
type ReportingService interface {
	// GenerateReport aggregates the month of filter over its working sets.
	GenerateReport(ctx context.Context, filter domain.ReportFilter) (*domain.Report, error)

	// ProjectBreakdown lists every employee's entries on a project for a
	// month. A non-nil userID restricts it to that employee.
	ProjectBreakdown(ctx context.Context, month domain.Month, projectID int64, userID *int64) (*domain.ProjectBreakdown, error)
}

// ServiceContainer manages all services and their dependencies
type ServiceContainer struct {
	Directory        directory.Directory
	ReportingService ReportingService
	MonthService     *MonthService
	GridOptions      GridOptions
}

// NewServiceContainer wires the services over dir.
func NewServiceContainer(dir directory.Directory, cfg *config.Config) *ServiceContainer {
	opts := GridOptionsFromConfig(cfg, domain.PeriodWeek, domain.Date{})
	return &ServiceContainer{
		Directory:        dir,
		ReportingService: NewReportingService(dir),
		MonthService:     NewMonthService(dir, opts),
		GridOptions:      opts,
	}
}

// NewGrid returns an unloaded grid of kind showing date. onStatus, when not
// nil, observes the save status of every cell.
func (c *ServiceContainer) NewGrid(ctx context.Context, kind domain.PeriodKind, date domain.Date, onStatus StatusFunc) *Grid {
	opts := c.GridOptions
	opts.Kind = kind
	opts.Date = date
	if onStatus != nil {
		opts.Scheduler.OnStatus = onStatus
	}
	return NewGrid(ctx, c.Directory, opts)
}
