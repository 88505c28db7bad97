// Package directory holds the contract the editors and reports use to read
// and write projects, users and time records, and its two implementations:
// a local SQLite store and a client for the remote hours service.
package directory

import (
	"context"

	"timesheet/internal/domain"
)

// Directory is the external store of projects, users and time records.
type Directory interface {
	ListTimeRecords(ctx context.Context, filter domain.RecordFilter) ([]domain.TimeRecord, error)
	CreateTimeRecord(ctx context.Context, in domain.TimeRecordInput) (*domain.TimeRecord, error)
	UpdateTimeRecord(ctx context.Context, id int64, in domain.TimeRecordInput) (*domain.TimeRecord, error)
	ListAssignedProjects(ctx context.Context, userID int64) ([]domain.Project, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListProjects(ctx context.Context) ([]domain.Project, error)
}

// Upserter is implemented by directories that can write the record of a
// (user, project, date) cell atomically.
type Upserter interface {
	// UpsertTimeRecord creates or replaces the acting user's record for
	// in.ProjectID on in.Date. With zero hours and no existing record nothing
	// is written and the result is nil.
	UpsertTimeRecord(ctx context.Context, in domain.TimeRecordInput) (*domain.TimeRecord, error)
}

// Profiler is implemented by directories that know who the acting user is.
type Profiler interface {
	CurrentUser(ctx context.Context) (*domain.User, error)
}
