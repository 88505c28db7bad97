package directory

import (
	"context"

	"timesheet/internal/domain"
	"timesheet/internal/errors"
	"timesheet/internal/repository/sqlite"
)

// Local is a Directory backed by the SQLite repository. Records it creates
// belong to the acting user it was opened for.
type Local struct {
	repo     sqlite.Repository
	userID   int64
	records  *domain.TimeRecordMapper
	projects *domain.ProjectMapper
	users    *domain.UserMapper
}

// NewLocal returns a directory over repo acting as userID.
func NewLocal(repo sqlite.Repository, userID int64) *Local {
	return &Local{
		repo:     repo,
		userID:   userID,
		records:  domain.NewTimeRecordMapper(),
		projects: domain.NewProjectMapper(),
		users:    domain.NewUserMapper(),
	}
}

// UserID returns the acting user.
func (l *Local) UserID() int64 {
	return l.userID
}

func (l *Local) ListTimeRecords(ctx context.Context, filter domain.RecordFilter) ([]domain.TimeRecord, error) {
	rows, err := l.repo.ListTimeRecords(ctx, l.records.FilterToQuery(filter))
	if err != nil {
		return nil, err
	}
	return l.records.FromDatabaseSlice(rows)
}

func (l *Local) CreateTimeRecord(ctx context.Context, in domain.TimeRecordInput) (*domain.TimeRecord, error) {
	row := l.records.ToDatabase(l.recordFor(in))
	if err := l.repo.CreateTimeRecord(ctx, &row); err != nil {
		return nil, err
	}
	return l.fromRow(row)
}

func (l *Local) UpdateTimeRecord(ctx context.Context, id int64, in domain.TimeRecordInput) (*domain.TimeRecord, error) {
	existing, err := l.repo.GetTimeRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	record := l.recordFor(in)
	record.ID = id
	record.UserID = existing.UserID

	row := l.records.ToDatabase(record)
	if err := l.repo.UpdateTimeRecord(ctx, &row); err != nil {
		return nil, err
	}
	return l.fromRow(row)
}

// UpsertTimeRecord writes the acting user's cell in a single statement.
func (l *Local) UpsertTimeRecord(ctx context.Context, in domain.TimeRecordInput) (*domain.TimeRecord, error) {
	if !in.Hours.IsPositive() {
		_, err := l.repo.FindTimeRecord(ctx, l.userID, in.ProjectID, in.Date.String())
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
	}

	row := l.records.ToDatabase(l.recordFor(in))
	if err := l.repo.UpsertTimeRecord(ctx, &row); err != nil {
		return nil, err
	}
	return l.fromRow(row)
}

func (l *Local) ListAssignedProjects(ctx context.Context, userID int64) ([]domain.Project, error) {
	rows, err := l.repo.ListAssignedProjects(ctx, userID)
	if err != nil {
		return nil, err
	}
	return l.projects.FromDatabaseSlice(rows)
}

// ListUsers returns the active users.
func (l *Local) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := l.repo.ListUsers(ctx, true)
	if err != nil {
		return nil, err
	}
	return l.users.FromDatabaseSlice(rows), nil
}

func (l *Local) ListProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := l.repo.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	return l.projects.FromDatabaseSlice(rows)
}

// CurrentUser returns the acting user.
func (l *Local) CurrentUser(ctx context.Context) (*domain.User, error) {
	row, err := l.repo.GetUser(ctx, l.userID)
	if err != nil {
		return nil, err
	}
	user := l.users.FromDatabase(*row)
	return &user, nil
}

// AddUser stores a new user and returns it with its ID.
func (l *Local) AddUser(ctx context.Context, user domain.User) (*domain.User, error) {
	row := l.users.ToDatabase(user)
	if err := l.repo.CreateUser(ctx, &row); err != nil {
		return nil, err
	}
	created := l.users.FromDatabase(row)
	return &created, nil
}

// AddProject stores a new project and returns it with its ID.
func (l *Local) AddProject(ctx context.Context, project domain.Project) (*domain.Project, error) {
	row := l.projects.ToDatabase(project)
	if err := l.repo.CreateProject(ctx, &row); err != nil {
		return nil, err
	}
	for _, userID := range project.AssignedUserIDs {
		if err := l.repo.AssignProject(ctx, row.ID, userID); err != nil {
			return nil, err
		}
	}
	created, err := l.projects.FromDatabase(row)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Assign adds userID to the project's assignments.
func (l *Local) Assign(ctx context.Context, projectID, userID int64) error {
	if _, err := l.repo.GetProject(ctx, projectID); err != nil {
		return err
	}
	if _, err := l.repo.GetUser(ctx, userID); err != nil {
		return err
	}
	return l.repo.AssignProject(ctx, projectID, userID)
}

func (l *Local) recordFor(in domain.TimeRecordInput) domain.TimeRecord {
	return domain.TimeRecord{
		UserID:    l.userID,
		ProjectID: in.ProjectID,
		Date:      in.Date,
		Hours:     in.Hours,
		Note:      in.Note,
	}
}

func (l *Local) fromRow(row sqlite.TimeRecord) (*domain.TimeRecord, error) {
	record, err := l.records.FromDatabase(row)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
