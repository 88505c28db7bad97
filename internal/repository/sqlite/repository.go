package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"timesheet/internal/errors"
	"timesheet/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Repository defines the interface for database operations
type Repository interface {
	// Time records
	CreateTimeRecord(ctx context.Context, record *TimeRecord) error
	GetTimeRecord(ctx context.Context, id int64) (*TimeRecord, error)
	FindTimeRecord(ctx context.Context, userID, projectID int64, date string) (*TimeRecord, error)
	ListTimeRecords(ctx context.Context, q RecordQuery) ([]*TimeRecord, error)
	UpdateTimeRecord(ctx context.Context, record *TimeRecord) error
	UpsertTimeRecord(ctx context.Context, record *TimeRecord) error

	// Projects
	CreateProject(ctx context.Context, project *Project) error
	GetProject(ctx context.Context, id int64) (*Project, error)
	ListProjects(ctx context.Context) ([]*Project, error)
	ListAssignedProjects(ctx context.Context, userID int64) ([]*Project, error)
	AssignProject(ctx context.Context, projectID, userID int64) error

	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id int64) (*User, error)
	ListUsers(ctx context.Context, activeOnly bool) ([]*User, error)

	// Utility
	Close() error
}

// Options bounds how long a single statement may run.
type Options struct {
	QueryTimeout time.Duration
	WriteTimeout time.Duration
}

// SQLiteRepository implements the Repository interface
type SQLiteRepository struct {
	db   *sql.DB
	opts Options
}

// New creates a new SQLite repository instance without statement timeouts
func New(dbPath string) (*SQLiteRepository, error) {
	return NewWithOptions(dbPath, Options{})
}

// NewWithOptions opens dbPath, enables foreign keys and runs migrations
func NewWithOptions(dbPath string, opts Options) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}
	// One connection keeps :memory: databases coherent and serialises writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("enable foreign keys", err)
	}

	if err := migrations.RunMigrations(db); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	return &SQLiteRepository{db: db, opts: opts}, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) readContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opts.QueryTimeout > 0 {
		return context.WithTimeout(ctx, r.opts.QueryTimeout)
	}
	return context.WithCancel(ctx)
}

func (r *SQLiteRepository) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opts.WriteTimeout > 0 {
		return context.WithTimeout(ctx, r.opts.WriteTimeout)
	}
	return context.WithCancel(ctx)
}

const timeRecordColumns = `id, user_id, project_id, date, hours, note`

// CreateTimeRecord inserts a new time record
func (r *SQLiteRepository) CreateTimeRecord(ctx context.Context, record *TimeRecord) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	query := `
	INSERT INTO time_records (user_id, project_id, date, hours, note)
	VALUES (?, ?, ?, ?, ?)`

	id, err := ExecuteWithLastInsertID(ctx, r.db, query, record.UserID, record.ProjectID, record.Date, record.Hours, record.Note)
	if err != nil {
		return err
	}

	record.ID = id
	return nil
}

// GetTimeRecord retrieves a time record by ID
func (r *SQLiteRepository) GetTimeRecord(ctx context.Context, id int64) (*TimeRecord, error) {
	ctx, cancel := r.readContext(ctx)
	defer cancel()

	query := `SELECT ` + timeRecordColumns + ` FROM time_records WHERE id = ?`
	return QuerySingle(ctx, r.db, query, ScanTimeRecord, "time record", fmt.Sprintf("%d", id), id)
}

// FindTimeRecord retrieves the record of one cell
func (r *SQLiteRepository) FindTimeRecord(ctx context.Context, userID, projectID int64, date string) (*TimeRecord, error) {
	ctx, cancel := r.readContext(ctx)
	defer cancel()

	query := `
	SELECT ` + timeRecordColumns + `
	FROM time_records
	WHERE user_id = ? AND project_id = ? AND date = ?`

	key := fmt.Sprintf("user %d project %d on %s", userID, projectID, date)
	return QuerySingle(ctx, r.db, query, ScanTimeRecord, "time record", key, userID, projectID, date)
}

// ListTimeRecords lists records matching q ordered by date then project
func (r *SQLiteRepository) ListTimeRecords(ctx context.Context, q RecordQuery) ([]*TimeRecord, error) {
	ctx, cancel := r.readContext(ctx)
	defer cancel()

	var conditions []string
	var args []interface{}

	if q.Date != nil {
		conditions = append(conditions, "date = ?")
		args = append(args, *q.Date)
	}
	if q.StartDate != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, *q.StartDate)
	}
	if q.EndDate != nil {
		conditions = append(conditions, "date <= ?")
		args = append(args, *q.EndDate)
	}
	if q.UserID != nil {
		conditions = append(conditions, "user_id = ?")
		args = append(args, *q.UserID)
	}
	if q.ProjectID != nil {
		conditions = append(conditions, "project_id = ?")
		args = append(args, *q.ProjectID)
	}

	query := `SELECT ` + timeRecordColumns + ` FROM time_records`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date ASC, project_id ASC, user_id ASC"

	return QueryMultiple(ctx, r.db, query, ScanTimeRecords, "time records", args...)
}

// UpdateTimeRecord updates hours and note of an existing record
func (r *SQLiteRepository) UpdateTimeRecord(ctx context.Context, record *TimeRecord) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	query := `
	UPDATE time_records
	SET project_id = ?, date = ?, hours = ?, note = ?
	WHERE id = ?`

	return ExecuteWithRowsAffected(ctx, r.db, query, "time record", fmt.Sprintf("%d", record.ID),
		record.ProjectID, record.Date, record.Hours, record.Note, record.ID)
}

// UpsertTimeRecord writes the record of (user, project, date) in one
// statement, creating it or replacing its hours and note. record.ID is set.
func (r *SQLiteRepository) UpsertTimeRecord(ctx context.Context, record *TimeRecord) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	query := `
	INSERT INTO time_records (user_id, project_id, date, hours, note)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (user_id, project_id, date)
	DO UPDATE SET hours = excluded.hours, note = excluded.note
	RETURNING id`

	err := r.db.QueryRowContext(ctx, query, record.UserID, record.ProjectID, record.Date, record.Hours, record.Note).Scan(&record.ID)
	if err != nil {
		return HandleConstraintError("upsert time record", err)
	}
	return nil
}

// CreateProject inserts a new project
func (r *SQLiteRepository) CreateProject(ctx context.Context, project *Project) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	query := `INSERT INTO projects (name, client, start_date, end_date) VALUES (?, ?, ?, ?)`
	id, err := ExecuteWithLastInsertID(ctx, r.db, query, project.Name, project.Client,
		FormatNullableDate(project.StartDate), FormatNullableDate(project.EndDate))
	if err != nil {
		return err
	}
	project.ID = id
	return nil
}

// GetProject retrieves a project by ID with its assignments
func (r *SQLiteRepository) GetProject(ctx context.Context, id int64) (*Project, error) {
	ctx, cancel := r.readContext(ctx)
	defer cancel()

	query := `SELECT id, name, client, start_date, end_date FROM projects WHERE id = ?`
	project, err := QuerySingle(ctx, r.db, query, ScanProject, "project", fmt.Sprintf("%d", id), id)
	if err != nil {
		return nil, err
	}
	if err := r.attachAssignments(ctx, []*Project{project}); err != nil {
		return nil, err
	}
	return project, nil
}

// ListProjects retrieves all projects ordered by name
func (r *SQLiteRepository) ListProjects(ctx context.Context) ([]*Project, error) {
	ctx, cancel := r.readContext(ctx)
	defer cancel()

	query := `SELECT id, name, client, start_date, end_date FROM projects ORDER BY name ASC`
	projects, err := QueryMultiple(ctx, r.db, query, ScanProjects, "projects")
	if err != nil {
		return nil, err
	}
	if err := r.attachAssignments(ctx, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// ListAssignedProjects retrieves the projects userID is assigned to
func (r *SQLiteRepository) ListAssignedProjects(ctx context.Context, userID int64) ([]*Project, error) {
	ctx, cancel := r.readContext(ctx)
	defer cancel()

	query := `
	SELECT p.id, p.name, p.client, p.start_date, p.end_date
	FROM projects p
	JOIN project_assignments a ON a.project_id = p.id
	WHERE a.user_id = ?
	ORDER BY p.name ASC`

	projects, err := QueryMultiple(ctx, r.db, query, ScanProjects, "assigned projects", userID)
	if err != nil {
		return nil, err
	}
	if err := r.attachAssignments(ctx, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// AssignProject assigns userID to projectID. Repeated assignment is a no-op.
func (r *SQLiteRepository) AssignProject(ctx context.Context, projectID, userID int64) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	query := `INSERT OR IGNORE INTO project_assignments (project_id, user_id) VALUES (?, ?)`
	if _, err := r.db.ExecContext(ctx, query, projectID, userID); err != nil {
		return HandleConstraintError("assign project", err)
	}
	return nil
}

func (r *SQLiteRepository) attachAssignments(ctx context.Context, projects []*Project) error {
	if len(projects) == 0 {
		return nil
	}

	byID := make(map[int64]*Project, len(projects))
	for _, p := range projects {
		p.AssignedUserIDs = nil
		byID[p.ID] = p
	}

	rows, err := r.db.QueryContext(ctx, `SELECT project_id, user_id FROM project_assignments ORDER BY project_id, user_id`)
	if err != nil {
		return HandleDatabaseError("query project assignments", err)
	}
	defer rows.Close()

	for rows.Next() {
		var projectID, userID int64
		if err := rows.Scan(&projectID, &userID); err != nil {
			return HandleDatabaseError("scan project assignments", err)
		}
		if p, ok := byID[projectID]; ok {
			p.AssignedUserIDs = append(p.AssignedUserIDs, userID)
		}
	}
	if err := rows.Err(); err != nil {
		return HandleDatabaseError("scan project assignments", err)
	}
	return nil
}

// CreateUser inserts a new user
func (r *SQLiteRepository) CreateUser(ctx context.Context, user *User) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	query := `INSERT INTO users (username, first_name, last_name, is_active) VALUES (?, ?, ?, ?)`
	id, err := ExecuteWithLastInsertID(ctx, r.db, query, user.Username, user.FirstName, user.LastName, user.IsActive)
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

// GetUser retrieves a user by ID
func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (*User, error) {
	ctx, cancel := r.readContext(ctx)
	defer cancel()

	query := `SELECT id, username, first_name, last_name, is_active FROM users WHERE id = ?`
	return QuerySingle(ctx, r.db, query, ScanUser, "user", fmt.Sprintf("%d", id), id)
}

// ListUsers retrieves users ordered by username
func (r *SQLiteRepository) ListUsers(ctx context.Context, activeOnly bool) ([]*User, error) {
	ctx, cancel := r.readContext(ctx)
	defer cancel()

	query := `SELECT id, username, first_name, last_name, is_active FROM users`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY username ASC`
	return QueryMultiple(ctx, r.db, query, ScanUsers, "users")
}
