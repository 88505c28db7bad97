package domain

import (
	"fmt"

	"timesheet/internal/repository/sqlite"
)

// TimeRecordMapper handles conversion between domain and database TimeRecord models.
type TimeRecordMapper struct{}

// NewTimeRecordMapper creates a new TimeRecordMapper instance.
func NewTimeRecordMapper() *TimeRecordMapper {
	return &TimeRecordMapper{}
}

// ToDatabase converts a domain TimeRecord to a database TimeRecord.
func (m *TimeRecordMapper) ToDatabase(record TimeRecord) sqlite.TimeRecord {
	return sqlite.TimeRecord{
		ID:        record.ID,
		UserID:    record.UserID,
		ProjectID: record.ProjectID,
		Date:      record.Date.String(),
		Hours:     sqlite.FormatHoursForDB(record.Hours),
		Note:      record.Note,
	}
}

// FromDatabase converts a database TimeRecord to a domain TimeRecord.
// Stored hours that do not parse read as zero.
func (m *TimeRecordMapper) FromDatabase(row sqlite.TimeRecord) (TimeRecord, error) {
	date, err := ParseDate(row.Date)
	if err != nil {
		return TimeRecord{}, fmt.Errorf("time record %d: %w", row.ID, err)
	}
	return TimeRecord{
		ID:        row.ID,
		UserID:    row.UserID,
		ProjectID: row.ProjectID,
		Date:      date,
		Hours:     sqlite.ParseHoursFromDB(row.Hours),
		Note:      row.Note,
	}, nil
}

// FromDatabaseSlice converts database rows to domain TimeRecords.
func (m *TimeRecordMapper) FromDatabaseSlice(rows []*sqlite.TimeRecord) ([]TimeRecord, error) {
	records := make([]TimeRecord, 0, len(rows))
	for _, row := range rows {
		record, err := m.FromDatabase(*row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// FilterToQuery converts a domain RecordFilter to a database query.
func (m *TimeRecordMapper) FilterToQuery(filter RecordFilter) sqlite.RecordQuery {
	return sqlite.RecordQuery{
		Date:      datePtrString(filter.Date),
		StartDate: datePtrString(filter.StartDate),
		EndDate:   datePtrString(filter.EndDate),
		UserID:    filter.UserID,
		ProjectID: filter.ProjectID,
	}
}

// ProjectMapper handles conversion between domain and database Project models.
type ProjectMapper struct{}

// NewProjectMapper creates a new ProjectMapper instance.
func NewProjectMapper() *ProjectMapper {
	return &ProjectMapper{}
}

// ToDatabase converts a domain Project to a database Project.
func (m *ProjectMapper) ToDatabase(project Project) sqlite.Project {
	return sqlite.Project{
		ID:              project.ID,
		Name:            project.Name,
		Client:          project.Client,
		StartDate:       datePtrString(project.StartDate),
		EndDate:         datePtrString(project.EndDate),
		AssignedUserIDs: project.AssignedUserIDs,
	}
}

// FromDatabase converts a database Project to a domain Project.
func (m *ProjectMapper) FromDatabase(row sqlite.Project) (Project, error) {
	start, err := parseDatePtr(row.StartDate)
	if err != nil {
		return Project{}, fmt.Errorf("project %d start date: %w", row.ID, err)
	}
	end, err := parseDatePtr(row.EndDate)
	if err != nil {
		return Project{}, fmt.Errorf("project %d end date: %w", row.ID, err)
	}
	return Project{
		ID:              row.ID,
		Name:            row.Name,
		Client:          row.Client,
		StartDate:       start,
		EndDate:         end,
		AssignedUserIDs: row.AssignedUserIDs,
	}, nil
}

// FromDatabaseSlice converts database rows to domain Projects.
func (m *ProjectMapper) FromDatabaseSlice(rows []*sqlite.Project) ([]Project, error) {
	projects := make([]Project, 0, len(rows))
	for _, row := range rows {
		project, err := m.FromDatabase(*row)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, nil
}

// UserMapper handles conversion between domain and database User models.
type UserMapper struct{}

// NewUserMapper creates a new UserMapper instance.
func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

// ToDatabase converts a domain User to a database User.
func (m *UserMapper) ToDatabase(user User) sqlite.User {
	return sqlite.User(user)
}

// FromDatabase converts a database User to a domain User.
func (m *UserMapper) FromDatabase(row sqlite.User) User {
	return User(row)
}

// FromDatabaseSlice converts database rows to domain Users.
func (m *UserMapper) FromDatabaseSlice(rows []*sqlite.User) []User {
	users := make([]User, len(rows))
	for i, row := range rows {
		users[i] = m.FromDatabase(*row)
	}
	return users
}

func datePtrString(d *Date) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func parseDatePtr(s *string) (*Date, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
