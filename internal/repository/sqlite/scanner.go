package sqlite

import (
	"database/sql"
)

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// ScanTimeRecord scans a single time record from a database row
func ScanTimeRecord(scanner Scanner) (*TimeRecord, error) {
	record := &TimeRecord{}
	err := scanner.Scan(
		&record.ID,
		&record.UserID,
		&record.ProjectID,
		&record.Date,
		&record.Hours,
		&record.Note,
	)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ScanTimeRecords scans multiple time records from database rows
func ScanTimeRecords(rows Rows) ([]*TimeRecord, error) {
	return scanAll(rows, ScanTimeRecord)
}

// ScanProject scans a single project from a database row
func ScanProject(scanner Scanner) (*Project, error) {
	project := &Project{}
	var start, end sql.NullString

	err := scanner.Scan(&project.ID, &project.Name, &project.Client, &start, &end)
	if err != nil {
		return nil, err
	}

	if start.Valid {
		project.StartDate = &start.String
	}
	if end.Valid {
		project.EndDate = &end.String
	}
	return project, nil
}

// ScanProjects scans multiple projects from database rows
func ScanProjects(rows Rows) ([]*Project, error) {
	return scanAll(rows, ScanProject)
}

// ScanUser scans a single user from a database row
func ScanUser(scanner Scanner) (*User, error) {
	user := &User{}
	err := scanner.Scan(&user.ID, &user.Username, &user.FirstName, &user.LastName, &user.IsActive)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ScanUsers scans multiple users from database rows
func ScanUsers(rows Rows) ([]*User, error) {
	return scanAll(rows, ScanUser)
}

func scanAll[T any](rows Rows, scan func(Scanner) (*T, error)) ([]*T, error) {
	var results []*T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
