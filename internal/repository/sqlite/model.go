package sqlite

// User is a row of the users table
type User struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	IsActive  bool
}

// Project is a row of the projects table. AssignedUserIDs is filled from
// project_assignments.
type Project struct {
	ID              int64
	Name            string
	Client          string
	StartDate       *string // YYYY-MM-DD, NULL when open
	EndDate         *string
	AssignedUserIDs []int64
}

// TimeRecord is a row of the time_records table. Hours is stored as a
// fixed two-place decimal string so sums stay exact.
type TimeRecord struct {
	ID        int64
	UserID    int64
	ProjectID int64
	Date      string
	Hours     string
	Note      string
}

// RecordQuery contains all possible time record filters
type RecordQuery struct {
	Date      *string
	StartDate *string
	EndDate   *string
	UserID    *int64
	ProjectID *int64
}
