package domain

import (
	"github.com/shopspring/decimal"
)

// ReportFilter selects the month and working sets of a report. A nil UserID
// or ProjectID means "All".
type ReportFilter struct {
	Month     Month
	UserID    *int64
	ProjectID *int64
}

// AllUsers reports whether every user is in the working set.
func (f ReportFilter) AllUsers() bool { return f.UserID == nil }

// AllProjects reports whether every project is in the working set.
func (f ReportFilter) AllProjects() bool { return f.ProjectID == nil }

// ReportRow is the per-project line of a report, hours keyed by user display name.
type ReportRow struct {
	ProjectID    int64                      `json:"project_id"`
	Project      string                     `json:"project"`
	UsersHours   map[string]decimal.Decimal `json:"users_hours"`
	ProjectTotal decimal.Decimal            `json:"project_total"`
}

// ReportShape says which parts of a report are presented.
type ReportShape struct {
	PerUserColumns     bool `json:"per_user_columns"`
	ProjectTotalColumn bool `json:"project_total_column"`
	UserTotalRow       bool `json:"user_total_row"`
	GrandTotal         bool `json:"grand_total"`
	SimpleUserReport   bool `json:"simple_user_report"`
	ProjectBreakdown   bool `json:"project_breakdown"`
}

// Report is a fully aggregated month. Columns lists the working users in order.
type Report struct {
	Month      Month                      `json:"month"`
	Filter     ReportFilter               `json:"-"`
	Columns    []string                   `json:"columns"`
	Rows       []ReportRow                `json:"rows"`
	UserTotals map[string]decimal.Decimal `json:"user_totals"`
	GrandTotal decimal.Decimal            `json:"grand_total"`
	Shape      ReportShape                `json:"shape"`
}

// EmployeeHours is one employee's entries on a project, sorted by date.
type EmployeeHours struct {
	UserID   int64           `json:"user_id"`
	Name     string          `json:"name"`
	Entries  []TimeRecord    `json:"entries"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// ProjectBreakdown lists every employee's entries on one project for a month.
type ProjectBreakdown struct {
	Project   Project         `json:"project"`
	Month     Month           `json:"month"`
	Employees []EmployeeHours `json:"employees"`
	Total     decimal.Decimal `json:"total"`
}
