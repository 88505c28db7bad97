package domain

import "github.com/shopspring/decimal"

// SaveStatus is the lifecycle of the most recent save of a cell.
type SaveStatus int

const (
	SaveIdle SaveStatus = iota
	SaveSaving
	SaveSaved
	SaveError
)

// String returns the string representation of the save status
func (s SaveStatus) String() string {
	switch s {
	case SaveIdle:
		return "idle"
	case SaveSaving:
		return "saving"
	case SaveSaved:
		return "saved"
	case SaveError:
		return "error"
	default:
		return "unknown"
	}
}

// CellKey identifies a cell. Daily cells and weekly (project, dayIndex) cells
// both resolve to the date of the column.
type CellKey struct {
	ProjectID int64
	Date      Date
}

// DayCell is one day of a weekly row.
type DayCell struct {
	Date       Date
	Hours      decimal.Decimal
	Notes      string
	SaveStatus SaveStatus
	Valid      bool
}

// GridCell is one row of the daily view.
type GridCell struct {
	ProjectID    int64
	ProjectName  string
	Hours        decimal.Decimal
	Notes        string
	SaveStatus   SaveStatus
	ReadOnly     bool
	HasDateIssue bool
	RecordID     *int64
}

// WeeklyGridCell is one project row of the weekly view, Monday first.
type WeeklyGridCell struct {
	ProjectID    int64
	ProjectName  string
	Days         [7]DayCell
	HasDateIssue bool
}

// Total sums the hours of the row.
func (c WeeklyGridCell) Total() decimal.Decimal {
	total := decimal.Zero
	for _, d := range c.Days {
		total = total.Add(d.Hours)
	}
	return total
}
