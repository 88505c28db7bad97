package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TimeRecord is one persisted entry of hours worked by a user on a project
// on a given day. There is at most one record per (UserID, ProjectID, Date).
type TimeRecord struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user"`
	ProjectID int64           `json:"project"`
	Date      Date            `json:"date"`
	Hours     decimal.Decimal `json:"hours"`
	Note      string          `json:"note"`
}

// HasNote reports whether the record carries a non-blank note.
func (r TimeRecord) HasNote() bool {
	return strings.TrimSpace(r.Note) != ""
}

// Input returns the write payload carrying this record's values.
func (r TimeRecord) Input() TimeRecordInput {
	return TimeRecordInput{ProjectID: r.ProjectID, Date: r.Date, Hours: r.Hours, Note: r.Note}
}

// TimeRecordInput is the payload of a create, update or upsert.
type TimeRecordInput struct {
	ProjectID int64           `json:"project"`
	Date      Date            `json:"date"`
	Hours     decimal.Decimal `json:"hours"`
	Note      string          `json:"note"`
}

// RecordFilter narrows a record listing. Zero fields do not filter.
type RecordFilter struct {
	Date      *Date
	StartDate *Date
	EndDate   *Date
	UserID    *int64
	ProjectID *int64
}

// RangeFilter returns a filter for every record in the period.
func RangeFilter(p Period) RecordFilter {
	start, end := p.Start, p.End
	return RecordFilter{StartDate: &start, EndDate: &end}
}

// Matches applies the filter to r in memory.
func (f RecordFilter) Matches(r TimeRecord) bool {
	if f.Date != nil && r.Date != *f.Date {
		return false
	}
	if f.StartDate != nil && r.Date.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && r.Date.After(*f.EndDate) {
		return false
	}
	if f.UserID != nil && r.UserID != *f.UserID {
		return false
	}
	if f.ProjectID != nil && r.ProjectID != *f.ProjectID {
		return false
	}
	return true
}

// SumHours adds up the hours of records.
func SumHours(records []TimeRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Hours)
	}
	return total
}
