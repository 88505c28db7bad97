package domain

import "slices"

// Project is a billable unit of work. A project with neither a start nor an
// end date accepts hours on any day but is flagged as having a date issue.
type Project struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Client          string  `json:"client,omitempty"`
	StartDate       *Date   `json:"start_date,omitempty"`
	EndDate         *Date   `json:"end_date,omitempty"`
	AssignedUserIDs []int64 `json:"assigned_user_ids,omitempty"`
}

// HasDates reports whether the project defines any part of its active window.
func (p Project) HasDates() bool {
	return p.StartDate != nil || p.EndDate != nil
}

// HasDateIssue reports whether the project is missing its active window.
func (p Project) HasDateIssue() bool {
	return !p.HasDates()
}

// IsActiveOn reports whether hours may be logged against the project on d.
func (p Project) IsActiveOn(d Date) bool {
	if p.StartDate != nil && d.Before(*p.StartDate) {
		return false
	}
	if p.EndDate != nil && d.After(*p.EndDate) {
		return false
	}
	return true
}

// IsActiveDuring reports whether the project accepts hours on any day of p.
func (p Project) IsActiveDuring(period Period) bool {
	for _, d := range period.Days() {
		if p.IsActiveOn(d) {
			return true
		}
	}
	return false
}

// IsAssignedTo reports whether userID is assigned to the project.
func (p Project) IsAssignedTo(userID int64) bool {
	return slices.Contains(p.AssignedUserIDs, userID)
}
