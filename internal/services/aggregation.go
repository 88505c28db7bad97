package services

import (
	"github.com/shopspring/decimal"

	"timesheet/internal/domain"
)

// WorkingUsers returns the users a report covers: all of them, or the one
// selected by filter.
func WorkingUsers(users []domain.User, filter domain.ReportFilter) []domain.User {
	if filter.AllUsers() {
		return users
	}
	for _, u := range users {
		if u.ID == *filter.UserID {
			return []domain.User{u}
		}
	}
	return nil
}

// WorkingProjects returns the projects a report covers.
func WorkingProjects(projects []domain.Project, filter domain.ReportFilter) []domain.Project {
	if filter.AllProjects() {
		return projects
	}
	for _, p := range projects {
		if p.ID == *filter.ProjectID {
			return []domain.Project{p}
		}
	}
	return nil
}

// Aggregate builds one row per working project with the hours of every
// working user keyed by display name. Every working user appears in every
// row, at zero when they logged nothing. Records whose user or project is
// outside the working sets are ignored.
//
// Users sharing a display name share a column.
func Aggregate(records []domain.TimeRecord, users []domain.User, projects []domain.Project, filter domain.ReportFilter) []domain.ReportRow {
	workingUsers := WorkingUsers(users, filter)
	workingProjects := WorkingProjects(projects, filter)

	names := make(map[int64]string, len(workingUsers))
	for _, u := range workingUsers {
		names[u.ID] = u.DisplayName()
	}

	rows := make([]domain.ReportRow, len(workingProjects))
	index := make(map[int64]int, len(workingProjects))
	for i, p := range workingProjects {
		hours := make(map[string]decimal.Decimal, len(workingUsers))
		for _, u := range workingUsers {
			hours[names[u.ID]] = decimal.Zero
		}
		rows[i] = domain.ReportRow{ProjectID: p.ID, Project: p.Name, UsersHours: hours, ProjectTotal: decimal.Zero}
		index[p.ID] = i
	}

	for _, r := range records {
		name, ok := names[r.UserID]
		if !ok {
			continue
		}
		i, ok := index[r.ProjectID]
		if !ok {
			continue
		}
		rows[i].UsersHours[name] = rows[i].UsersHours[name].Add(r.Hours)
	}

	for i := range rows {
		total := decimal.Zero
		for _, h := range rows[i].UsersHours {
			total = total.Add(h)
		}
		rows[i].ProjectTotal = total
	}
	return rows
}

// UserTotals sums each user column over rows.
func UserTotals(rows []domain.ReportRow) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, row := range rows {
		for name, h := range row.UsersHours {
			totals[name] = totals[name].Add(h)
		}
	}
	return totals
}

// GrandTotal sums the project totals of rows.
func GrandTotal(rows []domain.ReportRow) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.ProjectTotal)
	}
	return total
}

// Columns returns the display names of the working users in order, without
// duplicates.
func Columns(users []domain.User, filter domain.ReportFilter) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, u := range WorkingUsers(users, filter) {
		name := u.DisplayName()
		if !seen[name] {
			seen[name] = true
			cols = append(cols, name)
		}
	}
	return cols
}
