package services

import "timesheet/internal/domain"

// SelectShape decides the presentation of a report from whether every user
// and every project is selected.
func SelectShape(allUsers, allProjects bool) domain.ReportShape {
	switch {
	case allUsers && allProjects:
		return domain.ReportShape{
			PerUserColumns:     true,
			ProjectTotalColumn: true,
			UserTotalRow:       true,
			GrandTotal:         true,
		}
	case allUsers:
		return domain.ReportShape{
			PerUserColumns:     true,
			ProjectTotalColumn: true,
			ProjectBreakdown:   true,
		}
	case allProjects:
		return domain.ReportShape{
			UserTotalRow:     true,
			SimpleUserReport: true,
		}
	default:
		return domain.ReportShape{UserTotalRow: true}
	}
}

// ShapeFor is SelectShape for a filter.
func ShapeFor(filter domain.ReportFilter) domain.ReportShape {
	return SelectShape(filter.AllUsers(), filter.AllProjects())
}
