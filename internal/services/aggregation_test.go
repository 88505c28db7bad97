package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet/internal/domain"
)

func aggregationFixture() ([]domain.TimeRecord, []domain.User, []domain.Project) {
	users := []domain.User{
		{ID: 1, FirstName: "Ana", LastName: "Lopez", IsActive: true},
		{ID: 2, Username: "bo", IsActive: true},
	}
	projects := []domain.Project{
		{ID: 10, Name: "Atlas"},
		{ID: 11, Name: "Beacon"},
	}
	d := domain.MustParseDate("2025-03-05")
	records := []domain.TimeRecord{
		{UserID: 1, ProjectID: 10, Date: d, Hours: hours("2")},
		{UserID: 1, ProjectID: 10, Date: d.AddDays(1), Hours: hours("1.5")},
		{UserID: 2, ProjectID: 10, Date: d, Hours: hours("4")},
		{UserID: 2, ProjectID: 11, Date: d, Hours: hours("3")},
		{UserID: 99, ProjectID: 10, Date: d, Hours: hours("8")},
		{UserID: 1, ProjectID: 99, Date: d, Hours: hours("8")},
		{UserID: 1, ProjectID: 11, Date: d, Hours: decimal.Decimal{}},
	}
	return records, users, projects
}

func int64Ptr(v int64) *int64 { return &v }

func TestAggregate(t *testing.T) {
	records, users, projects := aggregationFixture()
	march := domain.Month{Year: 2025, Month: 3}

	tests := []struct {
		name   string
		filter domain.ReportFilter
		want   map[string]map[string]string
		grand  string
	}{
		{
			name:   "all users all projects",
			filter: domain.ReportFilter{Month: march},
			want: map[string]map[string]string{
				"Atlas":  {"Ana Lopez": "3.5", "bo": "4"},
				"Beacon": {"Ana Lopez": "0", "bo": "3"},
			},
			grand: "10.5",
		},
		{
			name:   "one user all projects",
			filter: domain.ReportFilter{Month: march, UserID: int64Ptr(2)},
			want: map[string]map[string]string{
				"Atlas":  {"bo": "4"},
				"Beacon": {"bo": "3"},
			},
			grand: "7",
		},
		{
			name:   "all users one project",
			filter: domain.ReportFilter{Month: march, ProjectID: int64Ptr(11)},
			want: map[string]map[string]string{
				"Beacon": {"Ana Lopez": "0", "bo": "3"},
			},
			grand: "3",
		},
		{
			name:   "one user one project",
			filter: domain.ReportFilter{Month: march, UserID: int64Ptr(1), ProjectID: int64Ptr(10)},
			want: map[string]map[string]string{
				"Atlas": {"Ana Lopez": "3.5"},
			},
			grand: "3.5",
		},
		{
			name:   "unknown user selects nobody",
			filter: domain.ReportFilter{Month: march, UserID: int64Ptr(42)},
			want: map[string]map[string]string{
				"Atlas":  {},
				"Beacon": {},
			},
			grand: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := Aggregate(records, users, projects, tt.filter)
			require.Len(t, rows, len(tt.want))

			for _, row := range rows {
				want, ok := tt.want[row.Project]
				require.True(t, ok, "unexpected row %s", row.Project)
				require.Len(t, row.UsersHours, len(want))

				sum := decimal.Zero
				for name, h := range want {
					assert.True(t, hours(h).Equal(row.UsersHours[name]), "%s/%s = %s", row.Project, name, row.UsersHours[name])
					sum = sum.Add(hours(h))
				}
				assert.True(t, sum.Equal(row.ProjectTotal))
			}
			assert.True(t, hours(tt.grand).Equal(GrandTotal(rows)))
		})
	}
}

func TestAggregate_IsPure(t *testing.T) {
	records, users, projects := aggregationFixture()
	filter := domain.ReportFilter{Month: domain.Month{Year: 2025, Month: 3}}

	first := flatten(Aggregate(records, users, projects, filter))
	second := flatten(Aggregate(records, users, projects, filter))
	assert.Equal(t, first, second)
	assert.Len(t, records, 7, "input is not modified")
}

func flatten(rows []domain.ReportRow) map[string]string {
	out := make(map[string]string)
	for _, row := range rows {
		out[row.Project] = FormatHours(row.ProjectTotal)
		for name, h := range row.UsersHours {
			out[row.Project+"/"+name] = FormatHours(h)
		}
	}
	return out
}

func TestUserTotals(t *testing.T) {
	records, users, projects := aggregationFixture()
	rows := Aggregate(records, users, projects, domain.ReportFilter{Month: domain.Month{Year: 2025, Month: 3}})

	totals := UserTotals(rows)
	assert.True(t, hours("3.5").Equal(totals["Ana Lopez"]))
	assert.True(t, hours("7").Equal(totals["bo"]))
}

func TestColumns(t *testing.T) {
	_, users, _ := aggregationFixture()
	users = append(users, domain.User{ID: 3, FirstName: "Ana", LastName: "Lopez"})

	assert.Equal(t, []string{"Ana Lopez", "bo"}, Columns(users, domain.ReportFilter{}))
	assert.Equal(t, []string{"bo"}, Columns(users, domain.ReportFilter{UserID: int64Ptr(2)}))
}
